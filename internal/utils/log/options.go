package log

import (
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Options configures New. The embedded charmlog.Options control the record
// layout; the rest decide where records go.
type Options struct {
	charmlog.Options
	Writer     io.Writer
	OutputFunc func() (io.Writer, error)
	Styles     *Styles
	Attrs      []any
	Default    bool
}

// DefaultOptions logs info and above to stderr without caller or timestamp
func DefaultOptions() *Options {
	return &Options{
		Options: charmlog.Options{Level: InfoLevel},
		Writer:  os.Stderr,
		Styles:  DefaultStyles(),
	}
}

func (o *Options) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

type Option func(*Options)

func UseLevel(l Level) Option {
	return func(o *Options) { o.Level = l }
}

func UseOutput(w io.Writer) Option {
	return func(o *Options) { o.Writer = w }
}

// UseOutputFunc defers opening the output until the logger is built. If f
// fails the logger discards its records.
func UseOutputFunc(f func() (io.Writer, error)) Option {
	return func(o *Options) { o.OutputFunc = f }
}

// UseRotatingOutput writes to path and rotates the file once it grows past maxSize
func UseRotatingOutput(path, maxSize string, maxFiles int) Option {
	return UseOutputFunc(func() (io.Writer, error) {
		return NewRotateWriter(path, maxSize, maxFiles)
	})
}

// UseReportCaller adds the source location of each record
func UseReportCaller(report bool) Option {
	return func(o *Options) { o.ReportCaller = report }
}

func UseReportTimestamp(report bool) Option {
	return func(o *Options) { o.ReportTimestamp = report }
}

func UseTimeFormat(format string) Option {
	return func(o *Options) { o.TimeFormat = format }
}

// UseAttrs attaches the given key-value pairs to every record
func UseAttrs(args ...any) Option {
	return func(o *Options) { o.Attrs = append(o.Attrs, args...) }
}

// AsDefault installs the logger as the slog and charmlog default
func AsDefault() Option {
	return func(o *Options) { o.Default = true }
}
