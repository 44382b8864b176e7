// Package log builds the slog loggers used by rim on top of charmbracelet/log.
package log

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"
)

var (
	defaultStylesOnce sync.Once
	defaultStyles     atomic.Pointer[Styles]
)

func initializeStyles() *Styles {
	styles := charmlog.DefaultStyles()
	for _, ls := range levelStyles {
		levelStr := strings.ToUpper(LogLevelString(ls.level))
		if len(levelStr) < ls.maxWidth {
			levelStr = levelStr + strings.Repeat(" ", ls.maxWidth-len(levelStr))
		}
		styles.Levels[ls.level] = ls.style.SetString(levelStr)
	}
	return styles
}

// DefaultStyles returns the initialized styles with all levels including Important
func DefaultStyles() *Styles {
	defaultStylesOnce.Do(func() {
		defaultStyles.Store(initializeStyles())
	})
	return defaultStyles.Load()
}

// New creates a new logger with the given options. When the output cannot
// be opened the logger discards everything so that logging never gets in the
// way of the command itself.
func New(opts ...Option) *slog.Logger {
	o := DefaultOptions()
	o.Apply(opts...)

	if o.OutputFunc != nil {
		w, err := o.OutputFunc()
		if err != nil {
			w = io.Discard
		}
		o.Writer = w
	}

	handler := charmlog.NewWithOptions(o.Writer, o.Options)
	handler.SetStyles(o.Styles)

	logger := slog.New(handler)
	if o.Attrs != nil {
		logger = logger.With(o.Attrs...)
	}

	if o.Default {
		charmlog.SetDefault(handler)
		slog.SetDefault(logger)
	}
	return logger
}

// Discard returns a logger that drops every record and makes it the default
func Discard() *slog.Logger {
	return New(UseOutput(io.Discard), AsDefault())
}
