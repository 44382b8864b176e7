// Package debug prints the rim debug log for the --debug flag.
package debug

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/nxadm/tail"
)

// Mode selects how the log is shown
type Mode string

const (
	// ModeFull prints the whole log file and exits
	ModeFull Mode = "full"

	// ModeLive follows the log from its current end
	ModeLive Mode = "live"
)

// ParseMode accepts "", "full" and "live". The empty string means full.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeFull:
		return ModeFull, nil
	case ModeLive:
		return ModeLive, nil
	default:
		return "", fmt.Errorf("invalid debug mode %q: expected full or live", s)
	}
}

// Logs writes the log file at path to w
func Logs(w io.Writer, path string, enabled bool, mode Mode) error {
	if mode == ModeLive {
		return tailLiveLogs(w, path, enabled)
	}
	return showExistingLogs(w, path, enabled)
}

// tailLiveLogs follows log entries in real-time. Following only happens on a
// terminal; otherwise whatever is appended while tail starts up is printed.
func tailLiveLogs(w io.Writer, path string, enabled bool) error {
	if !enabled {
		return fmt.Errorf("logging is not enabled in config: enable logging in config for live debugging")
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("log file does not exist: try running some commands with logging enabled")
	}

	shouldFollow := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	t, err := tail.TailFile(path, tail.Config{
		ReOpen: shouldFollow,
		Follow: shouldFollow,
		Poll:   true,
		Logger: tail.DiscardingLogger,
		Location: &tail.SeekInfo{
			Offset: 0,
			Whence: io.SeekEnd,
		},
	})
	if err != nil {
		return err
	}
	defer t.Cleanup()

	for line := range t.Lines {
		if line.Err != nil {
			return line.Err
		}
		fmt.Fprintln(w, line.Text)
	}
	return nil
}

// showExistingLogs displays the current content of the log file
func showExistingLogs(w io.Writer, path string, enabled bool) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		if !enabled {
			return fmt.Errorf("logging is not enabled in config: enable logging to create log files")
		}
		return fmt.Errorf("no log file exists yet: try running some commands first")
	}
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fmt.Fprintln(w, scanner.Text())
	}
	return scanner.Err()
}
