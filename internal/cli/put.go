package cli

import (
	"fmt"
	"log/slog"

	"al.essio.dev/pkg/shellescape"
	"github.com/babarot/rim/internal/trash"
)

// Put recycles every argument. Processing stops at the first failure.
func (c *CLI) Put(args []string) error {
	slog.Debug("cli.put started")
	defer slog.Debug("cli.put finished")

	if len(args) == 0 {
		return ErrTooFewArguments
	}

	for _, arg := range args {
		if err := c.putPath(arg); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) putPath(path string) error {
	if c.option.Rm.Interactive {
		ok, err := c.confirm(fmt.Sprintf("recycle %s?", shellescape.Quote(path)), false)
		if err != nil {
			return err
		}
		if !ok {
			slog.Debug("skipped by user", "path", path)
			return nil
		}
	}

	entry, err := c.manager.Recycle(path, trash.RecycleOptions{
		Recursive: c.option.Rm.Recursive || c.option.Rm.Recursive2,
	})
	if err != nil {
		if c.option.Rm.Force && trash.IsNotFound(err) {
			slog.Debug("ignored nonexistent file", "path", path)
			return nil
		}
		return err
	}

	if c.option.Rm.Verbose || c.config.Core.Verbose {
		kind := "file"
		if entry.Metadata.IsDir {
			kind = "directory"
		}
		fmt.Fprintf(c.outStream, "recycled %s %s (id %d)\n", kind, shellescape.Quote(path), entry.ID)
	}
	return nil
}
