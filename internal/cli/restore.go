package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"al.essio.dev/pkg/shellescape"
	"github.com/babarot/rim/internal/core/types"
	"github.com/babarot/rim/internal/ui"
)

// Recover restores each argument, given as an id or an original path. With
// no arguments a picker over the recycled entries is opened.
func (c *CLI) Recover(args []string) error {
	slog.Debug("cli.recover started")
	defer slog.Debug("cli.recover finished")

	if len(args) == 0 {
		return c.recoverInteractive()
	}

	for _, arg := range args {
		if err := c.manager.RecoverTarget(arg); err != nil {
			return err
		}
		if c.verboseRecover() {
			fmt.Fprintf(c.outStream, "recovered %s\n", shellescape.Quote(arg))
		}
	}
	return nil
}

func (c *CLI) recoverInteractive() error {
	entries, err := c.manager.List()
	if err != nil {
		return err
	}

	chosen, err := c.pick(entries)
	switch {
	case errors.Is(err, ui.ErrInputCanceled):
		slog.Debug("picker canceled")
		return nil
	case err != nil:
		return err
	}

	if c.config.Core.Restore.Confirm && !c.option.Yes {
		ok, err := c.confirm(recoverPrompt(chosen), true)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(c.outStream, "Recovery canceled.")
			return nil
		}
	}

	for _, e := range chosen {
		if err := c.manager.Recover(e.ID); err != nil {
			return err
		}
		if c.verboseRecover() {
			fmt.Fprintf(c.outStream, "recovered %s\n", shellescape.Quote(e.OriginalPath))
		}
	}
	return nil
}

func (c *CLI) verboseRecover() bool {
	return c.option.Rm.Verbose || c.config.Core.Restore.Verbose
}

func recoverPrompt(entries []types.TrashEntry) string {
	if len(entries) == 1 {
		return fmt.Sprintf("recover %s?", shellescape.Quote(entries[0].OriginalPath))
	}
	return fmt.Sprintf("recover %d files?", len(entries))
}
