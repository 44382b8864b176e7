package cli

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// Prune runs the requested maintenance: --prune purges expired entries and
// --prune-orphans reconciles the ledger with the trash directory
func (c *CLI) Prune() error {
	slog.Debug("pruning trash contents started")
	defer slog.Debug("pruning trash contents finished")

	if c.option.Prune {
		if err := c.purgeExpired(); err != nil {
			return err
		}
	}
	if c.option.PruneOrphans {
		if err := c.pruneOrphans(); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) purgeExpired() error {
	report, err := c.manager.RunMaintenance()
	if err != nil {
		return err
	}

	if report.Removed == 0 && report.Skipped == 0 {
		fmt.Fprintln(c.outStream, "No expired entries found.")
		return nil
	}
	fmt.Fprintf(c.outStream, "Purged %d %s (%s freed).\n",
		report.Removed, plural(report.Removed, "entry", "entries"), humanize.IBytes(uint64(report.Bytes)))
	if report.Skipped > 0 {
		fmt.Fprintf(c.outStream, "Kept %d expired %s that still hold recoverable files.\n",
			report.Skipped, plural(report.Skipped, "directory", "directories"))
	}
	return nil
}

func (c *CLI) pruneOrphans() error {
	report, err := c.manager.Reconcile()
	if err != nil {
		return err
	}
	if report.Clean() {
		fmt.Fprintln(c.outStream, "The ledger and the trash directory agree.")
		return nil
	}

	warn := color.New(color.FgYellow).SprintFunc()
	if len(report.Strays) > 0 {
		fmt.Fprintf(c.outStream, "%s %d %s in %s not tracked by the ledger (left untouched):\n",
			warn("!"), len(report.Strays), plural(len(report.Strays), "file", "files"), c.manager.TrashDir())
		for _, p := range report.Strays {
			fmt.Fprintf(c.outStream, "  %s\n", p)
		}
	}
	if len(report.Dangling) == 0 {
		return nil
	}

	fmt.Fprintf(c.outStream, "%s %d ledger %s without a file in the trash:\n",
		warn("!"), len(report.Dangling), plural(len(report.Dangling), "entry", "entries"))
	table := newTable(c, []string{"ID", "Deleted At", "Original Path"})
	for _, e := range report.Dangling {
		table.Append([]string{
			strconv.FormatInt(e.ID, 10),
			e.DeletedAt().Format("2006-01-02 15:04:05"),
			e.OriginalPath,
		})
	}
	table.Render()

	if !c.option.Yes {
		ok, err := c.confirm(fmt.Sprintf("remove %d dangling ledger %s?",
			len(report.Dangling), plural(len(report.Dangling), "entry", "entries")), false)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(c.outStream, "Pruning canceled.")
			return nil
		}
	}

	n, err := c.manager.PruneDangling(report)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.outStream, "Removed %d dangling ledger %s.\n", n, plural(n, "entry", "entries"))
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
