package cli

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/babarot/rim/internal/core/types"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// List prints the n most recently recycled entries, newest first
func (c *CLI) List(n int) error {
	slog.Debug("cli.list started", "n", n)
	defer slog.Debug("cli.list finished")

	entries, err := c.manager.ListRecent(n)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.outStream, "The trash is empty.")
		return nil
	}

	now := time.Now()
	table := newTable(c, []string{"ID", "Deleted", "Expires", "Size", "Original Path"})
	for _, e := range entries {
		table.Append([]string{
			strconv.FormatInt(e.ID, 10),
			humanize.RelTime(e.DeletedAt(), now, "ago", "from now"),
			expiresIn(e, now),
			entrySize(e),
			e.OriginalPath,
		})
	}
	table.Render()
	return nil
}

func newTable(c *CLI, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(c.outStream)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

func expiresIn(e types.TrashEntry, now time.Time) string {
	if e.IsExpired(now) {
		return "expired"
	}
	return humanize.RelTime(e.ExpiresAt(), now, "ago", "from now")
}

func entrySize(e types.TrashEntry) string {
	if e.Metadata.IsDir {
		return "-"
	}
	return humanize.IBytes(uint64(e.Metadata.FileSize))
}
