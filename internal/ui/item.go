package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/babarot/rim/internal/core/types"
	"github.com/charmbracelet/bubbles/list"
	"github.com/dustin/go-humanize"
)

var _ list.DefaultItem = Item{}

// Item is one ledger entry shown in the recover picker
type Item struct {
	entry   types.TrashEntry
	missing bool
	now     time.Time
}

// NewItem wraps entry. The trash path is checked once so rendering never
// touches the filesystem.
func NewItem(entry types.TrashEntry, now time.Time) Item {
	_, err := os.Lstat(entry.TrashPath)
	return Item{
		entry:   entry,
		missing: os.IsNotExist(err),
		now:     now,
	}
}

// Title returns the original name, with a trailing slash for directories
func (i Item) Title() string {
	name := i.entry.Name()
	if i.entry.Metadata.IsDir {
		name += "/"
	}
	return name
}

// Description returns when the entry was recycled and where it came from
func (i Item) Description() string {
	if i.missing {
		return "(missing from the trash directory)"
	}
	return fmt.Sprintf("%s %s %s",
		humanize.RelTime(i.entry.DeletedAt(), i.now, "ago", "from now"),
		bullet,
		filepath.Dir(i.entry.OriginalPath),
	)
}

// FilterValue matches against the original name
func (i Item) FilterValue() string {
	return i.Title()
}

// Entry returns the wrapped ledger entry
func (i Item) Entry() types.TrashEntry {
	return i.entry
}

// Missing reports whether the trash path was gone when the picker opened
func (i Item) Missing() bool {
	return i.missing
}
