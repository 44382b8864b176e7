package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/babarot/rim/internal/ui/keys"
	"github.com/babarot/rim/internal/ui/styles"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// listDelegate renders picker rows. Selection state is read from the
// shared selection so the delegate stays a value type.
type listDelegate struct {
	styles    styles.Delegate
	selection *selection
}

func newListDelegate(sel *selection) listDelegate {
	return listDelegate{
		styles:    styles.NewDelegate(),
		selection: sel,
	}
}

func (d listDelegate) Height() int  { return 2 }
func (d listDelegate) Spacing() int { return 1 }

func (d listDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d listDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(Item)
	if !ok || m.Width() <= 0 {
		return
	}

	s := d.styles
	textWidth := m.Width() - s.NormalTitle.GetPaddingLeft() - s.NormalTitle.GetPaddingRight()
	title := ansi.Truncate(item.Title(), textWidth, ellipsis)
	desc := ansi.Truncate(strings.SplitN(item.Description(), "\n", 2)[0], textWidth, ellipsis)

	var (
		selected    = d.selection.contains(item.entry.ID)
		onCursor    = index == m.Index()
		emptyFilter = m.FilterState() == list.Filtering && m.FilterValue() == ""
		isFiltered  = m.FilterState() == list.Filtering || m.FilterState() == list.FilterApplied
	)

	switch {
	case emptyFilter:
		title = s.DimmedTitle.Render(title)
		desc = s.DimmedDesc.Render(desc)

	case onCursor && selected:
		title = s.SelectedCursorTitle.Render(title)
		desc = s.SelectedCursorDesc.Render(desc)

	case onCursor:
		title = s.CursorTitle.Render(title)
		desc = s.CursorDesc.Render(desc)

	case selected:
		title = s.SelectedTitle.Render(title)
		desc = s.SelectedDesc.Render(desc)

	default:
		if isFiltered {
			unmatched := s.NormalTitle.Inline(true)
			matched := unmatched.Inherit(s.FilterMatch)
			title = lipgloss.StyleRunes(title, m.MatchesForItem(index), matched, unmatched)
		}
		title = s.NormalTitle.Render(title)
		if item.Missing() {
			desc = s.NormalDesc.Render(s.Missing.Render(desc))
		} else {
			desc = s.NormalDesc.Render(desc)
		}
	}

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

func (d listDelegate) ShortHelp() []key.Binding {
	return keys.ListKeys.ShortHelp()
}

func (d listDelegate) FullHelp() [][]key.Binding {
	return keys.ListKeys.FullHelp()
}
