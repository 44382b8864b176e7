package ui

import (
	"log/slog"

	"github.com/babarot/rim/internal/core/types"
	"github.com/babarot/rim/internal/ui/keys"
	"github.com/babarot/rim/internal/ui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/paginator"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
)

// Model is the bubbletea model of the recover picker
type Model struct {
	keys      *keys.ListKeyMap
	list      list.Model
	help      help.Model
	items     []Item
	selection *selection

	choices  []types.TrashEntry
	quitting bool
}

func newModel(items []Item) Model {
	sel := &selection{}
	listItems := lo.Map(items, func(i Item, _ int) list.Item { return i })

	l := list.New(listItems, newListDelegate(sel), defaultWidth, defaultHeight)
	l.Paginator.Type = paginator.Dots
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.FilterInput.PromptStyle = styles.Accent
	l.DisableQuitKeybindings()

	return Model{
		keys:      keys.ListKeys,
		list:      l,
		help:      help.New(),
		items:     items,
		selection: sel,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		slog.Debug("key pressed", "key", msg.String())

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Select):
			if item, ok := m.list.SelectedItem().(Item); ok {
				m.selection.toggle(item.entry.ID)
				m.list.CursorDown()
			}
			return m, nil

		case key.Matches(msg, m.keys.DeSelect):
			if item, ok := m.list.SelectedItem().(Item); ok {
				m.selection.remove(item.entry.ID)
				m.list.CursorUp()
			}
			return m, nil

		case key.Matches(msg, m.keys.Esc):
			m.selection.reset()
			// fall through to the list so an applied filter is cleared too

		case key.Matches(msg, m.keys.Enter):
			m.choices = m.selection.entries(m.items)
			if len(m.choices) == 0 {
				if item, ok := m.list.SelectedItem().(Item); ok {
					m.choices = []types.TrashEntry{item.entry}
				}
			}
			slog.Debug("picker confirmed", "ids", lo.Map(m.choices, func(e types.TrashEntry, _ int) int64 { return e.ID }))
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting || len(m.choices) > 0 {
		return ""
	}
	return m.list.View() + "\n" + styles.Help.Render(m.help.View(m.keys))
}

// Choices returns the entries picked when the program exited
func (m Model) Choices() []types.TrashEntry {
	return m.choices
}
