package keys

import "github.com/charmbracelet/bubbles/key"

// ListKeyMap holds the bindings of the recover picker
type ListKeyMap struct {
	Quit     key.Binding
	Enter    key.Binding
	Select   key.Binding
	DeSelect key.Binding
	Esc      key.Binding
	Help     key.Binding
}

func binding(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
}

// ShortHelp is shown under the list while the full help is hidden
func (k ListKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Select, k.Help}
}

func (k ListKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.ShortHelp(),
		{k.DeSelect, k.Esc, k.Quit},
	}
}

var ListKeys = &ListKeyMap{
	Quit:     binding("quit", "ctrl+c", "q"),
	Select:   binding("select", "tab"),
	DeSelect: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("s+tab", "unselect")),
	Enter:    binding("recover", "enter"),
	Esc:      binding("clear selection", "esc"),
	Help:     binding("more keys", "?"),
}
