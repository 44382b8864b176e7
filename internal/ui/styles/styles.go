package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	cursorColor   = lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#AD58B4"}
	selectedColor = lipgloss.AdaptiveColor{Light: "#2E9E68", Dark: "#5FD7A7"}
	dimmedColor   = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	fadedColor    = lipgloss.AdaptiveColor{Light: "#C2B8C2", Dark: "#4D4D4D"}
	warnColor     = lipgloss.ANSIColor(termenv.ANSIBrightRed)
)

// Delegate holds the styles used to render one picker row
type Delegate struct {
	NormalTitle         lipgloss.Style
	NormalDesc          lipgloss.Style
	SelectedTitle       lipgloss.Style
	SelectedDesc        lipgloss.Style
	DimmedTitle         lipgloss.Style
	DimmedDesc          lipgloss.Style
	CursorTitle         lipgloss.Style
	CursorDesc          lipgloss.Style
	SelectedCursorTitle lipgloss.Style
	SelectedCursorDesc  lipgloss.Style
	Missing             lipgloss.Style
	FilterMatch         lipgloss.Style
}

func NewDelegate() Delegate {
	pad := lipgloss.NewStyle().Padding(0, 0, 0, 2)
	cursor := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(cursorColor).
		Padding(0, 0, 0, 1)

	return Delegate{
		NormalTitle:         pad,
		NormalDesc:          pad.Foreground(dimmedColor),
		SelectedTitle:       pad.Foreground(selectedColor),
		SelectedDesc:        pad.Foreground(selectedColor),
		DimmedTitle:         pad.Foreground(dimmedColor),
		DimmedDesc:          pad.Foreground(fadedColor),
		CursorTitle:         cursor.Foreground(cursorColor),
		CursorDesc:          cursor.Foreground(cursorColor),
		SelectedCursorTitle: cursor.Foreground(selectedColor),
		SelectedCursorDesc:  cursor.Foreground(selectedColor),
		Missing:             lipgloss.NewStyle().Foreground(warnColor),
		FilterMatch:         lipgloss.NewStyle().Underline(true),
	}
}

// Help is the margin around the help line under the picker
var Help = lipgloss.NewStyle().Margin(1, 2)

// Accent marks the prompt prefix of the picker's filter input
var Accent = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(termenv.ANSIBrightBlack))
