package log

import "github.com/charmbracelet/lipgloss"

var (
	debugStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5F87FF"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))

	fatalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Background(lipgloss.Color("#000000")).
			Bold(true)

	importantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Background(lipgloss.Color("#3A3A3A")).
			Bold(true)

	levelStyles = []struct {
		level    Level
		maxWidth int
		style    lipgloss.Style
	}{
		{level: DebugLevel, maxWidth: 5, style: debugStyle},
		{level: InfoLevel, maxWidth: 5, style: infoStyle},
		{level: WarnLevel, maxWidth: 5, style: warnStyle},
		{level: ErrorLevel, maxWidth: 5, style: errorStyle},
		{level: FatalLevel, maxWidth: 5, style: fatalStyle},
		{level: ImportantLevel, maxWidth: 9, style: importantStyle},
	}
)
