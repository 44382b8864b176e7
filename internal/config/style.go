package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

// deprecationOutput receives the notices printed for legacy config keys
var deprecationOutput io.Writer = os.Stderr

var (
	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	alterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F080")) // yellow

	containerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#CCCCCC"))
)

// renderDeprecation builds the boxed notice for a legacy key. A retired key
// is rendered as an error, anything else as a warning.
func renderDeprecation(fieldName string, info *Deprecation, retired bool, now time.Time) string {
	header := warningStyle.Render("Warning: ") + fmt.Sprintf("Field '%s' is deprecated", fieldName)
	if retired {
		header = errorStyle.Render("Error: ") + fmt.Sprintf("Field '%s' is already retired", fieldName)
	}
	if info == nil {
		return containerStyle.Render(header)
	}

	var lines []string
	if info.Alternative != "" {
		lines = append(lines, fmt.Sprintf("Please use '%s' instead", alterStyle.Render(info.Alternative)))
	}
	if !info.DeprecatedAt.IsZero() {
		lines = append(lines, infoStyle.Render("Deprecated since: "+info.DeprecatedAt.Format(time.DateOnly)))
	}
	if !info.RemovalDate.IsZero() {
		lines = append(lines, infoStyle.Render(lo.Ternary(
			now.After(info.RemovalDate),
			"Removed at: ",
			"Planned removal date: ",
		)+info.RemovalDate.Format(time.DateOnly)))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, lo.Compact(lines)...)
	if body == "" {
		return containerStyle.Render(header)
	}
	return containerStyle.Render(header + "\n" + body)
}

func printDeprecation(fieldName string, info *Deprecation, retired bool) {
	fmt.Fprintln(deprecationOutput, renderDeprecation(fieldName, info, retired, time.Now()))
}
