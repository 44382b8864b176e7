package log

import (
	"fmt"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

type (
	Logger = charmlog.Logger
	Level  = charmlog.Level
	Styles = charmlog.Styles
)

const (
	DebugLevel     = charmlog.DebugLevel
	InfoLevel      = charmlog.InfoLevel
	WarnLevel      = charmlog.WarnLevel
	ErrorLevel     = charmlog.ErrorLevel
	FatalLevel     = charmlog.FatalLevel
	ImportantLevel = WarnLevel + 1
)

// LogLevelString returns the string representation of the level
func LogLevelString(l Level) string {
	switch l {
	case ImportantLevel:
		return " IMPORTANT "
	default:
		return charmlog.Level(l).String()
	}
}

// ParseLevel converts a config value such as "debug" into a Level
func ParseLevel(s string) (Level, error) {
	l, err := charmlog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}
