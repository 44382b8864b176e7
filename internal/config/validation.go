package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/babarot/rim/internal/utils/duration"
	"github.com/go-playground/validator/v10"
)

var sizePattern = regexp.MustCompile(`^\d+(B|KB|MB|GB|TB|PB)$`)

// validateSize validates the size format (e.g., "10MB", "1GB")
func validateSize(fl validator.FieldLevel) bool {
	return sizePattern.MatchString(strings.ToUpper(fl.Field().String()))
}

// validateDuration validates durations such as "7d", "12h" or "2weeks"
func validateDuration(fl validator.FieldLevel) bool {
	_, err := duration.Parse(fl.Field().String())
	return err == nil
}

// validateBaseName accepts a plain file name without any directory part
func validateBaseName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return name != "" && name != "." && name != ".." && filepath.Base(name) == name
}

// expandPath expands environment variables and "~" in paths
func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	path = os.ExpandEnv(path)

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return abs, nil
}

// Deprecation contains metadata about field deprecation
type Deprecation struct {
	DeprecatedAt time.Time
	RemovalDate  time.Time
	Alternative  string
	StrictMode   bool
}

var deprecatedFields = map[string]Deprecation{
	"trashdir": {
		DeprecatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Alternative:  "core.trash_dir",
	},
	"database_name": {
		DeprecatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Alternative:  "core.database_name",
	},
	"ttl": {
		DeprecatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Alternative:  "core.time_to_live",
	},
}

// validateDeprecated warns about top-level keys of the first config format.
// Fields in strict mode fail validation.
func validateDeprecated(fl validator.FieldLevel) bool {
	if fl.Field().IsZero() {
		return true
	}

	name := fl.FieldName()
	info, exists := deprecatedFields[name]
	if !exists {
		printDeprecation(name, nil, false)
		return true
	}

	if info.StrictMode {
		printDeprecation(name, &info, true)
		return false
	}

	printDeprecation(name, &info, false)
	return true
}

// validateDirPath is a validation function for directory paths that works on any OS.
// The standard "dirpath" validator of go-playground/validator rejects some
// valid paths, such as Windows paths ending with a separator.
//
// Empty strings are considered invalid.
func validateDirPath(fl validator.FieldLevel) bool {
	path := strings.TrimSpace(fl.Field().String())
	if path == "" {
		return false
	}

	cleanPath := filepath.Clean(path)

	// If path exists, verify that it is a directory
	fi, err := os.Stat(cleanPath)
	if err == nil {
		return fi.IsDir()
	}
	if os.IsNotExist(err) {
		// Path doesn't exist but format is valid
		return true
	}
	if _, ok := err.(*os.PathError); ok {
		// Path error indicates possible OS constraint violation
		return false
	}
	return true
}
