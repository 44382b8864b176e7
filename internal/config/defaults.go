package config

import (
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultDatabaseName = "rim.db"
	DefaultTimeToLive   = "7d"
)

// DefaultTrashDir is used when core.trash_dir is not set
func DefaultTrashDir() string {
	return filepath.Join(os.TempDir(), "rim")
}

// NewDefaultConfig creates a new Config with default values
func NewDefaultConfig() Config {
	return Config{
		Core: Core{
			TrashDir:     DefaultTrashDir(),
			DatabaseName: DefaultDatabaseName,
			TimeToLive:   DefaultTimeToLive,
			Verbose:      false,
			Restore: RestoreConfig{
				Verbose: true,
				Confirm: true,
			},
		},
		History: History{
			Include: IncludeConfig{
				Period: 0,
			},
			Exclude: ExcludeConfig{
				Files: []string{
					// Finder metadata on macOS
					".DS_Store",
				},
				Patterns: []string{},
				Globs:    []string{},
				Size: SizeConfig{
					Min: "",
					Max: "",
				},
			},
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "debug",
			Rotation: RotationConfig{
				MaxSize:  "10MB",
				MaxFiles: 3,
			},
		},
	}
}

// setDefaults fills the keys that were left empty in the config file
func (c *Config) setDefaults() {
	def := NewDefaultConfig()
	if c.Core.TrashDir == "" {
		c.Core.TrashDir = def.Core.TrashDir
	}
	if c.Core.DatabaseName == "" {
		c.Core.DatabaseName = def.Core.DatabaseName
	}
	if c.Core.TimeToLive == "" {
		c.Core.TimeToLive = def.Core.TimeToLive
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Rotation.MaxSize == "" {
		c.Logging.Rotation.MaxSize = def.Logging.Rotation.MaxSize
	}
	if c.Logging.Rotation.MaxFiles == 0 {
		c.Logging.Rotation.MaxFiles = def.Logging.Rotation.MaxFiles
	}
}

// applyLegacy moves the values of the first config format into their
// current keys unless those are set already
func (c *Config) applyLegacy() {
	if c.LegacyTrashDir != "" && c.Core.TrashDir == "" {
		c.Core.TrashDir = c.LegacyTrashDir
	}
	if c.LegacyDatabaseName != "" && c.Core.DatabaseName == "" {
		c.Core.DatabaseName = c.LegacyDatabaseName
	}
	if c.LegacyTTL > 0 && c.Core.TimeToLive == "" {
		// the first format stored seconds
		c.Core.TimeToLive = strconv.FormatInt(c.LegacyTTL, 10) + "s"
	}
}
