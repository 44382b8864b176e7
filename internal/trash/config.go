package trash

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/babarot/rim/internal/config"
)

// Config holds what the Manager needs to know about the trash directory
type Config struct {
	// TrashDir is the absolute path of the directory recycled files are moved into
	TrashDir string

	// TTL is how long an entry stays recoverable before it may be purged
	TTL time.Duration

	// History contains the filters applied when listing entries
	History config.History
}

// NewConfig builds a trash Config from the user configuration
func NewConfig(cfg config.Config) (Config, error) {
	ttl, err := cfg.Core.TTL()
	if err != nil {
		return Config{}, err
	}
	return Config{
		TrashDir: cfg.Core.TrashDir,
		TTL:      ttl,
		History:  cfg.History,
	}, nil
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	if c.TrashDir == "" {
		return fmt.Errorf("trash directory is not set")
	}
	if !filepath.IsAbs(c.TrashDir) {
		return fmt.Errorf("trash directory must be an absolute path: %s", c.TrashDir)
	}
	if c.TTL < 0 {
		return fmt.Errorf("time to live must not be negative: %s", c.TTL)
	}
	return nil
}
