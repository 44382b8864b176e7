package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/babarot/rim/internal/env"
	"github.com/babarot/rim/internal/utils/duration"
	"github.com/go-playground/validator/v10"
	"github.com/muesli/reflow/indent"
	"gopkg.in/yaml.v2"
)

var validate *validator.Validate

type Config struct {
	Core    Core          `yaml:"core"`
	History History       `yaml:"history"`
	Logging LoggingConfig `yaml:"logging"`

	// Top-level keys of the first config format. They are still read but
	// only honored when the matching core key is unset.
	LegacyTrashDir     string `yaml:"trashdir,omitempty" validate:"deprecated"`
	LegacyDatabaseName string `yaml:"database_name,omitempty" validate:"deprecated"`
	LegacyTTL          int64  `yaml:"ttl,omitempty" validate:"deprecated"`
}

type Core struct {
	TrashDir     string        `yaml:"trash_dir" validate:"dirpath"`
	DatabaseName string        `yaml:"database_name" validate:"required,basename"`
	TimeToLive   string        `yaml:"time_to_live" validate:"validDuration"`
	Verbose      bool          `yaml:"verbose"`
	Restore      RestoreConfig `yaml:"restore"`
}

type RestoreConfig struct {
	Verbose bool `yaml:"verbose"`
	Confirm bool `yaml:"confirm"`
}

type History struct {
	Include IncludeConfig `yaml:"include"`
	Exclude ExcludeConfig `yaml:"exclude"`
}

type IncludeConfig struct {
	Period int `yaml:"within_days" validate:"gte=0"`
}

type ExcludeConfig struct {
	Files    []string   `yaml:"files"`
	Patterns []string   `yaml:"patterns"`
	Globs    []string   `yaml:"globs"`
	Size     SizeConfig `yaml:"size"`
}

type SizeConfig struct {
	Min string `yaml:"min" validate:"omitempty,validSize"`
	Max string `yaml:"max" validate:"omitempty,validSize"`
}

type LoggingConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Level    string         `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Rotation RotationConfig `yaml:"rotation"`
}

type RotationConfig struct {
	MaxSize  string `yaml:"max_size" validate:"omitempty,validSize"`
	MaxFiles int    `yaml:"max_files" validate:"gte=0"`
}

// TTL returns the parsed time to live
func (c Core) TTL() (time.Duration, error) {
	d, err := duration.Parse(c.TimeToLive)
	if err != nil {
		return 0, fmt.Errorf("core.time_to_live: %w", err)
	}
	return d, nil
}

// DatabasePath returns the location of the ledger database
func (c Core) DatabasePath() string {
	return filepath.Join(c.TrashDir, c.DatabaseName)
}

type configError struct {
	configPath string
	parser     parser
	err        error
}

type parser struct {
	candidates []string
}

func (p parser) getDefaultConfigContents() string {
	content, _ := yaml.Marshal(NewDefaultConfig())
	return string(content)
}

func (e configError) Error() string {
	recommended := "(none)"
	if len(e.parser.candidates) > 0 {
		recommended = e.parser.candidates[0]
	}
	return heredoc.Docf(`
		Couldn't find the "%s" config file.
		Please try again after creating it or specifying a valid config path.
		The recommended config path is %s (default).
		Example YAML file contents:
		---
		%s
		---
		Original error:
		%s
		`,
		e.configPath,
		recommended,
		e.parser.getDefaultConfigContents(),
		indent.String(e.err.Error(), 2),
	)
}

func (p parser) createConfigFile(path string) error {
	if err := p.ensureDirExists(filepath.Dir(path)); err != nil {
		return err
	}

	slog.Warn("creating config file as it does not exist", "config-file", path)
	newConfigFile, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer newConfigFile.Close()

	_, err = newConfigFile.WriteString(p.getDefaultConfigContents())
	return err
}

func (p parser) ensureDirExists(dirPath string) error {
	if _, err := os.Stat(dirPath); errors.Is(err, fs.ErrNotExist) {
		slog.Warn("creating directory as it does not exist", "dir", dirPath)
		if err := os.MkdirAll(dirPath, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// findConfigFile returns the first existing candidate. When none exists the
// default config is written to the first candidate.
func (p parser) findConfigFile() (string, error) {
	if len(p.candidates) == 0 {
		return "", errors.New("no config file location available")
	}
	for _, path := range p.candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	path := p.candidates[0]
	if err := p.createConfigFile(path); err != nil {
		return "", configError{
			configPath: path,
			parser:     p,
			err:        err,
		}
	}
	return path, nil
}

type parsingError struct {
	path string
	err  error
}

func (e parsingError) Error() string {
	if e.path == "" {
		return fmt.Sprintf("failed to parse config: %v", e.err)
	}
	return fmt.Sprintf("failed to parse config %s: %v", e.path, e.err)
}

func (e parsingError) Unwrap() error {
	return e.err
}

func (p parser) readConfigFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, configError{
			configPath: path,
			parser:     p,
			err:        err,
		}
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	cfg.applyLegacy()
	cfg.setDefaults()

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return cfg, fmt.Errorf("validation error: field %s, %q is invalid", verrs[0].Namespace(), verrs[0].Value())
		}
		return cfg, err
	}

	cfg.Core.TrashDir, err = expandPath(cfg.Core.TrashDir)
	if err != nil {
		return cfg, fmt.Errorf("core.trash_dir: %w", err)
	}
	if _, err := cfg.Core.TTL(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func initParser(candidates []string) parser {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.Split(fld.Tag.Get("yaml"), ",")[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("validSize", validateSize)
	_ = validate.RegisterValidation("validDuration", validateDuration)
	_ = validate.RegisterValidation("dirpath", validateDirPath)
	_ = validate.RegisterValidation("basename", validateBaseName)
	_ = validate.RegisterValidation("deprecated", validateDeprecated)

	return parser{candidates: candidates}
}

// Parse loads the configuration. An explicit path must exist; otherwise
// $RIM_CONFIG_PATH and then the usual locations are searched.
func Parse(path string) (Config, error) {
	return parse(path, env.ConfigCandidates())
}

func parse(path string, candidates []string) (Config, error) {
	parser := initParser(candidates)

	var cfg Config
	var err error
	configPath := path

	if configPath == "" {
		configPath, err = parser.findConfigFile()
		if err != nil {
			return cfg, parsingError{err: err}
		}
	}
	slog.Debug("config file found", "config-file", configPath)

	cfg, err = parser.readConfigFile(configPath)
	if err != nil {
		return cfg, parsingError{path: configPath, err: err}
	}

	return cfg, nil
}
