package env

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/samber/lo"
)

const appName = "rim"

var (
	// RIM_CONFIG_PATH is the config file forced through the environment
	RIM_CONFIG_PATH string

	// RIM_LOG_PATH is where the debug log is written
	RIM_LOG_PATH string
)

func init() {
	// https://github.com/charmbracelet/log/issues/35
	os.Setenv("CLICOLOR_FORCE", "1")

	RIM_CONFIG_PATH = os.Getenv("RIM_CONFIG_PATH")

	// Follow https://specifications.freedesktop.org/basedir-spec/latest/
	RIM_LOG_PATH = os.Getenv("RIM_LOG_PATH")
	if RIM_LOG_PATH == "" {
		RIM_LOG_PATH = filepath.Join(xdg.DataHome, appName, "debug.log")
	}
}

// ConfigCandidates lists the config file locations in lookup order.
// $RIM_CONFIG_PATH, when set, is the only candidate.
func ConfigCandidates() []string {
	if RIM_CONFIG_PATH != "" {
		return []string{RIM_CONFIG_PATH}
	}

	var candidates []string
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		candidates = append(candidates, filepath.Join(dir, appName, "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".config", appName, "config.yaml"),
			filepath.Join(home, "."+appName, "config.yaml"),
			filepath.Join(home, "."+appName+".yaml"),
		)
	}
	return lo.Uniq(candidates)
}
