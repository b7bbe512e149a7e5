package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/pavelsavara/xharness/internal/messages"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "XHARNESS_CONFIG"

// Paths holds resolved locations of the config file and the state directory.
type Paths struct {
	ConfigPath  string
	StateDir    string
	HistoryPath string
	LockDir     string
}

// DefaultPaths resolves the config path from $XHARNESS_CONFIG or
// ~/.config/xharness/config.toml, and the state directory under
// ~/.local/state/xharness.
func DefaultPaths() (Paths, error) {
	home, err := homedir.Dir()
	if err != nil {
		return Paths{}, fmt.Errorf(messages.ConfigResolveHomeFmt, err)
	}
	configPath := filepath.Join(home, ".config", "xharness", "config.toml")
	if override := strings.TrimSpace(os.Getenv(EnvConfigPath)); override != "" {
		configPath, err = expand(override)
		if err != nil {
			return Paths{}, err
		}
	}
	stateDir := filepath.Join(home, ".local", "state", "xharness")
	return Paths{
		ConfigPath:  configPath,
		StateDir:    stateDir,
		HistoryPath: filepath.Join(stateDir, "history.db"),
		LockDir:     filepath.Join(stateDir, "locks"),
	}, nil
}

// WithConfig returns the paths with configured overrides for the history
// database and lock directory applied.
func (p Paths) WithConfig(c *Config) (Paths, error) {
	if c.History.Path != "" {
		path, err := expand(c.History.Path)
		if err != nil {
			return Paths{}, err
		}
		p.HistoryPath = path
	}
	if c.Locks.Dir != "" {
		dir, err := expand(c.Locks.Dir)
		if err != nil {
			return Paths{}, err
		}
		p.LockDir = dir
	}
	return p, nil
}

// expand resolves a leading ~ against the home directory.
func expand(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf(messages.ConfigExpandPathFmt, path, err)
	}
	return expanded, nil
}
