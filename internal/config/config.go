// Package config loads the optional xharness config.toml.
package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/pavelsavara/xharness/internal/messages"
	"github.com/pavelsavara/xharness/internal/tool"
)

// Config is the parsed config.toml. Every field has a default, so an absent
// file and an empty file mean the same thing.
type Config struct {
	Tools         ToolsConfig      `toml:"tools"`
	Timeouts      TimeoutsConfig   `toml:"timeouts"`
	Android       FamilyConfig     `toml:"android"`
	Apple         FamilyConfig     `toml:"apple"`
	KnowledgeBase []KnowledgeEntry `toml:"knowledge_base"`
	History       HistoryConfig    `toml:"history"`
	Locks         LocksConfig      `toml:"locks"`
}

// ToolsConfig overrides where the device-control binaries live.
type ToolsConfig struct {
	ADB     string `toml:"adb"`
	MLaunch string `toml:"mlaunch"`
}

// TimeoutsConfig holds the per-step timeouts.
type TimeoutsConfig struct {
	Command  Duration `toml:"command"`
	List     Duration `toml:"list"`
	Boot     Duration `toml:"boot"`
	BootPoll Duration `toml:"boot_poll"`
	Lock     Duration `toml:"lock"`
}

// FamilyConfig holds per-family uninstall tolerance.
type FamilyConfig struct {
	UninstallToleratedOutput    []string `toml:"uninstall_tolerated_output"`
	UninstallToleratedExitCodes []int    `toml:"uninstall_tolerated_exit_codes"`
}

// KnowledgeEntry is an extra failure-classifier rule.
type KnowledgeEntry struct {
	Pattern     string `toml:"pattern"`
	Cause       string `toml:"cause"`
	Remediation string `toml:"remediation"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	Enabled *bool  `toml:"enabled"`
	Path    string `toml:"path"`
}

// LocksConfig controls cross-process device locks.
type LocksConfig struct {
	Enabled *bool  `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Duration is a time.Duration written as a Go duration string ("90s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf(messages.ConfigDurationInvalidFmt, string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Timeouts: TimeoutsConfig{
			Command:  Duration{5 * time.Minute},
			List:     Duration{30 * time.Second},
			Boot:     Duration{5 * time.Minute},
			BootPoll: Duration{time.Second},
			Lock:     Duration{10 * time.Minute},
		},
		Android: FamilyConfig{
			UninstallToleratedOutput: slices.Clone(tool.DefaultAndroidTolerance.Output),
		},
		Apple: FamilyConfig{
			UninstallToleratedOutput: slices.Clone(tool.DefaultAppleTolerance.Output),
		},
	}
}

// HistoryEnabled reports whether runs are recorded; the default is true.
func (c *Config) HistoryEnabled() bool {
	return c.History.Enabled == nil || *c.History.Enabled
}

// LocksEnabled reports whether device locks are taken; the default is true.
func (c *Config) LocksEnabled() bool {
	return c.Locks.Enabled == nil || *c.Locks.Enabled
}
