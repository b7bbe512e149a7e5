package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pavelsavara/xharness/internal/tool"
)

// ADBPath resolves the adb binary: [tools] adb, then platform-tools under
// $ANDROID_HOME or $ANDROID_SDK_ROOT, then plain "adb" for a PATH lookup.
func (c *Config) ADBPath() (string, error) {
	if c.Tools.ADB != "" {
		return expand(c.Tools.ADB)
	}
	for _, env := range []string{"ANDROID_HOME", "ANDROID_SDK_ROOT"} {
		root := strings.TrimSpace(os.Getenv(env))
		if root == "" {
			continue
		}
		root, err := expand(root)
		if err != nil {
			return "", err
		}
		candidate := filepath.Join(root, "platform-tools", "adb")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "adb", nil
}

// MLaunchPath resolves the mlaunch binary: [tools] mlaunch, then "mlaunch".
func (c *Config) MLaunchPath() (string, error) {
	if c.Tools.MLaunch != "" {
		return expand(c.Tools.MLaunch)
	}
	return "mlaunch", nil
}

// ToolTimeouts returns the per-invocation timeouts for a tool.
func (c *Config) ToolTimeouts() tool.Timeouts {
	return tool.Timeouts{
		Command: c.Timeouts.Command.Duration,
		List:    c.Timeouts.List.Duration,
	}
}

// AndroidTolerance returns the tolerated adb uninstall failures.
func (c *Config) AndroidTolerance() tool.Tolerance {
	return c.Android.tolerance()
}

// AppleTolerance returns the tolerated mlaunch uninstall failures.
func (c *Config) AppleTolerance() tool.Tolerance {
	return c.Apple.tolerance()
}

func (fc FamilyConfig) tolerance() tool.Tolerance {
	return tool.Tolerance{
		Output:    fc.UninstallToleratedOutput,
		ExitCodes: fc.UninstallToleratedExitCodes,
	}
}
