package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelsavara/xharness/internal/tool"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, found, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, Default(), cfg)
	assert.True(t, cfg.HistoryEnabled())
	assert.True(t, cfg.LocksEnabled())
}

func TestDefaultToleranceMatchesTools(t *testing.T) {
	cfg := Default()
	assert.Equal(t, tool.DefaultAndroidTolerance, cfg.AndroidTolerance())
	assert.Equal(t, tool.DefaultAppleTolerance, cfg.AppleTolerance())

	cfg.Android.UninstallToleratedOutput[0] = "changed"
	assert.NotEqual(t, "changed", tool.DefaultAndroidTolerance.Output[0])
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[tools]
adb = "/opt/android/platform-tools/adb"

[timeouts]
command = "2m"
boot = "10m"

[android]
uninstall_tolerated_output = ["Unknown package"]
uninstall_tolerated_exit_codes = [255]

[[knowledge_base]]
pattern = "INSTALL_FAILED_USER_RESTRICTED"
cause = "install blocked by user restrictions"
remediation = "device"

[history]
enabled = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, found, err := Load(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "/opt/android/platform-tools/adb", cfg.Tools.ADB)
	assert.Equal(t, 2*time.Minute, cfg.Timeouts.Command.Duration)
	assert.Equal(t, 10*time.Minute, cfg.Timeouts.Boot.Duration)
	assert.Equal(t, 30*time.Second, cfg.Timeouts.List.Duration)
	assert.Equal(t, []string{"Unknown package"}, cfg.Android.UninstallToleratedOutput)
	assert.Equal(t, []int{255}, cfg.Android.UninstallToleratedExitCodes)
	assert.Equal(t, Default().Apple, cfg.Apple)
	require.Len(t, cfg.KnowledgeBase, 1)
	assert.False(t, cfg.HistoryEnabled())
	assert.True(t, cfg.LocksEnabled())
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[timeouts]\nboot_timeout = \"5m\"\n"), 0o644))

	_, found, err := Load(path)
	require.Error(t, err)
	assert.True(t, found)
	assert.True(t, errors.Is(err, ErrConfigValidation))
	assert.Contains(t, err.Error(), "unrecognized config keys")
}

func TestLoadRejectsBadSyntax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[timeouts\n"), 0o644))

	_, _, err := Load(path)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrConfigValidation))
	assert.True(t, strings.HasPrefix(err.Error(), "invalid config "))
}

func TestLoadRejectsBadDuration(t *testing.T) {
	_, err := ParseConfig([]byte("[timeouts]\ncommand = \"soon\"\n"), "config.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "soon")
}

func TestLoadUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	_, _, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestDurationMarshalText(t *testing.T) {
	text, err := Duration{90 * time.Second}.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))
}
