package doctor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelsavara/xharness/internal/config"
	"github.com/pavelsavara/xharness/internal/history"
	"github.com/pavelsavara/xharness/internal/messages"
	"github.com/pavelsavara/xharness/internal/testutil"
)

func TestCheckConfigMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	r, cfg := CheckConfig(path)
	assert.Equal(t, StatusOK, r.Status)
	assert.Contains(t, r.Message, "using defaults")
	require.NotNil(t, cfg)
}

func TestCheckConfigLoaded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[timeouts]\ncommand = \"2m\"\n"), 0o644))
	r, cfg := CheckConfig(path)
	assert.Equal(t, StatusOK, r.Status)
	assert.Contains(t, r.Message, "loaded from")
	require.NotNil(t, cfg)
	assert.Equal(t, "2m0s", cfg.Timeouts.Command.String())
}

func TestCheckConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[timeouts]\ncomand = \"2m\"\n"), 0o644))
	r, cfg := CheckConfig(path)
	assert.Equal(t, StatusFail, r.Status)
	assert.Equal(t, messages.DoctorConfigLoadRecommend, r.Recommendation)
	assert.Nil(t, cfg)
}

type versioner struct {
	version string
	err     error
}

func (v versioner) Version(context.Context) (string, error) { return v.version, v.err }

func TestCheckTool(t *testing.T) {
	ok := CheckTool(context.Background(), "adb", versioner{version: "Android Debug Bridge version 1.0.41"}, StatusFail, messages.DoctorADBRecommend)
	assert.Equal(t, StatusOK, ok.Status)
	assert.Contains(t, ok.Message, "1.0.41")
	assert.Empty(t, ok.Recommendation)

	missing := CheckTool(context.Background(), "mlaunch", versioner{err: errors.New("not found")}, StatusWarn, messages.DoctorMLaunchRecommend)
	assert.Equal(t, StatusWarn, missing.Status)
	assert.Contains(t, missing.Message, "not found")
	assert.Equal(t, messages.DoctorMLaunchRecommend, missing.Recommendation)
}

func TestCheckHistory(t *testing.T) {
	cfg := config.Default()
	path := filepath.Join(t.TempDir(), "state", "history.db")
	r := CheckHistory(context.Background(), cfg, path)
	assert.Equal(t, StatusOK, r.Status)
	assert.FileExists(t, path)
}

func TestCheckHistoryDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.History.Enabled = testutil.BoolPtr(false)
	r := CheckHistory(context.Background(), cfg, filepath.Join(t.TempDir(), "history.db"))
	assert.Equal(t, StatusOK, r.Status)
	assert.Equal(t, messages.DoctorHistoryDisabled, r.Message)
}

func TestCheckHistoryOpenFailure(t *testing.T) {
	orig := openHistoryFunc
	t.Cleanup(func() { openHistoryFunc = orig })
	openHistoryFunc = func(context.Context, string) (*history.Store, error) {
		return nil, errors.New("read-only file system")
	}

	r := CheckHistory(context.Background(), config.Default(), "/nope/history.db")
	assert.Equal(t, StatusWarn, r.Status)
	assert.Contains(t, r.Message, "read-only file system")
	assert.Equal(t, messages.DoctorHistoryRecommend, r.Recommendation)
}
