package main

// NOTE: Tests in this package mutate package-level globals (newInvoker,
// colorEnabled, check*). Do not use t.Parallel(). Each test restores globals
// via t.Cleanup().

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelsavara/xharness/internal/process"
	"github.com/pavelsavara/xharness/internal/testutil/fakeadb"
)

// setupCLI isolates HOME and routes every tool invocation to invoker.
func setupCLI(t *testing.T, invoker process.Invoker) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XHARNESS_CONFIG", "")
	t.Setenv("ANDROID_HOME", "")
	t.Setenv("ANDROID_SDK_ROOT", "")

	origCache := homedir.DisableCache
	origInvoker := newInvoker
	origColor := colorEnabled
	t.Cleanup(func() {
		homedir.DisableCache = origCache
		newInvoker = origInvoker
		colorEnabled = origColor
	})
	homedir.DisableCache = true
	newInvoker = func() process.Invoker { return invoker }
	colorEnabled = func(io.Writer) bool { return false }
	return home
}

func writeConfig(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, ".config", "xharness")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644))
}

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(args ...string) cliResult {
	var stdout, stderr bytes.Buffer
	code := 0
	runMain(append([]string{"xharness"}, args...), &stdout, &stderr, func(c int) { code = c })
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeAPK(t *testing.T, abis ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.apk")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	_, err = w.Create("AndroidManifest.xml")
	require.NoError(t, err)
	for _, abi := range abis {
		_, err := w.Create("lib/" + abi + "/libmonosgen-2.0.so")
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

func TestMainVersion(t *testing.T) {
	setupCLI(t, fakeadb.New())
	res := runCLI("--version")
	assert.Zero(t, res.code)
	assert.Contains(t, res.stdout, Version)
}

func TestVersionString(t *testing.T) {
	origCommit, origDate := Commit, BuildDate
	t.Cleanup(func() { Commit, BuildDate = origCommit, origDate })

	Commit, BuildDate = "unknown", "unknown"
	assert.Equal(t, Version, versionString())

	Commit, BuildDate = "abc123", "2026-10-01"
	assert.Equal(t, Version+" (commit abc123, built 2026-10-01)", versionString())
}

func TestRunMainUsageErrors(t *testing.T) {
	setupCLI(t, fakeadb.New())
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown command", []string{"launch"}, "unknown command"},
		{"missing required flag", []string{"android", "install", "-p", "app"}, "app"},
		{"bad duration", []string{"android", "uninstall", "-p", "app", "--timeout", "soon"}, "soon"},
		{"unknown apple target", []string{"apple", "uninstall", "--bundle-id", "net.dot.App", "--target", "android"}, "unknown target"},
		{"bad history limit", []string{"history", "--limit", "0"}, "--limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(tt.args...)
			assert.Equal(t, exitInvalidArguments, res.code)
			assert.Contains(t, res.stderr, tt.want)
		})
	}
}

func TestRunMainInvalidConfig(t *testing.T) {
	home := setupCLI(t, fakeadb.New())
	writeConfig(t, home, "[timeouts]\ncommand = \"-1s\"\n")
	res := runCLI("android", "uninstall", "-p", "app")
	assert.Equal(t, exitInvalidArguments, res.code)
	assert.Contains(t, res.stderr, "timeouts.command")
}

func TestRunMainCancelledContext(t *testing.T) {
	adb := fakeadb.New(&fakeadb.Device{Serial: "emulator-5554", ABI: "x86"})
	setupCLI(t, adb)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	err := execute(ctx, []string{"xharness", "--no-history", "android", "install", "-p", "app", "-a", writeAPK(t), "--device-arch", "x86"}, &stdout, &stderr)

	var silent *SilentExitError
	require.ErrorAs(t, err, &silent)
	assert.Equal(t, exitCancelled, silent.Code)
	assert.Empty(t, adb.Calls())
	assert.Contains(t, stdout.String(), "CANCELLED")
}

func TestRunMainUsesExecuteFunc(t *testing.T) {
	orig := executeFunc
	t.Cleanup(func() { executeFunc = orig })
	var gotArgs []string
	executeFunc = func(ctx context.Context, args []string, stdout, stderr io.Writer) error {
		gotArgs = args
		require.NotNil(t, ctx)
		return general(io.ErrUnexpectedEOF)
	}

	res := runCLI("doctor")
	assert.Equal(t, []string{"xharness", "doctor"}, gotArgs)
	assert.Equal(t, exitGeneralFailure, res.code)
	assert.Contains(t, res.stderr, "unexpected EOF")
}

func TestExitCodeForKindCoversEveryKind(t *testing.T) {
	seen := map[int]bool{}
	for kind, code := range kindExitCodes {
		assert.Equal(t, code, exitCodeForKind(kind))
		assert.False(t, seen[code], "duplicate exit code %d", code)
		seen[code] = true
	}
	assert.Len(t, kindExitCodes, 8)
	assert.Equal(t, exitGeneralFailure, exitCodeForKind(99))
}

// countingInvoker answers every invocation with output and records argv.
type countingInvoker struct {
	mu     sync.Mutex
	calls  [][]string
	output string
}

func (c *countingInvoker) Invoke(_ context.Context, req process.Request) (process.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, req.Args)
	return process.Result{Output: c.output}, nil
}

func (c *countingInvoker) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func TestDoctorPasses(t *testing.T) {
	inv := &countingInvoker{output: "tool version 1.0\n"}
	setupCLI(t, inv)
	res := runCLI("doctor")
	assert.Zero(t, res.code, res.stdout)
	assert.Contains(t, res.stdout, "using defaults")
	assert.Contains(t, res.stdout, "adb found: tool version 1.0")
	assert.Contains(t, res.stdout, "History database ready")
	assert.Contains(t, res.stdout, "All required checks passed.")
	assert.Equal(t, 2, inv.count())
}

func TestDoctorFailsOnBrokenConfig(t *testing.T) {
	home := setupCLI(t, &countingInvoker{output: "1.0\n"})
	writeConfig(t, home, "not toml at all = = =")
	res := runCLI("doctor")
	assert.Equal(t, exitGeneralFailure, res.code)
	assert.Contains(t, res.stdout, "[FAIL]")
	assert.Contains(t, res.stdout, "Some checks failed.")
}

func TestPrintRecommendationIndentsLines(t *testing.T) {
	var out bytes.Buffer
	printRecommendation(&out, "first\n\nthird")
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "       -> first"))
	assert.Equal(t, "", strings.TrimSpace(lines[1]))
	assert.True(t, strings.HasPrefix(lines[2], "          third"))
}
