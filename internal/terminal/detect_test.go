package terminal

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubTerminal(t *testing.T, v bool) {
	t.Helper()
	orig := isTerminal
	t.Cleanup(func() { isTerminal = orig })
	isTerminal = func(int) bool { return v }
}

func TestIsTerminalRequiresFile(t *testing.T) {
	stubTerminal(t, true)
	assert.False(t, IsTerminal(&bytes.Buffer{}))
	assert.True(t, IsTerminal(os.Stdout))
}

func TestColorEnabled(t *testing.T) {
	stubTerminal(t, true)
	t.Setenv("TERM", "xterm-256color")
	t.Setenv("NO_COLOR", "1")
	require.NoError(t, os.Unsetenv("NO_COLOR"))
	assert.True(t, ColorEnabled(os.Stdout))
	assert.False(t, ColorEnabled(&bytes.Buffer{}))

	t.Setenv("NO_COLOR", "")
	assert.False(t, ColorEnabled(os.Stdout))
}

func TestColorDisabledForDumbTerminal(t *testing.T) {
	stubTerminal(t, true)
	t.Setenv("TERM", "dumb")
	assert.False(t, ColorEnabled(os.Stdout))
}
