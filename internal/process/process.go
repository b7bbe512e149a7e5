// Package process runs external device-control tools with a timeout and
// cancellation, capturing their combined output.
package process

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pavelsavara/xharness/internal/messages"
)

var (
	// ErrTimeout reports a process terminated because it outlived its timeout.
	ErrTimeout = errors.New(messages.ProcessTimedOut)
	// ErrCancelled reports a process terminated because its context was cancelled.
	ErrCancelled = errors.New(messages.ProcessCancelled)
	// ErrLaunch reports a process that could not be started at all.
	ErrLaunch = errors.New(messages.ProcessLaunchFailed)
)

// Request describes one tool invocation. Args are passed as argv; no shell is
// involved.
type Request struct {
	Binary string
	Args   []string
	// Dir is the working directory; empty inherits the caller's.
	Dir string
	// Env replaces the environment when non-empty.
	Env []string
	// Timeout bounds the process lifetime; zero means only ctx bounds it.
	Timeout time.Duration
}

// String renders the request as a command line for logs.
func (r Request) String() string {
	parts := make([]string, 0, len(r.Args)+1)
	parts = append(parts, r.Binary)
	for _, a := range r.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Result is what a finished, timed out, or cancelled process produced.
// ExitCode is -1 when the process did not exit on its own.
type Result struct {
	ExitCode int
	// Output holds stdout and stderr interleaved in line order.
	Output   string
	Duration time.Duration
}

// Allowed decides whether a non-zero result is an acceptable outcome for the
// caller, such as "package not installed" during an uninstall.
type Allowed func(Result) bool

// Succeeded reports whether the process exited with code zero.
func (r Result) Succeeded() bool {
	return r.ExitCode == 0
}

// SucceededWith reports success, treating results accepted by allowed as
// success too.
func (r Result) SucceededWith(allowed Allowed) bool {
	if r.Succeeded() {
		return true
	}
	return allowed != nil && allowed(r)
}

// Lines splits Output into non-empty trimmed lines.
func (r Result) Lines() []string {
	var lines []string
	for _, line := range strings.Split(r.Output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Invoker starts exactly one process per call and waits for it.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (Result, error)
}

// InvokerFunc adapts a function to Invoker.
type InvokerFunc func(ctx context.Context, req Request) (Result, error)

// Invoke calls f.
func (f InvokerFunc) Invoke(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// ContextError maps a context error onto the package taxonomy: a deadline
// becomes ErrTimeout, anything else ErrCancelled.
func ContextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ErrCancelled
}
