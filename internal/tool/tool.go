// Package tool drives the per-family device-control binaries (adb, mlaunch):
// it renders operations to argv, runs them, and parses their listings.
package tool

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/pavelsavara/xharness/internal/boot"
	"github.com/pavelsavara/xharness/internal/device"
	"github.com/pavelsavara/xharness/internal/process"
)

// Family names a device ecosystem and the tool that controls it.
type Family string

const (
	FamilyAndroid Family = "android"
	FamilyApple   Family = "apple"
)

// Capabilities describes behavior that differs between families. The
// orchestrator branches on these instead of on the family itself.
type Capabilities struct {
	// Daemon is true when a background server must be started first.
	Daemon bool
	// UninstallsVirtual is false when uninstalling from a simulator is
	// unsupported and should be treated as a no-op.
	UninstallsVirtual bool
	// VerifiesInstall is true when the tool can query whether a package is
	// installed; otherwise the install exit code is authoritative.
	VerifiesInstall bool
	// KillsAfterInstall is true when a freshly installed package may start on
	// its own and should be force-stopped.
	KillsAfterInstall bool
}

// Tool is the device registry and command surface of one family.
type Tool interface {
	Family() Family
	Capabilities() Capabilities
	// StartServer is idempotent; families without a daemon return nil.
	StartServer(ctx context.Context) error
	// ListDevices queries the attached devices. Results are never cached.
	ListDevices(ctx context.Context) ([]device.Device, error)
	// BootProbe returns a readiness probe bound to d.
	BootProbe(d device.Device) boot.Probe
	Install(ctx context.Context, d device.Device, path string) (process.Result, error)
	Uninstall(ctx context.Context, d device.Device, packageID string) (process.Result, error)
	// Verify reports whether packageID is installed on d.
	Verify(ctx context.Context, d device.Device, packageID string) (bool, error)
	Kill(ctx context.Context, d device.Device, packageID string) error
	Version(ctx context.Context) (string, error)
	// UninstallTolerated reports whether a failed uninstall result is an
	// acceptable "already gone" outcome.
	UninstallTolerated(res process.Result) bool
}

// Timeouts bounds individual tool invocations.
type Timeouts struct {
	// Command applies to install, uninstall, verify, and kill.
	Command time.Duration
	// List applies to listings, property queries, and version checks.
	List time.Duration
}

// DefaultTimeouts are used for zero fields of Config.Timeouts.
var DefaultTimeouts = Timeouts{
	Command: 5 * time.Minute,
	List:    30 * time.Second,
}

// Tolerance lists failed uninstall results that still count as success.
type Tolerance struct {
	// Output matches when any substring appears in the combined output.
	Output []string
	// ExitCodes matches specific non-zero exit codes.
	ExitCodes []int
}

// Allows reports whether res is a tolerated failure. Successful results are
// not failures and are never "allowed".
func (t Tolerance) Allows(res process.Result) bool {
	if res.Succeeded() {
		return false
	}
	if slices.Contains(t.ExitCodes, res.ExitCode) {
		return true
	}
	for _, s := range t.Output {
		if s != "" && strings.Contains(res.Output, s) {
			return true
		}
	}
	return false
}

// Config wires a tool to its binary and invoker.
type Config struct {
	Binary    string
	Invoker   process.Invoker
	Timeouts  Timeouts
	Tolerance Tolerance
	Logger    *slog.Logger
}

// runner renders and runs operations for one family.
type runner struct {
	family   Family
	binary   string
	invoker  process.Invoker
	args     func(Operation, Target) ([]string, error)
	timeouts Timeouts
	logger   *slog.Logger
}

func newRunner(family Family, cfg Config, args func(Operation, Target) ([]string, error)) runner {
	timeouts := cfg.Timeouts
	if timeouts.Command <= 0 {
		timeouts.Command = DefaultTimeouts.Command
	}
	if timeouts.List <= 0 {
		timeouts.List = DefaultTimeouts.List
	}
	invoker := cfg.Invoker
	if invoker == nil {
		invoker = process.NewRunner()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return runner{
		family:   family,
		binary:   cfg.Binary,
		invoker:  invoker,
		args:     args,
		timeouts: timeouts,
		logger:   logger,
	}
}

// run builds argv for op and invokes the tool once. A zero timeout leaves the
// process bounded only by ctx.
func (r runner) run(ctx context.Context, op Operation, t Target, timeout time.Duration) (process.Result, error) {
	args, err := r.args(op, t)
	if err != nil {
		return process.Result{ExitCode: -1}, err
	}
	req := process.Request{Binary: r.binary, Args: args, Timeout: timeout}
	res, err := r.invoker.Invoke(ctx, req)
	attrs := []any{
		"family", r.family,
		"op", op.String(),
		"cmd", req.String(),
		"exit", res.ExitCode,
		"duration", res.Duration,
	}
	if err != nil {
		attrs = append(attrs, "err", err)
	}
	r.logger.Debug("process invoked", attrs...)
	return res, err
}

// firstLine returns the first non-empty line of out, for compact error text.
func firstLine(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
