package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/pavelsavara/xharness/internal/apk"
	"github.com/pavelsavara/xharness/internal/config"
	"github.com/pavelsavara/xharness/internal/devicelock"
	"github.com/pavelsavara/xharness/internal/history"
	"github.com/pavelsavara/xharness/internal/messages"
	"github.com/pavelsavara/xharness/internal/orchestrate"
	"github.com/pavelsavara/xharness/internal/process"
	"github.com/pavelsavara/xharness/internal/tool"
)

var (
	newInvoker         = func() process.Invoker { return process.NewRunner() }
	defaultPaths       = config.DefaultPaths
	openHistory        = history.Open
	inferArchitectures = apk.SupportedArchitectures
)

// env is everything a command needs after flags and config are resolved.
type env struct {
	opts   *rootOptions
	cfg    *config.Config
	paths  config.Paths
	logger *slog.Logger
	stderr io.Writer
}

// resolvePaths applies --config over the default locations.
func resolvePaths(opts *rootOptions) (config.Paths, error) {
	paths, err := defaultPaths()
	if err != nil {
		return config.Paths{}, err
	}
	if opts.configPath != "" {
		path, err := homedir.Expand(opts.configPath)
		if err != nil {
			return config.Paths{}, err
		}
		paths.ConfigPath = path
	}
	return paths, nil
}

func loadEnv(cmd *cobra.Command, opts *rootOptions) (*env, error) {
	paths, err := resolvePaths(opts)
	if err != nil {
		return nil, err
	}
	cfg, _, err := config.Load(paths.ConfigPath)
	if err != nil {
		return nil, err
	}
	paths, err = paths.WithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &env{
		opts:   opts,
		cfg:    cfg,
		paths:  paths,
		logger: newLogger(cmd.ErrOrStderr(), opts.verbose),
		stderr: cmd.ErrOrStderr(),
	}, nil
}

// newLogger writes progress to w; --verbose adds per-process debug events.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// timeouts returns the configured tool timeouts, with a positive command
// override from --timeout.
func (e *env) timeouts(command time.Duration) tool.Timeouts {
	t := e.cfg.ToolTimeouts()
	if command > 0 {
		t.Command = command
	}
	return t
}

func (e *env) android(command time.Duration) (*tool.Android, error) {
	binary, err := e.cfg.ADBPath()
	if err != nil {
		return nil, err
	}
	return tool.NewAndroid(tool.Config{
		Binary:    binary,
		Invoker:   newInvoker(),
		Timeouts:  e.timeouts(command),
		Tolerance: e.cfg.AndroidTolerance(),
		Logger:    e.logger,
	}), nil
}

func (e *env) apple(command time.Duration) (*tool.Apple, error) {
	binary, err := e.cfg.MLaunchPath()
	if err != nil {
		return nil, err
	}
	return tool.NewApple(tool.Config{
		Binary:    binary,
		Invoker:   newInvoker(),
		Timeouts:  e.timeouts(command),
		Tolerance: e.cfg.AppleTolerance(),
		Logger:    e.logger,
	}), nil
}

func (e *env) orchestrator(t tool.Tool) (*orchestrate.Orchestrator, error) {
	kb, err := e.cfg.Knowledge()
	if err != nil {
		return nil, err
	}
	opts := orchestrate.Options{
		Knowledge:          kb,
		Logger:             e.logger,
		InferArchitectures: inferArchitectures,
		BootInterval:       e.cfg.Timeouts.BootPoll.Duration,
	}
	if e.cfg.LocksEnabled() {
		opts.Locker = &devicelock.Locker{Dir: e.paths.LockDir, Wait: e.cfg.Timeouts.Lock.Duration}
	}
	return orchestrate.New(t, opts), nil
}

// finish prints and records the outcome and turns a failure into its exit code.
func (e *env) finish(cmd *cobra.Command, family tool.Family, pkg string, out orchestrate.Outcome) error {
	printOutcome(cmd.OutOrStdout(), pkg, out)
	e.record(cmd.Context(), family, pkg, out)
	if out.Succeeded() {
		return nil
	}
	return &SilentExitError{Code: exitCodeForKind(out.Kind)}
}

// record stores the outcome in the history database. Failures only warn; the
// run itself already finished.
func (e *env) record(ctx context.Context, family tool.Family, pkg string, out orchestrate.Outcome) {
	if e.opts.noHistory || !e.cfg.HistoryEnabled() {
		return
	}
	ctx = context.WithoutCancel(ctx)
	store, err := openHistory(ctx, e.paths.HistoryPath)
	if err != nil {
		_, _ = fmt.Fprintf(e.stderr, messages.HistoryRecordWarn, err)
		return
	}
	defer func() {
		_ = store.Close()
	}()
	diagnosis := ""
	if out.Diagnosis.Known() {
		diagnosis = out.Diagnosis.Cause
	}
	_, err = store.Record(ctx, history.Record{
		ID:        out.RunID,
		Family:    string(family),
		Operation: string(out.Operation),
		Package:   pkg,
		DeviceID:  out.Device.ID,
		Outcome:   out.Kind.String(),
		Diagnosis: diagnosis,
		StartedAt: out.StartedAt,
		Duration:  out.Duration,
	})
	if err != nil {
		_, _ = fmt.Fprintf(e.stderr, messages.HistoryRecordWarn, err)
	}
}
