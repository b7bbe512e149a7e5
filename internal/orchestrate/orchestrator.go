// Package orchestrate runs the install and uninstall state machines against
// a device-control tool and reduces every run to one Outcome.
package orchestrate

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/pavelsavara/xharness/internal/device"
	"github.com/pavelsavara/xharness/internal/knowledge"
	"github.com/pavelsavara/xharness/internal/tool"
)

// Locker serializes runs on a device. devicelock.Locker implements it.
type Locker interface {
	Acquire(ctx context.Context, deviceID string) (release func() error, err error)
}

// Options configures an Orchestrator. Zero values are usable.
type Options struct {
	// Knowledge classifies failed steps; nil uses the built-in rules.
	Knowledge *knowledge.Base
	Logger    *slog.Logger
	// Locker, when set, is held from device activation to the end of a run.
	Locker Locker
	// InferArchitectures reads the architectures a package supports. It is
	// used when an install names neither a device nor architectures.
	InferArchitectures func(path string) ([]device.Architecture, error)
	// BootInterval is the delay between readiness probes.
	BootInterval time.Duration
}

// Orchestrator drives one tool. It holds only read-only configuration, so
// concurrent runs on different devices are safe.
type Orchestrator struct {
	tool         tool.Tool
	kb           *knowledge.Base
	logger       *slog.Logger
	locker       Locker
	infer        func(path string) ([]device.Architecture, error)
	bootInterval time.Duration
	stat         func(string) (os.FileInfo, error)
}

// New returns an Orchestrator for t.
func New(t tool.Tool, opts Options) *Orchestrator {
	kb := opts.Knowledge
	if kb == nil {
		kb = knowledge.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		tool:         t,
		kb:           kb,
		logger:       logger.With("family", string(t.Family())),
		locker:       opts.Locker,
		infer:        opts.InferArchitectures,
		bootInterval: opts.BootInterval,
		stat:         os.Stat,
	}
}

// selectDevice lists devices, narrows them to class, and applies pick.
func (o *Orchestrator) selectDevice(ctx context.Context, class device.Class, pick func([]device.Device) (device.Device, error)) (device.Device, error) {
	devices, err := o.tool.ListDevices(ctx)
	if err != nil {
		return device.Device{}, err
	}
	return pick(device.FilterClass(devices, class))
}

// lock takes the device lock when a Locker is configured. The returned func is
// always safe to call.
func (o *Orchestrator) lock(ctx context.Context, s *session) (func(), error) {
	if o.locker == nil {
		return func() {}, nil
	}
	release, err := o.locker.Acquire(ctx, s.device.ID)
	if err != nil {
		return func() {}, err
	}
	return func() {
		if err := release(); err != nil {
			s.logger.Warn("device lock release failed", "err", err)
		}
	}, nil
}

// classify runs the knowledge base over failed step output and logs the verdict.
func (o *Orchestrator) classify(s *session, output string) knowledge.Diagnosis {
	d := o.kb.Classify(output)
	s.logger.Info("failure classified", "cause", d.Cause, "remediation", string(d.Remediation), "matched", d.Matched)
	return d
}
