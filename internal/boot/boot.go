// Package boot waits for a device to finish booting.
package boot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pavelsavara/xharness/internal/messages"
)

// DefaultTimeout is the boot wait used when a request does not set one.
const DefaultTimeout = 5 * time.Minute

const (
	defaultInterval = time.Second
	minInterval     = 10 * time.Millisecond
)

var (
	// ErrTimeout reports a device that was not ready by the deadline.
	ErrTimeout = errors.New(messages.BootTimedOut)
	// ErrCancelled reports a wait abandoned because its context was cancelled.
	ErrCancelled = errors.New(messages.BootCancelled)
)

// Probe reports whether the device is ready. A probe error does not end the
// wait; the device may be rebooting.
type Probe func(ctx context.Context) (bool, error)

// Options tunes Wait.
type Options struct {
	// Timeout is the overall deadline; zero uses DefaultTimeout.
	Timeout time.Duration
	// Interval is the delay between probes; zero uses one second. It is
	// clamped so the deadline is probed several times.
	Interval time.Duration
	Logger   *slog.Logger
}

// Wait probes until the device is ready, the timeout elapses, or ctx is
// cancelled. The probe receives a context bounded by the boot deadline.
func Wait(ctx context.Context, probe Probe, opts Options) error {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	if limit := timeout / 4; interval > limit {
		interval = max(limit, minInterval)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		ready, err := probe(waitCtx)
		switch {
		case err != nil:
			logger.Debug("boot probe failed", "attempt", attempt, "err", err)
		case ready:
			logger.Debug("device ready", "attempts", attempt)
			return nil
		default:
			logger.Debug("device not ready", "attempt", attempt)
		}

		select {
		case <-waitCtx.Done():
			return waitError(ctx)
		case <-ticker.C:
		}
	}
}

// waitError tells an exhausted boot deadline apart from the caller giving up.
func waitError(parent context.Context) error {
	if err := parent.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return ErrCancelled
	}
	return ErrTimeout
}
