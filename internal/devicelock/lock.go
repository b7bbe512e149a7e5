// Package devicelock serializes harness runs that target the same device,
// across processes, with advisory file locks.
package devicelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/pavelsavara/xharness/internal/messages"
)

var flockFn = unix.Flock

const (
	defaultWait   = 10 * time.Minute
	lockPollEvery = 100 * time.Millisecond
)

// Locker hands out one exclusive lock per device id.
type Locker struct {
	// Dir holds one lock file per device.
	Dir string
	// Wait bounds how long Acquire polls a held lock; zero uses ten minutes.
	Wait time.Duration
}

// Acquire blocks until the device lock is held, the wait elapses, or ctx is
// done. The returned release func unlocks and closes the lock file.
func (l *Locker) Acquire(ctx context.Context, deviceID string) (func() error, error) {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return nil, fmt.Errorf(messages.DeviceLockDirFmt, l.Dir, err)
	}
	path := filepath.Join(l.Dir, lockName(deviceID))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf(messages.DeviceLockOpenFmt, path, err)
	}
	if err := l.lockFile(ctx, file); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf(messages.DeviceLockAcquireFmt, deviceID, err)
	}
	return func() error {
		if err := flockFn(int(file.Fd()), unix.LOCK_UN); err != nil {
			_ = file.Close()
			return err
		}
		return file.Close()
	}, nil
}

// lockFile polls a non-blocking exclusive flock so ctx can interrupt the wait.
func (l *Locker) lockFile(ctx context.Context, file *os.File) error {
	wait := l.Wait
	if wait <= 0 {
		wait = defaultWait
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	ticker := time.NewTicker(lockPollEvery)
	defer ticker.Stop()
	for {
		err := flockFn(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EAGAIN) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return fmt.Errorf("%w: "+messages.DeviceLockTimeoutFmt, context.DeadlineExceeded, wait, file.Name())
		case <-ticker.C:
		}
	}
}

// lockName maps a device id (serials may contain ':' for TCP devices) to a
// safe file name. Other bytes are escaped as %XX so distinct ids never share
// a lock file.
func lockName(deviceID string) string {
	if deviceID == "" {
		return "%.lock"
	}
	var b strings.Builder
	for i := 0; i < len(deviceID); i++ {
		c := deviceID[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '-', c == '_':
			b.WriteByte(c)
		default:
			_, _ = fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String() + ".lock"
}
