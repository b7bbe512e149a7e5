package process

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-cmd/cmd"
	"golang.org/x/sys/unix"

	"github.com/pavelsavara/xharness/internal/messages"
)

const (
	defaultGrace   = 2 * time.Second
	killRetryEvery = 100 * time.Millisecond
	maxOutputBytes = 1 << 20
)

var killGroup = func(pid int) error {
	return unix.Kill(-pid, unix.SIGKILL)
}

// Runner is the Invoker backed by real OS processes. Each process runs in its
// own process group so termination also reaches the children it spawned.
type Runner struct {
	// Grace is how long a terminated group gets to exit before SIGKILL.
	Grace time.Duration
}

// NewRunner returns a Runner with the default termination grace period.
func NewRunner() *Runner {
	return &Runner{Grace: defaultGrace}
}

// Invoke runs req and waits for it to finish, time out, or be cancelled.
// A timed out or cancelled process is terminated before Invoke returns, and
// the output captured up to that point is returned with the error. When the
// timeout and ctx fire together, cancellation is reported.
func (r *Runner) Invoke(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Binary) == "" {
		return Result{ExitCode: -1}, fmt.Errorf("%w: %s", ErrLaunch, messages.ProcessBinaryRequired)
	}
	if err := ctx.Err(); err != nil {
		return Result{ExitCode: -1}, ContextError(err)
	}

	c := cmd.NewCmdOptions(cmd.Options{
		Buffered:       true,
		CombinedOutput: true,
	}, req.Binary, req.Args...)
	c.Dir = req.Dir
	if len(req.Env) > 0 {
		c.Env = req.Env
	}

	var timeout <-chan time.Time
	if req.Timeout > 0 {
		timer := time.NewTimer(req.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	start := time.Now()
	statusCh := c.Start()
	select {
	case status := <-statusCh:
		return finished(status, time.Since(start))
	case <-ctx.Done():
		status := r.terminate(c, statusCh)
		return interrupted(status, time.Since(start)), ContextError(ctx.Err())
	case <-timeout:
		status := r.terminate(c, statusCh)
		res := interrupted(status, time.Since(start))
		if err := ctx.Err(); err != nil {
			return res, ContextError(err)
		}
		return res, ErrTimeout
	}
}

// terminate stops the process group and waits for the final status,
// escalating to SIGKILL once the grace period has passed.
func (r *Runner) terminate(c *cmd.Cmd, statusCh <-chan cmd.Status) cmd.Status {
	_ = c.Stop()

	grace := r.Grace
	if grace <= 0 {
		grace = defaultGrace
	}
	graceTimer := time.NewTimer(grace)
	defer graceTimer.Stop()
	select {
	case status := <-statusCh:
		return status
	case <-graceTimer.C:
	}

	ticker := time.NewTicker(killRetryEvery)
	defer ticker.Stop()
	for {
		if pid := c.Status().PID; pid > 0 {
			_ = killGroup(pid)
		} else {
			// Stop raced the start of the process; try again.
			_ = c.Stop()
		}
		select {
		case status := <-statusCh:
			return status
		case <-ticker.C:
		}
	}
}

func finished(status cmd.Status, elapsed time.Duration) (Result, error) {
	res := Result{
		ExitCode: status.Exit,
		Output:   joinOutput(status.Stdout),
		Duration: elapsed,
	}
	if status.Error != nil && !status.Complete {
		// The process never started, or died to a signal nobody sent it.
		if status.PID == 0 {
			res.ExitCode = -1
			return res, fmt.Errorf("%w: %w", ErrLaunch, status.Error)
		}
		res.ExitCode = -1
	}
	return res, nil
}

func interrupted(status cmd.Status, elapsed time.Duration) Result {
	return Result{
		ExitCode: -1,
		Output:   joinOutput(status.Stdout),
		Duration: elapsed,
	}
}

func joinOutput(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		if b.Len()+len(line)+1 > maxOutputBytes {
			b.WriteString(messages.ProcessOutputCapped)
			b.WriteByte('\n')
			break
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
