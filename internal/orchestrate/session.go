package orchestrate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pavelsavara/xharness/internal/device"
	"github.com/pavelsavara/xharness/internal/messages"
)

// session is the run-local state of one install or uninstall. It pins the
// selected device so every later step addresses the same one; nothing in it is
// shared with other runs.
type session struct {
	runID   string
	op      Operation
	state   State
	device  device.Device
	started time.Time
	logger  *slog.Logger
}

func newSession(op Operation, logger *slog.Logger) *session {
	runID := uuid.NewString()
	return &session{
		runID:   runID,
		op:      op,
		state:   StateInit,
		started: time.Now(),
		logger:  logger.With("run", runID, "op", string(op)),
	}
}

// enter moves to state, refusing when ctx is already done so that no step
// runs after cancellation.
func (s *session) enter(ctx context.Context, state State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = state
	s.logger.Info("state entered", "state", string(state))
	return nil
}

// activate pins d for the rest of the run.
func (s *session) activate(d device.Device) {
	s.device = d
	s.logger = s.logger.With("device", d.ID)
}

func (s *session) outcome(kind Kind) Outcome {
	return Outcome{
		RunID:     s.runID,
		Kind:      kind,
		Operation: s.op,
		State:     s.state,
		Device:    s.device,
		StartedAt: s.started,
		Duration:  time.Since(s.started),
	}
}

func (s *session) succeed(note string) Outcome {
	out := s.outcome(Success)
	out.Note = note
	s.logger.Info("run finished", "outcome", out.Kind.String(), "duration", out.Duration)
	return out
}

func (s *session) fail(err error) Outcome {
	out := s.outcome(kindOf(err))
	out.Err = err
	s.logger.Info("run finished", "outcome", out.Kind.String(), "state", string(s.state), "err", err)
	return out
}

// recoverPanic converts a panic in any step into a GeneralFailure outcome.
func (s *session) recoverPanic(out *Outcome) {
	if r := recover(); r != nil {
		*out = s.fail(fmt.Errorf(messages.OrchestratePanicFmt, s.state, r))
	}
}
