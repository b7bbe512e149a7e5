package boot

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitReturnsWhenReady(t *testing.T) {
	var calls atomic.Int32
	probe := func(context.Context) (bool, error) {
		return calls.Add(1) >= 3, nil
	}

	err := Wait(context.Background(), probe, Options{Timeout: 5 * time.Second, Interval: 10 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWaitKeepsPollingThroughProbeErrors(t *testing.T) {
	var calls atomic.Int32
	probe := func(context.Context) (bool, error) {
		if calls.Add(1) < 3 {
			return false, errors.New("device offline")
		}
		return true, nil
	}

	require.NoError(t, Wait(context.Background(), probe, Options{Timeout: 5 * time.Second, Interval: 10 * time.Millisecond}))
}

func TestWaitTimesOut(t *testing.T) {
	probe := func(context.Context) (bool, error) { return false, nil }

	start := time.Now()
	err := Wait(context.Background(), probe, Options{Timeout: 100 * time.Millisecond, Interval: 10 * time.Millisecond})
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWaitProbeSeesBootDeadline(t *testing.T) {
	var sawDeadline atomic.Bool
	probe := func(ctx context.Context) (bool, error) {
		_, ok := ctx.Deadline()
		sawDeadline.Store(ok)
		return true, nil
	}

	require.NoError(t, Wait(context.Background(), probe, Options{Timeout: time.Second}))
	assert.True(t, sawDeadline.Load())
}

func TestWaitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	probe := func(context.Context) (bool, error) {
		cancel()
		return false, nil
	}

	err := Wait(ctx, probe, Options{Timeout: time.Minute, Interval: 10 * time.Millisecond})
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestWaitParentDeadlineIsTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	probe := func(context.Context) (bool, error) { return false, nil }

	err := Wait(ctx, probe, Options{Timeout: time.Minute, Interval: 10 * time.Millisecond})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestWaitClampsLongInterval(t *testing.T) {
	var calls atomic.Int32
	probe := func(context.Context) (bool, error) {
		return calls.Add(1) >= 2, nil
	}

	start := time.Now()
	require.NoError(t, Wait(context.Background(), probe, Options{Timeout: 400 * time.Millisecond, Interval: time.Hour}))
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}
