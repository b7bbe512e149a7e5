package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pavelsavara/xharness/internal/messages"
)

// durationValue is a flag that accepts whole seconds ("300") as well as Go
// durations ("5m").
type durationValue struct {
	d time.Duration
}

func (v *durationValue) String() string {
	if v.d == 0 {
		return ""
	}
	return v.d.String()
}

func (v *durationValue) Set(s string) error {
	s = strings.TrimSpace(s)
	if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
		v.d = time.Duration(secs) * time.Second
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fmt.Errorf(messages.DurationFlagInvalidFmt, s)
	}
	v.d = d
	return nil
}

func (v *durationValue) Type() string {
	return "duration"
}

// or returns the flag value, or fallback when the flag was not set.
func (v *durationValue) or(fallback time.Duration) time.Duration {
	if v.d > 0 {
		return v.d
	}
	return fallback
}
