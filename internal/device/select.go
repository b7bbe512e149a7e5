package device

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/pavelsavara/xharness/internal/messages"
)

var (
	// ErrAmbiguous reports that several devices qualify and nothing picks one.
	ErrAmbiguous = errors.New(messages.DeviceAmbiguous)
	// ErrNoArchitectures reports a selection with neither an id nor architectures.
	ErrNoArchitectures = errors.New(messages.DeviceArchitecturesRequired)
)

// NotFoundError reports a selection that matched no attached device. It keeps
// what was asked for so the failure can be diagnosed without re-running.
type NotFoundError struct {
	DeviceID      string
	Architectures []Architecture
	Attached      int
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ""
	}
	if e.DeviceID != "" {
		return fmt.Sprintf(messages.DeviceNotFoundByIDFmt, e.DeviceID, e.Attached)
	}
	if len(e.Architectures) == 0 {
		return messages.DeviceNotFoundNone
	}
	return fmt.Sprintf(messages.DeviceNotFoundByArchFmt, JoinArchitectures(e.Architectures), e.Attached)
}

// Select picks the target device from a listing.
//
// An explicit id wins regardless of architecture; it matches a device id first
// and then a device name. Without an id, the first device in listing order whose
// architecture is in archs is returned. Listing order is the tool's order, so
// callers that need the same device across runs must pass an id.
func Select(devices []Device, explicitID string, archs []Architecture) (Device, error) {
	explicitID = strings.TrimSpace(explicitID)
	if explicitID != "" {
		if d, ok := Find(devices, explicitID); ok {
			return d, nil
		}
		return Device{}, &NotFoundError{DeviceID: explicitID, Attached: len(devices)}
	}
	if len(archs) == 0 {
		return Device{}, ErrNoArchitectures
	}
	for _, d := range devices {
		if d.Architecture != ArchUnknown && slices.Contains(archs, d.Architecture) {
			return d, nil
		}
	}
	return Device{}, &NotFoundError{Architectures: archs, Attached: len(devices)}
}

// SelectSole returns the only attached device.
func SelectSole(devices []Device) (Device, error) {
	switch len(devices) {
	case 0:
		return Device{}, &NotFoundError{}
	case 1:
		return devices[0], nil
	}
	ids := make([]string, len(devices))
	for i, d := range devices {
		ids[i] = d.ID
	}
	return Device{}, fmt.Errorf("%w: "+messages.DeviceAmbiguousFmt, ErrAmbiguous, len(devices), strings.Join(ids, ", "))
}

// Find looks a device up by id, then by name.
func Find(devices []Device, idOrName string) (Device, bool) {
	for _, d := range devices {
		if d.ID == idOrName {
			return d, true
		}
	}
	for _, d := range devices {
		if d.Name != "" && d.Name == idOrName {
			return d, true
		}
	}
	return Device{}, false
}
