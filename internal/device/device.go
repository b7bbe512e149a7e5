// Package device models attached devices and picks the one a run will target.
package device

// State is the readiness of a device as last observed by a registry query.
type State int

const (
	// StateOffline means the tool sees the device but cannot command it.
	StateOffline State = iota
	// StateBooting means the device is connected but not yet usable.
	StateBooting
	// StateReady means the device accepts install and uninstall commands.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateOffline:
		return "offline"
	case StateBooting:
		return "booting"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Class distinguishes hardware from emulated devices.
type Class int

const (
	// ClassUnknown is used by requests that do not constrain the device class.
	ClassUnknown Class = iota
	ClassPhysical
	ClassVirtual
)

func (c Class) String() string {
	switch c {
	case ClassPhysical:
		return "physical"
	case ClassVirtual:
		return "virtual"
	default:
		return "any"
	}
}

// Device is a snapshot of one attached device. Registries produce it; callers
// treat it as read-only and re-query instead of caching it across runs.
type Device struct {
	ID           string
	Name         string
	Architecture Architecture
	State        State
	Class        Class
}

// IsVirtual reports whether the device is an emulator or simulator.
func (d Device) IsVirtual() bool {
	return d.Class == ClassVirtual
}

// String returns the id, followed by the name when it differs.
func (d Device) String() string {
	if d.Name == "" || d.Name == d.ID {
		return d.ID
	}
	return d.ID + " (" + d.Name + ")"
}

// FilterClass returns the devices of class c, in listing order. ClassUnknown
// keeps every device.
func FilterClass(devices []Device, c Class) []Device {
	if c == ClassUnknown {
		return devices
	}
	filtered := make([]Device, 0, len(devices))
	for _, d := range devices {
		if d.Class == c {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
