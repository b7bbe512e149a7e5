package tool

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pavelsavara/xharness/internal/messages"
)

// Operation is an abstract device-control request, rendered to argv per family.
type Operation int

const (
	OpStartServer Operation = iota
	OpListDevices
	OpListSimulators
	OpSetActiveDevice
	OpWaitForBoot
	OpBootState
	OpQueryArchitecture
	OpInstall
	OpUninstall
	OpVerify
	OpKill
	OpGetVersion
)

var operationNames = map[Operation]string{
	OpStartServer:       "start-server",
	OpListDevices:       "list-devices",
	OpListSimulators:    "list-simulators",
	OpSetActiveDevice:   "set-active-device",
	OpWaitForBoot:       "wait-for-boot",
	OpBootState:         "boot-state",
	OpQueryArchitecture: "query-architecture",
	OpInstall:           "install",
	OpUninstall:         "uninstall",
	OpVerify:            "verify",
	OpKill:              "kill",
	OpGetVersion:        "get-version",
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("operation(%d)", int(o))
}

// Target carries the device and package an operation applies to.
type Target struct {
	DeviceID string
	// Virtual selects simulator-specific argv on families that distinguish.
	Virtual     bool
	PackageID   string
	PackagePath string
}

// ErrConstruction is wrapped by every ConstructionError.
var ErrConstruction = errors.New(messages.ToolConstruction)

// ConstructionError reports an operation that cannot be expressed for a
// family or is missing a required argument. No process is started.
type ConstructionError struct {
	Family    Family
	Operation Operation
	Reason    string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf(messages.ToolConstructionFmt, e.Family, e.Operation, e.Reason)
}

func (e *ConstructionError) Unwrap() error {
	return ErrConstruction
}

func unsupported(f Family, op Operation) error {
	return &ConstructionError{Family: f, Operation: op, Reason: messages.ToolUnsupportedOperation}
}

func missing(f Family, op Operation, reason string) error {
	return &ConstructionError{Family: f, Operation: op, Reason: reason}
}

func requireDevice(f Family, op Operation, t Target) error {
	if strings.TrimSpace(t.DeviceID) == "" {
		return missing(f, op, messages.ToolDeviceRequired)
	}
	return nil
}

func requirePackageID(f Family, op Operation, t Target) error {
	if err := requireDevice(f, op, t); err != nil {
		return err
	}
	if strings.TrimSpace(t.PackageID) == "" {
		return missing(f, op, messages.ToolPackageIDRequired)
	}
	return nil
}

func requirePackagePath(f Family, op Operation, t Target) error {
	if err := requireDevice(f, op, t); err != nil {
		return err
	}
	if strings.TrimSpace(t.PackagePath) == "" {
		return missing(f, op, messages.ToolPackagePathRequired)
	}
	return nil
}

// AndroidArgs renders op as adb argv. Every device-scoped operation is pinned
// with -s so a second attached device can never receive it.
func AndroidArgs(op Operation, t Target) ([]string, error) {
	const f = FamilyAndroid
	switch op {
	case OpStartServer:
		return []string{"start-server"}, nil
	case OpListDevices:
		return []string{"devices", "-l"}, nil
	case OpGetVersion:
		return []string{"version"}, nil
	case OpQueryArchitecture:
		if err := requireDevice(f, op, t); err != nil {
			return nil, err
		}
		return []string{"-s", t.DeviceID, "shell", "getprop", "ro.product.cpu.abi"}, nil
	case OpWaitForBoot:
		if err := requireDevice(f, op, t); err != nil {
			return nil, err
		}
		return []string{"-s", t.DeviceID, "wait-for-device"}, nil
	case OpBootState:
		if err := requireDevice(f, op, t); err != nil {
			return nil, err
		}
		return []string{"-s", t.DeviceID, "shell", "getprop", "sys.boot_completed"}, nil
	case OpInstall:
		if err := requirePackagePath(f, op, t); err != nil {
			return nil, err
		}
		return []string{"-s", t.DeviceID, "install", t.PackagePath}, nil
	case OpUninstall:
		if err := requirePackageID(f, op, t); err != nil {
			return nil, err
		}
		return []string{"-s", t.DeviceID, "uninstall", t.PackageID}, nil
	case OpVerify:
		if err := requirePackageID(f, op, t); err != nil {
			return nil, err
		}
		return []string{"-s", t.DeviceID, "shell", "pm", "path", t.PackageID}, nil
	case OpKill:
		if err := requirePackageID(f, op, t); err != nil {
			return nil, err
		}
		return []string{"-s", t.DeviceID, "shell", "am", "force-stop", t.PackageID}, nil
	default:
		// OpSetActiveDevice is deliberately absent: the active device lives in
		// the run, not in tool state.
		return nil, unsupported(f, op)
	}
}

// AppleArgs renders op as mlaunch argv.
func AppleArgs(op Operation, t Target) ([]string, error) {
	const f = FamilyApple
	switch op {
	case OpListDevices:
		return []string{"--listdev=/dev/stdout", "--output-format=xml"}, nil
	case OpListSimulators:
		return []string{"--listsim=/dev/stdout", "--output-format=xml"}, nil
	case OpGetVersion:
		return []string{"--version"}, nil
	case OpInstall:
		if err := requirePackagePath(f, op, t); err != nil {
			return nil, err
		}
		if t.Virtual {
			return []string{"--installsim", t.PackagePath, "--device", ":v2:udid=" + t.DeviceID}, nil
		}
		return []string{"--installdev", t.PackagePath, "--devname", t.DeviceID}, nil
	case OpUninstall:
		if t.Virtual {
			return nil, missing(f, op, messages.ToolVirtualUninstall)
		}
		if err := requirePackageID(f, op, t); err != nil {
			return nil, err
		}
		return []string{"--uninstalldevbundleid", t.PackageID, "--devname", t.DeviceID}, nil
	default:
		return nil, unsupported(f, op)
	}
}
