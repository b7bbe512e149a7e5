package orchestrate

import (
	"context"
	"errors"
	"time"

	"github.com/pavelsavara/xharness/internal/boot"
	"github.com/pavelsavara/xharness/internal/device"
	"github.com/pavelsavara/xharness/internal/knowledge"
	"github.com/pavelsavara/xharness/internal/messages"
	"github.com/pavelsavara/xharness/internal/process"
	"github.com/pavelsavara/xharness/internal/tool"
)

// Kind is the terminal classification of a run.
type Kind int

const (
	Success Kind = iota
	DeviceNotFound
	PackageNotFound
	InstallationFailure
	Timeout
	Cancelled
	InvalidArguments
	GeneralFailure
)

var kindNames = map[Kind]string{
	Success:             "success",
	DeviceNotFound:      "device-not-found",
	PackageNotFound:     "package-not-found",
	InstallationFailure: "installation-failure",
	Timeout:             "timeout",
	Cancelled:           "cancelled",
	InvalidArguments:    "invalid-arguments",
	GeneralFailure:      "general-failure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "general-failure"
}

// Operation names the orchestrated workflow.
type Operation string

const (
	OperationInstall   Operation = "install"
	OperationUninstall Operation = "uninstall"
)

// State is a step of the install or uninstall state machine.
type State string

const (
	StateInit                State = "init"
	StateServerStarted       State = "server-started"
	StateDeviceSelected      State = "device-selected"
	StateDeviceActivated     State = "device-activated"
	StateDeviceReady         State = "device-ready"
	StateStalePackageRemoved State = "stale-package-removed"
	StatePackageInstalled    State = "package-installed"
	StateVerified            State = "verified"
	StatePackageRemoved      State = "package-removed"
	StateDone                State = "done"
)

var (
	// ErrInvalidRequest wraps request validation failures.
	ErrInvalidRequest = errors.New(messages.OrchestrateInvalidRequest)
	// ErrPackageNotFound reports a package artifact missing from disk.
	ErrPackageNotFound = errors.New(messages.OrchestratePackageNotFound)
	// ErrInstallFailed reports an install step the tool rejected.
	ErrInstallFailed = errors.New(messages.OrchestrateInstallFailed)
	// ErrUninstallFailed reports an uninstall the tool rejected.
	ErrUninstallFailed = errors.New(messages.OrchestrateUninstallFailed)
)

// Outcome is the result of one run. Exactly one is produced per run.
type Outcome struct {
	RunID     string
	Kind      Kind
	Operation Operation
	// State is the last state entered before the run ended.
	State  State
	Device device.Device
	// Diagnosis is set for failed install or uninstall steps.
	Diagnosis knowledge.Diagnosis
	Note      string
	// Output is the tool output of the failing step.
	Output    string
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

// Succeeded reports whether the run ended in Success.
func (o Outcome) Succeeded() bool {
	return o.Kind == Success
}

// Refuse builds the outcome of a request rejected before any tool runs, such
// as an install onto a platform that cannot take one.
func Refuse(op Operation, note string) Outcome {
	return Outcome{
		Kind:      InstallationFailure,
		Operation: op,
		State:     StateInit,
		Note:      note,
		StartedAt: time.Now(),
	}
}

// kindOf maps an error from any collaborator to an outcome kind.
// Cancellation is checked first so it wins over a concurrent timeout.
func kindOf(err error) Kind {
	var notFound *device.NotFoundError
	switch {
	case err == nil:
		return Success
	case errors.Is(err, process.ErrCancelled), errors.Is(err, boot.ErrCancelled), errors.Is(err, context.Canceled):
		return Cancelled
	case errors.Is(err, process.ErrTimeout), errors.Is(err, boot.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return Timeout
	case errors.As(err, &notFound):
		return DeviceNotFound
	case errors.Is(err, ErrPackageNotFound):
		return PackageNotFound
	case errors.Is(err, tool.ErrConstruction),
		errors.Is(err, device.ErrUnknownArchitecture),
		errors.Is(err, device.ErrNoArchitectures),
		errors.Is(err, device.ErrAmbiguous),
		errors.Is(err, ErrInvalidRequest):
		return InvalidArguments
	case errors.Is(err, ErrInstallFailed), errors.Is(err, ErrUninstallFailed):
		return InstallationFailure
	default:
		return GeneralFailure
	}
}
