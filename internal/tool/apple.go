package tool

import (
	"context"
	"encoding/xml"
	"fmt"
	"runtime"
	"strings"

	"github.com/pavelsavara/xharness/internal/boot"
	"github.com/pavelsavara/xharness/internal/device"
	"github.com/pavelsavara/xharness/internal/messages"
	"github.com/pavelsavara/xharness/internal/process"
)

// DefaultAppleTolerance accepts uninstalls of bundles that are not installed.
var DefaultAppleTolerance = Tolerance{
	Output: []string{"not installed", "ApplicationNotInstalled"},
}

// Apple controls iOS, tvOS, and watchOS devices and simulators through mlaunch.
type Apple struct {
	runner
	tolerance Tolerance
}

var _ Tool = (*Apple)(nil)

// NewApple returns an mlaunch-backed Tool.
func NewApple(cfg Config) *Apple {
	if cfg.Binary == "" {
		cfg.Binary = "mlaunch"
	}
	return &Apple{
		runner:    newRunner(FamilyApple, cfg, AppleArgs),
		tolerance: cfg.Tolerance,
	}
}

func (a *Apple) Family() Family { return FamilyApple }

func (a *Apple) Capabilities() Capabilities {
	return Capabilities{}
}

// StartServer is a no-op; mlaunch has no daemon.
func (a *Apple) StartServer(context.Context) error {
	return nil
}

// ListDevices returns physical devices followed by available simulators.
func (a *Apple) ListDevices(ctx context.Context) ([]device.Device, error) {
	physical, err := a.list(ctx, OpListDevices, parseMLaunchDevices)
	if err != nil {
		return nil, err
	}
	simulators, err := a.list(ctx, OpListSimulators, parseMLaunchSimulators)
	if err != nil {
		return nil, err
	}
	return append(physical, simulators...), nil
}

func (a *Apple) list(ctx context.Context, op Operation, parse func([]byte) ([]device.Device, error)) ([]device.Device, error) {
	res, err := a.run(ctx, op, Target{}, a.timeouts.List)
	if err != nil {
		return nil, err
	}
	if !res.Succeeded() {
		return nil, fmt.Errorf(messages.ToolListFailedFmt, a.family, res.ExitCode, firstLine(res.Output))
	}
	devices, err := parse([]byte(xmlPayload(res.Output)))
	if err != nil {
		return nil, fmt.Errorf(messages.ToolParseListingFmt, a.family, err)
	}
	return devices, nil
}

// BootProbe re-lists devices and reports whether d is listed as ready.
func (a *Apple) BootProbe(d device.Device) boot.Probe {
	return func(ctx context.Context) (bool, error) {
		devices, err := a.ListDevices(ctx)
		if err != nil {
			return false, err
		}
		current, ok := device.Find(devices, d.ID)
		return ok && current.State == device.StateReady, nil
	}
}

func (a *Apple) Install(ctx context.Context, d device.Device, path string) (process.Result, error) {
	t := Target{DeviceID: d.ID, Virtual: d.IsVirtual(), PackagePath: path}
	return a.run(ctx, OpInstall, t, a.timeouts.Command)
}

// Uninstall removes a bundle from a physical device. Simulators are refused
// with a ConstructionError before any process starts.
func (a *Apple) Uninstall(ctx context.Context, d device.Device, packageID string) (process.Result, error) {
	t := Target{DeviceID: d.ID, Virtual: d.IsVirtual(), PackageID: packageID}
	return a.run(ctx, OpUninstall, t, a.timeouts.Command)
}

// Verify is unsupported; the install exit code is authoritative.
func (a *Apple) Verify(context.Context, device.Device, string) (bool, error) {
	return false, unsupported(FamilyApple, OpVerify)
}

// Kill is unsupported; mlaunch install never launches the app.
func (a *Apple) Kill(context.Context, device.Device, string) error {
	return unsupported(FamilyApple, OpKill)
}

func (a *Apple) Version(ctx context.Context) (string, error) {
	res, err := a.run(ctx, OpGetVersion, Target{}, a.timeouts.List)
	if err != nil {
		return "", err
	}
	if !res.Succeeded() {
		return "", fmt.Errorf(messages.ToolVersionFailedFmt, a.family, res.ExitCode, firstLine(res.Output))
	}
	return firstLine(res.Output), nil
}

func (a *Apple) UninstallTolerated(res process.Result) bool {
	return a.tolerance.Allows(res)
}

type mlaunchDevices struct {
	Devices []struct {
		Identifier string `xml:"DeviceIdentifier"`
		Name       string `xml:"Name"`
		CPU        string `xml:"CPUArchitecture"`
		Usable     string `xml:"IsUsableForDebugging"`
	} `xml:"Devices>Device"`
}

type mlaunchSimulators struct {
	Devices []struct {
		UDID string `xml:"UDID,attr"`
		Name string `xml:"Name,attr"`
	} `xml:"Simulator>AvailableDevices>SimDevice"`
}

func parseMLaunchDevices(data []byte) ([]device.Device, error) {
	var doc mlaunchDevices
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	devices := make([]device.Device, 0, len(doc.Devices))
	for _, d := range doc.Devices {
		state := device.StateReady
		if !strings.EqualFold(strings.TrimSpace(d.Usable), "true") {
			state = device.StateOffline
		}
		devices = append(devices, device.Device{
			ID:           strings.TrimSpace(d.Identifier),
			Name:         strings.TrimSpace(d.Name),
			Architecture: appleArchitecture(d.CPU),
			State:        state,
			Class:        device.ClassPhysical,
		})
	}
	return devices, nil
}

// parseMLaunchSimulators reports every available simulator as ready; mlaunch
// boots a simulator on install.
func parseMLaunchSimulators(data []byte) ([]device.Device, error) {
	var doc mlaunchSimulators
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	devices := make([]device.Device, 0, len(doc.Devices))
	for _, d := range doc.Devices {
		devices = append(devices, device.Device{
			ID:           d.UDID,
			Name:         d.Name,
			Architecture: HostArchitecture(),
			State:        device.StateReady,
			Class:        device.ClassVirtual,
		})
	}
	return devices, nil
}

// xmlPayload drops any log lines mlaunch prints before the document.
func xmlPayload(out string) string {
	if idx := strings.Index(out, "<"); idx > 0 {
		return out[idx:]
	}
	return out
}

func appleArchitecture(cpu string) device.Architecture {
	switch strings.ToLower(strings.TrimSpace(cpu)) {
	case "arm64", "arm64e", "arm64_32":
		return device.ArchArm64
	case "armv7", "armv7s", "armv7k":
		return device.ArchArmv7
	case "x86_64":
		return device.ArchX86_64
	case "i386", "x86":
		return device.ArchX86
	default:
		return device.ArchUnknown
	}
}

// HostArchitecture is the architecture simulators run as on this machine.
func HostArchitecture() device.Architecture {
	switch runtime.GOARCH {
	case "amd64":
		return device.ArchX86_64
	case "386":
		return device.ArchX86
	case "arm64":
		return device.ArchArm64
	default:
		return device.ArchUnknown
	}
}
