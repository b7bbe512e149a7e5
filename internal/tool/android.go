package tool

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pavelsavara/xharness/internal/boot"
	"github.com/pavelsavara/xharness/internal/device"
	"github.com/pavelsavara/xharness/internal/messages"
	"github.com/pavelsavara/xharness/internal/process"
)

// DefaultAndroidTolerance accepts uninstalls of packages that are not there.
var DefaultAndroidTolerance = Tolerance{
	Output: []string{"DELETE_FAILED_INTERNAL_ERROR", "Unknown package"},
}

// Android controls devices and emulators through adb.
type Android struct {
	runner
	tolerance Tolerance
}

var _ Tool = (*Android)(nil)

// NewAndroid returns an adb-backed Tool.
func NewAndroid(cfg Config) *Android {
	if cfg.Binary == "" {
		cfg.Binary = "adb"
	}
	return &Android{
		runner:    newRunner(FamilyAndroid, cfg, AndroidArgs),
		tolerance: cfg.Tolerance,
	}
}

func (a *Android) Family() Family { return FamilyAndroid }

func (a *Android) Capabilities() Capabilities {
	return Capabilities{
		Daemon:            true,
		UninstallsVirtual: true,
		VerifiesInstall:   true,
		KillsAfterInstall: true,
	}
}

// StartServer starts the adb daemon. adb treats a running daemon as success.
func (a *Android) StartServer(ctx context.Context) error {
	res, err := a.run(ctx, OpStartServer, Target{}, a.timeouts.List)
	if err != nil {
		return err
	}
	if !res.Succeeded() {
		return fmt.Errorf(messages.ToolStartServerFailedFmt, a.family, res.ExitCode, firstLine(res.Output))
	}
	return nil
}

// ListDevices parses `adb devices -l` and reads the ABI of each ready device.
func (a *Android) ListDevices(ctx context.Context) ([]device.Device, error) {
	res, err := a.run(ctx, OpListDevices, Target{}, a.timeouts.List)
	if err != nil {
		return nil, err
	}
	if !res.Succeeded() {
		return nil, fmt.Errorf(messages.ToolListFailedFmt, a.family, res.ExitCode, firstLine(res.Output))
	}
	devices := parseADBDevices(res.Output)
	for i := range devices {
		if devices[i].State != device.StateReady {
			continue
		}
		arch, err := a.queryArchitecture(ctx, devices[i].ID)
		if err != nil {
			if errors.Is(err, process.ErrCancelled) {
				return nil, err
			}
			a.logger.Debug("architecture query failed", "device", devices[i].ID, "err", err)
			continue
		}
		devices[i].Architecture = arch
	}
	return devices, nil
}

func (a *Android) queryArchitecture(ctx context.Context, serial string) (device.Architecture, error) {
	res, err := a.run(ctx, OpQueryArchitecture, Target{DeviceID: serial}, a.timeouts.List)
	if err != nil {
		return device.ArchUnknown, err
	}
	if !res.Succeeded() {
		return device.ArchUnknown, fmt.Errorf(messages.ToolListFailedFmt, a.family, res.ExitCode, firstLine(res.Output))
	}
	return device.ParseArchitecture(firstLine(res.Output))
}

// BootProbe waits for the device to connect once, then reports whether
// sys.boot_completed is set.
func (a *Android) BootProbe(d device.Device) boot.Probe {
	t := Target{DeviceID: d.ID}
	connected := false
	return func(ctx context.Context) (bool, error) {
		if !connected {
			res, err := a.run(ctx, OpWaitForBoot, t, 0)
			if err != nil {
				return false, err
			}
			if !res.Succeeded() {
				return false, fmt.Errorf(messages.BootNotConnectedFmt, d.ID, res.ExitCode, firstLine(res.Output))
			}
			connected = true
		}
		res, err := a.run(ctx, OpBootState, t, a.timeouts.List)
		if err != nil {
			return false, err
		}
		return res.Succeeded() && strings.TrimSpace(res.Output) == "1", nil
	}
}

func (a *Android) Install(ctx context.Context, d device.Device, path string) (process.Result, error) {
	return a.run(ctx, OpInstall, Target{DeviceID: d.ID, PackagePath: path}, a.timeouts.Command)
}

func (a *Android) Uninstall(ctx context.Context, d device.Device, packageID string) (process.Result, error) {
	return a.run(ctx, OpUninstall, Target{DeviceID: d.ID, PackageID: packageID}, a.timeouts.Command)
}

// Verify asks the package manager for the package path. pm exits non-zero for
// unknown packages.
func (a *Android) Verify(ctx context.Context, d device.Device, packageID string) (bool, error) {
	res, err := a.run(ctx, OpVerify, Target{DeviceID: d.ID, PackageID: packageID}, a.timeouts.Command)
	if err != nil {
		return false, err
	}
	return res.Succeeded() && strings.Contains(res.Output, "package:"), nil
}

// Kill force-stops the package. A non-zero exit is logged, not returned.
func (a *Android) Kill(ctx context.Context, d device.Device, packageID string) error {
	res, err := a.run(ctx, OpKill, Target{DeviceID: d.ID, PackageID: packageID}, a.timeouts.Command)
	if err != nil {
		return err
	}
	if !res.Succeeded() {
		a.logger.Debug("force-stop failed", "device", d.ID, "package", packageID, "exit", res.ExitCode)
	}
	return nil
}

// Version returns the first line of `adb version`.
func (a *Android) Version(ctx context.Context) (string, error) {
	res, err := a.run(ctx, OpGetVersion, Target{}, a.timeouts.List)
	if err != nil {
		return "", err
	}
	if !res.Succeeded() {
		return "", fmt.Errorf(messages.ToolVersionFailedFmt, a.family, res.ExitCode, firstLine(res.Output))
	}
	return firstLine(res.Output), nil
}

func (a *Android) UninstallTolerated(res process.Result) bool {
	return a.tolerance.Allows(res)
}

// parseADBDevices parses `adb devices -l`. Daemon chatter ("* daemon started
// successfully") and the header are skipped.
func parseADBDevices(output string) []device.Device {
	var devices []device.Device
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "List of devices") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		d := device.Device{
			ID:    fields[0],
			State: adbState(fields[1]),
			Class: device.ClassPhysical,
		}
		if strings.HasPrefix(d.ID, "emulator-") {
			d.Class = device.ClassVirtual
		}
		for _, f := range fields[2:] {
			if name, ok := strings.CutPrefix(f, "model:"); ok {
				d.Name = name
			}
		}
		devices = append(devices, d)
	}
	return devices
}

func adbState(s string) device.State {
	switch s {
	case "device":
		return device.StateReady
	case "offline", "unauthorized", "no":
		// "no permissions" splits into "no" and "permissions".
		return device.StateOffline
	default:
		return device.StateBooting
	}
}
