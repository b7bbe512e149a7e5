package orchestrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/pavelsavara/xharness/internal/device"
	"github.com/pavelsavara/xharness/internal/messages"
)

// UninstallRequest describes one uninstall run.
type UninstallRequest struct {
	Identifier string
	// DeviceID may be empty when exactly one device is attached.
	DeviceID string
	Class    device.Class
}

// Uninstall runs Init → ServerStarted → DeviceSelected → PackageRemoved → Done.
// A package that is already absent is a success.
func (o *Orchestrator) Uninstall(ctx context.Context, req UninstallRequest) (out Outcome) {
	s := newSession(OperationUninstall, o.logger)
	defer s.recoverPanic(&out)

	if err := s.enter(ctx, StateInit); err != nil {
		return s.fail(err)
	}
	id := strings.TrimSpace(req.Identifier)
	if id == "" {
		return s.fail(fmt.Errorf("%w: %s", ErrInvalidRequest, messages.OrchestratePackageIDRequired))
	}
	caps := o.tool.Capabilities()
	if req.Class == device.ClassVirtual && !caps.UninstallsVirtual {
		return s.succeed(messages.OrchestrateSimulatorUninstall)
	}

	if caps.Daemon {
		if err := s.enter(ctx, StateServerStarted); err != nil {
			return s.fail(err)
		}
		if err := o.tool.StartServer(ctx); err != nil {
			return s.fail(err)
		}
	}

	if err := s.enter(ctx, StateDeviceSelected); err != nil {
		return s.fail(err)
	}
	d, err := o.selectDevice(ctx, req.Class, func(devices []device.Device) (device.Device, error) {
		if strings.TrimSpace(req.DeviceID) == "" {
			return device.SelectSole(devices)
		}
		return device.Select(devices, req.DeviceID, nil)
	})
	if err != nil {
		return s.fail(err)
	}
	s.activate(d)
	if d.IsVirtual() && !caps.UninstallsVirtual {
		return s.succeed(messages.OrchestrateSimulatorUninstall)
	}
	unlock, err := o.lock(ctx, s)
	if err != nil {
		return s.fail(err)
	}
	defer unlock()

	if err := s.enter(ctx, StatePackageRemoved); err != nil {
		return s.fail(err)
	}
	res, err := o.tool.Uninstall(ctx, d, id)
	if err != nil {
		out = s.fail(err)
		out.Output = res.Output
		return out
	}
	note := ""
	switch {
	case res.Succeeded():
	case o.tool.UninstallTolerated(res):
		note = messages.OrchestrateNotInstalledNote
	default:
		out = s.fail(fmt.Errorf("%w: "+messages.OrchestrateUninstallFailedFmt, ErrUninstallFailed, id, res.ExitCode))
		out.Diagnosis = o.classify(s, res.Output)
		out.Output = res.Output
		return out
	}
	if caps.VerifiesInstall {
		installed, err := o.tool.Verify(ctx, d, id)
		if err != nil {
			return s.fail(err)
		}
		if installed {
			out = s.fail(fmt.Errorf("%w: "+messages.OrchestrateVerifyRemovedFmt, ErrUninstallFailed, id))
			out.Output = res.Output
			return out
		}
	}

	if err := s.enter(ctx, StateDone); err != nil {
		return s.fail(err)
	}
	return s.succeed(note)
}
