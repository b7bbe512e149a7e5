package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pavelsavara/xharness/internal/boot"
	"github.com/pavelsavara/xharness/internal/device"
	"github.com/pavelsavara/xharness/internal/messages"
)

// Package references an installable artifact.
type Package struct {
	Identifier string
	Path       string
	// Architectures are the tags the package supports; they constrain device
	// selection when no device id is given.
	Architectures []string
}

// InstallRequest describes one install run.
type InstallRequest struct {
	Package  Package
	DeviceID string
	// Class restricts selection to physical or virtual devices.
	Class device.Class
	// BootTimeout bounds the wait for the device; zero uses five minutes.
	BootTimeout time.Duration
}

// Install runs Init → ServerStarted → DeviceSelected → DeviceActivated →
// DeviceReady → StalePackageRemoved → PackageInstalled → Verified → Done.
func (o *Orchestrator) Install(ctx context.Context, req InstallRequest) (out Outcome) {
	s := newSession(OperationInstall, o.logger)
	defer s.recoverPanic(&out)

	if err := s.enter(ctx, StateInit); err != nil {
		return s.fail(err)
	}
	archs, err := o.validateInstall(req)
	if err != nil {
		return s.fail(err)
	}
	caps := o.tool.Capabilities()

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
		return device.Select(devices, req.DeviceID, archs)
	})
	if err != nil {
		return s.fail(err)
	}

	if err := s.enter(ctx, StateDeviceActivated); err != nil {
		return s.fail(err)
	}
	s.activate(d)
	unlock, err := o.lock(ctx, s)
	if err != nil {
		return s.fail(err)
	}
	defer unlock()

	if err := s.enter(ctx, StateDeviceReady); err != nil {
		return s.fail(err)
	}
	err = boot.Wait(ctx, o.tool.BootProbe(d), boot.Options{
		Timeout:  req.BootTimeout,
		Interval: o.bootInterval,
		Logger:   s.logger,
	})
	if err != nil {
		return s.fail(err)
	}
	if version, err := o.tool.Version(ctx); err == nil {
		s.logger.Info("tool version", "version", version)
	}

	id := req.Package.Identifier
	if err := s.enter(ctx, StateStalePackageRemoved); err != nil {
		return s.fail(err)
	}
	if d.IsVirtual() && !caps.UninstallsVirtual {
		s.logger.Debug("stale package removal skipped on virtual device")
	} else if res, err := o.tool.Uninstall(ctx, d, id); err != nil || !res.Succeeded() {
		s.logger.Debug("stale package removal failed", "exit", res.ExitCode, "err", err)
	} else {
		s.logger.Info(messages.OrchestrateStaleRemovedNote)
	}

	if err := s.enter(ctx, StatePackageInstalled); err != nil {
		return s.fail(err)
	}
	res, err := o.tool.Install(ctx, d, req.Package.Path)
	switch {
	case err != nil && kindOf(err) == Timeout:
		o.cleanup(ctx, s, id)
		out = s.fail(err)
		out.Output = res.Output
		return out
	case err != nil:
		return s.fail(err)
	case !res.Succeeded():
		o.cleanup(ctx, s, id)
		out = s.fail(fmt.Errorf("%w: "+messages.OrchestrateInstallFailedFmt, ErrInstallFailed, id, res.ExitCode))
		out.Diagnosis = o.classify(s, res.Output)
		out.Output = res.Output
		return out
	}

	if err := s.enter(ctx, StateVerified); err != nil {
		return s.fail(err)
	}
	if caps.VerifiesInstall {
		installed, err := o.tool.Verify(ctx, d, id)
		if err != nil {
			return s.fail(err)
		}
		if !installed {
			out = s.fail(fmt.Errorf("%w: "+messages.OrchestrateVerifyInstalledFmt, ErrInstallFailed, id))
			out.Output = res.Output
			return out
		}
	}
	if caps.KillsAfterInstall {
		if err := o.tool.Kill(ctx, d, id); err != nil {
			s.logger.Debug("force-stop after install failed", "err", err)
		}
	}

	if err := s.enter(ctx, StateDone); err != nil {
		return s.fail(err)
	}
	return s.succeed("")
}

// validateInstall checks the request and resolves the architectures used for
// selection, inferring them from the package when nothing else constrains it.
func (o *Orchestrator) validateInstall(req InstallRequest) ([]device.Architecture, error) {
	pkg := req.Package
	if strings.TrimSpace(pkg.Identifier) == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, messages.OrchestratePackageIDRequired)
	}
	if strings.TrimSpace(pkg.Path) == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, messages.OrchestratePackagePathRequired)
	}
	archs, err := device.ParseArchitectures(pkg.Architectures)
	if err != nil {
		return nil, err
	}
	if _, err := o.stat(pkg.Path); err != nil {
		return nil, fmt.Errorf(messages.OrchestratePackageNotFoundFmt, pkg.Path, errors.Join(ErrPackageNotFound, err))
	}
	if strings.TrimSpace(req.DeviceID) != "" || len(archs) > 0 {
		return archs, nil
	}
	if o.infer == nil {
		return nil, device.ErrNoArchitectures
	}
	archs, err = o.infer(pkg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: "+messages.OrchestrateInferArchFmt, ErrInvalidRequest, pkg.Path, err)
	}
	if len(archs) == 0 {
		return nil, device.ErrNoArchitectures
	}
	return archs, nil
}

// cleanup removes a partially installed package. It runs at most once per
// run and its failure never replaces the original cause.
func (o *Orchestrator) cleanup(ctx context.Context, s *session, id string) {
	if s.device.IsVirtual() && !o.tool.Capabilities().UninstallsVirtual {
		return
	}
	res, err := o.tool.Uninstall(ctx, s.device, id)
	if err != nil || !res.SucceededWith(o.tool.UninstallTolerated) {
		s.logger.Warn("cleanup uninstall failed", "exit", res.ExitCode, "err", err)
		return
	}
	s.logger.Debug("cleanup uninstall finished", "exit", res.ExitCode)
}
