package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pavelsavara/xharness/internal/bundle"
	"github.com/pavelsavara/xharness/internal/device"
	"github.com/pavelsavara/xharness/internal/messages"
	"github.com/pavelsavara/xharness/internal/orchestrate"
	"github.com/pavelsavara/xharness/internal/tool"
)

// appleTarget is a platform accepted by --target.
type appleTarget struct {
	name     string
	virtual  bool
	catalyst bool
}

func (t appleTarget) class() device.Class {
	if t.virtual {
		return device.ClassVirtual
	}
	return device.ClassPhysical
}

// defaultArchitectures is used when neither a device nor --arch is given.
func (t appleTarget) defaultArchitectures() []string {
	if t.virtual {
		return []string{string(tool.HostArchitecture())}
	}
	return []string{string(device.ArchArm64)}
}

var appleTargets = map[string]appleTarget{
	"ios-device":        {name: "ios-device"},
	"ios-simulator":     {name: "ios-simulator", virtual: true},
	"ios-simulator-64":  {name: "ios-simulator", virtual: true},
	"tvos-device":       {name: "tvos-device"},
	"tvos-simulator":    {name: "tvos-simulator", virtual: true},
	"watchos-device":    {name: "watchos-device"},
	"watchos-simulator": {name: "watchos-simulator", virtual: true},
	"maccatalyst":       {name: "maccatalyst", catalyst: true},
}

// parseAppleTarget accepts a target name with an optional OS version suffix
// ("ios-simulator-64_17.2").
func parseAppleTarget(s string) (appleTarget, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name, _, _ = strings.Cut(name, "_")
	if t, ok := appleTargets[name]; ok {
		return t, nil
	}
	names := make([]string, 0, len(appleTargets))
	for n := range appleTargets {
		names = append(names, n)
	}
	slices.Sort(names)
	return appleTarget{}, fmt.Errorf(messages.AppleUnknownTargetFmt, s, strings.Join(names, ", "))
}

// appBundleID returns the explicit bundle id or reads it from the app's
// Info.plist. A missing app is left for the orchestrator to report as
// package-not-found.
func appBundleID(app, explicit string) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit, nil
	}
	id, err := bundle.Identifier(app)
	if err == nil {
		return id, nil
	}
	if _, statErr := os.Stat(app); statErr != nil {
		return strings.TrimSuffix(filepath.Base(app), ".app"), nil
	}
	return "", err
}

func newAppleCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.AppleUse,
		Short: messages.AppleShort,
	}
	cmd.AddCommand(
		newAppleInstallCmd(opts),
		newAppleUninstallCmd(opts),
		newAppleDevicesCmd(opts),
	)
	return cmd
}

func newAppleInstallCmd(opts *rootOptions) *cobra.Command {
	var (
		app           string
		targetName    string
		deviceName    string
		bundleID      string
		archs         []string
		launchTimeout durationValue
		timeout       durationValue
	)
	cmd := &cobra.Command{
		Use:   messages.AppleInstallUse,
		Short: messages.AppleInstallShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseAppleTarget(targetName)
			if err != nil {
				return err
			}
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			if target.catalyst {
				return e.finish(cmd, tool.FamilyApple, app, orchestrate.Refuse(orchestrate.OperationInstall, messages.AppleMacCatalystInstall))
			}
			id, err := appBundleID(app, bundleID)
			if err != nil {
				return err
			}
			if deviceName == "" && len(archs) == 0 {
				archs = target.defaultArchitectures()
			}
			mlaunch, err := e.apple(timeout.d)
			if err != nil {
				return err
			}
			o, err := e.orchestrator(mlaunch)
			if err != nil {
				return err
			}
			out := o.Install(cmd.Context(), orchestrate.InstallRequest{
				Package: orchestrate.Package{
					Identifier:    id,
					Path:          app,
					Architectures: archs,
				},
				DeviceID:    deviceName,
				Class:       target.class(),
				BootTimeout: launchTimeout.or(e.cfg.Timeouts.Boot.Duration),
			})
			return e.finish(cmd, tool.FamilyApple, id, out)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&app, "app", "a", "", messages.AppleFlagApp)
	flags.StringVarP(&targetName, "target", "t", "", messages.AppleFlagTarget)
	flags.StringVar(&deviceName, "device-name", "", messages.AppleFlagDeviceName)
	flags.StringVar(&bundleID, "bundle-id", "", messages.AppleFlagBundleID)
	flags.StringArrayVar(&archs, "arch", nil, messages.AppleFlagArch)
	flags.Var(&launchTimeout, "launch-timeout", messages.AppleFlagLaunchTimeout)
	flags.Var(&timeout, "timeout", messages.AppleFlagTimeout)
	_ = cmd.MarkFlagRequired("app")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newAppleUninstallCmd(opts *rootOptions) *cobra.Command {
	var (
		bundleID   string
		targetName string
		deviceName string
		timeout    durationValue
	)
	cmd := &cobra.Command{
		Use:   messages.AppleUninstallUse,
		Short: messages.AppleUninstallShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseAppleTarget(targetName)
			if err != nil {
				return err
			}
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			if target.catalyst {
				out := orchestrate.Outcome{
					Kind:      orchestrate.Success,
					Operation: orchestrate.OperationUninstall,
					State:     orchestrate.StateDone,
					Note:      messages.AppleMacCatalystNoDevice,
					StartedAt: time.Now(),
				}
				return e.finish(cmd, tool.FamilyApple, bundleID, out)
			}
			mlaunch, err := e.apple(timeout.d)
			if err != nil {
				return err
			}
			o, err := e.orchestrator(mlaunch)
			if err != nil {
				return err
			}
			out := o.Uninstall(cmd.Context(), orchestrate.UninstallRequest{
				Identifier: bundleID,
				DeviceID:   deviceName,
				Class:      target.class(),
			})
			return e.finish(cmd, tool.FamilyApple, bundleID, out)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&bundleID, "bundle-id", "", messages.AppleFlagBundleID)
	flags.StringVarP(&targetName, "target", "t", "", messages.AppleFlagTarget)
	flags.StringVar(&deviceName, "device-name", "", messages.AppleFlagDeviceName)
	flags.Var(&timeout, "timeout", messages.AppleFlagTimeout)
	_ = cmd.MarkFlagRequired("bundle-id")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newAppleDevicesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.AppleDevicesUse,
		Short: messages.AppleDevicesShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			mlaunch, err := e.apple(0)
			if err != nil {
				return err
			}
			devices, err := mlaunch.ListDevices(cmd.Context())
			if err != nil {
				return general(err)
			}
			printDevices(cmd.OutOrStdout(), devices)
			return nil
		},
	}
}
