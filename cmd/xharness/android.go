package main

import (
	"github.com/spf13/cobra"

	"github.com/pavelsavara/xharness/internal/messages"
	"github.com/pavelsavara/xharness/internal/orchestrate"
	"github.com/pavelsavara/xharness/internal/tool"
)

func newAndroidCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.AndroidUse,
		Short: messages.AndroidShort,
	}
	cmd.AddCommand(
		newAndroidInstallCmd(opts),
		newAndroidUninstallCmd(opts),
		newAndroidDevicesCmd(opts),
	)
	return cmd
}

func newAndroidInstallCmd(opts *rootOptions) *cobra.Command {
	var (
		packageName   string
		app           string
		deviceID      string
		archs         []string
		launchTimeout durationValue
		timeout       durationValue
	)
	cmd := &cobra.Command{
		Use:   messages.AndroidInstallUse,
		Short: messages.AndroidInstallShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			adb, err := e.android(timeout.d)
			if err != nil {
				return err
			}
			o, err := e.orchestrator(adb)
			if err != nil {
				return err
			}
			out := o.Install(cmd.Context(), orchestrate.InstallRequest{
				Package: orchestrate.Package{
					Identifier:    packageName,
					Path:          app,
					Architectures: archs,
				},
				DeviceID:    deviceID,
				BootTimeout: launchTimeout.or(e.cfg.Timeouts.Boot.Duration),
			})
			return e.finish(cmd, tool.FamilyAndroid, packageName, out)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&packageName, "package-name", "p", "", messages.AndroidFlagPackageName)
	flags.StringVarP(&app, "app", "a", "", messages.AndroidFlagApp)
	flags.StringVar(&deviceID, "device-id", "", messages.AndroidFlagDeviceID)
	flags.StringArrayVar(&archs, "device-arch", nil, messages.AndroidFlagDeviceArch)
	flags.Var(&launchTimeout, "launch-timeout", messages.AndroidFlagLaunchTimeout)
	flags.VarP(&timeout, "timeout", "t", messages.AndroidFlagTimeout)
	_ = cmd.MarkFlagRequired("package-name")
	_ = cmd.MarkFlagRequired("app")
	return cmd
}

func newAndroidUninstallCmd(opts *rootOptions) *cobra.Command {
	var (
		packageName string
		deviceID    string
		timeout     durationValue
	)
	cmd := &cobra.Command{
		Use:   messages.AndroidUninstallUse,
		Short: messages.AndroidUninstallShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			adb, err := e.android(timeout.d)
			if err != nil {
				return err
			}
			o, err := e.orchestrator(adb)
			if err != nil {
				return err
			}
			out := o.Uninstall(cmd.Context(), orchestrate.UninstallRequest{
				Identifier: packageName,
				DeviceID:   deviceID,
			})
			return e.finish(cmd, tool.FamilyAndroid, packageName, out)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&packageName, "package-name", "p", "", messages.AndroidFlagPackageName)
	flags.StringVar(&deviceID, "device-id", "", messages.AndroidFlagDeviceID)
	flags.VarP(&timeout, "timeout", "t", messages.AndroidFlagTimeout)
	_ = cmd.MarkFlagRequired("package-name")
	return cmd
}

func newAndroidDevicesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.AndroidDevicesUse,
		Short: messages.AndroidDevicesShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			adb, err := e.android(0)
			if err != nil {
				return err
			}
			if err := adb.StartServer(cmd.Context()); err != nil {
				return general(err)
			}
			devices, err := adb.ListDevices(cmd.Context())
			if err != nil {
				return general(err)
			}
			printDevices(cmd.OutOrStdout(), devices)
			return nil
		},
	}
}
