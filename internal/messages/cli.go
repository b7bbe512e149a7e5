package messages

// CLI messages for user-facing commands and flags.
const (
	// RootUse is the CLI command name.
	RootUse = "xharness"
	// RootShort is the short description for the root command.
	RootShort         = "Install and uninstall application packages on Android and Apple devices"
	RootVersionFlag   = "Print version and exit"
	RootFlagVerbose   = "Emit debug-level progress logs to stderr"
	RootFlagConfig    = "Path to config.toml (defaults to $XHARNESS_CONFIG or ~/.config/xharness/config.toml)"
	RootFlagNoHistory = "Do not record this run in the history database"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	// AndroidUse is the android command group name.
	AndroidUse            = "android"
	AndroidShort          = "Work with Android devices and emulators through adb"
	AndroidInstallUse     = "install"
	AndroidInstallShort   = "Install an .apk on an Android device without running it"
	AndroidUninstallUse   = "uninstall"
	AndroidUninstallShort = "Uninstall a package from an Android device"
	AndroidDevicesUse     = "devices"
	AndroidDevicesShort   = "List attached Android devices with their architecture"

	AndroidFlagPackageName   = "Package name contained within the supplied APK"
	AndroidFlagApp           = "Path to the .apk to install"
	AndroidFlagDeviceID      = "Device where the APK should be installed"
	AndroidFlagDeviceArch    = "If specified, forces running on a device with given architecture (x86, x86_64, arm64-v8a or armeabi-v7a). Otherwise inferred from the supplied APK. Can be used more than once."
	AndroidFlagLaunchTimeout = "Time to wait for the device to boot, as seconds or a duration (e.g. 300 or 5m)"
	AndroidFlagTimeout       = "Timeout for each adb command, as seconds or a duration"

	// AppleUse is the apple command group name.
	AppleUse            = "apple"
	AppleShort          = "Work with Apple devices and simulators through mlaunch"
	AppleInstallUse     = "install"
	AppleInstallShort   = "Installs a given iOS/tvOS/watchOS application bundle in a target device/simulator"
	AppleUninstallUse   = "uninstall"
	AppleUninstallShort = "Uninstalls a given iOS/tvOS/watchOS application bundle from a target device/simulator"
	AppleDevicesUse     = "devices"
	AppleDevicesShort   = "List attached Apple devices and available simulators"

	AppleFlagApp           = "Path to the .app bundle to install"
	AppleFlagBundleID      = "Bundle identifier of the application"
	AppleFlagTarget        = "Target platform: ios-device, ios-simulator, tvos-device, tvos-simulator, watchos-device, watchos-simulator or maccatalyst"
	AppleFlagDeviceName    = "Name or UDID of the device or simulator to use"
	AppleFlagArch          = "Architecture of the application binary; defaults to the target's usual architecture. Can be used more than once."
	AppleFlagLaunchTimeout = "Time to wait for the device to become ready, as seconds or a duration"
	AppleFlagTimeout       = "Timeout for each mlaunch command, as seconds or a duration"

	AppleUnknownTargetFmt    = "unknown target %q (supported: %s)"
	AppleMacCatalystInstall  = "cannot install application on MacCatalyst"
	AppleMacCatalystNoDevice = "MacCatalyst apps run on the host; nothing to uninstall"

	// DurationFlagInvalidFmt reports a duration flag that is neither seconds nor a duration.
	DurationFlagInvalidFmt = "%q must be an integer number of seconds or a duration (e.g. 90, 1m30s)"

	// OutcomeLineFmt prints the terminal outcome label and operation.
	OutcomeLineFmt       = "%s %s %s\n"
	OutcomeDeviceFmt     = "  device:      %s\n"
	OutcomeNoteFmt       = "  note:        %s\n"
	OutcomeCauseFmt      = "  cause:       %s\n"
	OutcomeRemedyFmt     = "  remediation: %s\n"
	OutcomeErrorFmt      = "  error:       %v\n"
	OutcomeOutputHeader  = "  tool output:"
	OutcomeOutputLineFmt = "    %s\n"
	OutcomeRunFmt        = "  run:         %s\n"

	DevicesHeader     = "ID\tNAME\tARCH\tSTATE\tCLASS"
	DevicesRowFmt     = "%s\t%s\t%s\t%s\t%s\n"
	DevicesNoneFound  = "No devices attached."
	HistoryUse        = "history [run-id]"
	HistoryShort      = "Show recently recorded install and uninstall runs, or one run in detail"
	HistoryFlagLimit  = "Maximum number of runs to show"
	HistoryHeader     = "STARTED\tFAMILY\tOPERATION\tPACKAGE\tDEVICE\tOUTCOME\tDURATION"
	HistoryRowFmt     = "%s\t%s\t%s\t%s\t%s\t%s\t%s\n"
	HistoryEmpty      = "No runs recorded yet."
	HistoryDisabled   = "history is disabled in config ([history] enabled = false)"
	HistoryRecordWarn = "Warning: failed to record run history: %v\n"
	HistoryLimitFmt   = "--limit must be positive, got %d"
	HistoryRunFmt     = "%s:\t%s\n"
	HistoryRunIDFmt   = "run %s: %w"
	ExitCodeSilentFmt = "exit %d"
)
