package messages

// System messages for the orchestration engine and its collaborators.
const (
	// ProcessTimedOut is the sentinel text for a tool that outlived its timeout.
	ProcessTimedOut       = "process timed out"
	ProcessCancelled      = "process cancelled"
	ProcessLaunchFailed   = "process failed to launch"
	ProcessBinaryRequired = "binary is required"
	ProcessOutputCapped   = "[output truncated]"

	// DeviceNotFoundByIDFmt formats a selection failure for an explicit device.
	DeviceNotFoundByIDFmt          = "device %q not found among %d attached device(s)"
	DeviceNotFoundByArchFmt        = "failed to find compatible device: %s (%d attached device(s))"
	DeviceNotFoundNone             = "no device attached"
	DeviceUnknownArchitecture      = "unknown architecture"
	DeviceUnknownArchitectureFmt   = "failed to parse architecture %q; available architectures are: %s"
	DeviceArchitecturesRequired    = "required architecture not specified"
	DeviceAmbiguous                = "more than one device attached"
	DeviceAmbiguousFmt             = "%d devices attached (%s); pass an explicit device"
	DeviceLockTimeoutFmt           = "timed out after %s waiting for device lock %s"
	DeviceLockOpenFmt              = "open device lock %s: %w"
	DeviceLockAcquireFmt           = "lock device %s: %w"
	DeviceLockDirFmt               = "create device lock dir %s: %w"
	BootTimedOut                   = "device did not become ready before the boot deadline"
	BootCancelled                  = "boot wait cancelled"
	BootNotConnectedFmt            = "device %s did not connect (exit %d): %s"
	ToolConstruction               = "invalid tool invocation"
	ToolConstructionFmt            = "%s %s: %s"
	ToolUnsupportedOperation       = "operation not supported by this tool"
	ToolDeviceRequired             = "device id is required"
	ToolPackageIDRequired          = "package identifier is required"
	ToolPackagePathRequired        = "package path is required"
	ToolVirtualUninstall           = "uninstall from a simulator is not supported"
	ToolStartServerFailedFmt       = "%s start-server failed (exit %d): %s"
	ToolListFailedFmt              = "%s device listing failed (exit %d): %s"
	ToolVersionFailedFmt           = "%s version query failed (exit %d): %s"
	ToolParseListingFmt            = "parse %s device listing: %w"
	ApkOpenFmt                     = "open apk %s: %w"
	BundleReadFmt                  = "read bundle info %s: %w"
	BundleParseFmt                 = "parse bundle info %s: %w"
	BundleIdentifierMissingFmt     = "%s does not declare CFBundleIdentifier"
	OrchestrateInvalidRequest      = "invalid request"
	OrchestratePackageIDRequired   = "package identifier is required"
	OrchestratePackagePathRequired = "package path is required"
	OrchestratePackageNotFound     = "package not found"
	OrchestratePackageNotFoundFmt  = "couldn't find %s: %w"
	OrchestrateInferArchFmt        = "infer architectures from %s: %w"
	OrchestrateInstallFailed       = "package installation failed"
	OrchestrateInstallFailedFmt    = "install of %s failed with exit code %d"
	OrchestrateUninstallFailed     = "package uninstall failed"
	OrchestrateUninstallFailedFmt  = "uninstall of %s failed with exit code %d"
	OrchestrateVerifyInstalledFmt  = "%s is not reported as installed after a successful install"
	OrchestrateVerifyRemovedFmt    = "%s is still reported as installed after uninstall"
	OrchestratePanicFmt            = "unexpected failure in state %s: %v"
	OrchestrateSimulatorUninstall  = "uninstall from a simulator is not supported; ephemeral virtual devices need no cleanup"
	OrchestrateNotInstalledNote    = "package was not installed; nothing to remove"
	OrchestrateStaleRemovedNote    = "removed a previously installed copy"
	HistoryOpenFmt                 = "open history database %s: %w"
	HistoryCreateDirFmt            = "create history dir: %w"
	HistoryMigrateFmt              = "migrate history database: %w"
	HistoryInsertFmt               = "record run %s: %w"
	HistoryQueryFmt                = "query run history: %w"
)
