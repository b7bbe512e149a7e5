package messages

// Doctor messages for the doctor command.
const (
	// DoctorUse is the doctor command name.
	DoctorUse   = "doctor"
	DoctorShort = "Check configuration and device-control tool availability"

	DoctorHealthCheck = "Checking xharness environment...\n"

	DoctorCheckNameConfig  = "Config"
	DoctorCheckNameADB     = "adb"
	DoctorCheckNameMLaunch = "mlaunch"
	DoctorCheckNameHistory = "History"

	DoctorConfigLoadFailedFmt = "Failed to load configuration: %v"
	DoctorConfigLoadRecommend = "Fix the reported key in config.toml, or remove the file to fall back to defaults."
	DoctorConfigLoadedFmt     = "Configuration loaded from %s"
	DoctorConfigDefaultsFmt   = "No config at %s; using defaults"

	DoctorToolVersionFmt       = "%s found: %s"
	DoctorToolMissingFmt       = "%s not usable: %v"
	DoctorADBRecommend         = "Install the Android SDK platform-tools, set ANDROID_HOME, or set [tools] adb in config.toml."
	DoctorMLaunchRecommend     = "Install mlaunch (macOS only) or set [tools] mlaunch in config.toml. Ignore this on hosts that never target Apple devices."
	DoctorHistoryOKFmt         = "History database ready at %s"
	DoctorHistoryFailedFmt     = "History database unavailable at %s: %v"
	DoctorHistoryRecommend     = "Check permissions on the state directory or set [history] enabled = false."
	DoctorHistoryDisabled      = "History recording disabled"
	DoctorStatusOKLabel        = "[OK]  "
	DoctorStatusWarnLabel      = "[WARN]"
	DoctorStatusFailLabel      = "[FAIL]"
	DoctorResultLineFmt        = "%s %-8s %s\n"
	DoctorRecommendationPrefix = "       -> "
	DoctorRecommendationIndent = "          "
	DoctorFailureSummary       = "Some checks failed."
	DoctorSuccessSummary       = "All required checks passed."
)
