package knowledge

import "regexp"

// builtin is evaluated after any configured entries. Android failures come
// first because adb reports a stable INSTALL_* vocabulary.
var builtin = []Entry{
	{regexp.MustCompile(`INSTALL_FAILED_NO_MATCHING_ABIS`), "package has no native libraries for the device ABI", RemediationArchitecture},
	{regexp.MustCompile(`INSTALL_FAILED_INSUFFICIENT_STORAGE`), "not enough free storage on the device", RemediationStorage},
	{regexp.MustCompile(`INSTALL_PARSE_FAILED_NO_CERTIFICATES|INSTALL_PARSE_FAILED_INCONSISTENT_CERTIFICATES`), "package is unsigned or its signature is inconsistent", RemediationSigning},
	{regexp.MustCompile(`INSTALL_FAILED_UPDATE_INCOMPATIBLE`), "an installed package with the same name has a different signature", RemediationVersion},
	{regexp.MustCompile(`INSTALL_FAILED_VERSION_DOWNGRADE`), "installed package has a higher version code", RemediationVersion},
	{regexp.MustCompile(`INSTALL_FAILED_TEST_ONLY`), "package is marked testOnly and the installer did not allow it", RemediationPackage},
	{regexp.MustCompile(`INSTALL_FAILED_INVALID_APK|INSTALL_PARSE_FAILED_NOT_APK`), "file is not a valid APK", RemediationPackage},
	{regexp.MustCompile(`INSTALL_FAILED_OLDER_SDK`), "package requires a newer Android version than the device runs", RemediationVersion},
	{regexp.MustCompile(`No space left on device`), "not enough free storage on the device", RemediationStorage},
	{regexp.MustCompile(`(?i)device is locked|DeviceLocked`), "device is locked", RemediationDevice},
	{regexp.MustCompile(`(?i)provisioning profile`), "application is not covered by a valid provisioning profile", RemediationSigning},
	{regexp.MustCompile(`(?i)untrusted developer|0xe8008015|0xe800801c`), "developer certificate is not trusted on the device", RemediationDevice},
	{regexp.MustCompile(`(?i)device unauthorized`), "device has not authorised this host for debugging", RemediationDevice},
}

// Default returns a Base holding only the built-in rules.
func Default() *Base {
	return New(builtin...)
}
