package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBuiltins(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   Remediation
	}{
		{"abi", "Performing Streamed Install\nadb: failed to install app.apk: Failure [INSTALL_FAILED_NO_MATCHING_ABIS: Failed to extract native libraries, res=-113]", RemediationArchitecture},
		{"storage", "Failure [INSTALL_FAILED_INSUFFICIENT_STORAGE]", RemediationStorage},
		{"certificates", "Failure [INSTALL_PARSE_FAILED_NO_CERTIFICATES: Failed collecting certificates]", RemediationSigning},
		{"downgrade", "Failure [INSTALL_FAILED_VERSION_DOWNGRADE]", RemediationVersion},
		{"test only", "Failure [INSTALL_FAILED_TEST_ONLY: installPackageLI]", RemediationPackage},
		{"locked", "error MT1031: Could not launch the app because the device is locked.", RemediationDevice},
		{"profile", "error: The application is not signed with a valid provisioning profile", RemediationSigning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Default().Classify(tt.output)
			assert.True(t, d.Known())
			assert.Equal(t, tt.want, d.Remediation)
			assert.NotEmpty(t, d.Cause)
		})
	}
}

func TestClassifyUnknown(t *testing.T) {
	assert.Equal(t, Unknown, Default().Classify("something odd happened"))
	assert.Equal(t, Unknown, Default().Classify(""))
	assert.False(t, Unknown.Known())

	var nilBase *Base
	assert.Equal(t, Unknown, nilBase.Classify("INSTALL_FAILED_NO_MATCHING_ABIS"))
}

func TestClassifyFirstMatchWins(t *testing.T) {
	first, err := NewEntry(`Failure \[`, "generic failure", RemediationPackage)
	require.NoError(t, err)
	second, err := NewEntry(`INSUFFICIENT_STORAGE`, "storage", RemediationStorage)
	require.NoError(t, err)

	d := New(first, second).Classify("Failure [INSTALL_FAILED_INSUFFICIENT_STORAGE]")
	assert.Equal(t, "generic failure", d.Cause)
	assert.Equal(t, "Failure [", d.Matched)
}

func TestWithEvaluatesExtrasFirst(t *testing.T) {
	extra, err := NewEntry(`NO_MATCHING_ABIS`, "custom abi note", RemediationDevice)
	require.NoError(t, err)

	base := Default()
	extended := base.With(extra)
	assert.Equal(t, base.Len()+1, extended.Len())
	assert.Equal(t, "custom abi note", extended.Classify("INSTALL_FAILED_NO_MATCHING_ABIS").Cause)
	assert.Equal(t, RemediationArchitecture, base.Classify("INSTALL_FAILED_NO_MATCHING_ABIS").Remediation)
}

func TestNewEntryRejectsBadPattern(t *testing.T) {
	_, err := NewEntry(`([`, "broken", RemediationUnknown)
	assert.Error(t, err)
}

func TestParseRemediation(t *testing.T) {
	r, ok := ParseRemediation(" Storage ")
	assert.True(t, ok)
	assert.Equal(t, RemediationStorage, r)

	_, ok = ParseRemediation("reboot")
	assert.False(t, ok)
	assert.Len(t, Remediations(), 7)
	assert.Empty(t, RemediationUnknown.Hint())
	assert.NotEmpty(t, RemediationStorage.Hint())
}
