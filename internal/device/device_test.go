package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArchitecture(t *testing.T) {
	tests := []struct {
		tag  string
		want Architecture
	}{
		{"x86", ArchX86},
		{"x86_64", ArchX86_64},
		{"arm64", ArchArm64},
		{"arm64-v8a", ArchArm64},
		{"ARM64-V8A", ArchArm64},
		{"armv7", ArchArmv7},
		{" armeabi-v7a ", ArchArmv7},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseArchitecture(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArchitectureRejectsUnknownTag(t *testing.T) {
	for _, tag := range []string{"", "mips", "armeabi", "arm"} {
		_, err := ParseArchitecture(tag)
		require.Error(t, err, tag)
		assert.ErrorIs(t, err, ErrUnknownArchitecture)
	}
}

func TestParseArchitecturesDedupesInOrder(t *testing.T) {
	got, err := ParseArchitectures([]string{"x86_64", "arm64-v8a", "arm64", "x86_64"})
	require.NoError(t, err)
	assert.Equal(t, []Architecture{ArchX86_64, ArchArm64}, got)

	_, err = ParseArchitectures([]string{"x86", "sparc"})
	assert.ErrorIs(t, err, ErrUnknownArchitecture)
}

func TestAndroidABI(t *testing.T) {
	assert.Equal(t, "arm64-v8a", ArchArm64.AndroidABI())
	assert.Equal(t, "armeabi-v7a", ArchArmv7.AndroidABI())
	assert.Equal(t, "x86_64", ArchX86_64.AndroidABI())
}

func TestDeviceString(t *testing.T) {
	assert.Equal(t, "emulator-5554", Device{ID: "emulator-5554"}.String())
	assert.Equal(t, "R58M (Pixel_7)", Device{ID: "R58M", Name: "Pixel_7"}.String())
}

func TestFilterClass(t *testing.T) {
	devices := []Device{
		{ID: "phone", Class: ClassPhysical},
		{ID: "emu", Class: ClassVirtual},
	}
	assert.Len(t, FilterClass(devices, ClassUnknown), 2)
	assert.Equal(t, []Device{{ID: "emu", Class: ClassVirtual}}, FilterClass(devices, ClassVirtual))
	assert.Empty(t, FilterClass(devices[:1], ClassVirtual))
}

var listing = []Device{
	{ID: "emulator-5554", Name: "sdk_gphone_x86_64", Architecture: ArchX86_64, State: StateReady, Class: ClassVirtual},
	{ID: "R58M123", Name: "Pixel_7", Architecture: ArchArm64, State: StateReady, Class: ClassPhysical},
	{ID: "emulator-5556", Name: "sdk_gphone_arm64", Architecture: ArchArm64, State: StateBooting, Class: ClassVirtual},
}

func TestSelectExplicitIDIgnoresArchitecture(t *testing.T) {
	got, err := Select(listing, "emulator-5554", []Architecture{ArchArmv7})
	require.NoError(t, err)
	assert.Equal(t, "emulator-5554", got.ID)
}

func TestSelectExplicitIDMatchesName(t *testing.T) {
	got, err := Select(listing, "Pixel_7", nil)
	require.NoError(t, err)
	assert.Equal(t, "R58M123", got.ID)
}

func TestSelectExplicitIDMissing(t *testing.T) {
	_, err := Select(listing, "emulator-9999", nil)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "emulator-9999", nf.DeviceID)
	assert.Equal(t, 3, nf.Attached)
	assert.Contains(t, err.Error(), "emulator-9999")
}

func TestSelectFirstMatchingArchitectureInListingOrder(t *testing.T) {
	got, err := Select(listing, "", []Architecture{ArchArm64})
	require.NoError(t, err)
	assert.Equal(t, "R58M123", got.ID)

	got, err = Select(listing, "", []Architecture{ArchArmv7, ArchX86_64, ArchArm64})
	require.NoError(t, err)
	assert.Equal(t, "emulator-5554", got.ID)
}

func TestSelectNoCompatibleDevice(t *testing.T) {
	_, err := Select(listing, "", []Architecture{ArchX86})
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []Architecture{ArchX86}, nf.Architectures)
	assert.Contains(t, err.Error(), "x86")
}

func TestSelectUnknownArchitectureNeverMatches(t *testing.T) {
	devices := []Device{{ID: "offline-1", Architecture: ArchUnknown, State: StateOffline}}
	_, err := Select(devices, "", []Architecture{ArchX86})
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestSelectRequiresArchitecturesWithoutID(t *testing.T) {
	_, err := Select(listing, "", nil)
	assert.ErrorIs(t, err, ErrNoArchitectures)
}

func TestSelectEmptyListing(t *testing.T) {
	_, err := Select(nil, "", []Architecture{ArchArm64})
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Zero(t, nf.Attached)
}

func TestSelectSole(t *testing.T) {
	got, err := SelectSole(listing[:1])
	require.NoError(t, err)
	assert.Equal(t, "emulator-5554", got.ID)

	_, err = SelectSole(nil)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "no device attached", err.Error())

	_, err = SelectSole(listing)
	assert.ErrorIs(t, err, ErrAmbiguous)
	assert.Contains(t, err.Error(), "R58M123")
}
