package tool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelsavara/xharness/internal/boot"
	"github.com/pavelsavara/xharness/internal/device"
	"github.com/pavelsavara/xharness/internal/process"
	"github.com/pavelsavara/xharness/internal/testutil/fakeadb"
)

func TestParseADBDevices(t *testing.T) {
	out := `* daemon not running; starting now at tcp:5037
* daemon started successfully
List of devices attached
emulator-5554          device product:sdk_gphone64_x86_64 model:sdk_gphone64_x86_64 device:emu64xa transport_id:1
R58M123                device usb:1-1 product:panther model:Pixel_7 device:panther transport_id:2
0123456789ABCDEF       unauthorized usb:1-2 transport_id:3
192.168.1.20:5555      offline transport_id:4
emulator-5556          authorizing transport_id:5
ZX1G22                 no permissions (user in plugdev group); see [http://developer.android.com/tools/device.html]

`
	got := parseADBDevices(out)
	require.Len(t, got, 6)

	assert.Equal(t, device.Device{ID: "emulator-5554", Name: "sdk_gphone64_x86_64", State: device.StateReady, Class: device.ClassVirtual}, got[0])
	assert.Equal(t, device.Device{ID: "R58M123", Name: "Pixel_7", State: device.StateReady, Class: device.ClassPhysical}, got[1])
	assert.Equal(t, device.StateOffline, got[2].State)
	assert.Equal(t, device.StateOffline, got[3].State)
	assert.Equal(t, device.StateBooting, got[4].State)
	assert.Equal(t, device.ClassVirtual, got[4].Class)
	assert.Equal(t, device.StateOffline, got[5].State)
}

func TestParseADBDevicesEmpty(t *testing.T) {
	assert.Empty(t, parseADBDevices("List of devices attached\n\n"))
	assert.Empty(t, parseADBDevices(""))
}

func newTestAndroid(adb *fakeadb.ADB) *Android {
	return NewAndroid(Config{
		Binary:    "adb",
		Invoker:   adb,
		Tolerance: DefaultAndroidTolerance,
		Timeouts:  Timeouts{Command: time.Second, List: time.Second},
	})
}

func TestAndroidListDevicesQueriesArchitectureOfReadyDevices(t *testing.T) {
	adb := fakeadb.New(
		&fakeadb.Device{Serial: "emulator-5554", Model: "sdk_x86_64", ABI: "x86_64"},
		&fakeadb.Device{Serial: "R58M123", Model: "Pixel_7", ABI: "arm64-v8a"},
		&fakeadb.Device{Serial: "OFF1", ABI: "arm64-v8a", State: "offline"},
	)

	devices, err := newTestAndroid(adb).ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 3)
	assert.Equal(t, device.ArchX86_64, devices[0].Architecture)
	assert.Equal(t, device.ArchArm64, devices[1].Architecture)
	assert.Equal(t, device.ArchUnknown, devices[2].Architecture)
	assert.Equal(t, 2, adb.Count("query-architecture"))
}

func TestAndroidListDevicesUnknownABIStaysUnknown(t *testing.T) {
	adb := fakeadb.New(&fakeadb.Device{Serial: "old", ABI: "armeabi"})

	devices, err := newTestAndroid(adb).ListDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, device.ArchUnknown, devices[0].Architecture)
}

func TestAndroidListDevicesFailure(t *testing.T) {
	adb := fakeadb.New()
	adb.Fail["list-devices"] = process.Result{ExitCode: 1, Output: "error: protocol fault\n"}

	_, err := newTestAndroid(adb).ListDevices(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "protocol fault")
}

func TestAndroidListDevicesTimeout(t *testing.T) {
	adb := fakeadb.New()
	adb.Hang["list-devices"] = true
	a := NewAndroid(Config{Invoker: adb, Timeouts: Timeouts{List: 50 * time.Millisecond}})

	_, err := a.ListDevices(context.Background())
	assert.ErrorIs(t, err, process.ErrTimeout)
}

func TestAndroidBootProbeWaitsForDeviceOnce(t *testing.T) {
	adb := fakeadb.New(&fakeadb.Device{Serial: "emulator-5554", ABI: "x86_64", BootPolls: 2})
	a := newTestAndroid(adb)

	err := boot.Wait(context.Background(), a.BootProbe(device.Device{ID: "emulator-5554"}), boot.Options{Timeout: 5 * time.Second, Interval: 10 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 1, adb.Count("wait-for-device"))
	assert.Equal(t, 3, adb.Count("boot-state"))
}

func TestAndroidBootProbeTimesOutWhenDeviceNeverConnects(t *testing.T) {
	adb := fakeadb.New(&fakeadb.Device{Serial: "emulator-5554"})
	adb.Hang["wait-for-device"] = true
	a := newTestAndroid(adb)

	err := boot.Wait(context.Background(), a.BootProbe(device.Device{ID: "emulator-5554"}), boot.Options{Timeout: 100 * time.Millisecond, Interval: 10 * time.Millisecond})
	assert.ErrorIs(t, err, boot.ErrTimeout)
}

func TestAndroidInstallVerifyUninstall(t *testing.T) {
	adb := fakeadb.New(&fakeadb.Device{Serial: "emulator-5554", ABI: "x86_64"})
	adb.Packages["/tmp/app.apk"] = "net.dot.app"
	a := newTestAndroid(adb)
	d := device.Device{ID: "emulator-5554"}
	ctx := context.Background()

	res, err := a.Install(ctx, d, "/tmp/app.apk")
	require.NoError(t, err)
	assert.True(t, res.Succeeded())

	installed, err := a.Verify(ctx, d, "net.dot.app")
	require.NoError(t, err)
	assert.True(t, installed)

	require.NoError(t, a.Kill(ctx, d, "net.dot.app"))

	res, err = a.Uninstall(ctx, d, "net.dot.app")
	require.NoError(t, err)
	assert.True(t, res.Succeeded())

	installed, err = a.Verify(ctx, d, "net.dot.app")
	require.NoError(t, err)
	assert.False(t, installed)

	res, err = a.Uninstall(ctx, d, "net.dot.app")
	require.NoError(t, err)
	assert.False(t, res.Succeeded())
	assert.True(t, a.UninstallTolerated(res))
}

func TestAndroidStartServerAndVersion(t *testing.T) {
	adb := fakeadb.New()
	a := newTestAndroid(adb)

	require.NoError(t, a.StartServer(context.Background()))
	v, err := a.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Android Debug Bridge version 1.0.41", v)

	adb.Fail["start-server"] = process.Result{ExitCode: 1, Output: "cannot bind 'tcp:5037'\n"}
	err = a.StartServer(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot bind")
}

func TestAndroidCapabilities(t *testing.T) {
	caps := NewAndroid(Config{}).Capabilities()
	assert.True(t, caps.Daemon)
	assert.True(t, caps.UninstallsVirtual)
	assert.True(t, caps.VerifiesInstall)
	assert.True(t, caps.KillsAfterInstall)
}

func TestToleranceAllows(t *testing.T) {
	tol := Tolerance{Output: []string{"Unknown package"}, ExitCodes: []int{5}}

	assert.False(t, tol.Allows(process.Result{ExitCode: 0, Output: "Unknown package"}))
	assert.True(t, tol.Allows(process.Result{ExitCode: 1, Output: "Failure [Unknown package: x]"}))
	assert.True(t, tol.Allows(process.Result{ExitCode: 5}))
	assert.False(t, tol.Allows(process.Result{ExitCode: 1, Output: "Failure [DELETE_FAILED_DEVICE_POLICY_MANAGER]"}))
	assert.False(t, Tolerance{Output: []string{""}}.Allows(process.Result{ExitCode: 1, Output: "x"}))
}

func TestRunLogsConstructionErrorWithoutInvoking(t *testing.T) {
	adb := fakeadb.New()
	a := newTestAndroid(adb)

	_, err := a.Install(context.Background(), device.Device{}, "/tmp/app.apk")
	assert.ErrorIs(t, err, ErrConstruction)
	assert.Empty(t, adb.Calls())
}
