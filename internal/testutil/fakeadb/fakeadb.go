// Package fakeadb simulates adb and its attached devices behind a
// process.Invoker so tests can drive the real argument builders and parsers.
package fakeadb

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pavelsavara/xharness/internal/process"
)

// Device is one simulated device.
type Device struct {
	Serial string
	Model  string
	ABI    string
	// State is the `adb devices` state column; empty means "device".
	State string
	// BootPolls is how many sys.boot_completed queries report "0" first.
	BootPolls int
	Installed map[string]bool
}

// ADB is a simulated adb binary. Zero value is an adb with no devices.
type ADB struct {
	mu      sync.Mutex
	devices []*Device
	calls   [][]string

	// Hang lists operations that block until their timeout or cancellation.
	Hang map[string]bool
	// Fail maps operations to a scripted non-zero result.
	Fail map[string]process.Result
	// Packages maps APK paths to the package they install; unknown paths
	// install a package named after the file.
	Packages map[string]string
	// OnInvoke runs before each simulated call, after it is recorded.
	OnInvoke func(op string)
}

// New returns a simulated adb with the given devices attached.
func New(devices ...*Device) *ADB {
	for _, d := range devices {
		if d.Installed == nil {
			d.Installed = map[string]bool{}
		}
	}
	return &ADB{devices: devices, Hang: map[string]bool{}, Fail: map[string]process.Result{}, Packages: map[string]string{}}
}

// Calls returns the argv of every invocation, in order.
func (f *ADB) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Ops returns the operation name of every invocation, in order.
func (f *ADB) Ops() []string {
	calls := f.Calls()
	ops := make([]string, len(calls))
	for i, args := range calls {
		_, op, _ := classify(args)
		ops[i] = op
	}
	return ops
}

// Count returns how many times op was invoked.
func (f *ADB) Count(op string) int {
	n := 0
	for _, o := range f.Ops() {
		if o == op {
			n++
		}
	}
	return n
}

// IsInstalled reports whether packageID is installed on serial.
func (f *ADB) IsInstalled(serial, packageID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.find(serial)
	return d != nil && d.Installed[packageID]
}

// Invoke implements process.Invoker.
func (f *ADB) Invoke(ctx context.Context, req process.Request) (process.Result, error) {
	if err := ctx.Err(); err != nil {
		return process.Result{ExitCode: -1}, process.ContextError(err)
	}
	serial, op, rest := classify(req.Args)

	f.mu.Lock()
	f.calls = append(f.calls, slices.Clone(req.Args))
	hang := f.Hang[op]
	scripted, failing := f.Fail[op]
	hook := f.OnInvoke
	f.mu.Unlock()

	if hook != nil {
		hook(op)
	}
	if hang {
		return wait(ctx, req.Timeout)
	}
	if failing {
		return scripted, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.simulate(serial, op, rest), nil
}

func wait(ctx context.Context, timeout time.Duration) (process.Result, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case <-ctx.Done():
		return process.Result{ExitCode: -1}, process.ContextError(ctx.Err())
	case <-expired:
		return process.Result{ExitCode: -1}, process.ErrTimeout
	}
}

func (f *ADB) simulate(serial, op string, rest []string) process.Result {
	switch op {
	case "start-server":
		return ok("")
	case "list-devices":
		var b strings.Builder
		b.WriteString("List of devices attached\n")
		for i, d := range f.devices {
			state := d.State
			if state == "" {
				state = "device"
			}
			fmt.Fprintf(&b, "%s\t%s usb:1-%d product:sdk model:%s device:generic transport_id:%d\n", d.Serial, state, i+1, d.Model, i+1)
		}
		return ok(b.String())
	case "get-version":
		return ok("Android Debug Bridge version 1.0.41\nVersion 35.0.1-11580240\n")
	}

	d := f.find(serial)
	if d == nil {
		return process.Result{ExitCode: 1, Output: fmt.Sprintf("adb: device '%s' not found\n", serial)}
	}
	switch op {
	case "query-architecture":
		return ok(d.ABI + "\n")
	case "wait-for-device":
		return ok("")
	case "boot-state":
		if d.BootPolls > 0 {
			d.BootPolls--
			return ok("0\n")
		}
		return ok("1\n")
	case "install":
		pkg := f.packageFor(rest[0])
		d.Installed[pkg] = true
		return ok("Performing Streamed Install\nSuccess\n")
	case "uninstall":
		if !d.Installed[rest[0]] {
			return process.Result{ExitCode: 1, Output: "Failure [DELETE_FAILED_INTERNAL_ERROR]\n"}
		}
		delete(d.Installed, rest[0])
		return ok("Success\n")
	case "verify":
		if !d.Installed[rest[0]] {
			return process.Result{ExitCode: 1}
		}
		return ok("package:/data/app/" + rest[0] + "/base.apk\n")
	case "kill":
		return ok("")
	default:
		return process.Result{ExitCode: 1, Output: "adb: unknown command " + strings.Join(rest, " ") + "\n"}
	}
}

func (f *ADB) find(serial string) *Device {
	for _, d := range f.devices {
		if d.Serial == serial {
			return d
		}
	}
	return nil
}

func (f *ADB) packageFor(path string) string {
	if pkg, ok := f.Packages[path]; ok {
		return pkg
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func ok(out string) process.Result {
	return process.Result{ExitCode: 0, Output: out, Duration: time.Millisecond}
}

// classify splits adb argv into the -s serial, an operation name, and the
// operation arguments.
func classify(args []string) (serial string, op string, rest []string) {
	if len(args) >= 2 && args[0] == "-s" {
		serial = args[1]
		args = args[2:]
	}
	if len(args) == 0 {
		return serial, "", nil
	}
	switch {
	case args[0] == "devices":
		return serial, "list-devices", args[1:]
	case args[0] == "version":
		return serial, "get-version", nil
	case args[0] == "shell" && len(args) >= 3 && args[1] == "getprop" && args[2] == "ro.product.cpu.abi":
		return serial, "query-architecture", nil
	case args[0] == "shell" && len(args) >= 3 && args[1] == "getprop" && args[2] == "sys.boot_completed":
		return serial, "boot-state", nil
	case args[0] == "shell" && len(args) >= 4 && args[1] == "pm" && args[2] == "path":
		return serial, "verify", args[3:]
	case args[0] == "shell" && len(args) >= 4 && args[1] == "am" && args[2] == "force-stop":
		return serial, "kill", args[3:]
	case args[0] == "install" || args[0] == "uninstall":
		if len(args) < 2 {
			return serial, args[0], []string{""}
		}
		return serial, args[0], args[1:]
	default:
		return serial, args[0], args[1:]
	}
}
