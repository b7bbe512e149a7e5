// Package apk inspects Android package archives.
package apk

import (
	"archive/zip"
	"fmt"
	"strings"

	"github.com/pavelsavara/xharness/internal/device"
	"github.com/pavelsavara/xharness/internal/messages"
)

// SupportedArchitectures returns the architectures the APK ships native
// libraries for, in archive order. ABI directories this tool does not know
// (armeabi, mips) are skipped. An APK without native code yields nil.
func SupportedArchitectures(path string) ([]device.Architecture, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf(messages.ApkOpenFmt, path, err)
	}
	defer func() {
		_ = r.Close()
	}()

	var archs []device.Architecture
	seen := map[device.Architecture]bool{}
	for _, f := range r.File {
		rest, ok := strings.CutPrefix(f.Name, "lib/")
		if !ok {
			continue
		}
		abi, _, ok := strings.Cut(rest, "/")
		if !ok || abi == "" {
			continue
		}
		arch, err := device.ParseArchitecture(abi)
		if err != nil || seen[arch] {
			continue
		}
		seen[arch] = true
		archs = append(archs, arch)
	}
	return archs, nil
}
