package device

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pavelsavara/xharness/internal/messages"
)

// Architecture identifies CPU instruction-set compatibility.
type Architecture string

// Known architectures. ArchUnknown is reported for devices whose ABI could not
// be read; it never matches a requirement.
const (
	ArchUnknown Architecture = ""
	ArchX86     Architecture = "x86"
	ArchX86_64  Architecture = "x86_64"
	ArchArm64   Architecture = "arm64"
	ArchArmv7   Architecture = "armv7"
)

// ErrUnknownArchitecture wraps every architecture parse failure.
var ErrUnknownArchitecture = errors.New(messages.DeviceUnknownArchitecture)

// architectureTags maps accepted spellings, including Android ABI names, to
// the canonical architecture.
var architectureTags = map[string]Architecture{
	"x86":         ArchX86,
	"x86_64":      ArchX86_64,
	"arm64":       ArchArm64,
	"arm64-v8a":   ArchArm64,
	"armv7":       ArchArmv7,
	"armeabi-v7a": ArchArmv7,
}

// Supported returns the canonical architectures in a stable order.
func Supported() []Architecture {
	return []Architecture{ArchX86, ArchX86_64, ArchArm64, ArchArmv7}
}

func (a Architecture) String() string {
	if a == ArchUnknown {
		return "unknown"
	}
	return string(a)
}

// AndroidABI returns the Android ABI directory name for a.
func (a Architecture) AndroidABI() string {
	switch a {
	case ArchArm64:
		return "arm64-v8a"
	case ArchArmv7:
		return "armeabi-v7a"
	default:
		return string(a)
	}
}

// ParseArchitecture converts a tag such as "arm64-v8a" or "x86_64" to an
// Architecture.
func ParseArchitecture(tag string) (Architecture, error) {
	arch, ok := architectureTags[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return ArchUnknown, fmt.Errorf("%w: "+messages.DeviceUnknownArchitectureFmt, ErrUnknownArchitecture, tag, supportedTags())
	}
	return arch, nil
}

// ParseArchitectures parses every tag, dropping duplicates while keeping the
// first-seen order. Any unknown tag fails the whole list.
func ParseArchitectures(tags []string) ([]Architecture, error) {
	archs := make([]Architecture, 0, len(tags))
	seen := make(map[Architecture]bool, len(tags))
	for _, tag := range tags {
		arch, err := ParseArchitecture(tag)
		if err != nil {
			return nil, err
		}
		if seen[arch] {
			continue
		}
		seen[arch] = true
		archs = append(archs, arch)
	}
	return archs, nil
}

// JoinArchitectures renders archs for diagnostics.
func JoinArchitectures(archs []Architecture) string {
	names := make([]string, len(archs))
	for i, a := range archs {
		names[i] = a.String()
	}
	return strings.Join(names, ", ")
}

func supportedTags() string {
	return "x86, x86_64, arm64 (arm64-v8a), armv7 (armeabi-v7a)"
}
