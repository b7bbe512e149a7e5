// Package knowledge maps raw tool output to a known failure cause and a
// remediation hint.
package knowledge

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Remediation is a coarse hint category for a known failure.
type Remediation string

const (
	RemediationUnknown      Remediation = "unknown"
	RemediationArchitecture Remediation = "architecture"
	RemediationStorage      Remediation = "storage"
	RemediationSigning      Remediation = "signing"
	RemediationVersion      Remediation = "version"
	RemediationPackage      Remediation = "package"
	RemediationDevice       Remediation = "device"
)

var remediations = []Remediation{
	RemediationUnknown,
	RemediationArchitecture,
	RemediationStorage,
	RemediationSigning,
	RemediationVersion,
	RemediationPackage,
	RemediationDevice,
}

// Remediations lists every valid remediation tag.
func Remediations() []Remediation {
	return slices.Clone(remediations)
}

// ParseRemediation validates a remediation tag.
func ParseRemediation(tag string) (Remediation, bool) {
	r := Remediation(strings.ToLower(strings.TrimSpace(tag)))
	return r, slices.Contains(remediations, r)
}

// Hint is a one-line suggestion for the remediation category.
func (r Remediation) Hint() string {
	switch r {
	case RemediationArchitecture:
		return "rebuild for the device ABI or pick a device with a compatible architecture"
	case RemediationStorage:
		return "free space on the device or wipe the emulator data"
	case RemediationSigning:
		return "re-sign the package or fix the provisioning profile"
	case RemediationVersion:
		return "uninstall the existing package first or bump the version code"
	case RemediationPackage:
		return "rebuild the package; the artifact is not installable as-is"
	case RemediationDevice:
		return "unlock or trust the device, then retry"
	default:
		return ""
	}
}

// Entry is one knowledge-base rule.
type Entry struct {
	Pattern     *regexp.Regexp
	Cause       string
	Remediation Remediation
}

// NewEntry compiles pattern into an Entry.
func NewEntry(pattern, cause string, remediation Remediation) (Entry, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Entry{}, fmt.Errorf("compile %q: %w", pattern, err)
	}
	return Entry{Pattern: re, Cause: cause, Remediation: remediation}, nil
}

// Diagnosis is the classifier verdict for one output.
type Diagnosis struct {
	Cause       string
	Remediation Remediation
	// Matched is the substring of the output the winning rule matched.
	Matched string
}

// Known reports whether a rule matched.
func (d Diagnosis) Known() bool {
	return d.Matched != ""
}

// Unknown is the diagnosis for output no rule recognises.
var Unknown = Diagnosis{Cause: "unrecognised failure", Remediation: RemediationUnknown}

// Base is an ordered, read-only rule table. The first matching rule wins.
type Base struct {
	entries []Entry
}

// New builds a Base evaluating entries in order.
func New(entries ...Entry) *Base {
	return &Base{entries: slices.Clone(entries)}
}

// With returns a new Base that evaluates extras before b's rules.
func (b *Base) With(extras ...Entry) *Base {
	entries := make([]Entry, 0, len(extras)+b.Len())
	entries = append(entries, extras...)
	if b != nil {
		entries = append(entries, b.entries...)
	}
	return &Base{entries: entries}
}

// Len returns the number of rules.
func (b *Base) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Classify returns the diagnosis of the first rule matching output.
func (b *Base) Classify(output string) Diagnosis {
	if b == nil || strings.TrimSpace(output) == "" {
		return Unknown
	}
	for _, e := range b.entries {
		if m := e.Pattern.FindString(output); m != "" {
			return Diagnosis{Cause: e.Cause, Remediation: e.Remediation, Matched: m}
		}
	}
	return Unknown
}
