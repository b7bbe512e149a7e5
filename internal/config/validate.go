package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/pavelsavara/xharness/internal/knowledge"
	"github.com/pavelsavara/xharness/internal/messages"
)

// Validate ensures the config is consistent. path is used for error context.
func (c *Config) Validate(path string) error {
	timeouts := []struct {
		name  string
		value Duration
	}{
		{"command", c.Timeouts.Command},
		{"list", c.Timeouts.List},
		{"boot", c.Timeouts.Boot},
		{"boot_poll", c.Timeouts.BootPoll},
		{"lock", c.Timeouts.Lock},
	}
	for _, timeout := range timeouts {
		if timeout.value.Duration <= 0 {
			return fmt.Errorf(messages.ConfigTimeoutPositiveFmt, path, timeout.name)
		}
	}
	if c.Timeouts.BootPoll.Duration >= c.Timeouts.Boot.Duration {
		return fmt.Errorf(messages.ConfigBootPollTooLongFmt, path, c.Timeouts.BootPoll, c.Timeouts.Boot)
	}

	if strings.ContainsAny(c.Tools.ADB, "\r\n") {
		return fmt.Errorf(messages.ConfigToolPathNewlineFmt, path, "adb")
	}
	if strings.ContainsAny(c.Tools.MLaunch, "\r\n") {
		return fmt.Errorf(messages.ConfigToolPathNewlineFmt, path, "mlaunch")
	}

	if err := validateFamily(path, "android", c.Android); err != nil {
		return err
	}
	if err := validateFamily(path, "apple", c.Apple); err != nil {
		return err
	}

	for i, entry := range c.KnowledgeBase {
		if strings.TrimSpace(entry.Pattern) == "" {
			return fmt.Errorf(messages.ConfigKnowledgePatternEmptyFmt, path, i)
		}
		if _, err := regexp.Compile(entry.Pattern); err != nil {
			return fmt.Errorf(messages.ConfigKnowledgePatternFmt, path, i, err)
		}
		if strings.TrimSpace(entry.Cause) == "" {
			return fmt.Errorf(messages.ConfigKnowledgeCauseEmptyFmt, path, i)
		}
		if entry.Remediation != "" {
			if _, ok := knowledge.ParseRemediation(entry.Remediation); !ok {
				return fmt.Errorf(messages.ConfigKnowledgeRemedyFmt, path, i, entry.Remediation, knowledge.Remediations())
			}
		}
	}
	return nil
}

func validateFamily(path, name string, fc FamilyConfig) error {
	if slices.Contains(fc.UninstallToleratedExitCodes, 0) {
		return fmt.Errorf(messages.ConfigToleratedExitCodeZeroFmt, path, name)
	}
	for i, s := range fc.UninstallToleratedOutput {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf(messages.ConfigToleratedOutputEmptyFmt, path, name, i)
		}
	}
	return nil
}

// Knowledge returns the built-in failure rules extended with the configured
// entries, which take precedence.
func (c *Config) Knowledge() (*knowledge.Base, error) {
	extras := make([]knowledge.Entry, 0, len(c.KnowledgeBase))
	for _, entry := range c.KnowledgeBase {
		remediation := knowledge.RemediationUnknown
		if entry.Remediation != "" {
			remediation, _ = knowledge.ParseRemediation(entry.Remediation)
		}
		e, err := knowledge.NewEntry(entry.Pattern, entry.Cause, remediation)
		if err != nil {
			return nil, err
		}
		extras = append(extras, e)
	}
	return knowledge.Default().With(extras...), nil
}
