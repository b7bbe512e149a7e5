package messages

// Config messages for configuration loading and validation.
const (
	// ConfigReadFileFmt formats config read errors other than a missing file.
	ConfigReadFileFmt         = "read config file %s: %w"
	ConfigInvalidConfigFmt    = "invalid config %s: %w"
	ConfigUnrecognizedKeysFmt = "%s: unrecognized config keys: %v."
	ConfigValidationGuidance  = "Check the file against the documented sections: [tools], [timeouts], [android], [apple], [[knowledge_base]], [history], [locks]."
	ConfigResolveHomeFmt      = "resolve home dir: %w"
	ConfigExpandPathFmt       = "expand path %q: %w"

	ConfigDurationInvalidFmt       = "invalid duration %q: %w"
	ConfigTimeoutPositiveFmt       = "%s: timeouts.%s must be positive"
	ConfigBootPollTooLongFmt       = "%s: timeouts.boot_poll (%s) must be shorter than timeouts.boot (%s)"
	ConfigToleratedExitCodeZeroFmt = "%s: %s.uninstall_tolerated_exit_codes must not contain 0"
	ConfigToleratedOutputEmptyFmt  = "%s: %s.uninstall_tolerated_output[%d] must not be empty"
	ConfigKnowledgePatternFmt      = "%s: knowledge_base[%d].pattern is invalid: %v"
	ConfigKnowledgePatternEmptyFmt = "%s: knowledge_base[%d].pattern is required"
	ConfigKnowledgeCauseEmptyFmt   = "%s: knowledge_base[%d].cause is required"
	ConfigKnowledgeRemedyFmt       = "%s: knowledge_base[%d].remediation %q is not one of %s"
	ConfigToolPathNewlineFmt       = "%s: tools.%s must not contain a newline"
)
