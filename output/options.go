package output

// VerbosityLevel controls how much the Logger prints.
type VerbosityLevel int

const (
	// VerbosityDefault prints only warnings, errors and the final result.
	VerbosityDefault VerbosityLevel = iota
	// VerbosityVerbose additionally prints progress and statistics.
	VerbosityVerbose
	// VerbosityDebug additionally prints timestamped debug diagnostics.
	VerbosityDebug
)
