// Package diagnostic defines compiler diagnostics and their SARIF export,
// repurposing the shape of a security-finding report for a compiler
// middle-end: every diagnostic is located by function + block rather than
// by file + line, since the input IR carries no source positions.
package diagnostic

// Severity classifies a diagnostic's impact on the run.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Stage identifies which pipeline stage raised a diagnostic; it doubles as
// the SARIF rule id, since there is no separate rule catalog in a
// compiler middle-end.
type Stage string

const (
	StageLoader Stage = "loader"
	StageBlock  Stage = "block"
	StageCFG    Stage = "cfg"
	StageSSA    Stage = "ssa"
	StageLVN    Stage = "lvn"
)

// Diagnostic is a single compiler diagnostic: what stage raised it, how
// severe it is, which function/block it concerns, and a human-readable
// message. Block-construction and CFG errors reject their function only;
// SSA warnings never change the exit code.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Function string
	BlockID  int
	// HasBlock distinguishes "block 0" from "no block" (e.g. a
	// whole-function parse failure has no block context yet).
	HasBlock bool
	Message  string
}

// NewFunctionDiagnostic builds a diagnostic with no block context.
func NewFunctionDiagnostic(stage Stage, severity Severity, function, message string) Diagnostic {
	return Diagnostic{Stage: stage, Severity: severity, Function: function, Message: message}
}

// NewBlockDiagnostic builds a diagnostic located at a specific block.
func NewBlockDiagnostic(stage Stage, severity Severity, function string, blockID int, message string) Diagnostic {
	return Diagnostic{Stage: stage, Severity: severity, Function: function, BlockID: blockID, HasBlock: true, Message: message}
}
