package reconcile

import (
	"fmt"

	"voicecheck/internal/textutil"
)

// DisplayLimit bounds the length of diagnostic text shown to the operator.
const DisplayLimit = 200

// Severity ranks diagnostics.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// DiagnosticKind identifies what a diagnostic is about.
type DiagnosticKind string

const (
	// KindOutputParse reports output that could not be read as a result batch.
	KindOutputParse DiagnosticKind = "output_parse"
	// KindSubprocessFailed reports a non-zero exit with no usable results.
	KindSubprocessFailed DiagnosticKind = "subprocess_failed"
	// KindDependency is a remediation hint for a missing engine dependency.
	KindDependency DiagnosticKind = "dependency"
	// KindEngineError is a per-task error with no known remediation.
	KindEngineError DiagnosticKind = "engine_error"
	// KindNoResults reports a well-formed batch with no entries.
	KindNoResults DiagnosticKind = "no_results"
	// KindEngineOutput carries the engine's stderr for reference.
	KindEngineOutput DiagnosticKind = "engine_output"
)

// Diagnostic is an operator-facing message. Display is bounded for screens;
// Detail keeps the full text for the on-disk log.
type Diagnostic struct {
	Kind       DiagnosticKind `json:"kind"`
	Severity   Severity       `json:"severity"`
	Display    string         `json:"display"`
	Detail     string         `json:"detail,omitempty"`
	Dependency Dependency     `json:"dependency,omitempty"`
	ExitCode   int            `json:"exit_code,omitempty"`
}

// String renders the display text with its severity.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Severity, d.Display)
}

func newDiagnostic(kind DiagnosticKind, severity Severity, detail string) Diagnostic {
	return Diagnostic{
		Kind:     kind,
		Severity: severity,
		Display:  textutil.Shorten(textutil.SingleLine(detail), DisplayLimit),
		Detail:   detail,
	}
}
