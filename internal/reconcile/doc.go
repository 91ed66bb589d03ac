// Package reconcile turns captured engine output into validation verdicts and
// operator-facing diagnostics.
//
// Stdout is parsed as the result batch first. When that yields nothing usable
// the last complete top-level JSON object on stderr mentioning "results" is
// tried instead, since some engines log their payload interleaved with
// diagnostics. Errors reported by the engine are matched against known missing
// dependency signatures so the operator gets a remediation hint instead of a
// raw traceback.
package reconcile
