// Package engine runs the external recognition engine as a subprocess.
//
// A Runner writes the task list to a temporary input document, invokes
//
//	<interpreter> <script> <engine> <language> <model> <input.json>
//
// with UTF-8 forced for the child's text I/O, and drains stdout and stderr
// on two goroutines for the lifetime of the process. Stderr lines carrying a
// percentage are forwarded as Progress. Cancellation interrupts the child,
// escalating to a kill after a grace period; the child is always waited on and
// the input document is always removed.
//
// Runs move through a small state machine (Idle, Running, then one of
// Succeeded, Cancelled, Failed). Succeeded means the process ran to
// completion; a non-zero exit code is reported in RawOutput and left to the
// reconciler to interpret.
package engine
