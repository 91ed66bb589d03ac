// Package workflow runs validation passes end to end.
//
// A Pipeline executes one run at a time on a background goroutine: ingest the
// script file, scan and assign the audio folder, build tasks, preflight the
// codec tool, invoke the engine, and reconcile its output into verdicts. Every
// failure is converted into a Report delivered to the caller's Sink; nothing
// escapes Start once the run is accepted.
//
// Runs are guarded in-process by the active-run flag and across processes by
// a lock file in the state directory. Full engine stderr and diagnostics are
// written to <log_dir>/engine-<run_id>.log for later inspection.
package workflow
