package workflow

import (
	"time"

	"voicecheck/internal/engine"
	"voicecheck/internal/mapping"
	"voicecheck/internal/reconcile"
	"voicecheck/internal/services"
)

// Request describes the inputs of one validation run. Blank fields fall back
// to the configuration.
type Request struct {
	ScriptPath string
	AudioDir   string
	Column     string
	Engine     string
	Language   string
	Model      string
	// Assignments maps audio file names to script ids.
	Assignments mapping.Assignments
	// AutoAssign pairs remaining files whose stem equals a script id.
	AutoAssign bool
}

// StartOptions controls how Start treats an already active run.
type StartOptions struct {
	// Restart cancels and awaits the active run instead of refusing.
	Restart bool
}

// Report is the terminal outcome of a run.
type Report struct {
	RunID string
	State engine.State
	Err   error
	Kind  services.Kind
	// Aborted is set when the run failed before the engine was launched.
	Aborted  bool
	Verdicts []reconcile.Verdict
	// TaskErrors holds one services.ErrEngineReported error per error verdict.
	TaskErrors  []error
	Diagnostics []reconcile.Diagnostic
	Source      reconcile.Source
	Mappings    []mapping.Mapping
	// UnknownFiles lists assignment entries naming files absent from the folder.
	UnknownFiles []string
	Tasks        int
	Encoding     string
	ExitCode     int
	LogPath      string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Counts tallies verdicts by status.
func (r Report) Counts() map[reconcile.Status]int {
	return reconcile.Outcome{Verdicts: r.Verdicts}.Counts()
}

// Duration is the wall time of the run.
func (r Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Sink receives run notifications in emission order. Finished is always the
// last call for a run.
type Sink interface {
	Progress(engine.Progress)
	Finished(Report)
}

// SinkFuncs adapts plain functions to Sink. Nil fields are ignored.
type SinkFuncs struct {
	OnProgress func(engine.Progress)
	OnFinished func(Report)
}

func (s SinkFuncs) Progress(p engine.Progress) {
	if s.OnProgress != nil {
		s.OnProgress(p)
	}
}

func (s SinkFuncs) Finished(r Report) {
	if s.OnFinished != nil {
		s.OnFinished(r)
	}
}
