package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"voicecheck/internal/config"
	"voicecheck/internal/logging"
	"voicecheck/internal/reconcile"
	"voicecheck/internal/services"
)

// Pipeline coordinates validation runs. At most one run is active at a time.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger

	mu       sync.Mutex
	active   bool
	runID    string
	cancel   context.CancelFunc
	done     chan struct{}
	verdicts []reconcile.Verdict
	last     *Report
}

// New constructs a pipeline bound to cfg.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "workflow"),
	}
}

// Start launches a run in the background and returns its id. When a run is
// already active Start returns services.ErrRunActive unless opts.Restart is
// set, in which case the active run is cancelled and awaited first.
func (p *Pipeline) Start(ctx context.Context, req Request, opts StartOptions, sink Sink) (string, error) {
	if p.cfg == nil {
		return "", services.Wrap(services.ErrConfiguration, "workflow", "start", "configuration is required", nil)
	}
	if sink == nil {
		sink = SinkFuncs{}
	}

	p.mu.Lock()
	for p.active {
		if !opts.Restart {
			id := p.runID
			p.mu.Unlock()
			return "", services.Wrap(services.ErrRunActive, "workflow", "start", fmt.Sprintf("run %s is still in progress", id), nil)
		}
		cancel, done := p.cancel, p.done
		p.mu.Unlock()
		p.logger.Info("restarting: cancelling active run", logging.String(logging.FieldEventType, "run_restart"))
		cancel()
		<-done
		p.mu.Lock()
	}

	lock, err := p.acquireLock()
	if err != nil {
		p.mu.Unlock()
		return "", err
	}

	runID := uuid.NewString()
	runCtx, cancel := context.WithCancel(services.WithRunID(ctx, runID))
	done := make(chan struct{})
	p.active = true
	p.runID = runID
	p.cancel = cancel
	p.done = done
	p.verdicts = nil
	p.mu.Unlock()

	go p.run(runCtx, runID, req, sink, lock, cancel, done)
	return runID, nil
}

// Cancel requests cancellation of the active run, if any.
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the active run, if any, has delivered its report.
func (p *Pipeline) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Active reports whether a run is in progress.
func (p *Pipeline) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Verdicts returns the verdicts of the last successful run. The list is
// cleared when a run starts.
func (p *Pipeline) Verdicts() []reconcile.Verdict {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]reconcile.Verdict, len(p.verdicts))
	copy(out, p.verdicts)
	return out
}

// LastReport returns the report of the most recent finished run.
func (p *Pipeline) LastReport() (Report, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return Report{}, false
	}
	return *p.last, true
}

func (p *Pipeline) run(ctx context.Context, runID string, req Request, sink Sink, lock *flock.Flock, cancel context.CancelFunc, done chan struct{}) {
	logger := logging.WithContext(ctx, p.logger)
	report := Report{RunID: runID}

	defer func() {
		if r := recover(); r != nil {
			report.State = stateFailed
			report.Err = fmt.Errorf("validation run panicked: %v", r)
			report.Kind = services.Classify(report.Err)
			logging.ErrorWithContext(logger, "validation run panicked", "run_panic",
				logging.String("panic", fmt.Sprint(r)),
				logging.String(logging.FieldErrorHint, "report this failure with the engine log attached"),
			)
		}
		p.complete(logger, report, sink, lock, cancel, done)
	}()

	report = p.execute(ctx, logger, req, sink, report)
}

func (p *Pipeline) complete(logger *slog.Logger, report Report, sink Sink, lock *flock.Flock, cancel context.CancelFunc, done chan struct{}) {
	if report.FinishedAt.IsZero() {
		report.FinishedAt = now()
	}
	if report.Kind == "" && report.Err != nil {
		report.Kind = services.Classify(report.Err)
	}

	p.mu.Lock()
	if report.State == stateSucceeded {
		p.verdicts = report.Verdicts
	}
	snapshot := report
	p.last = &snapshot
	p.mu.Unlock()

	sink.Finished(report)

	if lock != nil {
		if err := lock.Unlock(); err != nil {
			logging.WarnWithContext(logger, "run lock not released", "run_lock_release_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the lock file in state_dir if later runs are refused"),
				logging.String(logging.FieldImpact, "other processes may be refused until this one exits"),
			)
		}
	}

	p.mu.Lock()
	p.active = false
	p.runID = ""
	p.cancel = nil
	p.mu.Unlock()
	cancel()
	close(done)
}

// acquireLock takes the cross-process run lock. A nil lock is returned when
// no state directory is configured.
func (p *Pipeline) acquireLock() (*flock.Flock, error) {
	path := p.cfg.LockPath()
	if path == "" {
		return nil, nil
	}
	if err := p.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "lock", "could not create state directory", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "lock", fmt.Sprintf("acquire run lock %s", path), err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrRunActive, "workflow", "lock", "another voicecheck process is running a validation", nil)
	}
	return lock, nil
}
