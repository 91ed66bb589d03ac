package engine

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"voicecheck/internal/logging"
	"voicecheck/internal/services"
	"voicecheck/internal/tasks"
)

const (
	defaultDrainTimeout = 2 * time.Second
	defaultCancelGrace  = 5 * time.Second
)

// Config describes how to invoke the engine.
type Config struct {
	Interpreter string
	ScriptPath  string
	Engine      Engine
	// Language defaults to DefaultLanguage(Engine).
	Language string
	// Model is the whisper model size; ignored for other engines.
	Model string
	// DrainTimeout bounds the wait for the output readers after the process exits.
	DrainTimeout time.Duration
	// CancelGrace is how long an interrupted child has before it is killed.
	// Zero uses the default; a negative value kills the child immediately.
	CancelGrace time.Duration
	// Timeout caps the whole run. Zero disables it.
	Timeout time.Duration
	// TempDir receives the input document. Empty uses the system temp directory.
	TempDir string
}

// RawOutput is what the engine produced during one run.
type RawOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
	State    State
}

// Option configures the runner.
type Option func(*Runner)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner executes engine runs. A Runner may be reused but is not meant to run
// concurrently with itself; the workflow package enforces one active run.
type Runner struct {
	cfg    Config
	logger *slog.Logger
}

// New validates cfg and returns a runner.
func New(cfg Config, opts ...Option) (*Runner, error) {
	cfg.Interpreter = strings.TrimSpace(cfg.Interpreter)
	if cfg.Interpreter == "" {
		return nil, errors.New("engine interpreter required")
	}
	cfg.ScriptPath = strings.TrimSpace(cfg.ScriptPath)
	if cfg.ScriptPath == "" {
		return nil, errors.New("engine script path required")
	}
	e, err := Parse(string(cfg.Engine))
	if err != nil {
		return nil, err
	}
	cfg.Engine = e
	if strings.TrimSpace(cfg.Language) == "" {
		cfg.Language = DefaultLanguage(e)
	}
	cfg.Model = ModelFor(e, cfg.Model)
	if cfg.Engine == Whisper && !ValidWhisperModel(cfg.Model) {
		return nil, fmt.Errorf("unknown whisper model %q", cfg.Model)
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = defaultDrainTimeout
	}
	if cfg.CancelGrace == 0 {
		cfg.CancelGrace = defaultCancelGrace
	}

	r := &Runner{cfg: cfg, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "engine")
	return r, nil
}

// Config returns the effective configuration after defaults were applied.
func (r *Runner) Config() Config {
	return r.cfg
}

// Args returns the argument list passed to the interpreter for input.
func (r *Runner) Args(input string) []string {
	return []string{r.cfg.ScriptPath, string(r.cfg.Engine), r.cfg.Language, r.cfg.Model, input}
}

// Run executes the engine over items. Progress, when non-nil, is called from
// the stderr reader while the run is active and never after Run returns.
//
// The returned error is nil for a completed process regardless of its exit
// code. Cancellation returns services.ErrCancelled with empty output, an
// exceeded Timeout returns services.ErrTimeout, and a failure to start the
// child returns services.ErrLaunch.
//
// Cancellation interrupts the child and kills it once CancelGrace elapses. A
// child that ignores the interrupt and writes nothing keeps Run blocked until
// that kill, so callers wanting a prompt return set a short or negative grace.
func (r *Runner) Run(ctx context.Context, items []tasks.Task, progress func(Progress)) (RawOutput, error) {
	machine := NewMachine()
	_ = machine.Transition(Running)
	logger := logging.WithContext(ctx, r.logger)

	finish := func(state State, out RawOutput, err error) (RawOutput, error) {
		_ = machine.Transition(state)
		out.State = machine.State()
		return out, err
	}

	artifact, err := tasks.WriteArtifact(r.cfg.TempDir, items)
	if err != nil {
		return finish(Failed, RawOutput{ExitCode: -1}, services.Wrap(services.ErrLaunch, "engine", "write input", "could not write engine input document", err))
	}
	defer r.removeArtifact(logger, artifact)

	runCtx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, r.cfg.Interpreter, r.Args(artifact)...) //nolint:gosec
	cmd.Env = append(os.Environ(), "PYTHONIOENCODING=utf-8", "PYTHONUTF8=1")
	if r.cfg.CancelGrace > 0 {
		cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
		cmd.WaitDelay = r.cfg.CancelGrace
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return finish(Failed, RawOutput{ExitCode: -1}, services.Wrap(services.ErrLaunch, "engine", "create pipes", "could not create stdout pipe", err))
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(stdoutR, stdoutW)
		return finish(Failed, RawOutput{ExitCode: -1}, services.Wrap(services.ErrLaunch, "engine", "create pipes", "could not create stderr pipe", err))
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	logger.Info("engine starting",
		logging.String(logging.FieldEngine, string(r.cfg.Engine)),
		logging.String("interpreter", r.cfg.Interpreter),
		logging.String("script", r.cfg.ScriptPath),
		logging.Int("tasks", len(items)),
	)
	started := time.Now()
	if err := cmd.Start(); err != nil {
		closeAll(stdoutR, stdoutW, stderrR, stderrW)
		return finish(Failed, RawOutput{ExitCode: -1}, services.Wrap(services.ErrLaunch, "engine", "start", fmt.Sprintf("could not start %s", r.cfg.Interpreter), err))
	}
	// The child holds its own copies of the write ends.
	closeAll(stdoutW, stderrW)

	gate := &progressGate{sink: progress}
	var stdout, stderr strings.Builder
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		drain(ctx, stdoutR, &stdout, nil)
	}()
	go func() {
		defer wg.Done()
		drain(ctx, stderrR, &stderr, func(line string) {
			if update, ok := ParseProgress(line); ok {
				gate.emit(update)
			}
		})
	}()

	waitErr := cmd.Wait()
	if !r.join(&wg) {
		logging.WarnWithContext(logger, "engine output readers did not finish; closing pipes", "engine_drain_timeout",
			logging.Duration("drain_timeout", r.cfg.DrainTimeout),
			logging.String(logging.FieldErrorHint, "the engine may have left a child process holding its output open"),
			logging.String(logging.FieldImpact, "trailing engine output may be lost"),
		)
		closeAll(stdoutR, stderrR)
		wg.Wait()
	}
	gate.close()
	closeAll(stdoutR, stderrR)

	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	elapsed := time.Since(started)

	if ctx.Err() != nil {
		logger.Info("engine run cancelled", logging.Duration("elapsed", elapsed))
		return finish(Cancelled, RawOutput{ExitCode: exitCode}, services.Wrap(services.ErrCancelled, "engine", "run", "run cancelled", ctx.Err()))
	}
	if runCtx.Err() != nil {
		logging.ErrorWithContext(logger, "engine run timed out", "engine_timeout",
			logging.Duration("timeout", r.cfg.Timeout),
			logging.String(logging.FieldErrorHint, "raise engine.run_timeout_seconds or validate fewer files per run"),
		)
		return finish(Failed, RawOutput{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode},
			services.Wrap(services.ErrTimeout, "engine", "run", fmt.Sprintf("engine exceeded %s", r.cfg.Timeout), runCtx.Err()))
	}
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		logger.Debug("engine wait returned error", logging.Error(waitErr))
	}

	logger.Info("engine finished",
		logging.Int("exit_code", exitCode),
		logging.Duration("elapsed", elapsed),
		logging.Int("stdout_bytes", stdout.Len()),
		logging.Int("stderr_bytes", stderr.Len()),
	)
	return finish(Succeeded, RawOutput{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode}, nil)
}

// join waits for the readers for at most DrainTimeout.
func (r *Runner) join(wg *sync.WaitGroup) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	timer := time.NewTimer(r.cfg.DrainTimeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

func (r *Runner) removeArtifact(logger *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.WarnWithContext(logger, "engine input document not removed", "artifact_cleanup_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the file manually"),
			logging.String(logging.FieldImpact, "a temporary file remains on disk"),
		)
	}
}

// maxLineBytes caps a single output line; longer runs are split.
const maxLineBytes = 64 * 1024

// drain appends everything read from r to buf until EOF, a read error, or ctx
// is cancelled. Lines end at \n or \r so redrawn progress bars are seen as
// they are written; onLine sees each non-empty line without its terminator.
func drain(ctx context.Context, r io.Reader, buf *strings.Builder, onLine func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 4096), 2*maxLineBytes)
	scanner.Split(splitOutputLines)
	for scanner.Scan() {
		token := scanner.Text()
		buf.WriteString(token)
		if onLine != nil {
			if line := strings.TrimRight(token, "\r\n"); line != "" {
				onLine(line)
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// splitOutputLines yields tokens ending at the first \r or \n, terminator
// included, so the captured bytes are unchanged. A \r\n pair yields the \n
// as its own empty line.
func splitOutputLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i+1], nil
	}
	if atEOF || len(data) >= maxLineBytes {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// progressGate forwards progress until closed. Updates racing with close are
// either delivered before close returns or dropped.
type progressGate struct {
	mu     sync.Mutex
	sink   func(Progress)
	closed bool
}

func (g *progressGate) emit(p Progress) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || g.sink == nil {
		return
	}
	g.sink(p)
}

func (g *progressGate) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}
