package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"voicecheck/internal/engine"
	"voicecheck/internal/logging"
	"voicecheck/internal/mapping"
	"voicecheck/internal/preflight"
	"voicecheck/internal/reconcile"
	"voicecheck/internal/script"
	"voicecheck/internal/services"
	"voicecheck/internal/tasks"
)

const (
	stateSucceeded = engine.Succeeded
	stateCancelled = engine.Cancelled
	stateFailed    = engine.Failed
)

var now = time.Now

// execute walks the run stages. It returns the report for every outcome;
// errors are recorded on the report rather than returned.
func (p *Pipeline) execute(ctx context.Context, logger *slog.Logger, req Request, sink Sink, report Report) Report {
	report.StartedAt = now()
	req = p.withDefaults(req)

	fail := func(err error) Report {
		report.Err = err
		report.Kind = services.Classify(err)
		report.Aborted = services.Aborted(err)
		report.State = stateFailed
		if report.Kind == services.KindCancelled || ctx.Err() != nil {
			report.State = stateCancelled
		}
		report.FinishedAt = now()
		p.logOutcome(logger, report)
		return report
	}

	// ingest
	stageCtx := services.WithStage(ctx, "ingest")
	table, err := script.Load(req.ScriptPath, script.Options{
		Delimiter:        p.cfg.Script.Delimiter,
		FallbackEncoding: p.cfg.Script.FallbackEncoding,
		Logger:           logging.WithContext(stageCtx, logger),
	})
	if err != nil {
		return fail(err)
	}
	report.Encoding = table.Encoding

	// map
	stageCtx = services.WithStage(ctx, "map")
	mappings, err := mapping.Scan(req.AudioDir)
	if err != nil {
		return fail(err)
	}
	report.UnknownFiles = mapping.Apply(mappings, req.Assignments)
	if len(report.UnknownFiles) > 0 {
		logging.WarnWithContext(logging.WithContext(stageCtx, logger), "assignments reference files not in the audio folder", "assignment_unknown_files",
			logging.String("files", strings.Join(report.UnknownFiles, ", ")),
			logging.String(logging.FieldErrorHint, "check file names in the assignment list"),
			logging.String(logging.FieldImpact, "those assignments are ignored"),
		)
	}
	if req.AutoAssign {
		n := mapping.AutoAssign(mappings, table.IDs)
		logging.WithContext(stageCtx, logger).Debug("auto-assigned audio files", logging.Int("count", n))
	}
	report.Mappings = mappings

	// build
	stageCtx = services.WithStage(ctx, "build")
	if table.Empty() {
		return fail(services.Wrap(services.ErrNoTasks, "build", "build tasks", "script file has no rows", nil))
	}
	if _, ok := tasks.ColumnIndex(table.Header(), req.Column); !ok {
		return fail(services.Wrap(services.ErrNoMatchingColumn, "build", "resolve column",
			fmt.Sprintf("column %q not found in header %q", req.Column, strings.Join(table.Header(), p.cfg.Script.Delimiter)), nil))
	}
	items := tasks.Build(table, mappings, req.Column, req.AudioDir, logging.WithContext(stageCtx, logger))
	report.Tasks = len(items)
	if len(items) == 0 {
		return fail(services.Wrap(services.ErrNoTasks, "build", "build tasks", "no audio file is assigned to a script row", nil))
	}

	// preflight
	stageCtx = services.WithStage(ctx, "preflight")
	selected, err := engine.Parse(req.Engine)
	if err != nil {
		return fail(services.Wrap(services.ErrConfiguration, "preflight", "engine", "unknown engine", err))
	}
	if err := preflight.Require(stageCtx, p.cfg.Engine.CodecBinary, p.cfg.PreflightTimeout(), selected, mappings); err != nil {
		if ctx.Err() != nil {
			return fail(services.Wrap(services.ErrCancelled, "preflight", "codec tool", "run cancelled", ctx.Err()))
		}
		return fail(err)
	}

	// engine
	stageCtx = services.WithStage(ctx, "engine")
	engineLogger := logging.WithContext(stageCtx, logger)
	runner, err := engine.New(engine.Config{
		Interpreter:  p.cfg.Engine.Interpreter,
		ScriptPath:   p.cfg.EngineScript(),
		Engine:       selected,
		Language:     req.Language,
		Model:        req.Model,
		DrainTimeout: p.cfg.DrainTimeout(),
		CancelGrace:  p.cfg.CancelGrace(),
		Timeout:      p.cfg.RunTimeout(),
		TempDir:      p.cfg.Paths.TempDir,
	}, engine.WithLogger(logger))
	if err != nil {
		return fail(services.Wrap(services.ErrConfiguration, "engine", "configure", "invalid engine settings", err))
	}
	sampler := logging.NewProgressSampler(10)
	raw, err := runner.Run(stageCtx, items, func(update engine.Progress) {
		if sampler.ShouldLog(update.Percent, "") {
			engineLogger.Info("engine progress", logging.Int("percent", update.Percent))
		}
		deliverProgress(engineLogger, sink, update)
	})
	report.ExitCode = raw.ExitCode
	if err != nil {
		// Cancelled output is discarded, including its stderr.
		if !errors.Is(err, services.ErrCancelled) {
			report.LogPath = p.writeEngineLog(logger, report.RunID, raw, nil)
		}
		return fail(err)
	}

	// reconcile
	stageCtx = services.WithStage(ctx, "reconcile")
	outcome := reconcile.Reconcile(reconcile.Input{Stdout: raw.Stdout, Stderr: raw.Stderr, ExitCode: raw.ExitCode})
	report.Diagnostics = outcome.Diagnostics
	report.Source = outcome.Source
	report.LogPath = p.writeEngineLog(logger, report.RunID, raw, outcome.Diagnostics)
	if outcome.Failed() {
		return fail(services.Wrap(services.ErrOutputParse, "reconcile", "parse results", firstError(outcome.Diagnostics), nil))
	}
	if ctx.Err() != nil {
		return fail(services.Wrap(services.ErrCancelled, "reconcile", "parse results", "run cancelled", ctx.Err()))
	}
	report.Verdicts = outcome.Verdicts
	report.TaskErrors = taskErrors(outcome.Verdicts)
	if len(report.TaskErrors) > 0 {
		logging.WarnWithContext(logging.WithContext(stageCtx, logger), "engine reported task errors", "engine_reported_error",
			logging.Int("count", len(report.TaskErrors)),
			logging.Error(report.TaskErrors[0]),
			logging.String(logging.FieldErrorHint, "see the diagnostics for dependency hints"),
			logging.String(logging.FieldImpact, "those rows are marked error"),
		)
	}
	report.State = stateSucceeded
	report.FinishedAt = now()
	logging.WithContext(stageCtx, logger).Debug("results reconciled", logging.String("source", string(outcome.Source)))
	p.logOutcome(logger, report)
	return report
}

// deliverProgress runs on the engine's stderr reader, outside the run
// goroutine's recover.
func deliverProgress(logger *slog.Logger, sink Sink, update engine.Progress) {
	defer func() {
		if r := recover(); r != nil {
			logging.WarnWithContext(logger, "progress sink panicked", "progress_sink_panic",
				logging.String("panic", fmt.Sprint(r)),
				logging.String(logging.FieldErrorHint, "fix the progress handler"),
				logging.String(logging.FieldImpact, "this progress update was dropped"),
			)
		}
	}()
	sink.Progress(update)
}

func (p *Pipeline) withDefaults(req Request) Request {
	if strings.TrimSpace(req.Column) == "" {
		req.Column = p.cfg.Script.Column
	}
	if strings.TrimSpace(req.Engine) == "" {
		req.Engine = p.cfg.Engine.Name
	}
	if strings.TrimSpace(req.Language) == "" {
		req.Language = p.cfg.Engine.Language
	}
	if strings.TrimSpace(req.Model) == "" {
		req.Model = p.cfg.Engine.WhisperModel
	}
	return req
}

func (p *Pipeline) logOutcome(logger *slog.Logger, report Report) {
	switch report.State {
	case stateSucceeded:
		counts := report.Counts()
		logger.Info("validation run finished",
			logging.String(logging.FieldEventType, "run_succeeded"),
			logging.Int("success", counts[reconcile.StatusSuccess]),
			logging.Int("warning", counts[reconcile.StatusWarning]),
			logging.Int("error", counts[reconcile.StatusError]),
			logging.Duration("elapsed", report.Duration()),
		)
	case stateCancelled:
		logger.Info("validation run cancelled", logging.String(logging.FieldEventType, "run_cancelled"))
	default:
		if report.Aborted {
			logging.WarnWithContext(logger, "validation run aborted before launch", "run_aborted",
				logging.Error(report.Err),
				logging.String("kind", string(report.Kind)),
				logging.String(logging.FieldErrorHint, hintFor(report.Kind)),
				logging.String(logging.FieldImpact, "the engine was not started"),
			)
			return
		}
		logging.ErrorWithContext(logger, "validation run failed", "run_failed",
			logging.Error(report.Err),
			logging.String("kind", string(report.Kind)),
			logging.String(logging.FieldErrorHint, hintFor(report.Kind)),
		)
	}
}

func taskErrors(verdicts []reconcile.Verdict) []error {
	var errs []error
	for _, v := range verdicts {
		if v.Status != reconcile.StatusError {
			continue
		}
		errs = append(errs, services.Wrap(services.ErrEngineReported, "reconcile", v.ID, v.Error, nil))
	}
	return errs
}

func firstError(diagnostics []reconcile.Diagnostic) string {
	for _, d := range diagnostics {
		if d.Severity == reconcile.SeverityError {
			return d.Display
		}
	}
	return "engine produced no verdicts"
}

func hintFor(kind services.Kind) string {
	switch kind {
	case services.KindInputNotFound:
		return "check the script file and audio folder paths"
	case services.KindNoMatchingColumn:
		return "pass --column with a header name from the script file"
	case services.KindNoTasks:
		return "assign audio files to script ids with --map, --assignments, or --auto-map"
	case services.KindPreflightUnavailable:
		return "install the codec tool or set engine.codec_binary"
	case services.KindLaunch:
		return "check engine.interpreter and engine.script_path"
	case services.KindTimeout:
		return "raise engine.run_timeout_seconds"
	case services.KindOutputParse:
		return "inspect the engine log for the raw output"
	default:
		return "see the engine log for details"
	}
}
