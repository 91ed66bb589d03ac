package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"voicecheck/internal/config"
	"voicecheck/internal/engine"
	"voicecheck/internal/export"
	"voicecheck/internal/logging"
	"voicecheck/internal/reconcile"
	"voicecheck/internal/textutil"
	"voicecheck/internal/workflow"
)

type validateOptions struct {
	scriptPath string
	audioDir   string
	column     string
	engine     string
	language   string
	model      string
	exportPath string
	exportDir  string
	jsonOutput bool
	assign     assignmentFlags
}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the recognition engine over assigned audio files",
		Long: `Pair audio files with script rows, run the recognition engine, and report
a verdict per file. Progress is written to stderr; Ctrl+C cancels the run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, ctx, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.scriptPath, "script", "s", "", "Delimited script file (first column is the id)")
	flags.StringVarP(&opts.audioDir, "audio", "a", "", "Folder containing the recorded audio files")
	flags.StringVar(&opts.column, "column", "", "Header of the column holding the expected line (default from config)")
	flags.StringVarP(&opts.engine, "engine", "e", "", "Recognizer: google, whisper, or sphinx (default from config)")
	flags.StringVarP(&opts.language, "language", "l", "", "Locale passed to the recognizer")
	flags.StringVar(&opts.model, "model", "", "Whisper model size")
	flags.StringVarP(&opts.exportPath, "export", "o", "", "Write verdicts to this file")
	flags.StringVar(&opts.exportDir, "export-dir", "", "Write verdicts to a timestamped file in this folder")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Print the run report as JSON")
	opts.assign.register(cmd)
	_ = cmd.MarkFlagRequired("script")
	_ = cmd.MarkFlagRequired("audio")

	return cmd
}

func runValidate(cmd *cobra.Command, ctx *commandContext, opts *validateOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	assignments, err := opts.assign.resolve()
	if err != nil {
		return err
	}
	scriptPath, err := config.ExpandPath(opts.scriptPath)
	if err != nil {
		return fmt.Errorf("resolve script path: %w", err)
	}
	audioDir, err := config.ExpandPath(opts.audioDir)
	if err != nil {
		return fmt.Errorf("resolve audio folder: %w", err)
	}

	stderr := cmd.ErrOrStderr()
	logger, err := ctx.newLogger(stderr)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := workflow.New(cfg, logger)
	progress := newProgressPrinter(stderr, opts.jsonOutput)
	finished := make(chan workflow.Report, 1)
	sink := workflow.SinkFuncs{
		OnProgress: progress.update,
		OnFinished: func(report workflow.Report) { finished <- report },
	}

	req := workflow.Request{
		ScriptPath:  scriptPath,
		AudioDir:    audioDir,
		Column:      opts.column,
		Engine:      opts.engine,
		Language:    opts.language,
		Model:       opts.model,
		Assignments: assignments,
		AutoAssign:  opts.assign.autoMap,
	}
	if _, err := pipeline.Start(runCtx, req, workflow.StartOptions{}, sink); err != nil {
		return err
	}
	report := <-finished
	pipeline.Wait()

	exportPath := ""
	if report.State == engine.Succeeded {
		exportPath, err = exportVerdicts(opts, report.Verdicts)
		if err != nil {
			logging.ErrorWithContext(logger, "export failed", "export_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the export path is writable"),
			)
			return err
		}
	}

	if opts.jsonOutput {
		if err := writeJSON(cmd, newReportJSON(report, exportPath)); err != nil {
			return err
		}
	} else {
		printReport(cmd.OutOrStdout(), report, exportPath, shouldColorize(cmd.OutOrStdout()))
	}

	switch report.State {
	case engine.Succeeded:
		return nil
	case engine.Cancelled:
		return errors.New("validation cancelled")
	default:
		return fmt.Errorf("validation failed: %w", report.Err)
	}
}

func exportVerdicts(opts *validateOptions, verdicts []reconcile.Verdict) (string, error) {
	target := strings.TrimSpace(opts.exportPath)
	if target == "" && strings.TrimSpace(opts.exportDir) != "" {
		dir, err := config.ExpandPath(opts.exportDir)
		if err != nil {
			return "", fmt.Errorf("resolve export folder: %w", err)
		}
		target = export.DefaultPath(dir, time.Now())
	}
	if target == "" {
		return "", nil
	}
	expanded, err := config.ExpandPath(target)
	if err != nil {
		return "", fmt.Errorf("resolve export path: %w", err)
	}
	if err := export.WriteFile(expanded, verdicts); err != nil {
		return "", err
	}
	return expanded, nil
}

func printReport(out io.Writer, report workflow.Report, exportPath string, colorize bool) {
	if len(report.Verdicts) > 0 {
		rows := make([][]string, 0, len(report.Verdicts))
		for _, v := range report.Verdicts {
			rows = append(rows, []string{
				v.ID,
				similarityLabel(v.Similarity, colorize),
				verdictLabel(v.Status, colorize),
				textutil.Shorten(textutil.SingleLine(v.ScriptText), tableCellWidth),
				textutil.Shorten(textutil.SingleLine(v.RecognizedText), tableCellWidth),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"ID", "Similarity", "Status", "Script", "Recognized"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
		))
	}

	diagnostics := make([]reconcile.Diagnostic, 0, len(report.Diagnostics))
	for _, d := range report.Diagnostics {
		if d.Kind != reconcile.KindEngineOutput {
			diagnostics = append(diagnostics, d)
		}
	}
	if len(diagnostics) > 0 {
		for _, line := range renderSectionHeader("Diagnostics", colorize) {
			fmt.Fprintln(out, line)
		}
		for _, d := range diagnostics {
			fmt.Fprintln(out, renderStatusLine(string(d.Kind), severityKind(d.Severity), d.Display, colorize))
		}
	}

	for _, line := range renderSectionHeader("Summary", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Run", runStatusKind(report.State), string(report.State), colorize))
	if report.Err != nil {
		fmt.Fprintln(out, renderStatusLine("Reason", statusError, report.Err.Error(), colorize))
	}
	if report.Encoding != "" {
		fmt.Fprintln(out, renderStatusLine("Script encoding", statusInfo, report.Encoding, colorize))
	}
	if len(report.UnknownFiles) > 0 {
		fmt.Fprintln(out, renderStatusLine("Unknown files", statusWarn, strings.Join(report.UnknownFiles, ", "), colorize))
	}
	if report.State == engine.Succeeded {
		counts := report.Counts()
		summary := fmt.Sprintf("%d ok, %d check, %d error (of %d tasks)",
			counts[reconcile.StatusSuccess], counts[reconcile.StatusWarning], counts[reconcile.StatusError], report.Tasks)
		kind := statusOK
		if counts[reconcile.StatusError] > 0 {
			kind = statusError
		} else if counts[reconcile.StatusWarning] > 0 {
			kind = statusWarn
		}
		fmt.Fprintln(out, renderStatusLine("Verdicts", kind, summary, colorize))
		fmt.Fprintln(out, renderStatusLine("Elapsed", statusInfo, report.Duration().Round(time.Millisecond).String(), colorize))
	}
	if exportPath != "" {
		fmt.Fprintln(out, renderStatusLine("Exported", statusOK, exportPath, colorize))
	}
	if report.LogPath != "" {
		fmt.Fprintln(out, renderStatusLine("Engine log", statusInfo, report.LogPath, colorize))
	}
}

func runStatusKind(state engine.State) statusKind {
	switch state {
	case engine.Succeeded:
		return statusOK
	case engine.Cancelled:
		return statusWarn
	default:
		return statusError
	}
}

// progressPrinter writes sampled engine progress lines to stderr.
type progressPrinter struct {
	w       io.Writer
	sampler *logging.ProgressSampler
	quiet   bool
}

func newProgressPrinter(w io.Writer, quiet bool) *progressPrinter {
	return &progressPrinter{w: w, sampler: logging.NewProgressSampler(5), quiet: quiet}
}

// update is called synchronously from the engine's stderr reader.
func (p *progressPrinter) update(update engine.Progress) {
	if p.quiet || !p.sampler.ShouldLog(update.Percent, "") {
		return
	}
	fmt.Fprintln(p.w, "progress: "+strconv.Itoa(update.Percent)+"%")
}
