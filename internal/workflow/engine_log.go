package workflow

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"voicecheck/internal/engine"
	"voicecheck/internal/logging"
	"voicecheck/internal/reconcile"
)

const engineLogPattern = "engine-*.log"

// EngineLogPath returns the diagnostic log location for a run, or "" when no
// log directory is configured.
func EngineLogPath(logDir, runID string) string {
	if strings.TrimSpace(logDir) == "" || runID == "" {
		return ""
	}
	return filepath.Join(logDir, "engine-"+runID+".log")
}

// writeEngineLog persists the full engine stderr and every diagnostic detail,
// then prunes engine logs past retention. Failures are logged and yield "".
func (p *Pipeline) writeEngineLog(logger *slog.Logger, runID string, raw engine.RawOutput, diagnostics []reconcile.Diagnostic) string {
	path := EngineLogPath(p.cfg.Paths.LogDir, runID)
	if path == "" {
		return ""
	}
	if strings.TrimSpace(raw.Stderr) == "" && len(diagnostics) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "run_id: %s\n", runID)
	fmt.Fprintf(&b, "written: %s\n", now().Format("2006-01-02T15:04:05Z07:00"))
	fmt.Fprintf(&b, "state: %s\n", raw.State)
	fmt.Fprintf(&b, "exit_code: %d\n", raw.ExitCode)
	if len(diagnostics) > 0 {
		b.WriteString("\n== diagnostics ==\n")
		for _, d := range diagnostics {
			if d.Kind == reconcile.KindEngineOutput {
				continue
			}
			fmt.Fprintf(&b, "[%s] %s", d.Severity, d.Kind)
			if d.Dependency != "" {
				fmt.Fprintf(&b, " (%s)", d.Dependency)
			}
			fmt.Fprintf(&b, ": %s\n", d.Detail)
		}
	}
	b.WriteString("\n== stderr ==\n")
	b.WriteString(raw.Stderr)
	if !strings.HasSuffix(raw.Stderr, "\n") {
		b.WriteByte('\n')
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		p.warnEngineLog(logger, path, err)
		return ""
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		p.warnEngineLog(logger, path, err)
		return ""
	}
	logging.CleanupOldLogs(logger, p.cfg.Logging.RetentionDays, logging.RetentionTarget{
		Dir:     p.cfg.Paths.LogDir,
		Pattern: engineLogPattern,
		Exclude: []string{path},
	})
	return path
}

func (p *Pipeline) warnEngineLog(logger *slog.Logger, path string, err error) {
	logging.WarnWithContext(logger, "engine log not written", "engine_log_write_failed",
		logging.String("path", path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check log_dir permissions"),
		logging.String(logging.FieldImpact, "full engine output is only available in this session"),
	)
}
