package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"voicecheck/internal/mapping"
	"voicecheck/internal/preflight"
	"voicecheck/internal/reconcile"
	"voicecheck/internal/workflow"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type reportJSON struct {
	RunID        string                   `json:"run_id"`
	State        string                   `json:"state"`
	Error        string                   `json:"error,omitempty"`
	Kind         string                   `json:"kind,omitempty"`
	Aborted      bool                     `json:"aborted,omitempty"`
	Encoding     string                   `json:"encoding,omitempty"`
	Tasks        int                      `json:"tasks"`
	Source       string                   `json:"source,omitempty"`
	ExitCode     int                      `json:"exit_code"`
	DurationMS   int64                    `json:"duration_ms"`
	Counts       map[reconcile.Status]int `json:"counts"`
	Verdicts     []reconcile.Verdict      `json:"verdicts"`
	Diagnostics  []reconcile.Diagnostic   `json:"diagnostics,omitempty"`
	UnknownFiles []string                 `json:"unknown_files,omitempty"`
	LogPath      string                   `json:"log_path,omitempty"`
	ExportPath   string                   `json:"export_path,omitempty"`
}

func newReportJSON(report workflow.Report, exportPath string) reportJSON {
	out := reportJSON{
		RunID:        report.RunID,
		State:        string(report.State),
		Aborted:      report.Aborted,
		Encoding:     report.Encoding,
		Tasks:        report.Tasks,
		Source:       string(report.Source),
		ExitCode:     report.ExitCode,
		DurationMS:   report.Duration().Milliseconds(),
		Counts:       report.Counts(),
		Verdicts:     report.Verdicts,
		Diagnostics:  report.Diagnostics,
		UnknownFiles: report.UnknownFiles,
		LogPath:      report.LogPath,
		ExportPath:   exportPath,
	}
	if out.Verdicts == nil {
		out.Verdicts = []reconcile.Verdict{}
	}
	if report.Err != nil {
		out.Error = report.Err.Error()
		out.Kind = string(report.Kind)
	}
	return out
}

type scanJSON struct {
	Header       []string          `json:"header"`
	IDs          []string          `json:"ids"`
	Encoding     string            `json:"encoding"`
	Column       string            `json:"column"`
	ColumnFound  bool              `json:"column_found"`
	Mappings     []mapping.Mapping `json:"mappings"`
	UnknownFiles []string          `json:"unknown_files,omitempty"`
	ScannedAt    time.Time         `json:"scanned_at"`
}

type checkJSON struct {
	ConfigPath string             `json:"config_path"`
	Results    []preflight.Result `json:"results"`
}
