// Package tasks assembles recognition work items from a script table and the
// audio mappings, and encodes them into the engine's input document.
package tasks

import (
	"log/slog"
	"path/filepath"
	"strings"

	"voicecheck/internal/logging"
	"voicecheck/internal/mapping"
	"voicecheck/internal/script"
)

// Task is one audio file paired with the script line it should match.
type Task struct {
	ID         string `json:"id"`
	AudioPath  string `json:"audioPath"`
	ScriptText string `json:"scriptText"`
}

// ColumnIndex finds the header cell whose trimmed text equals name exactly.
func ColumnIndex(header []string, name string) (int, bool) {
	name = strings.TrimSpace(name)
	for i, cell := range header {
		if strings.TrimSpace(cell) == name {
			return i, true
		}
	}
	return -1, false
}

// Build produces one task per assigned mapping whose id matches a data row
// with a cell in the chosen column. The first matching row wins; a warning is
// logged once for each id that appears on more than one row. Unmatched
// mappings are skipped. A missing column yields no tasks.
func Build(table *script.Table, mappings []mapping.Mapping, column, audioDir string, logger *slog.Logger) []Task {
	logger = logging.NewComponentLogger(logger, "tasks")
	col, ok := ColumnIndex(table.Header(), column)
	if !ok {
		return nil
	}

	rows := table.DataRows()
	warned := make(map[string]bool)
	var out []Task
	for _, m := range mappings {
		if !m.Assigned() {
			continue
		}
		text, matches := lookup(rows, m.AssignedID, col)
		if matches == 0 {
			continue
		}
		if matches > 1 && !warned[m.AssignedID] {
			warned[m.AssignedID] = true
			logging.WarnWithContext(logger, "script id appears on multiple rows; using the first", "duplicate_script_id",
				logging.String(logging.FieldTaskID, m.AssignedID),
				logging.Int("rows", matches),
				logging.String(logging.FieldErrorHint, "make first-column ids unique in the script file"),
				logging.String(logging.FieldImpact, "later rows with the same id are ignored"),
			)
		}
		out = append(out, Task{
			ID:         m.AssignedID,
			AudioPath:  filepath.Join(audioDir, m.FileName),
			ScriptText: text,
		})
	}
	return out
}

// lookup returns the trimmed cell of the first row matching id that is wide
// enough to hold col, and how many such rows exist.
func lookup(rows [][]string, id string, col int) (string, int) {
	text := ""
	matches := 0
	for _, row := range rows {
		if len(row) <= col || strings.TrimSpace(row[0]) != id {
			continue
		}
		if matches == 0 {
			text = strings.TrimSpace(row[col])
		}
		matches++
	}
	return text, matches
}
