// Package export writes validation verdicts as a delimited results file.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"voicecheck/internal/reconcile"
)

// Header is the first line of every export.
var Header = []string{"id", "similarity", "script", "recognized", "status"}

const (
	delimiter  = ','
	timeLayout = "20060102_150405"
)

// Write renders verdicts to w, one row per verdict after the header.
func Write(w io.Writer, verdicts []reconcile.Verdict) error {
	bw := bufio.NewWriter(w)
	if err := writeRow(bw, Header); err != nil {
		return err
	}
	for _, v := range verdicts {
		row := []string{
			v.ID,
			fmt.Sprintf("%.4f", v.Similarity),
			v.ScriptText,
			v.RecognizedText,
			string(v.Status),
		}
		if err := writeRow(bw, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DefaultPath returns dir/results_YYYYMMDD_HHMMSS.csv for now.
func DefaultPath(dir string, now time.Time) string {
	return filepath.Join(dir, "results_"+now.Format(timeLayout)+".csv")
}

// WriteFile writes verdicts to path, creating the parent directory.
func WriteFile(path string, verdicts []reconcile.Verdict) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := Write(f, verdicts); err != nil {
		_ = f.Close()
		return fmt.Errorf("write export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	return nil
}

func writeRow(w *bufio.Writer, cells []string) error {
	for i, cell := range cells {
		if i > 0 {
			if err := w.WriteByte(delimiter); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(Escape(cell)); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

// Escape quotes a cell containing the delimiter, a quote, or a line break,
// doubling any embedded quotes.
func Escape(cell string) string {
	if !strings.ContainsAny(cell, ",\"\n\r") {
		return cell
	}
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}
