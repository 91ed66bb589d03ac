package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"voicecheck/internal/reconcile"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	return paint(statusKindColor(kind), base, colorize)
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) color.Attribute {
	switch kind {
	case statusOK:
		return color.FgGreen
	case statusWarn:
		return color.FgYellow
	case statusError:
		return color.FgRed
	default:
		return color.FgBlue
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	return []string{paint(color.FgBlue, line, colorize), paint(color.FgBlue, rule, colorize)}
}

// verdictLabel renders a verdict status for the results table.
func verdictLabel(status reconcile.Status, colorize bool) string {
	switch status {
	case reconcile.StatusSuccess:
		return paint(color.FgGreen, "OK", colorize)
	case reconcile.StatusWarning:
		return paint(color.FgYellow, "CHECK", colorize)
	default:
		return paint(color.FgRed, "ERROR", colorize)
	}
}

// similarityLabel formats a score and colours it by display band.
func similarityLabel(similarity float64, colorize bool) string {
	value := fmt.Sprintf("%.1f%%", similarity*100)
	switch reconcile.BandFor(similarity) {
	case reconcile.BandHigh:
		return paint(color.FgGreen, value, colorize)
	case reconcile.BandMedium:
		return paint(color.FgYellow, value, colorize)
	default:
		return paint(color.FgRed, value, colorize)
	}
}

func severityKind(severity reconcile.Severity) statusKind {
	switch severity {
	case reconcile.SeverityError:
		return statusError
	case reconcile.SeverityWarning:
		return statusWarn
	default:
		return statusInfo
	}
}

func paint(attr color.Attribute, s string, colorize bool) string {
	if !colorize {
		return s
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(s)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
