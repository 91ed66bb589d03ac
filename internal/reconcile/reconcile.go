package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Source names where the verdicts came from.
type Source string

const (
	SourceNone   Source = "none"
	SourceStdout Source = "stdout"
	SourceStderr Source = "stderr"
)

// Input is the captured output of one engine run.
type Input struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Outcome is the reconciled result of one run.
type Outcome struct {
	Verdicts    []Verdict
	Diagnostics []Diagnostic
	Source      Source
}

// Failed reports whether the run produced no verdicts and at least one
// error diagnostic.
func (o Outcome) Failed() bool {
	if len(o.Verdicts) > 0 {
		return false
	}
	for _, d := range o.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Counts tallies verdicts by status.
func (o Outcome) Counts() map[Status]int {
	counts := map[Status]int{StatusSuccess: 0, StatusWarning: 0, StatusError: 0}
	for _, v := range o.Verdicts {
		counts[v.Status]++
	}
	return counts
}

// Reconcile parses engine output into verdicts and diagnostics.
func Reconcile(in Input) Outcome {
	var out Outcome
	out.Source = SourceNone

	stdout := strings.TrimSpace(in.Stdout)
	stdoutParsed := false
	var results []EngineResult
	if stdout != "" {
		batch, err := parseBatch(stdout)
		if err != nil {
			out.Diagnostics = append(out.Diagnostics, newDiagnostic(KindOutputParse, SeverityWarning,
				fmt.Sprintf("could not parse engine results on stdout: %v", err)))
		} else {
			stdoutParsed = true
			results = batch.Results
			out.Source = SourceStdout
		}
	}

	if len(results) == 0 && strings.TrimSpace(in.Stderr) != "" {
		if candidate, ok := lastResultsObject(in.Stderr); ok {
			if batch, err := parseBatch(candidate); err == nil && len(batch.Results) > 0 {
				results = batch.Results
				out.Source = SourceStderr
			}
		}
	}

	for _, r := range results {
		out.Verdicts = append(out.Verdicts, NewVerdict(r))
	}

	switch {
	case len(out.Verdicts) > 0:
	case in.ExitCode != 0:
		d := newDiagnostic(KindSubprocessFailed, SeverityError, fmt.Sprintf("engine exited abnormally (exit=%d)", in.ExitCode))
		d.ExitCode = in.ExitCode
		out.Diagnostics = append(out.Diagnostics, d)
	case stdoutParsed:
		out.Diagnostics = append(out.Diagnostics, newDiagnostic(KindNoResults, SeverityWarning, "engine returned no results"))
	default:
		out.Diagnostics = append(out.Diagnostics, newDiagnostic(KindOutputParse, SeverityError, "engine produced no readable results"))
	}

	out.Diagnostics = append(out.Diagnostics, errorDiagnostics(results, in.Stderr, len(out.Verdicts) == 0)...)

	if stderr := strings.TrimSpace(in.Stderr); stderr != "" {
		out.Diagnostics = append(out.Diagnostics, newDiagnostic(KindEngineOutput, SeverityInfo, stderr))
	}
	return out
}

// errorDiagnostics classifies each distinct engine-reported error and, when
// nothing was reconciled, stderr itself. Hints are reported once per dependency.
func errorDiagnostics(results []EngineResult, stderr string, classifyStderr bool) []Diagnostic {
	var diags []Diagnostic
	hinted := make(map[Dependency]bool)
	seen := make(map[string]bool)

	addHint := func(dep Dependency, hint, detail string) {
		if hinted[dep] {
			return
		}
		hinted[dep] = true
		d := newDiagnostic(KindDependency, SeverityError, hint)
		d.Detail = detail
		d.Dependency = dep
		diags = append(diags, d)
	}

	for _, r := range results {
		if r.Error == nil {
			continue
		}
		msg := *r.Error
		if seen[msg] {
			continue
		}
		seen[msg] = true
		if dep, hint, ok := Hint(msg); ok {
			addHint(dep, hint, msg)
			continue
		}
		diags = append(diags, newDiagnostic(KindEngineError, SeverityWarning, fmt.Sprintf("%s: %s", r.ID, msg)))
	}

	if classifyStderr && strings.TrimSpace(stderr) != "" {
		if dep, hint, ok := Hint(stderr); ok {
			addHint(dep, hint, stderr)
		}
	}
	return diags
}

func parseBatch(text string) (BatchEnvelope, error) {
	var batch BatchEnvelope
	if err := json.Unmarshal([]byte(text), &batch); err != nil {
		return BatchEnvelope{}, err
	}
	return batch, nil
}

var resultsToken = []byte(`"results"`)

// lastResultsObject finds the last complete top-level JSON object in text
// that contains the "results" token. Candidates start at every '{' not inside
// an already decoded object; string contents are handled by the decoder.
func lastResultsObject(text string) (string, bool) {
	var found string
	for i := 0; i < len(text); {
		start := strings.IndexByte(text[i:], '{')
		if start < 0 {
			break
		}
		start += i
		dec := json.NewDecoder(strings.NewReader(text[start:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			i = start + 1
			continue
		}
		if bytes.Contains(raw, resultsToken) {
			found = string(raw)
		}
		i = start + int(dec.InputOffset())
	}
	return found, found != ""
}
