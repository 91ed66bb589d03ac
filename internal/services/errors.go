package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInputNotFound        = errors.New("input not found")
	ErrNoMatchingColumn     = errors.New("no matching script column")
	ErrNoTasks              = errors.New("no tasks produced")
	ErrPreflightUnavailable = errors.New("required external tool unavailable")
	ErrLaunch               = errors.New("subprocess launch failure")
	ErrOutputParse          = errors.New("engine output parse failure")
	ErrEngineReported       = errors.New("engine reported error")
	ErrCancelled            = errors.New("cancelled")
	ErrRunActive            = errors.New("a validation run is already active")
	ErrTimeout              = errors.New("timeout")
	ErrConfiguration        = errors.New("configuration error")
)

// Kind is a stable, user-facing label for a classified failure.
type Kind string

const (
	KindInputNotFound        Kind = "input_not_found"
	KindNoMatchingColumn     Kind = "no_matching_column"
	KindNoTasks              Kind = "no_tasks_produced"
	KindPreflightUnavailable Kind = "preflight_unavailable"
	KindLaunch               Kind = "subprocess_launch_failure"
	KindOutputParse          Kind = "output_parse_failure"
	KindEngineReported       Kind = "engine_reported_error"
	KindCancelled            Kind = "cancelled"
	KindRunActive            Kind = "run_active"
	KindTimeout              Kind = "timeout"
	KindConfiguration        Kind = "configuration"
	KindUnknown              Kind = "unknown"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrConfiguration
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error to its taxonomy kind. A nil error maps to KindUnknown.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrCancelled):
		return KindCancelled
	case errors.Is(err, ErrInputNotFound):
		return KindInputNotFound
	case errors.Is(err, ErrNoMatchingColumn):
		return KindNoMatchingColumn
	case errors.Is(err, ErrNoTasks):
		return KindNoTasks
	case errors.Is(err, ErrPreflightUnavailable):
		return KindPreflightUnavailable
	case errors.Is(err, ErrLaunch):
		return KindLaunch
	case errors.Is(err, ErrOutputParse):
		return KindOutputParse
	case errors.Is(err, ErrEngineReported):
		return KindEngineReported
	case errors.Is(err, ErrRunActive):
		return KindRunActive
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	default:
		return KindUnknown
	}
}

// Aborted reports whether the failure stopped the run before any subprocess
// was spawned.
func Aborted(err error) bool {
	switch Classify(err) {
	case KindInputNotFound, KindNoMatchingColumn, KindNoTasks, KindPreflightUnavailable, KindRunActive, KindConfiguration:
		return true
	default:
		return false
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
