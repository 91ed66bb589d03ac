package engine

import (
	"fmt"
	"slices"
	"strings"
)

// Engine names a recognizer understood by the engine script.
type Engine string

const (
	Google  Engine = "google"
	Whisper Engine = "whisper"
	Sphinx  Engine = "sphinx"
)

// Engines lists every supported recognizer.
var Engines = []Engine{Google, Whisper, Sphinx}

// WhisperModels lists the accepted whisper model sizes.
var WhisperModels = []string{"tiny", "base", "small", "medium", "large"}

// DefaultWhisperModel is used when no model is configured.
const DefaultWhisperModel = "base"

// noModel is passed in the model position for engines without model sizes.
const noModel = "none"

// Parse resolves a recognizer name case-insensitively.
func Parse(name string) (Engine, error) {
	e := Engine(strings.ToLower(strings.TrimSpace(name)))
	if slices.Contains(Engines, e) {
		return e, nil
	}
	return "", fmt.Errorf("unknown engine %q (want google, whisper, or sphinx)", name)
}

// DefaultLanguage returns the locale used when none is configured.
func DefaultLanguage(e Engine) string {
	switch e {
	case Whisper:
		return "ja"
	case Sphinx:
		return "en-US"
	default:
		return "ja-JP"
	}
}

// ModelFor returns the model argument for e: the whisper model size, or
// "none" for engines without model selection.
func ModelFor(e Engine, model string) string {
	if e != Whisper {
		return noModel
	}
	model = strings.ToLower(strings.TrimSpace(model))
	if model == "" {
		return DefaultWhisperModel
	}
	return model
}

// ValidWhisperModel reports whether model is an accepted whisper size.
func ValidWhisperModel(model string) bool {
	return slices.Contains(WhisperModels, strings.ToLower(strings.TrimSpace(model)))
}
