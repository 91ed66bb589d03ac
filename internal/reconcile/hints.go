package reconcile

import "voicecheck/internal/textutil"

// Dependency names an engine-side library whose absence has a known fix.
type Dependency string

const (
	DependencyCodec   Dependency = "codec"
	DependencySpeech  Dependency = "speech_recognition"
	DependencyWhisper Dependency = "whisper"
)

type hintRule struct {
	dependency Dependency
	needles    []string
	hint       string
}

// Rules are checked in order; the first match wins.
var hintRules = []hintRule{
	{
		dependency: DependencyCodec,
		needles:    []string{"pydub", "ffmpeg"},
		hint:       "decoding mp3 and other compressed audio needs pydub and ffmpeg: pip install -r requirements.txt and put ffmpeg on PATH",
	},
	{
		dependency: DependencySpeech,
		needles:    []string{"speechrecognition"},
		hint:       "SpeechRecognition is not installed: run pip install -r requirements.txt",
	},
	{
		dependency: DependencyWhisper,
		needles:    []string{"whisper"},
		hint:       "Whisper is not installed: run pip install -r requirements.txt (the first run downloads the model)",
	},
}

// Hint matches text against known missing-dependency signatures,
// case-insensitively.
func Hint(text string) (Dependency, string, bool) {
	for _, rule := range hintRules {
		for _, needle := range rule.needles {
			if textutil.ContainsFold(text, needle) {
				return rule.dependency, rule.hint, true
			}
		}
	}
	return "", "", false
}
