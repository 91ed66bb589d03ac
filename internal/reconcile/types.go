package reconcile

// SuccessThreshold is the minimum similarity for a success verdict.
const SuccessThreshold = 0.9

// Status classifies a verdict.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// EngineResult is one entry of the engine's result batch.
type EngineResult struct {
	ID             string   `json:"id"`
	Similarity     float64  `json:"similarity"`
	ScriptText     string   `json:"script_text"`
	RecognizedText string   `json:"recognized_text"`
	Diff           []string `json:"diff,omitempty"`
	Error          *string  `json:"error,omitempty"`
}

// BatchEnvelope is the engine's output document: {"results": [...]}.
type BatchEnvelope struct {
	Results []EngineResult `json:"results"`
}

// Verdict is the validation outcome for one task.
type Verdict struct {
	ID             string  `json:"id"`
	Similarity     float64 `json:"similarity"`
	ScriptText     string  `json:"script_text"`
	RecognizedText string  `json:"recognized_text"`
	Status         Status  `json:"status"`
	// Error carries the engine's message for error verdicts.
	Error string `json:"error,omitempty"`
}

// Classify applies the status rule: error when the engine reported one,
// otherwise success at or above SuccessThreshold, otherwise warning.
func Classify(result EngineResult) Status {
	switch {
	case result.Error != nil:
		return StatusError
	case result.Similarity >= SuccessThreshold:
		return StatusSuccess
	default:
		return StatusWarning
	}
}

// NewVerdict converts an engine result into a verdict.
func NewVerdict(result EngineResult) Verdict {
	v := Verdict{
		ID:             result.ID,
		Similarity:     result.Similarity,
		ScriptText:     result.ScriptText,
		RecognizedText: result.RecognizedText,
		Status:         Classify(result),
	}
	if result.Error != nil {
		v.Error = *result.Error
	}
	return v
}

// Band is a display grouping of similarity scores. It does not affect Status.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// MediumThreshold is the lower bound of the medium display band.
const MediumThreshold = 0.7

// BandFor returns the display band for a similarity score.
func BandFor(similarity float64) Band {
	switch {
	case similarity >= SuccessThreshold:
		return BandHigh
	case similarity >= MediumThreshold:
		return BandMedium
	default:
		return BandLow
	}
}
