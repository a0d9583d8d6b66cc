package domain

// Decision thresholds.
const (
	TextThreshold  = 0.5
	ImageThreshold = 0.6
)

// Scoring methods reported with a result.
const (
	MethodRule     = "rule_based"
	MethodSidecar  = "ml_sidecar"
	MethodLLM      = "llm"
	MethodBackbone = "rule_based+backbone"
)

// Feature is one named contribution to a score.
type Feature struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// ScoreResult is a scored decision. Confidence is the probability of the
// winning side: RawScore when positive, 1-RawScore otherwise.
type ScoreResult struct {
	RawScore             float64   `json:"raw_score"`
	IsPositive           bool      `json:"is_positive"`
	Confidence           float64   `json:"confidence"`
	Threshold            float64   `json:"threshold"`
	Method               string    `json:"method"`
	ContributingFeatures []Feature `json:"contributing_features"`
}

// NewScoreResult clamps raw to [0,1] and derives the decision and confidence.
func NewScoreResult(raw, threshold float64, method string, contributing []Feature) ScoreResult {
	raw = Clamp01(raw)
	positive := raw > threshold

	confidence := 1 - raw
	if positive {
		confidence = raw
	}

	if contributing == nil {
		contributing = []Feature{}
	}

	return ScoreResult{
		RawScore:             raw,
		IsPositive:           positive,
		Confidence:           confidence,
		Threshold:            threshold,
		Method:               method,
		ContributingFeatures: contributing,
	}
}

// Clamp01 limits v to [0,1].
func Clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
