package domain

import "time"

// Verdict is the label attached to an explanation.
type Verdict string

const (
	VerdictFake     Verdict = "fake"
	VerdictReal     Verdict = "real"
	VerdictDeepfake Verdict = "deepfake"
)

// Explanation kinds.
const (
	KindText          = "text"
	KindImage         = "image"
	KindComprehensive = "comprehensive"
)

// Text importance keys, derived from the score.
const (
	ImportanceSuspiciousLanguage = "suspicious_language"
	ImportanceSourceCredibility  = "source_credibility"
	ImportanceWritingStyle       = "writing_style"
	ImportanceSentiment          = "sentiment"
)

// Explanation is the human-readable account of one score. For text,
// FeatureImportance holds the score-derived weights and FeatureWeights the
// per-feature rule coefficients.
type Explanation struct {
	Type              string             `json:"type"`
	Verdict           Verdict            `json:"verdict"`
	Confidence        float64            `json:"confidence"`
	KeyFactors        []string           `json:"key_factors"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
	Recommendations   []string           `json:"recommendations"`
	FeatureWeights    map[string]float64 `json:"feature_weights,omitempty"`
	ArtifactAnalysis  *ArtifactAnalysis  `json:"artifact_analysis,omitempty"`
}

// TextResult is the full outcome of analysing one text.
type TextResult struct {
	Score       ScoreResult   `json:"score"`
	Features    TextFeatures  `json:"features"`
	Explanation Explanation   `json:"explanation"`
	Duration    time.Duration `json:"-"`
}

// ImageResult is the full outcome of analysing one image.
type ImageResult struct {
	Score        ScoreResult    `json:"score"`
	Features     ImageFeatures  `json:"features"`
	Faces        []FaceArtifact `json:"face_artifacts"`
	FaceDetected bool           `json:"face_detected"`
	FaceCount    int            `json:"face_count"`
	Explanation  Explanation    `json:"explanation"`
	Duration     time.Duration  `json:"-"`
}

// ComprehensiveResult combines the text and image outcomes of one request.
type ComprehensiveResult struct {
	OverallScore      float64      `json:"overall_score"`
	TextExplanation   *Explanation `json:"text_explanation,omitempty"`
	ImageExplanation  *Explanation `json:"image_explanation,omitempty"`
	CrossModalInsight string       `json:"cross_modal_insight,omitempty"`
	Recommendations   []string     `json:"recommendations"`
}
