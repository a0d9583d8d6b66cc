package domain

// TextFeatures is the feature vector extracted from one text.
type TextFeatures struct {
	Length                 int     `json:"length"`
	WordCount              int     `json:"word_count"`
	AvgWordLength          float64 `json:"avg_word_length"`
	SentimentLabel         string  `json:"sentiment_label"`
	SentimentScore         float64 `json:"sentiment_score"` // 0.0-1.0
	FakeIndicatorCount     int     `json:"fake_indicator_count"`
	CredibleIndicatorCount int     `json:"credible_indicator_count"`
	ExclamationCount       int     `json:"exclamation_count"`
	CapsRatio              float64 `json:"caps_ratio"`         // 0.0-1.0
	Language               string  `json:"language,omitempty"` // ISO 639-1
}

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Names lists the feature names in extraction order.
func (TextFeatures) Names() []string {
	return []string{
		"length",
		"word_count",
		"avg_word_length",
		"sentiment",
		"sentiment_score",
		"fake_indicators",
		"credible_indicators",
		"exclamation_count",
		"caps_ratio",
	}
}

// ImageFeatures holds whole-image statistics. Channel values are on the
// 0-255 scale.
type ImageFeatures struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Channels    int     `json:"channels"`
	MeanR       float64 `json:"mean_r"`
	MeanG       float64 `json:"mean_g"`
	MeanB       float64 `json:"mean_b"`
	StdR        float64 `json:"std_r"`
	StdG        float64 `json:"std_g"`
	StdB        float64 `json:"std_b"`
	Brightness  float64 `json:"brightness"`
	Contrast    float64 `json:"contrast"`
	EdgeDensity float64 `json:"edge_density"` // 0.0-1.0
}

// BoundingBox locates a face in source-image pixels.
type BoundingBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Area returns w*h.
func (b BoundingBox) Area() int {
	return b.W * b.H
}

// FaceCandidate is a detector hit before artifact analysis.
type FaceCandidate struct {
	BBox       BoundingBox `json:"bbox"`
	Confidence float64     `json:"confidence"`
	Source     string      `json:"source"` // "pigo" or "sidecar"
}

// FaceArtifact is the artifact vector measured on one face. Values are
// created once by the extractor and never modified.
type FaceArtifact struct {
	BBox               BoundingBox `json:"bbox"`
	Confidence         float64     `json:"confidence"`
	EdgeDensity        float64     `json:"edge_density"`
	HueVariance        float64     `json:"hue_variance"`
	SaturationVariance float64     `json:"saturation_variance"`
	ValueVariance      float64     `json:"value_variance"`
	SymmetryScore      float64     `json:"symmetry_score"`
}

// ArtifactAnalysis is the per-metric mean over all faces of one image.
type ArtifactAnalysis struct {
	EdgeDensity        float64 `json:"edge_density"`
	HueVariance        float64 `json:"hue_variance"`
	SaturationVariance float64 `json:"saturation_variance"`
	ValueVariance      float64 `json:"value_variance"`
	SymmetryScore      float64 `json:"symmetry_score"`
}

// AverageArtifacts returns the mean artifact values. It returns the zero
// value and false when faces is empty.
func AverageArtifacts(faces []FaceArtifact) (ArtifactAnalysis, bool) {
	if len(faces) == 0 {
		return ArtifactAnalysis{}, false
	}

	var avg ArtifactAnalysis
	for _, f := range faces {
		avg.EdgeDensity += f.EdgeDensity
		avg.HueVariance += f.HueVariance
		avg.SaturationVariance += f.SaturationVariance
		avg.ValueVariance += f.ValueVariance
		avg.SymmetryScore += f.SymmetryScore
	}

	n := float64(len(faces))
	avg.EdgeDensity /= n
	avg.HueVariance /= n
	avg.SaturationVariance /= n
	avg.ValueVariance /= n
	avg.SymmetryScore /= n

	return avg, true
}
