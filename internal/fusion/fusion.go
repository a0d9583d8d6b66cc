// Package fusion combines per-modality results into one overall result.
package fusion

import (
	"errors"

	"github.com/jonesrussell/veracity/internal/domain"
	"github.com/jonesrussell/veracity/internal/explain"
)

// Modality weights when both are present.
const (
	TextWeight  = 0.6
	ImageWeight = 0.4
)

// ErrNoModality is returned when neither a text nor an image result is given.
var ErrNoModality = errors.New("fusion needs at least one modality")

// Fuse combines the available results. With both present the overall score
// is 0.6*text + 0.4*image and a cross-modal insight is attached; with one
// present its score is used as is.
func Fuse(text *domain.TextResult, image *domain.ImageResult) (domain.ComprehensiveResult, error) {
	var out domain.ComprehensiveResult

	switch {
	case text != nil && image != nil:
		out.OverallScore = TextWeight*text.Score.RawScore + ImageWeight*image.Score.RawScore
		out.CrossModalInsight = explain.CrossModalInsight(text.Score.IsPositive, image.Score.IsPositive)
	case text != nil:
		out.OverallScore = text.Score.RawScore
	case image != nil:
		out.OverallScore = image.Score.RawScore
	default:
		return domain.ComprehensiveResult{}, ErrNoModality
	}

	if text != nil {
		exp := text.Explanation
		out.TextExplanation = &exp
	}
	if image != nil {
		exp := image.Explanation
		out.ImageExplanation = &exp
	}

	out.OverallScore = domain.Clamp01(out.OverallScore)
	out.Recommendations = explain.Recommendations(out.OverallScore)
	return out, nil
}
