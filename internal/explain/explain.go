// Package explain turns scored features into human-readable explanations.
// Every function here is pure.
package explain

import (
	"fmt"
	"math"

	"github.com/jonesrussell/veracity/internal/domain"
)

// Text key factors, in evaluation order.
const (
	FactorSuspiciousLanguage = "Contains suspicious language patterns"
	FactorCredibleSources    = "Contains credible source indicators"
	FactorExclamation        = "Uses excessive exclamation marks"
	FactorCapitalization     = "Uses excessive capitalization"
)

// Image key factors, in evaluation order.
const (
	FactorEdgeDensity   = "Unusually high edge density detected"
	FactorColorPatterns = "Inconsistent color patterns detected"
	FactorSymmetry      = "Unnaturally perfect facial symmetry"
	FactorNoFaces       = "No faces detected in image"
)

var (
	textFakeRecommendations = []string{
		"Verify information with multiple credible sources",
		"Check for fact-checking websites",
		"Look for official statements or press releases",
		"Be cautious of sensationalist language",
	}
	textRealRecommendations = []string{
		"Content appears credible but always verify independently",
		"Check multiple sources for confirmation",
		"Look for official documentation when possible",
	}
	imageFakeRecommendations = []string{
		"Image shows signs of digital manipulation",
		"Verify image source and authenticity",
		"Check for reverse image search results",
		"Look for inconsistencies in lighting and shadows",
	}
	imageRealRecommendations = []string{
		"Image appears to be authentic",
		"Still verify with reverse image search",
		"Check image metadata when possible",
		"Consider the source and context",
	}
)

// Text explains a text score. Key factors fire independently in a fixed
// order. Importance is derived from the raw score; the per-feature rule
// weights are attached as FeatureWeights.
func Text(f domain.TextFeatures, score domain.ScoreResult) domain.Explanation {
	factors := make([]string, 0, 4)
	if f.FakeIndicatorCount > 0 {
		factors = append(factors, FactorSuspiciousLanguage)
	}
	if f.CredibleIndicatorCount > 0 {
		factors = append(factors, FactorCredibleSources)
	}
	if f.ExclamationCount > 2 {
		factors = append(factors, FactorExclamation)
	}
	if f.CapsRatio > 0.3 {
		factors = append(factors, FactorCapitalization)
	}

	verdict := domain.VerdictReal
	recs := textRealRecommendations
	if score.IsPositive {
		verdict = domain.VerdictFake
		recs = textFakeRecommendations
	}

	return domain.Explanation{
		Type:              domain.KindText,
		Verdict:           verdict,
		Confidence:        score.Confidence,
		KeyFactors:        factors,
		FeatureImportance: TextImportance(score.RawScore),
		FeatureWeights:    TextWeights(f),
		Recommendations:   clone(recs),
	}
}

// TextImportance maps a text score onto the four explanation categories.
func TextImportance(s float64) map[string]float64 {
	return map[string]float64{
		domain.ImportanceSuspiciousLanguage: math.Min(s*0.4, 1),
		domain.ImportanceSourceCredibility:  math.Max(0, (1-s)*0.3),
		domain.ImportanceWritingStyle:       math.Min(s*0.2, 1),
		domain.ImportanceSentiment:          math.Abs(s-0.5) * 0.1,
	}
}

// TextWeights weights each feature by its rule coefficient. Features
// that do not enter the rule get zero.
func TextWeights(f domain.TextFeatures) map[string]float64 {
	imp := map[string]float64{
		"fake_indicators":     float64(f.FakeIndicatorCount) * 0.3,
		"credible_indicators": -float64(f.CredibleIndicatorCount) * 0.2,
		"exclamation_count":   0,
		"caps_ratio":          0,
		"sentiment_score":     0,
		"word_count":          0,
		"avg_word_length":     0,
	}
	if f.ExclamationCount > 2 {
		imp["exclamation_count"] = float64(f.ExclamationCount) * 0.1
	}
	if f.CapsRatio > 0.3 {
		imp["caps_ratio"] = f.CapsRatio * 0.1
	}
	return imp
}

// Image explains an image result. Artifact factors use the mean over faces.
func Image(res domain.ImageResult) domain.Explanation {
	exp := domain.Explanation{
		Type:              domain.KindImage,
		Verdict:           domain.VerdictReal,
		Confidence:        res.Score.Confidence,
		KeyFactors:        make([]string, 0, 4),
		FeatureImportance: map[string]float64{},
		Recommendations:   clone(imageRealRecommendations),
	}
	if res.Score.IsPositive {
		exp.Verdict = domain.VerdictDeepfake
		exp.Recommendations = clone(imageFakeRecommendations)
	}

	if avg, ok := domain.AverageArtifacts(res.Faces); ok {
		exp.ArtifactAnalysis = &avg
		exp.FeatureImportance = ImageImportance(avg)

		if avg.EdgeDensity > 0.1 {
			exp.KeyFactors = append(exp.KeyFactors, FactorEdgeDensity)
		}
		if avg.HueVariance > 1000 {
			exp.KeyFactors = append(exp.KeyFactors, FactorColorPatterns)
		}
		if avg.SymmetryScore > 0.95 {
			exp.KeyFactors = append(exp.KeyFactors, FactorSymmetry)
		}
	}

	if res.FaceDetected {
		exp.KeyFactors = append(exp.KeyFactors, fmt.Sprintf("Detected %d face(s) in image", res.FaceCount))
	} else {
		exp.KeyFactors = append(exp.KeyFactors, FactorNoFaces)
	}

	return exp
}

// ImageImportance weights averaged artifacts by their rule coefficients.
func ImageImportance(avg domain.ArtifactAnalysis) map[string]float64 {
	imp := map[string]float64{
		"edge_density":        0,
		"hue_variance":        0,
		"saturation_variance": 0,
		"value_variance":      0,
		"symmetry_score":      0,
	}
	if avg.EdgeDensity > 0.1 {
		imp["edge_density"] = avg.EdgeDensity * 0.2
	}
	if avg.HueVariance > 1000 {
		imp["hue_variance"] = avg.HueVariance * 0.3
	}
	if avg.SymmetryScore > 0.95 {
		imp["symmetry_score"] = avg.SymmetryScore * 0.2
	}
	return imp
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
