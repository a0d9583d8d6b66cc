package imageanalysis

import (
	"context"
	"fmt"
	"math"

	"github.com/jonesrussell/veracity/internal/domain"
)

// Per-face artifact rule.
const (
	edgeDensityLimit   = 0.1
	hueVarianceLimit   = 1000
	satVarianceLimit   = 500
	symmetryLimit      = 0.95
	edgeDensityWeight  = 0.2
	colorVarianceScore = 0.3
	symmetryWeight     = 0.2
)

// Backbone embedding rule.
const (
	backboneFloor   = 0.4
	backboneStdMax  = 0.5
	backboneMeanMin = -0.1
)

// faceComponents returns the additive terms of one face's artifact score.
func faceComponents(a domain.FaceArtifact) []domain.Feature {
	c := []domain.Feature{
		{Name: "edge_density", Weight: 0},
		{Name: "color_variance", Weight: 0},
		{Name: "symmetry_score", Weight: 0},
	}
	if a.EdgeDensity > edgeDensityLimit {
		c[0].Weight = edgeDensityWeight
	}
	if a.HueVariance > hueVarianceLimit || a.SaturationVariance > satVarianceLimit {
		c[1].Weight = colorVarianceScore
	}
	if a.SymmetryScore > symmetryLimit {
		c[2].Weight = symmetryWeight
	}
	return c
}

// ScoreFace returns one face's artifact score.
func ScoreFace(a domain.FaceArtifact) float64 {
	var s float64
	for _, c := range faceComponents(a) {
		s += c.Weight
	}
	return s
}

// ScoreArtifacts scores an image as its most suspicious face. The
// contributing features are those of that face. No faces scores 0.
func ScoreArtifacts(faces []domain.FaceArtifact, threshold float64) domain.ScoreResult {
	if threshold == 0 {
		threshold = domain.ImageThreshold
	}

	best := 0.0
	var components []domain.Feature
	for _, f := range faces {
		s := ScoreFace(f)
		if components == nil || s > best {
			best = s
			components = faceComponents(f)
		}
	}
	return domain.NewScoreResult(best, threshold, domain.MethodRule, components)
}

// Embedder returns summary statistics of a backbone embedding of a face.
type Embedder interface {
	EmbedFace(ctx context.Context, png []byte) (mean, std float64, err error)
}

// BackboneScorer raises a score to a floor when the backbone embedding of
// the largest face looks unusual. It never lowers a score.
type BackboneScorer struct {
	embedder Embedder
}

// NewBackboneScorer wraps embedder.
func NewBackboneScorer(embedder Embedder) *BackboneScorer {
	return &BackboneScorer{embedder: embedder}
}

// Apply returns result with the floor applied when the embedding fires.
// On embedder failure it returns result unchanged together with the error.
func (b *BackboneScorer) Apply(ctx context.Context, result domain.ScoreResult, facePNG []byte) (domain.ScoreResult, error) {
	mean, std, err := b.embedder.EmbedFace(ctx, facePNG)
	if err != nil {
		return result, fmt.Errorf("backbone embedding: %w", err)
	}
	if !(std > backboneStdMax || mean < backboneMeanMin) {
		return result, nil
	}

	raised := math.Max(result.RawScore, backboneFloor)
	components := append(append([]domain.Feature(nil), result.ContributingFeatures...),
		domain.Feature{Name: "backbone_embedding", Weight: raised - result.RawScore})
	return domain.NewScoreResult(raised, result.Threshold, domain.MethodBackbone, components), nil
}
