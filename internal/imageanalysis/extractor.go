package imageanalysis

import (
	"context"
	"image"

	"github.com/disintegration/imaging"
	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
	"github.com/jonesrussell/veracity/internal/domain"
)

// Options configures an Analyzer.
type Options struct {
	Threshold    float64
	AnalysisSize int
	MaxFaces     int
	MaxPixels    int64
}

// Analyzer runs the image pipeline: decode, global features, faces,
// artifacts, rule score and the optional backbone floor. It is safe for
// concurrent use.
type Analyzer struct {
	locator  FaceLocator
	backbone *BackboneScorer
	opts     Options
	logger   infralogger.Logger
}

// NewAnalyzer creates an analyzer. locator and backbone may be nil.
func NewAnalyzer(locator FaceLocator, backbone *BackboneScorer, opts Options, log infralogger.Logger) *Analyzer {
	if opts.Threshold == 0 {
		opts.Threshold = domain.ImageThreshold
	}
	if opts.AnalysisSize <= 0 {
		opts.AnalysisSize = DefaultAnalysisSize
	}
	if opts.MaxFaces <= 0 {
		opts.MaxFaces = DefaultMaxFaces
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}
	if log == nil {
		log = infralogger.NewNop()
	}
	return &Analyzer{locator: locator, backbone: backbone, opts: opts, logger: log}
}

// Analyze scores data. Only decode failures are returned as errors; face
// and backbone failures degrade to fewer signals.
func (a *Analyzer) Analyze(ctx context.Context, data []byte, analyzeFaces bool) (domain.ImageResult, error) {
	img, _, err := Decode(data, a.opts.MaxPixels)
	if err != nil {
		return domain.ImageResult{}, err
	}

	result := domain.ImageResult{
		Features: ExtractImageFeatures(img),
		Faces:    []domain.FaceArtifact{},
	}

	var crops []image.Image
	if analyzeFaces && a.locator != nil {
		candidates, locErr := a.locator.LocateFaces(ctx, img)
		if locErr != nil {
			a.logger.Warn("Face location failed", infralogger.Error(locErr))
		}
		if len(candidates) > a.opts.MaxFaces {
			candidates = candidates[:a.opts.MaxFaces]
		}
		for _, c := range candidates {
			crop := imaging.Crop(img, image.Rect(c.BBox.X, c.BBox.Y, c.BBox.X+c.BBox.W, c.BBox.Y+c.BBox.H))
			artifact := ComputeFaceArtifacts(crop, a.opts.AnalysisSize)
			artifact.BBox = c.BBox
			artifact.Confidence = c.Confidence
			result.Faces = append(result.Faces, artifact)
			crops = append(crops, crop)
		}
	}

	result.FaceCount = len(result.Faces)
	result.FaceDetected = result.FaceCount > 0
	result.Score = ScoreArtifacts(result.Faces, a.opts.Threshold)

	if a.backbone != nil && len(crops) > 0 {
		result.Score = a.applyBackbone(ctx, result.Score, largest(crops))
	}

	return result, nil
}

func (a *Analyzer) applyBackbone(ctx context.Context, score domain.ScoreResult, face image.Image) domain.ScoreResult {
	resized := imaging.Resize(face, a.opts.AnalysisSize, a.opts.AnalysisSize, imaging.Linear)
	data, err := EncodePNG(resized)
	if err != nil {
		a.logger.Warn("Encode face for backbone failed", infralogger.Error(err))
		return score
	}

	raised, err := a.backbone.Apply(ctx, score, data)
	if err != nil {
		a.logger.Warn("Backbone model unavailable, keeping artifact score", infralogger.Error(err))
		return score
	}
	return raised
}

func largest(imgs []image.Image) image.Image {
	var best image.Image
	bestArea := -1
	for _, img := range imgs {
		b := img.Bounds()
		if area := b.Dx() * b.Dy(); area > bestArea {
			best, bestArea = img, area
		}
	}
	return best
}
