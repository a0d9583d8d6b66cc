package imageanalysis

import (
	"context"
	_ "embed"
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
	"github.com/jonesrussell/veracity/internal/domain"
)

// DefaultMaxFaces caps the faces analysed per image.
const DefaultMaxFaces = 5

// Detector sources.
const (
	SourcePigo    = "pigo"
	SourceSidecar = "sidecar"
)

// FaceLocator finds face candidates in an image.
type FaceLocator interface {
	LocateFaces(ctx context.Context, img image.Image) ([]domain.FaceCandidate, error)
}

// FaceDetector is a remote detector that takes PNG bytes.
type FaceDetector interface {
	DetectFaces(ctx context.Context, png []byte) ([]domain.FaceCandidate, error)
}

// pigo cascade parameters
const (
	pigoMinSize      = 30
	pigoMaxSize      = 1000
	pigoShiftFactor  = 0.1
	pigoScaleFactor  = 1.1
	pigoIoU          = 0.2
	pigoMinQuality   = 5.0
	pigoConfidence   = 0.8
	sidecarDefaultQ  = 0.9
	pigoNoRotation   = 0.0
	minFaceDimension = 1
)

// PigoLocator is the in-process primary detector.
type PigoLocator struct {
	classifier *pigo.Pigo
}

// facefinder is the frontal face cascade distributed with pigo.
//
//go:embed cascade/facefinder
var facefinder []byte

// NewPigoLocator unpacks the cascade file at path. An empty path selects
// the bundled facefinder cascade.
func NewPigoLocator(path string) (*PigoLocator, error) {
	if path == "" {
		return newPigoLocator(facefinder)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cascade: %w", err)
	}
	return newPigoLocator(data)
}

func newPigoLocator(data []byte) (*PigoLocator, error) {
	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack cascade: %w", err)
	}
	return &PigoLocator{classifier: classifier}, nil
}

// LocateFaces implements FaceLocator.
func (l *PigoLocator) LocateFaces(_ context.Context, img image.Image) ([]domain.FaceCandidate, error) {
	src := pigo.ImgToNRGBA(img)
	cols, rows := src.Bounds().Dx(), src.Bounds().Dy()

	params := pigo.CascadeParams{
		MinSize:     pigoMinSize,
		MaxSize:     pigoMaxSize,
		ShiftFactor: pigoShiftFactor,
		ScaleFactor: pigoScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(src),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := l.classifier.RunCascade(params, pigoNoRotation)
	dets = l.classifier.ClusterDetections(dets, pigoIoU)

	offset := img.Bounds().Min
	faces := make([]domain.FaceCandidate, 0, len(dets))
	for _, d := range dets {
		if d.Q < pigoMinQuality {
			continue
		}
		faces = append(faces, domain.FaceCandidate{
			BBox: domain.BoundingBox{
				X: offset.X + d.Col - d.Scale/2,
				Y: offset.Y + d.Row - d.Scale/2,
				W: d.Scale,
				H: d.Scale,
			},
			Confidence: pigoConfidence,
			Source:     SourcePigo,
		})
	}
	return faces, nil
}

// SidecarLocator adapts a remote FaceDetector to FaceLocator.
type SidecarLocator struct {
	detector FaceDetector
}

// NewSidecarLocator wraps detector.
func NewSidecarLocator(detector FaceDetector) *SidecarLocator {
	return &SidecarLocator{detector: detector}
}

// LocateFaces implements FaceLocator.
func (l *SidecarLocator) LocateFaces(ctx context.Context, img image.Image) ([]domain.FaceCandidate, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}
	faces, err := l.detector.DetectFaces(ctx, data)
	if err != nil {
		return nil, err
	}
	for i := range faces {
		faces[i].Source = SourceSidecar
		if faces[i].Confidence == 0 {
			faces[i].Confidence = sidecarDefaultQ
		}
	}
	return faces, nil
}

// CompositeLocator runs a primary detector and appends the hits of an
// optional secondary one. Overlapping hits are kept as independent
// evidence. The combined list is capped at max.
type CompositeLocator struct {
	primary   FaceLocator
	secondary FaceLocator
	max       int
	logger    infralogger.Logger
}

// NewCompositeLocator builds a locator; secondary may be nil.
func NewCompositeLocator(primary, secondary FaceLocator, maxFaces int, log infralogger.Logger) *CompositeLocator {
	if maxFaces <= 0 {
		maxFaces = DefaultMaxFaces
	}
	if log == nil {
		log = infralogger.NewNop()
	}
	return &CompositeLocator{primary: primary, secondary: secondary, max: maxFaces, logger: log}
}

// LocateFaces implements FaceLocator. A failing secondary detector is
// logged and skipped; a failing primary one is returned.
func (l *CompositeLocator) LocateFaces(ctx context.Context, img image.Image) ([]domain.FaceCandidate, error) {
	var faces []domain.FaceCandidate

	if l.primary != nil {
		found, err := l.primary.LocateFaces(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("primary face detector: %w", err)
		}
		faces = append(faces, found...)
	}

	if l.secondary != nil && len(faces) < l.max {
		found, err := l.secondary.LocateFaces(ctx, img)
		if err != nil {
			l.logger.Warn("Secondary face detector unavailable", infralogger.Error(err))
		} else {
			faces = append(faces, found...)
		}
	}

	faces = clipFaces(faces, img.Bounds())
	if len(faces) > l.max {
		faces = faces[:l.max]
	}
	return faces, nil
}

// clipFaces intersects each box with bounds and drops empty ones.
func clipFaces(faces []domain.FaceCandidate, bounds image.Rectangle) []domain.FaceCandidate {
	out := faces[:0]
	for _, f := range faces {
		r := image.Rect(f.BBox.X, f.BBox.Y, f.BBox.X+f.BBox.W, f.BBox.Y+f.BBox.H).Intersect(bounds)
		if r.Dx() < minFaceDimension || r.Dy() < minFaceDimension {
			continue
		}
		f.BBox = domain.BoundingBox{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
		out = append(out, f)
	}
	return out
}
