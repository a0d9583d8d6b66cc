package imageanalysis

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/jonesrussell/veracity/internal/domain"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultAnalysisSize is the square side faces are resized to.
const DefaultAnalysisSize = 224

// symmetryFallback is reported when the two halves differ in width.
const symmetryFallback = 0.5

// ComputeFaceArtifacts resizes face to size x size and measures edge
// density, HSV variances on the 8-bit OpenCV scale (H 0-180, S and V 0-255)
// and left/right symmetry.
func ComputeFaceArtifacts(face image.Image, size int) domain.FaceArtifact {
	if size <= 0 {
		size = DefaultAnalysisSize
	}
	resized := imaging.Resize(face, size, size, imaging.Linear)
	gray := toGray(resized)

	hv, sv, vv := hsvVariances(resized)

	return domain.FaceArtifact{
		EdgeDensity:        edgeDensity(gray),
		HueVariance:        hv,
		SaturationVariance: sv,
		ValueVariance:      vv,
		SymmetryScore:      Symmetry(gray.image()),
	}
}

func hsvVariances(img *image.NRGBA) (hue, sat, val float64) {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0, 0, 0
	}

	hs := make([]float64, 0, n)
	ss := make([]float64, 0, n)
	vs := make([]float64, 0, n)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			h, s, v := colorful.Color{
				R: float64(c.R) / 255,
				G: float64(c.G) / 255,
				B: float64(c.B) / 255,
			}.Hsv()
			hs = append(hs, math.Round(h/2))
			ss = append(ss, math.Round(s*255))
			vs = append(vs, math.Round(v*255))
		}
	}
	return variance(hs), variance(ss), variance(vs)
}

// Symmetry compares the left half of img with the mirrored right half:
// 1 - mean|L - flip(R)|/255 over luminance. Odd widths give 0.5.
func Symmetry(img image.Image) float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	half := w / 2
	if half == 0 || w-half != half {
		return symmetryFallback
	}

	left := imaging.Crop(img, image.Rect(b.Min.X, b.Min.Y, b.Min.X+half, b.Max.Y))
	right := imaging.FlipH(imaging.Crop(img, image.Rect(b.Min.X+half, b.Min.Y, b.Max.X, b.Max.Y)))

	lg, rg := toGray(left), toGray(right)
	var diff float64
	for i := range lg.pix {
		diff += math.Abs(lg.pix[i] - rg.pix[i])
	}
	mean := diff / float64(half*h)
	return domain.Clamp01(1 - mean/255)
}

// image renders the plane as an 8-bit gray image.
func (g grayPlane) image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.w, g.h))
	for i, v := range g.pix {
		img.Pix[i] = uint8(v)
	}
	return img
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

// variance is the population variance.
func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var s float64
	for _, x := range xs {
		d := x - m
		s += d * d
	}
	return s / float64(len(xs))
}
