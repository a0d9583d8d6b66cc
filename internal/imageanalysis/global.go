package imageanalysis

import (
	"image"
	"math"

	"github.com/jonesrussell/veracity/internal/domain"
)

// rgbChannels is reported for every decoded image; alpha is ignored.
const rgbChannels = 3

// ExtractImageFeatures computes whole-image colour and texture statistics.
func ExtractImageFeatures(img image.Image) domain.ImageFeatures {
	b := img.Bounds()
	n := float64(b.Dx() * b.Dy())
	f := domain.ImageFeatures{Width: b.Dx(), Height: b.Dy(), Channels: rgbChannels}
	if n == 0 {
		return f
	}

	var sr, sg, sb, qr, qg, qb float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			rf, gf, bf := float64(r>>8), float64(g>>8), float64(bl>>8)
			sr += rf
			sg += gf
			sb += bf
			qr += rf * rf
			qg += gf * gf
			qb += bf * bf
		}
	}

	f.MeanR, f.StdR = sr/n, stdFromSums(sr, qr, n)
	f.MeanG, f.StdG = sg/n, stdFromSums(sg, qg, n)
	f.MeanB, f.StdB = sb/n, stdFromSums(sb, qb, n)

	gray := toGray(img)
	f.Brightness = mean(gray.pix)
	f.Contrast = math.Sqrt(variance(gray.pix))
	f.EdgeDensity = edgeDensity(gray)

	return f
}

func stdFromSums(sum, sumSq, n float64) float64 {
	m := sum / n
	v := sumSq/n - m*m
	if v < 0 {
		return 0
	}
	return math.Sqrt(v)
}
