package imageanalysis

import "image"

// Canny hysteresis thresholds on the L1 Sobel gradient magnitude.
const (
	cannyLow  = 50
	cannyHigh = 150
)

// grayPlane is an 8-bit luminance raster.
type grayPlane struct {
	w, h int
	pix  []float64
}

func (g grayPlane) at(x, y int) float64 {
	return g.pix[y*g.w+x]
}

// toGray converts img with ITU-R BT.601 luma weights.
func toGray(img image.Image) grayPlane {
	b := img.Bounds()
	g := grayPlane{w: b.Dx(), h: b.Dy(), pix: make([]float64, b.Dx()*b.Dy())}
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			r, gr, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			l := 0.299*float64(r>>8) + 0.587*float64(gr>>8) + 0.114*float64(bl>>8)
			g.pix[y*g.w+x] = float64(int(l + 0.5))
		}
	}
	return g
}

// reflect101 maps an out-of-range index back into [0,n) without repeating
// the edge sample.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

// edgeDensity runs Canny edge detection and returns the fraction of pixels
// marked as edges.
func edgeDensity(g grayPlane) float64 {
	if g.w == 0 || g.h == 0 {
		return 0
	}
	edges := canny(g)
	var n int
	for _, e := range edges {
		if e {
			n++
		}
	}
	return float64(n) / float64(g.w*g.h)
}

func canny(g grayPlane) []bool {
	w, h := g.w, g.h
	mag := make([]float64, w*h)
	dir := make([]uint8, w*h)

	px := func(x, y int) float64 {
		return g.at(reflect101(x, w), reflect101(y, h))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := -px(x-1, y-1) - 2*px(x-1, y) - px(x-1, y+1) +
				px(x+1, y-1) + 2*px(x+1, y) + px(x+1, y+1)
			gy := -px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1) +
				px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1)

			i := y*w + x
			mag[i] = abs(gx) + abs(gy)
			dir[i] = quantizeDirection(gx, gy)
		}
	}

	// non-maximum suppression
	const (
		weak   = 1
		strong = 2
	)
	state := make([]uint8, w*h)
	stack := make([]int, 0, w)
	magAt := func(x, y int) float64 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if m <= cannyLow {
				continue
			}

			var a, b float64
			switch dir[i] {
			case 0:
				a, b = magAt(x-1, y), magAt(x+1, y)
			case 1:
				a, b = magAt(x+1, y-1), magAt(x-1, y+1)
			case 2:
				a, b = magAt(x, y-1), magAt(x, y+1)
			default:
				a, b = magAt(x-1, y-1), magAt(x+1, y+1)
			}
			if m < a || m <= b {
				continue
			}

			if m > cannyHigh {
				state[i] = strong
				stack = append(stack, i)
			} else {
				state[i] = weak
			}
		}
	}

	// hysteresis: promote weak pixels connected to strong ones
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == weak {
					state[j] = strong
					stack = append(stack, j)
				}
			}
		}
	}

	edges := make([]bool, w*h)
	for i, s := range state {
		edges[i] = s == strong
	}
	return edges
}

// quantizeDirection buckets the gradient angle: 0 horizontal gradient,
// 1 at 45 degrees, 2 vertical, 3 at 135 degrees.
func quantizeDirection(gx, gy float64) uint8 {
	const tan22 = 0.4142135623730951
	const tan67 = 2.414213562373095

	ax, ay := abs(gx), abs(gy)
	switch {
	case ay <= ax*tan22:
		return 0
	case ay >= ax*tan67:
		return 2
	case (gx > 0) == (gy > 0):
		return 3
	default:
		return 1
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
