// Package imageproc reduces decoded frames to compact colour signatures that
// can be compared cheaply across a whole video.
package imageproc

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Lab is a CIE L*a*b* colour on go-colorful's scale (L in 0..1).
type Lab struct {
	L, A, B float64
}

// Signature is the mean colour of each cell of a grid laid over a frame,
// in row-major order.
type Signature []Lab

// NewSignature computes a grid×grid signature of an rgb24 frame. Cells at
// the right and bottom edges absorb any pixels left over by the division.
func NewSignature(frame []byte, width, height, grid int) Signature {
	grid = max(1, min(grid, width, height))
	sig := make(Signature, 0, grid*grid)

	for cy := 0; cy < grid; cy++ {
		y0, y1 := cy*height/grid, (cy+1)*height/grid
		for cx := 0; cx < grid; cx++ {
			x0, x1 := cx*width/grid, (cx+1)*width/grid

			var rSum, gSum, bSum uint64
			for y := y0; y < y1; y++ {
				row := frame[(y*width+x0)*3 : (y*width+x1)*3]
				for i := 0; i < len(row); i += 3 {
					rSum += uint64(row[i])
					gSum += uint64(row[i+1])
					bSum += uint64(row[i+2])
				}
			}

			n := float64((y1-y0)*(x1-x0)) * 255.0
			c := colorful.Color{R: float64(rSum) / n, G: float64(gSum) / n, B: float64(bSum) / n}
			l, a, b := c.Lab()
			sig = append(sig, Lab{L: l, A: a, B: b})
		}
	}
	return sig
}

// Distance is the mean per-cell CIE76 colour difference between two
// signatures. Identical frames score 0; a cut between unrelated shots
// typically scores well above 0.1. Signatures of different shapes are
// infinitely far apart.
func Distance(a, b Signature) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		dl, da, db := a[i].L-b[i].L, a[i].A-b[i].A, a[i].B-b[i].B
		sum += math.Sqrt(dl*dl + da*da + db*db)
	}
	return sum / float64(len(a))
}

// Luma returns the mean lightness of a signature, 0 for black and 1 for white.
func Luma(sig Signature) float64 {
	if len(sig) == 0 {
		return 0
	}
	var sum float64
	for _, c := range sig {
		sum += c.L
	}
	return sum / float64(len(sig))
}
