package analyzer

import (
	"image"
	"math"
)

// SobelDetector measures focus as the mean Sobel gradient magnitude per cell
type SobelDetector struct {
	NoiseFloor float64 // Gradient magnitudes at or below this are ignored
}

// NewSobelDetector creates a new gradient-based detector with default settings
func NewSobelDetector() *SobelDetector {
	return &SobelDetector{
		NoiseFloor: 8.0,
	}
}

// Measure computes the per-cell gradient energy of img
func (d *SobelDetector) Measure(img image.Image, cols, rows int) (Map, error) {
	if err := checkGrid(img, cols, rows); err != nil {
		return Map{}, err
	}

	gray := toGrayscale(img)
	bounds := gray.Bounds()

	// Sobel kernels
	gx := [3][3]int{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	gy := [3][3]int{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	m := newMap(cols, rows)
	counts := make([]int, cols*rows)

	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			var sumX, sumY float64

			// Apply convolution
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					pixel := float64(gray.GrayAt(x+kx, y+ky).Y)
					sumX += pixel * float64(gx[ky+1][kx+1])
					sumY += pixel * float64(gy[ky+1][kx+1])
				}
			}

			col, row := cellOf(bounds, x, y, cols, rows)
			i := row*cols + col
			counts[i]++

			magnitude := math.Sqrt(sumX*sumX + sumY*sumY)
			if magnitude > d.NoiseFloor {
				m.Energy[i] += magnitude
			}
		}
	}

	for i, n := range counts {
		if n > 0 {
			m.Energy[i] /= float64(n)
		}
	}

	return m, nil
}
