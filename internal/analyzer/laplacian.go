package analyzer

import "image"

// LaplacianDetector measures focus as the variance of the Laplacian per cell.
// It reacts to fine detail more strongly than the Sobel measure.
type LaplacianDetector struct{}

func NewLaplacianDetector() *LaplacianDetector {
	return &LaplacianDetector{}
}

func (d *LaplacianDetector) Measure(img image.Image, cols, rows int) (Map, error) {
	if err := checkGrid(img, cols, rows); err != nil {
		return Map{}, err
	}

	gray := toGrayscale(img)
	bounds := gray.Bounds()

	n := cols * rows
	sum := make([]float64, n)
	sumSq := make([]float64, n)
	counts := make([]int, n)

	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			center := float64(gray.GrayAt(x, y).Y)
			lap := float64(gray.GrayAt(x-1, y).Y) + float64(gray.GrayAt(x+1, y).Y) +
				float64(gray.GrayAt(x, y-1).Y) + float64(gray.GrayAt(x, y+1).Y) - 4*center

			col, row := cellOf(bounds, x, y, cols, rows)
			i := row*cols + col
			sum[i] += lap
			sumSq[i] += lap * lap
			counts[i]++
		}
	}

	m := newMap(cols, rows)
	for i := range m.Energy {
		if counts[i] == 0 {
			continue
		}
		mean := sum[i] / float64(counts[i])
		m.Energy[i] = sumSq[i]/float64(counts[i]) - mean*mean
	}
	return m, nil
}
