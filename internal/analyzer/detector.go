package analyzer

import (
	"fmt"
	"image"
	"image/color"
)

// Map is a focus measure sampled on a Cols x Rows grid laid over an image.
// Higher energy means sharper detail in that cell.
type Map struct {
	Cols, Rows int
	Energy     []float64 // row-major
}

func newMap(cols, rows int) Map {
	return Map{Cols: cols, Rows: rows, Energy: make([]float64, cols*rows)}
}

// At returns the energy of a cell.
func (m Map) At(col, row int) float64 {
	return m.Energy[row*m.Cols+col]
}

// Detector is the interface for focus measures
type Detector interface {
	Measure(img image.Image, cols, rows int) (Map, error)
}

func checkGrid(img image.Image, cols, rows int) error {
	if cols <= 0 || rows <= 0 {
		return fmt.Errorf("invalid grid %dx%d", cols, rows)
	}
	b := img.Bounds()
	if b.Dx() < 3 || b.Dy() < 3 {
		return fmt.Errorf("image too small to measure: %v", b)
	}
	return nil
}

// cellOf maps a pixel to its grid cell.
func cellOf(b image.Rectangle, x, y, cols, rows int) (int, int) {
	col := (x - b.Min.X) * cols / b.Dx()
	row := (y - b.Min.Y) * rows / b.Dy()
	return col, row
}

// toGrayscale converts an image to grayscale
func toGrayscale(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		return gray
	}

	bounds := img.Bounds()
	gray := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}

	return gray
}
