package focus

import (
	"math"

	"github.com/ivlev/multifocus/internal/config"
)

// Resolve returns the index of the first frame owning a zone that contains
// (x, y). Frames and their zones are tested in declaration order, so when
// zones overlap the earliest one wins. ok is false when nothing matches.
func Resolve(frames []config.Frame, x, y float64) (index int, ok bool) {
	for i, frame := range frames {
		for _, zone := range frame.Zones {
			if zone.Contains(x, y) {
				return i, true
			}
		}
	}
	return 0, false
}

// Normalize converts a pointer position into viewport space, given the
// viewport origin and its size in the same units.
func Normalize(px, py, originX, originY float64, width, height int) (float64, float64) {
	if width <= 0 || height <= 0 {
		return math.NaN(), math.NaN()
	}
	return (px - originX) / float64(width), (py - originY) / float64(height)
}
