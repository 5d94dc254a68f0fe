package analyzer

import (
	"fmt"

	"github.com/agnivade/levenshtein"
)

// Variants lists the detector names NewDetector accepts
var Variants = []string{"sobel", "laplacian"}

// NewDetector creates a detector based on the specified variant
func NewDetector(variant string) (Detector, error) {
	switch variant {
	case "sobel", "":
		return NewSobelDetector(), nil
	case "laplacian":
		return NewLaplacianDetector(), nil
	default:
		if guess := closestVariant(variant); guess != "" {
			return nil, fmt.Errorf("unknown detector variant: %s (did you mean %s?)", variant, guess)
		}
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}

// closestVariant returns the known variant within two edits of name.
func closestVariant(name string) string {
	best, bestDist := "", 3
	for _, v := range Variants {
		if d := levenshtein.ComputeDistance(name, v); d < bestDist {
			best, bestDist = v, d
		}
	}
	return best
}
