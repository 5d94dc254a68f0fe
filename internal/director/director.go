package director

import (
	"fmt"

	"github.com/ivlev/multifocus/internal/analyzer"
	"github.com/ivlev/multifocus/internal/config"
)

// Director turns per-frame focus maps into the zones that select each frame
type Director struct {
	Cols      int
	Rows      int
	MinEnergy float64 // Cells below this in every frame select nothing
}

// NewDirector creates a new Director with default settings
func NewDirector(cols, rows int) *Director {
	return &Director{
		Cols:      cols,
		Rows:      rows,
		MinEnergy: 1.0,
	}
}

// Assign gives every grid cell to the frame that is sharpest there and
// returns the resulting zones, one slice per frame.
func (d *Director) Assign(maps []analyzer.Map) ([][]config.Zone, error) {
	if d.Cols <= 0 || d.Rows <= 0 {
		return nil, fmt.Errorf("invalid grid %dx%d", d.Cols, d.Rows)
	}
	for i, m := range maps {
		if m.Cols != d.Cols || m.Rows != d.Rows || len(m.Energy) != d.Cols*d.Rows {
			return nil, fmt.Errorf("frame %d: map is %dx%d, want %dx%d", i, m.Cols, m.Rows, d.Cols, d.Rows)
		}
	}

	owners := d.owners(maps)
	zones := make([][]config.Zone, len(maps))

	// Runs of the previous row, keyed by owner and column span, so that
	// identical runs in adjacent rows grow one zone downwards.
	type span struct{ owner, c0, c1 int }
	open := map[span]int{}

	for row := 0; row < d.Rows; row++ {
		next := map[span]int{}
		for c0 := 0; c0 < d.Cols; {
			owner := owners[row*d.Cols+c0]
			c1 := c0
			for c1+1 < d.Cols && owners[row*d.Cols+c1+1] == owner {
				c1++
			}

			if owner >= 0 {
				key := span{owner, c0, c1}
				if idx, ok := open[key]; ok {
					zones[owner][idx].Y2 = d.edge(row+1, d.Rows)
					next[key] = idx
				} else {
					zones[owner] = append(zones[owner], config.Zone{
						X1: d.edge(c0, d.Cols),
						Y1: d.edge(row, d.Rows),
						X2: d.edge(c1+1, d.Cols),
						Y2: d.edge(row+1, d.Rows),
					})
					next[key] = len(zones[owner]) - 1
				}
			}
			c0 = c1 + 1
		}
		open = next
	}

	return zones, nil
}

// owners returns, per cell, the index of the sharpest frame or -1.
// Ties go to the lowest index.
func (d *Director) owners(maps []analyzer.Map) []int {
	owners := make([]int, d.Cols*d.Rows)
	for cell := range owners {
		best, bestEnergy := -1, d.MinEnergy
		for i, m := range maps {
			e := m.Energy[cell]
			if e < d.MinEnergy {
				continue
			}
			if best < 0 || e > bestEnergy {
				best, bestEnergy = i, e
			}
		}
		owners[cell] = best
	}
	return owners
}

// edge returns the normalized coordinate of grid line n out of total.
func (d *Director) edge(n, total int) float64 {
	if n >= total {
		return 1
	}
	return float64(n) / float64(total)
}
