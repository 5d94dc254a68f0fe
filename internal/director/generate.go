package director

import (
	"context"
	"fmt"
	"log"
	"math"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/multifocus/internal/analyzer"
	"github.com/ivlev/multifocus/internal/config"
	"github.com/ivlev/multifocus/internal/source"
)

// Options control how frames are rasterized during generation.
type Options struct {
	DPI     int
	Workers int
	MaxSide int // Longest viewport side; 0 leaves width and height unset
}

// GenerateConfig analyzes every frame of src in parallel and builds a viewer
// config whose zones point each region of the viewport at its sharpest frame.
// Frames that fail to render or measure are kept without zones.
func (d *Director) GenerateConfig(ctx context.Context, src source.Source, det analyzer.Detector, opts Options) (*config.ViewerConfig, error) {
	pageCount := src.PageCount()
	if pageCount == 0 {
		return nil, fmt.Errorf("source has no frames")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = source.DefaultDPI
	}

	maps := make([]analyzer.Map, pageCount)
	var done atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < pageCount; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			// Empty map: the frame competes with zero energy everywhere.
			maps[i] = analyzer.Map{Cols: d.Cols, Rows: d.Rows, Energy: make([]float64, d.Cols*d.Rows)}

			img, err := src.RenderPage(i, dpi)
			if err != nil {
				log.Printf("[!] Error rendering frame %d for analysis: %v", i, err)
				return nil
			}
			m, err := det.Measure(img, d.Cols, d.Rows)
			if err != nil {
				log.Printf("[!] Error analyzing frame %d: %v", i, err)
				return nil
			}
			maps[i] = m

			fmt.Printf("[>] Analyzed: %d/%d\n", done.Add(1), pageCount)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zones, err := d.Assign(maps)
	if err != nil {
		return nil, err
	}

	cfg := &config.ViewerConfig{Images: make([]config.Frame, pageCount)}
	for i := range cfg.Images {
		cfg.Images[i] = config.Frame{Source: src.Ref(i), Zones: zones[i]}
	}

	if opts.MaxSide > 0 {
		w, h, err := src.GetPageDimensions(0)
		if err != nil {
			log.Printf("[!] Could not read frame size, keeping default viewport: %v", err)
		} else {
			cfg.Width, cfg.Height = fitSide(w, h, opts.MaxSide)
		}
	}

	return cfg, nil
}

// fitSide scales w x h so that its longest side equals maxSide.
func fitSide(w, h float64, maxSide int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	scale := float64(maxSide) / math.Max(w, h)
	return int(math.Round(w * scale)), int(math.Round(h * scale))
}
