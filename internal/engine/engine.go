package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/multifocus/internal/analyzer"
	"github.com/ivlev/multifocus/internal/config"
	"github.com/ivlev/multifocus/internal/director"
	"github.com/ivlev/multifocus/internal/preload"
	"github.com/ivlev/multifocus/internal/source"
	"github.com/ivlev/multifocus/internal/system"
)

// DefaultMaxSide is the longest viewport side of a generated config when
// no size is given on the command line.
const DefaultMaxSide = 800

// DefaultGrid is the number of analysis cells per side.
const DefaultGrid = 8

// Project prepares what a run needs: it generates viewer configs, resolves
// which config to show and builds the resource cache for it.
type Project struct {
	Config    *config.Config
	ConfigDir string
}

func NewProject(cfg *config.Config) *Project {
	return &Project{
		Config:    cfg,
		ConfigDir: director.ConfigDir,
	}
}

// Generate analyzes the input and writes a viewer config for it. It returns
// the path of the written file.
func (p *Project) Generate(ctx context.Context) (string, error) {
	if p.Config.InputPath == "" {
		return "", fmt.Errorf("generation needs an input")
	}

	startTime := time.Now()

	src, err := source.Open(p.Config.InputPath)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	det, err := analyzer.NewDetector(p.Config.Detector)
	if err != nil {
		return "", err
	}

	cols, rows := p.Config.GridCols, p.Config.GridRows
	if cols <= 0 {
		cols = DefaultGrid
	}
	if rows <= 0 {
		rows = DefaultGrid
	}
	dir := director.NewDirector(cols, rows)
	if p.Config.MinEnergy > 0 {
		dir.MinEnergy = p.Config.MinEnergy
	}

	fmt.Printf("[*] Source: %s | Frames: %d\n", p.Config.InputPath, src.PageCount())
	fmt.Printf("[*] Detector: %s | Grid: %dx%d | DPI: %d\n", detectorName(p.Config.Detector), dir.Cols, dir.Rows, p.Config.DPI)

	opts := director.Options{DPI: p.Config.DPI, Workers: p.Config.Workers}
	if p.Config.Width <= 0 && p.Config.Height <= 0 {
		opts.MaxSide = DefaultMaxSide
	}

	vc, err := dir.GenerateConfig(ctx, src, det, opts)
	if err != nil {
		return "", err
	}
	*vc = vc.Apply(p.Config)

	outputPath := p.Config.OutputPath
	if outputPath == "" {
		outputPath = director.GenerateConfigPath(p.ConfigDir)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", err
	}

	// Refs are resolved against the config file's directory when viewing.
	for i := range vc.Images {
		vc.Images[i].Source = source.Rebase(vc.Images[i].Source, filepath.Dir(outputPath))
	}

	if err := config.WriteViewerConfig(vc, outputPath); err != nil {
		return "", err
	}

	fmt.Printf("[*] Analysis took %v\n", time.Since(startTime).Round(time.Millisecond))
	return outputPath, nil
}

// LoadViewerConfig picks the config to show: the -config file, a plain
// sequence built from -input, or the newest generated config, in that
// order. Command line overrides are applied. The second value is the
// directory relative refs are resolved against.
func (p *Project) LoadViewerConfig() (*config.ViewerConfig, string, error) {
	path := p.Config.ConfigPath

	if path == "" && p.Config.InputPath != "" {
		vc, err := sequenceConfig(p.Config.InputPath)
		if err != nil {
			return nil, "", err
		}
		applied := vc.Apply(p.Config).WithDefaults()
		return &applied, "", nil
	}

	if path == "" {
		latest, err := director.FindLatestConfig(p.ConfigDir)
		if err != nil {
			return nil, "", err
		}
		path = latest
		fmt.Printf("[*] Using config: %s\n", path)
	}

	vc, err := config.ReadViewerConfig(path)
	if err != nil {
		return nil, "", err
	}
	applied := vc.Apply(p.Config).WithDefaults()
	return &applied, filepath.Dir(path), nil
}

// NewCache builds the resource cache for vc, scaling every frame to the
// viewport. Refs are resolved against baseDir.
func (p *Project) NewCache(ctx context.Context, vc *config.ViewerConfig, baseDir string) *preload.Cache {
	if vc.PreloadEnabled() {
		system.CheckPreload(len(vc.Images), vc.Width, vc.Height)
	}
	loader := source.NewRefLoader(baseDir, p.Config.DPI)
	return preload.NewCache(ctx, loader, preload.Options{
		Workers: p.Config.Workers,
		Width:   vc.Width,
		Height:  vc.Height,
	})
}

// sequenceConfig lists the frames of a source without any zones.
func sequenceConfig(path string) (*config.ViewerConfig, error) {
	src, err := source.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	if src.PageCount() == 0 {
		return nil, fmt.Errorf("source %s has no frames", path)
	}

	vc := &config.ViewerConfig{Images: make([]config.Frame, src.PageCount())}
	for i := range vc.Images {
		vc.Images[i] = config.Frame{Source: src.Ref(i)}
	}
	return vc, nil
}

func detectorName(variant string) string {
	if variant == "" {
		return "sobel"
	}
	return variant
}
