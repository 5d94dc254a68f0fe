package engine

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/multifocus/internal/config"
)

// writeHalfSharp writes a 64x32 PNG with a checkerboard on one half and
// flat grey on the other.
func writeHalfSharp(t *testing.T, path string, left bool) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(128)
			if (x < 32) == left {
				if (x/2+y/2)%2 == 0 {
					v = 0
				} else {
					v = 255
				}
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func newFrames(t *testing.T) (root, frames string) {
	t.Helper()
	root = t.TempDir()
	frames = filepath.Join(root, "frames")
	if err := os.MkdirAll(frames, 0755); err != nil {
		t.Fatal(err)
	}
	writeHalfSharp(t, filepath.Join(frames, "a.png"), true)
	writeHalfSharp(t, filepath.Join(frames, "b.png"), false)
	return root, frames
}

func TestGenerateAndView(t *testing.T) {
	root, frames := newFrames(t)
	out := filepath.Join(root, "configs", "test.yaml")

	project := NewProject(&config.Config{
		InputPath:  frames,
		OutputPath: out,
		GridCols:   2,
		GridRows:   1,
		Workers:    2,
	})

	path, err := project.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if path != out {
		t.Errorf("Expected config at %s, got %s", out, path)
	}

	vc, err := config.ReadViewerConfig(path)
	if err != nil {
		t.Fatalf("ReadViewerConfig failed: %v", err)
	}
	if len(vc.Images) != 2 {
		t.Fatalf("Expected 2 frames, got %d", len(vc.Images))
	}
	if vc.Images[0].Source != "../frames/a.png" || vc.Images[1].Source != "../frames/b.png" {
		t.Errorf("Expected refs relative to the config, got %q and %q", vc.Images[0].Source, vc.Images[1].Source)
	}
	if vc.Width != DefaultMaxSide || vc.Height != DefaultMaxSide/2 {
		t.Errorf("Expected %dx%d viewport, got %dx%d", DefaultMaxSide, DefaultMaxSide/2, vc.Width, vc.Height)
	}

	if len(vc.Images[0].Zones) != 1 || !vc.Images[0].Zones[0].Contains(0.25, 0.5) {
		t.Errorf("Expected frame a to own the left half, got %+v", vc.Images[0].Zones)
	}
	if len(vc.Images[1].Zones) != 1 || !vc.Images[1].Zones[0].Contains(0.75, 0.5) {
		t.Errorf("Expected frame b to own the right half, got %+v", vc.Images[1].Zones)
	}

	// View the generated config from another working set of options.
	viewer := NewProject(&config.Config{ConfigPath: path, Width: 16, Height: 8})
	loaded, baseDir, err := viewer.LoadViewerConfig()
	if err != nil {
		t.Fatalf("LoadViewerConfig failed: %v", err)
	}
	if baseDir != filepath.Dir(path) {
		t.Errorf("Expected base dir %s, got %s", filepath.Dir(path), baseDir)
	}
	if loaded.Width != 16 || loaded.Height != 8 {
		t.Errorf("Expected overrides to apply, got %dx%d", loaded.Width, loaded.Height)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache := viewer.NewCache(ctx, loaded, baseDir)
	defer cache.Close()

	cache.Preload(loaded.Images)
	cache.Wait()
	for _, f := range loaded.Images {
		img, ok := cache.Get(f.Source)
		if !ok {
			t.Fatalf("Expected %s to load, err: %v", f.Source, cache.Err(f.Source))
		}
		if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 8 {
			t.Errorf("Expected %s scaled to 16x8, got %v", f.Source, img.Bounds())
		}
	}
}

func TestLoadViewerConfigFromInput(t *testing.T) {
	_, frames := newFrames(t)

	project := NewProject(&config.Config{InputPath: frames, SpeedMs: 40})
	vc, baseDir, err := project.LoadViewerConfig()
	if err != nil {
		t.Fatalf("LoadViewerConfig failed: %v", err)
	}

	if baseDir != "" {
		t.Errorf("Expected refs relative to the working directory, got base %q", baseDir)
	}
	if len(vc.Images) != 2 || len(vc.Images[0].Zones) != 0 {
		t.Errorf("Expected a plain two frame sequence, got %+v", vc.Images)
	}
	if vc.Speed != 40 || vc.Width != config.DefaultWidth {
		t.Errorf("Expected speed override and default size, got %+v", vc)
	}
}

func TestLoadViewerConfigLatest(t *testing.T) {
	dir := t.TempDir()
	vc := &config.ViewerConfig{Images: []config.Frame{{Source: "a.png"}}}
	if err := config.WriteViewerConfig(vc, filepath.Join(dir, "multifocus_1.yaml")); err != nil {
		t.Fatal(err)
	}

	project := NewProject(&config.Config{})
	project.ConfigDir = dir

	loaded, baseDir, err := project.LoadViewerConfig()
	if err != nil {
		t.Fatalf("LoadViewerConfig failed: %v", err)
	}
	if baseDir != dir || len(loaded.Images) != 1 {
		t.Errorf("Expected the config from %s, got base %q and %+v", dir, baseDir, loaded.Images)
	}
}

func TestLoadViewerConfigNothing(t *testing.T) {
	project := NewProject(&config.Config{})
	project.ConfigDir = filepath.Join(t.TempDir(), "none")

	if _, _, err := project.LoadViewerConfig(); err == nil {
		t.Error("Expected error without a config, input or generated config")
	}
}

func TestGenerateErrors(t *testing.T) {
	if _, err := NewProject(&config.Config{}).Generate(context.Background()); err == nil {
		t.Error("Expected error without an input")
	}

	_, frames := newFrames(t)
	_, err := NewProject(&config.Config{InputPath: frames, Detector: "ocr"}).Generate(context.Background())
	if err == nil {
		t.Error("Expected error for an unknown detector")
	}
}
