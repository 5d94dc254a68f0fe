package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ivlev/multifocus/internal/config"
	"github.com/ivlev/multifocus/internal/engine"
	"github.com/ivlev/multifocus/internal/source"
	"github.com/ivlev/multifocus/internal/system"
	"github.com/ivlev/multifocus/internal/terminal"
	"github.com/ivlev/multifocus/internal/viewer"
	"github.com/ivlev/multifocus/internal/window"
)

var version = "dev"

func main() {
	// Raise system limits (macOS/Linux)
	system.InitResourceLimits()

	configPtr := flag.String("config", "", "Viewer config YAML (default: newest file in configs/)")
	inputPtr := flag.String("input", "", "PDF, image or folder of images; shown as a plain sequence, or analyzed with -generate")
	generatePtr := flag.Bool("generate", false, "Analyze -input and write a viewer config with focus zones")
	outPtr := flag.String("out", "", "Where -generate writes the config (default: configs/multifocus_<time>.yaml)")
	uiPtr := flag.String("ui", "window", "Front-end: window, term")
	widthPtr := flag.Int("width", 0, "Viewport width (overrides the config)")
	heightPtr := flag.Int("height", 0, "Viewport height (overrides the config)")
	speedPtr := flag.Int("speed", 0, "Milliseconds per animation step (overrides the config)")
	preloadPtr := flag.String("preload", "", "Preload every frame at startup: true, false (overrides the config)")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Loader and analysis threads")
	dpiPtr := flag.Int("dpi", source.DefaultDPI, "DPI for PDF pages")
	detectorPtr := flag.String("detector", "sobel", "Focus measure for -generate: sobel, laplacian")
	gridPtr := flag.String("grid", "8x8", "Analysis grid for -generate, COLSxROWS")
	minEnergyPtr := flag.Float64("min-energy", 0, "Cells sharper than this in no frame select nothing (0: default)")
	versionPtr := flag.Bool("version", false, "Print the version and exit")

	flag.Parse()

	if *versionPtr {
		fmt.Println("multifocus", version)
		return
	}

	switch *preloadPtr {
	case "", "true", "false":
	default:
		log.Fatalf("[-] Error: -preload must be true or false, got %q", *preloadPtr)
	}

	cols, rows, err := parseGrid(*gridPtr)
	if err != nil {
		log.Fatalf("[-] Error: %v", err)
	}

	cfg := &config.Config{
		ConfigPath:   *configPtr,
		InputPath:    *inputPtr,
		OutputPath:   *outPtr,
		UI:           *uiPtr,
		Width:        *widthPtr,
		Height:       *heightPtr,
		SpeedMs:      *speedPtr,
		Preload:      *preloadPtr,
		Workers:      *workersPtr,
		DPI:          *dpiPtr,
		Detector:     *detectorPtr,
		GridCols:     cols,
		GridRows:     rows,
		MinEnergy:    *minEnergyPtr,
		Generate:     *generatePtr,
		BuildVersion: version,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	project := engine.NewProject(cfg)

	if cfg.Generate {
		path, err := project.Generate(ctx)
		if err != nil {
			log.Fatalf("[-] Generation error: %v", err)
		}
		fmt.Printf("[+++] Success! Config saved: %s\n", path)
		return
	}

	if err := view(ctx, project); err != nil {
		log.Fatalf("[-] Viewer error: %v", err)
	}
}

func view(ctx context.Context, project *engine.Project) error {
	vc, baseDir, err := project.LoadViewerConfig()
	if err != nil {
		return err
	}
	if len(vc.Images) == 0 {
		return fmt.Errorf("config has no images")
	}

	cache := project.NewCache(ctx, vc, baseDir)
	defer cache.Close()

	ctrl := viewer.New(*vc, cache, time.Now())

	switch project.Config.UI {
	case "window":
		title := "multifocus"
		if project.Config.ConfigPath != "" {
			title = "multifocus - " + filepath.Base(project.Config.ConfigPath)
		}
		return window.Run(ctrl, title)
	case "term":
		screen, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		if err := screen.Init(); err != nil {
			return err
		}
		defer screen.Fini()

		err = terminal.NewView(screen, ctrl).Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown ui %q", project.Config.UI)
	}
}

// parseGrid reads "COLSxROWS", or a single number for a square grid.
func parseGrid(s string) (int, int, error) {
	var cols, rows int
	if !strings.ContainsAny(s, "xX") {
		if _, err := fmt.Sscanf(s, "%d", &cols); err != nil || cols <= 0 {
			return 0, 0, fmt.Errorf("invalid grid %q", s)
		}
		return cols, cols, nil
	}
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if _, err := fmt.Sscanf(parts[0]+" "+parts[1], "%d %d", &cols, &rows); err != nil || cols <= 0 || rows <= 0 {
		return 0, 0, fmt.Errorf("invalid grid %q, want COLSxROWS", s)
	}
	return cols, rows, nil
}
