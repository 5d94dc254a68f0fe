package config

import (
	"math"
	"time"
)

// Viewer defaults, applied to options left out of a config file.
const (
	DefaultWidth   = 128
	DefaultHeight  = 128
	DefaultSpeedMs = 100
	DefaultPreload = true
)

// Config holds the options of a single CLI run.
type Config struct {
	ConfigPath   string
	InputPath    string
	OutputPath   string
	UI           string // "window" or "term"
	Width        int
	Height       int
	SpeedMs      int
	Preload      string // "", "true" or "false"; empty keeps the config file value
	Workers      int
	DPI          int
	Detector     string
	GridCols     int
	GridRows     int
	MinEnergy    float64
	Generate     bool
	BuildVersion string
}

// Zone is an axis-aligned rectangle in normalized viewport space.
type Zone struct {
	X1 float64 `yaml:"x1"`
	Y1 float64 `yaml:"y1"`
	X2 float64 `yaml:"x2"`
	Y2 float64 `yaml:"y2"`
}

// Valid reports whether the zone can ever match a point. Zones with
// non-finite, inverted or out-of-range coordinates are treated as empty.
func (z Zone) Valid() bool {
	for _, v := range [...]float64{z.X1, z.Y1, z.X2, z.Y2} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return false
		}
	}
	return z.X1 <= z.X2 && z.Y1 <= z.Y2
}

// Contains reports whether (x, y) lies inside the zone, edges included.
func (z Zone) Contains(x, y float64) bool {
	if !z.Valid() {
		return false
	}
	return x >= z.X1 && x <= z.X2 &&
		y >= z.Y1 && y <= z.Y2
}

// Frame is one image of the sequence with the zones that select it.
type Frame struct {
	Source string `yaml:"src"`
	Zones  []Zone `yaml:"focus,omitempty"`
}

// ViewerConfig is fixed when a viewer is built and never mutated afterwards.
type ViewerConfig struct {
	Width   int     `yaml:"width,omitempty"`
	Height  int     `yaml:"height,omitempty"`
	Speed   int     `yaml:"speed,omitempty"` // milliseconds per step
	Preload *bool   `yaml:"preload,omitempty"`
	Images  []Frame `yaml:"images"`
}

// WithDefaults returns a copy with every unspecified option set to its default.
func (c ViewerConfig) WithDefaults() ViewerConfig {
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.Speed <= 0 {
		c.Speed = DefaultSpeedMs
	}
	if c.Preload == nil {
		p := DefaultPreload
		c.Preload = &p
	}
	c.Images = c.Frames()
	return c
}

// StepInterval is the delay between two animation steps.
func (c ViewerConfig) StepInterval() time.Duration {
	return time.Duration(c.Speed) * time.Millisecond
}

// PreloadEnabled reports whether every frame should be fetched at startup.
func (c ViewerConfig) PreloadEnabled() bool {
	if c.Preload == nil {
		return DefaultPreload
	}
	return *c.Preload
}

// Frames returns a deep copy of the frame list.
func (c ViewerConfig) Frames() []Frame {
	if c.Images == nil {
		return []Frame{}
	}
	frames := make([]Frame, len(c.Images))
	for i, f := range c.Images {
		frames[i] = Frame{Source: f.Source}
		if f.Zones != nil {
			frames[i].Zones = append([]Zone(nil), f.Zones...)
		}
	}
	return frames
}

// Apply overrides viewer options with the ones given on the command line.
func (c ViewerConfig) Apply(run *Config) ViewerConfig {
	if run == nil {
		return c
	}
	if run.Width > 0 {
		c.Width = run.Width
	}
	if run.Height > 0 {
		c.Height = run.Height
	}
	if run.SpeedMs > 0 {
		c.Speed = run.SpeedMs
	}
	switch run.Preload {
	case "true":
		p := true
		c.Preload = &p
	case "false":
		p := false
		c.Preload = &p
	}
	return c
}
