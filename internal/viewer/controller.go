// Package viewer ties the focus machine to a display surface. It knows
// nothing about windows or terminals: front-ends feed it clicks, keys and
// clock ticks from their event loop and ask it what to draw.
package viewer

import (
	"image"
	"time"

	"github.com/ivlev/multifocus/internal/config"
	"github.com/ivlev/multifocus/internal/focus"
)

// ImageCache is the resource cache the controller displays from.
type ImageCache interface {
	Ensure(ref string)
	Preload(frames []config.Frame)
	Get(ref string) (image.Image, bool)
}

// Controller owns a focus machine and its timer queue. All methods must be
// called from the front-end's event loop goroutine.
type Controller struct {
	cfg     config.ViewerConfig
	machine *focus.Machine
	queue   *focus.Queue
	cache   ImageCache

	displayed string
	shown     bool
	renders   int
}

// New builds a controller, renders the first frame and, when enabled,
// starts preloading every frame.
func New(cfg config.ViewerConfig, cache ImageCache, now time.Time) *Controller {
	cfg = cfg.WithDefaults()
	c := &Controller{
		cfg:   cfg,
		queue: focus.NewQueue(now),
		cache: cache,
	}
	c.machine = focus.NewMachine(cfg.Images, cfg.StepInterval(), c.queue, c)

	if cfg.PreloadEnabled() {
		cache.Preload(cfg.Images)
	}
	c.machine.Start()
	return c
}

// Display is the render sink of the machine.
func (c *Controller) Display(ref string) {
	c.displayed = ref
	c.shown = true
	c.renders++
	// Without preloading the frame is fetched on first display.
	c.cache.Ensure(ref)
}

// Click handles a pointer press at (px, py), given in the same units as the
// viewport size, with the viewport's top-left corner at (originX, originY).
func (c *Controller) Click(px, py, originX, originY float64) bool {
	x, y := focus.Normalize(px, py, originX, originY, c.cfg.Width, c.cfg.Height)
	return c.machine.RequestFocus(x, y)
}

// ClickNormalized handles a click already expressed in viewport space.
func (c *Controller) ClickNormalized(x, y float64) bool {
	return c.machine.RequestFocus(x, y)
}

// Next walks one frame forward.
func (c *Controller) Next() bool {
	return c.machine.BeginFocus(c.machine.State().Current + 1)
}

// Prev walks one frame back.
func (c *Controller) Prev() bool {
	return c.machine.BeginFocus(c.machine.State().Current - 1)
}

// Tick runs every animation step due by now.
func (c *Controller) Tick(now time.Time) int {
	return c.queue.Advance(now)
}

// Frame returns the displayed frame's image, if it has been loaded.
func (c *Controller) Frame() (image.Image, bool) {
	if !c.shown {
		return nil, false
	}
	return c.cache.Get(c.displayed)
}

// Displayed returns the reference of the frame on screen.
func (c *Controller) Displayed() (string, bool) {
	return c.displayed, c.shown
}

// State returns the machine state.
func (c *Controller) State() focus.State {
	return c.machine.State()
}

// Renders counts render sink calls since construction.
func (c *Controller) Renders() int {
	return c.renders
}

// Config returns the effective viewer config.
func (c *Controller) Config() config.ViewerConfig {
	return c.cfg
}
