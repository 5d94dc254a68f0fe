// Package window shows a viewer in a desktop window.
package window

import (
	"errors"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ivlev/multifocus/internal/viewer"
)

// Game implements ebiten.Game on top of a viewer controller. ebiten calls
// Update and Draw from one goroutine, which makes it the controller's owner.
type Game struct {
	ctrl  *viewer.Controller
	clock func() time.Time

	// ebiten copies of decoded frames, keyed by frame reference
	textures map[string]*ebiten.Image
}

// NewGame wraps ctrl.
func NewGame(ctrl *viewer.Controller) *Game {
	return &Game{
		ctrl:     ctrl,
		clock:    time.Now,
		textures: make(map[string]*ebiten.Image),
	}
}

// Update handles input and runs due animation steps.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		g.ctrl.Click(float64(x), float64(y), 0, 0)
	}
	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		x, y := ebiten.TouchPosition(id)
		g.ctrl.Click(float64(x), float64(y), 0, 0)
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight), inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		g.ctrl.Next()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft), inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		g.ctrl.Prev()
	}

	g.ctrl.Tick(g.clock())
	return nil
}

// Draw stretches the displayed frame over the whole viewport.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	tex, ok := g.texture()
	if !ok {
		return
	}

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	tw, th := tex.Bounds().Dx(), tex.Bounds().Dy()
	if tw == 0 || th == 0 {
		return
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(sw)/float64(tw), float64(sh)/float64(th))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(tex, op)
}

// Layout keeps the logical screen at the configured viewport size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	cfg := g.ctrl.Config()
	return cfg.Width, cfg.Height
}

func (g *Game) texture() (*ebiten.Image, bool) {
	ref, ok := g.ctrl.Displayed()
	if !ok {
		return nil, false
	}
	if tex, ok := g.textures[ref]; ok {
		return tex, true
	}

	img, ok := g.ctrl.Frame()
	if !ok {
		return nil, false
	}
	tex := ebiten.NewImageFromImage(img)
	g.textures[ref] = tex
	return tex, true
}

// Run opens a window of the viewport size and blocks until it is closed.
func Run(ctrl *viewer.Controller, title string) error {
	cfg := ctrl.Config()
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(NewGame(ctrl)); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
