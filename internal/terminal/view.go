// Package terminal shows a viewer inside a terminal, two image rows per
// character cell.
package terminal

import (
	"context"
	"image"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ivlev/multifocus/internal/viewer"
)

const (
	upperHalfBlock = '▀'
	redrawInterval = 16 * time.Millisecond
)

// View renders a controller onto a tcell screen. The screen's cells are the
// viewport: a click on cell (cx, cy) of a cols x rows screen is the point
// (cx/cols, cy/rows).
type View struct {
	screen tcell.Screen
	ctrl   *viewer.Controller

	// painted is false until the displayed frame has been drawn, e.g. while
	// it is still loading.
	painted bool
}

func NewView(screen tcell.Screen, ctrl *viewer.Controller) *View {
	return &View{screen: screen, ctrl: ctrl}
}

// Run draws and handles events until ctx is done or the user quits. The
// screen must already be initialized; Run does not finalize it. Every call
// into the controller happens on Run's goroutine.
func (v *View) Run(ctx context.Context) error {
	v.screen.EnableMouse(tcell.MouseButtonEvents)
	defer v.screen.DisableMouse()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	// PollEvent returns nil once the caller finalizes the screen.
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()

	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if !v.HandleEvent(ev) {
				return nil
			}
		case now := <-ticker.C:
			if v.ctrl.Tick(now) > 0 || !v.painted {
				v.Draw()
			}
		}
	}
}

// HandleEvent applies one event and reports whether the view should keep
// running.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRight, tcell.KeyDown:
			v.ctrl.Next()
		case tcell.KeyLeft, tcell.KeyUp:
			v.ctrl.Prev()
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'l', 'j', ' ':
				v.ctrl.Next()
			case 'h', 'k':
				v.ctrl.Prev()
			}
		}
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			cols, rows := v.screen.Size()
			cx, cy := ev.Position()
			v.click(cx, cy, cols, rows)
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	v.Draw()
	return true
}

func (v *View) click(cx, cy, cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	// Aim at the centre of the cell.
	x := (float64(cx) + 0.5) / float64(cols)
	y := (float64(cy) + 0.5) / float64(rows)
	v.ctrl.ClickNormalized(x, y)
}

// Draw paints the displayed frame stretched over the whole screen.
func (v *View) Draw() {
	v.screen.Clear()

	img, ok := v.ctrl.Frame()
	if ok {
		cols, rows := v.screen.Size()
		paint(v.screen, img, cols, rows)
	}
	v.painted = ok
	v.screen.Show()
}

func paint(screen tcell.Screen, img image.Image, cols, rows int) {
	b := img.Bounds()
	if b.Empty() || cols <= 0 || rows <= 0 {
		return
	}

	px := rows * 2
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			top := sample(img, b, cx, cy*2, cols, px)
			bottom := sample(img, b, cx, cy*2+1, cols, px)
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			screen.SetContent(cx, cy, upperHalfBlock, nil, style)
		}
	}
}

// sample picks the source pixel under grid point (gx, gy) of a w x h grid.
func sample(img image.Image, b image.Rectangle, gx, gy, w, h int) tcell.Color {
	sx := b.Min.X + (gx*b.Dx()+b.Dx()/2)/w
	sy := b.Min.Y + (gy*b.Dy()+b.Dy()/2)/h
	r, g, bl, _ := img.At(sx, sy).RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(bl>>8))
}
