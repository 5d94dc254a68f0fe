package focus

import (
	"log"
	"time"

	"github.com/ivlev/multifocus/internal/config"
)

// Renderer is the render sink: it displays the resource identified by source.
type Renderer interface {
	Display(source string)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(source string)

func (f RendererFunc) Display(source string) { f(source) }

// State is the mutable part of a viewer.
type State struct {
	Current   int
	Animating bool
}

// Machine walks the displayed frame toward a target one step per interval.
//
// A Machine is owned by a single goroutine: RequestFocus, BeginFocus and the
// scheduler's callbacks must all run on it.
type Machine struct {
	frames   []config.Frame
	interval time.Duration
	sched    Scheduler
	sink     Renderer
	state    State
}

// NewMachine creates an idle machine on frame 0. The frame list is copied.
func NewMachine(frames []config.Frame, interval time.Duration, sched Scheduler, sink Renderer) *Machine {
	return &Machine{
		frames:   config.ViewerConfig{Images: frames}.Frames(),
		interval: interval,
		sched:    sched,
		sink:     sink,
	}
}

// Start renders the first frame, if there is one.
func (m *Machine) Start() {
	if len(m.frames) > 0 {
		m.sink.Display(m.frames[0].Source)
	}
}

// State returns a snapshot of the current state.
func (m *Machine) State() State {
	return m.state
}

// Len returns the number of frames.
func (m *Machine) Len() int {
	return len(m.frames)
}

// RequestFocus handles a click at (x, y) in viewport space. Clicks during a
// walk, clicks outside every zone and clicks on the current frame's zone are
// ignored. It reports whether a walk started.
func (m *Machine) RequestFocus(x, y float64) bool {
	if m.state.Animating {
		return false
	}
	target, ok := Resolve(m.frames, x, y)
	if !ok {
		return false
	}
	return m.begin(target)
}

// BeginFocus starts a walk toward the frame at target. Out-of-range targets
// are ignored, as is any call during a walk.
func (m *Machine) BeginFocus(target int) bool {
	if m.state.Animating {
		return false
	}
	if target < 0 || target >= len(m.frames) {
		return false
	}
	return m.begin(target)
}

func (m *Machine) begin(target int) bool {
	m.clampCurrent()
	if target == m.state.Current {
		return false
	}

	direction := 1
	if target < m.state.Current {
		direction = -1
	}

	m.state.Animating = true
	m.step(target, direction)
	return true
}

func (m *Machine) step(target, direction int) {
	if m.clampCurrent() {
		m.state.Animating = false
		return
	}
	if m.state.Current >= len(m.frames) {
		// no frames at all
		m.state.Animating = false
		return
	}

	m.sink.Display(m.frames[m.state.Current].Source)

	if m.state.Current == target {
		m.state.Animating = false
		return
	}

	m.state.Current += direction
	m.sched.AfterFunc(m.interval, func() {
		m.step(target, direction)
	})
}

// clampCurrent pulls the current index back into the frame range and reports
// whether it had to.
func (m *Machine) clampCurrent() bool {
	cur := m.state.Current
	last := len(m.frames) - 1
	if cur >= 0 && cur <= last {
		return false
	}
	if last < 0 {
		if cur == 0 {
			return false
		}
		m.state.Current = 0
	} else if cur < 0 {
		m.state.Current = 0
	} else {
		m.state.Current = last
	}
	log.Printf("[!] focus: index %d out of range [0, %d], clamped to %d", cur, last, m.state.Current)
	return true
}
