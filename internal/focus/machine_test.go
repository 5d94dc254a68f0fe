package focus

import (
	"testing"
	"time"

	"github.com/ivlev/multifocus/internal/config"
)

type render struct {
	source string
	at     time.Duration
}

// recorder is a render sink that notes what was displayed and when.
type recorder struct {
	q       *Queue
	renders []render
}

func (r *recorder) Display(source string) {
	r.renders = append(r.renders, render{source: source, at: r.q.Now().Sub(epoch)})
}

func (r *recorder) sources() []string {
	out := make([]string, len(r.renders))
	for i, rr := range r.renders {
		out[i] = rr.source
	}
	return out
}

func newTestMachine(frames []config.Frame, interval time.Duration) (*Machine, *Queue, *recorder) {
	q := NewQueue(epoch)
	rec := &recorder{q: q}
	return NewMachine(frames, interval, q, rec), q, rec
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMachineStartRendersFirstFrame(t *testing.T) {
	m, _, rec := newTestMachine(thirds(), 100*time.Millisecond)
	m.Start()

	if !equalStrings(rec.sources(), []string{"A"}) {
		t.Errorf("Expected initial render of A, got %v", rec.sources())
	}
	if st := m.State(); st.Current != 0 || st.Animating {
		t.Errorf("Unexpected initial state: %+v", st)
	}
}

func TestMachineStartWithoutFrames(t *testing.T) {
	m, _, rec := newTestMachine(nil, 100*time.Millisecond)
	m.Start()

	if len(rec.renders) != 0 {
		t.Errorf("Expected no render, got %v", rec.sources())
	}
	if m.RequestFocus(0.5, 0.5) {
		t.Error("Expected no walk without frames")
	}
}

func TestMachineWalkForward(t *testing.T) {
	m, q, rec := newTestMachine(thirds(), 100*time.Millisecond)

	if !m.RequestFocus(0.8, 0.5) {
		t.Fatal("Expected walk to start")
	}

	// First frame of the walk is applied synchronously.
	if len(rec.renders) != 1 || rec.renders[0].source != "A" || rec.renders[0].at != 0 {
		t.Fatalf("Expected immediate render of A, got %+v", rec.renders)
	}
	if !m.State().Animating {
		t.Error("Expected machine to be animating")
	}

	q.Elapse(99 * time.Millisecond)
	if len(rec.renders) != 1 {
		t.Fatalf("Step ran before the interval elapsed: %+v", rec.renders)
	}

	q.Elapse(time.Second)

	want := []render{{"A", 0}, {"B", 100 * time.Millisecond}, {"C", 200 * time.Millisecond}}
	if len(rec.renders) != len(want) {
		t.Fatalf("Expected %v, got %v", want, rec.renders)
	}
	for i := range want {
		if rec.renders[i] != want[i] {
			t.Errorf("render %d: got %+v, want %+v", i, rec.renders[i], want[i])
		}
	}

	if st := m.State(); st.Current != 2 || st.Animating {
		t.Errorf("Expected idle at 2, got %+v", st)
	}
	if q.Pending() != 0 {
		t.Errorf("Expected no pending steps, got %d", q.Pending())
	}
}

func TestMachineWalkBackward(t *testing.T) {
	frames := make([]config.Frame, 6)
	for i := range frames {
		frames[i].Source = string(rune('a' + i))
	}
	frames[1].Zones = []config.Zone{{X1: 0, Y1: 0, X2: 1, Y2: 1}}

	m, q, rec := newTestMachine(frames, 50*time.Millisecond)
	m.state.Current = 5

	if !m.RequestFocus(0.5, 0.5) {
		t.Fatal("Expected walk to start")
	}
	q.Elapse(time.Second)

	if want := []string{"f", "e", "d", "c", "b"}; !equalStrings(rec.sources(), want) {
		t.Errorf("Expected %v, got %v", want, rec.sources())
	}
	if st := m.State(); st.Current != 1 || st.Animating {
		t.Errorf("Expected idle at 1, got %+v", st)
	}
}

func TestMachineMonotonicTermination(t *testing.T) {
	const n = 10
	frames := make([]config.Frame, n)
	for i := range frames {
		frames[i].Source = string(rune('0' + i))
	}

	for start := 0; start < n; start++ {
		for target := 0; target < n; target++ {
			if start == target {
				continue
			}

			idle := 0
			q := NewQueue(epoch)
			var m *Machine
			var rendered []int
			sink := RendererFunc(func(src string) {
				rendered = append(rendered, int(src[0]-'0'))
				if !m.State().Animating {
					t.Fatalf("render outside a walk")
				}
			})
			m = NewMachine(frames, 10*time.Millisecond, q, sink)
			m.state.Current = start

			if !m.BeginFocus(target) {
				t.Fatalf("%d->%d: walk did not start", start, target)
			}
			for i := 0; i < 2*n && m.State().Animating; i++ {
				q.Elapse(10 * time.Millisecond)
				if !m.State().Animating {
					idle++
				}
			}

			d := 1
			if target < start {
				d = -1
			}
			dist := (target - start) * d
			if len(rendered) != dist+1 {
				t.Fatalf("%d->%d: expected %d renders, got %v", start, target, dist+1, rendered)
			}
			for i, idx := range rendered {
				if idx != start+i*d {
					t.Fatalf("%d->%d: render %d is %d, want %d", start, target, i, idx, start+i*d)
				}
			}
			if idle != 1 || m.State().Current != target {
				t.Fatalf("%d->%d: idle transitions %d, final state %+v", start, target, idle, m.State())
			}
		}
	}
}

func TestMachineNoMatchLeavesStateUnchanged(t *testing.T) {
	m, q, rec := newTestMachine(thirds(), 100*time.Millisecond)
	m.state.Current = 1
	before := m.State()

	if m.RequestFocus(1.5, 0.5) {
		t.Error("Expected no walk for a miss")
	}
	q.Elapse(time.Second)

	if m.State() != before {
		t.Errorf("State changed on miss: %+v -> %+v", before, m.State())
	}
	if len(rec.renders) != 0 {
		t.Errorf("Expected no renders, got %v", rec.sources())
	}
}

func TestMachineSelfTarget(t *testing.T) {
	m, q, rec := newTestMachine(thirds(), 100*time.Millisecond)
	m.state.Current = 1

	if m.RequestFocus(0.5, 0.5) {
		t.Error("Expected no walk when clicking the current frame's zone")
	}
	if m.BeginFocus(1) {
		t.Error("Expected no walk toward the current frame")
	}
	q.Elapse(time.Second)

	if st := m.State(); st.Current != 1 || st.Animating {
		t.Errorf("Unexpected state: %+v", st)
	}
	if len(rec.renders) != 0 {
		t.Errorf("Expected no renders, got %v", rec.sources())
	}
}

func TestMachineIgnoresClicksWhileAnimating(t *testing.T) {
	m, q, rec := newTestMachine(thirds(), 100*time.Millisecond)

	m.RequestFocus(0.8, 0.5)
	q.Elapse(50 * time.Millisecond)

	before := m.State()
	if m.RequestFocus(0.1, 0.5) {
		t.Error("Expected second click to be ignored")
	}
	if m.BeginFocus(0) {
		t.Error("Expected BeginFocus to be ignored during a walk")
	}
	if m.State() != before {
		t.Errorf("Ignored click changed state: %+v -> %+v", before, m.State())
	}

	q.Elapse(time.Second)

	if want := []string{"A", "B", "C"}; !equalStrings(rec.sources(), want) {
		t.Errorf("Expected %v, got %v", want, rec.sources())
	}
	if st := m.State(); st.Current != 2 || st.Animating {
		t.Errorf("Expected idle at 2, got %+v", st)
	}
}

func TestMachineScenarioDefaultSpeed(t *testing.T) {
	cfg := config.ViewerConfig{Images: thirds()}.WithDefaults()
	m, q, rec := newTestMachine(cfg.Images, cfg.StepInterval())

	m.RequestFocus(0.8, 0.5)
	m.RequestFocus(0.1, 0.5)
	for i := 0; i < 5 && m.State().Animating; i++ {
		q.Elapse(100 * time.Millisecond)
	}

	want := []render{{"A", 0}, {"B", 100 * time.Millisecond}, {"C", 200 * time.Millisecond}}
	if len(rec.renders) != len(want) {
		t.Fatalf("Expected %v, got %v", want, rec.renders)
	}
	for i := range want {
		if rec.renders[i] != want[i] {
			t.Errorf("render %d: got %+v, want %+v", i, rec.renders[i], want[i])
		}
	}
	if st := m.State(); st.Current != 2 || st.Animating {
		t.Errorf("Expected idle at 2, got %+v", st)
	}
}

func TestMachineBoundaryClamp(t *testing.T) {
	tests := []struct {
		name    string
		corrupt int
		want    int
	}{
		{"below range", -1, 0},
		{"past end", 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, q, rec := newTestMachine(thirds(), 100*time.Millisecond)
			m.RequestFocus(0.8, 0.5)

			m.state.Current = tt.corrupt
			q.Elapse(100 * time.Millisecond)

			if st := m.State(); st.Current != tt.want || st.Animating {
				t.Errorf("Expected idle at %d, got %+v", tt.want, st)
			}
			if want := []string{"A"}; !equalStrings(rec.sources(), want) {
				t.Errorf("Expected only the first render, got %v", rec.sources())
			}
			if q.Pending() != 0 {
				t.Errorf("Expected the walk to stop, %d steps pending", q.Pending())
			}
		})
	}
}

func TestMachineClampsBeforeComparing(t *testing.T) {
	m, q, rec := newTestMachine(thirds(), 100*time.Millisecond)
	m.state.Current = 7

	// Clamped to 2 first, so clicking C's zone is a self-target.
	if m.RequestFocus(0.9, 0.5) {
		t.Error("Expected no walk after clamping onto the target")
	}
	if m.State().Current != 2 {
		t.Errorf("Expected clamped index 2, got %d", m.State().Current)
	}

	if !m.RequestFocus(0.1, 0.5) {
		t.Fatal("Expected walk back to A")
	}
	q.Elapse(time.Second)
	if want := []string{"C", "B", "A"}; !equalStrings(rec.sources(), want) {
		t.Errorf("Expected %v, got %v", want, rec.sources())
	}
}

func TestMachineBeginFocusOutOfRange(t *testing.T) {
	m, _, rec := newTestMachine(thirds(), 100*time.Millisecond)

	for _, target := range []int{-1, 3, 100} {
		if m.BeginFocus(target) {
			t.Errorf("BeginFocus(%d) started a walk", target)
		}
	}
	if len(rec.renders) != 0 || m.State().Animating {
		t.Errorf("Unexpected effect: renders %v, state %+v", rec.sources(), m.State())
	}
}

func TestMachineCopiesFrames(t *testing.T) {
	frames := thirds()
	m, _, rec := newTestMachine(frames, 0)
	frames[0].Source = "mutated"
	frames[2].Zones = nil

	m.RequestFocus(0.8, 0.5)
	if len(rec.renders) == 0 || rec.renders[0].source != "A" {
		t.Errorf("Machine saw caller mutation: %v", rec.sources())
	}
}

func TestMachineZeroInterval(t *testing.T) {
	m, q, rec := newTestMachine(thirds(), 0)

	m.RequestFocus(0.8, 0.5)
	q.Advance(epoch)

	if want := []string{"A", "B", "C"}; !equalStrings(rec.sources(), want) {
		t.Errorf("Expected %v, got %v", want, rec.sources())
	}
	if m.State().Animating {
		t.Error("Expected walk complete")
	}
}
