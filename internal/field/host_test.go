package field

import (
	"time"

	"github.com/tomz197/particles/internal/draw"
	"github.com/tomz197/particles/internal/listeners"
)

// fakeHost is a Host whose frames are pumped by the test.
type fakeHost struct {
	surface *draw.Recorder
	width   float64
	height  float64
	dpr     float64
	reduced bool

	resize listeners.Set[func(w, h float64)]
	move   listeners.Set[func(x, y float64)]
	leave  listeners.Set[func()]
	motion listeners.Set[func(bool)]
	frames listeners.Set[func(time.Time)]
	clock  time.Time
}

var _ Host = (*fakeHost)(nil)

func newFakeHost(width, height float64) *fakeHost {
	return &fakeHost{
		surface: draw.NewRecorder(),
		width:   width,
		height:  height,
		dpr:     1,
		clock:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (h *fakeHost) Surface() draw.Surface      { return h.surface }
func (h *fakeHost) Size() (float64, float64)   { return h.width, h.height }
func (h *fakeHost) DevicePixelRatio() float64  { return h.dpr }
func (h *fakeHost) PrefersReducedMotion() bool { return h.reduced }

func (h *fakeHost) OnResize(fn func(w, h float64)) func()      { return h.resize.Add(fn) }
func (h *fakeHost) OnPointerMove(fn func(x, y float64)) func() { return h.move.Add(fn) }
func (h *fakeHost) OnPointerLeave(fn func()) func()            { return h.leave.Add(fn) }
func (h *fakeHost) OnReducedMotionChange(fn func(bool)) func() { return h.motion.Add(fn) }
func (h *fakeHost) RequestFrame(fn func(now time.Time)) func() { return h.frames.Add(fn) }

// pump runs the frames pending right now, advancing the clock by step first.
func (h *fakeHost) pump(step time.Duration) {
	h.clock = h.clock.Add(step)
	for _, fn := range h.frames.Take() {
		fn(h.clock)
	}
}

func (h *fakeHost) pendingFrames() int {
	return h.frames.Len()
}

func (h *fakeHost) listenerCount() int {
	return h.resize.Len() + h.move.Len() + h.leave.Len() + h.motion.Len()
}

func (h *fakeHost) setSize(width, height float64) {
	h.width, h.height = width, height
	h.resize.Each(func(fn func(w, h float64)) { fn(width, height) })
}

func (h *fakeHost) setReduced(reduced bool) {
	h.reduced = reduced
	h.motion.Each(func(fn func(bool)) { fn(reduced) })
}

func (h *fakeHost) pointerMove(x, y float64) {
	h.move.Each(func(fn func(x, y float64)) { fn(x, y) })
}

func (h *fakeHost) pointerLeave() {
	h.leave.Each(func(fn func()) { fn() })
}
