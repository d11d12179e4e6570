package loop

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomz197/particles/internal/config"
	"github.com/tomz197/particles/internal/field"
	"github.com/tomz197/particles/internal/input"
)

type termSize struct {
	cols, rows int
}

func (s *termSize) get() (int, int, error) {
	return s.cols, s.rows, nil
}

func newTestHost(t *testing.T, size *termSize, in string, opts Options) (*Host, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	opts.TermSizeFunc = size.get
	opts.Rand = rand.New(rand.NewSource(1))
	if opts.DevicePixelRatio == 0 {
		opts.DevicePixelRatio = 1
	}
	return NewHost(bufio.NewReader(strings.NewReader(in)), out, opts), out
}

func TestHost_SizeInLogicalUnits(t *testing.T) {
	h, _ := newTestHost(t, &termSize{cols: 200, rows: 50}, "", Options{DarkMode: true})

	w, ht := h.Size()
	assert.Equal(t, 1600.0, w)
	assert.Equal(t, 800.0, ht)
	assert.Equal(t, field.DarkPalette.Background, h.canvas.Background())
}

func TestHost_MountAndFrames(t *testing.T) {
	h, _ := newTestHost(t, &termSize{cols: 200, rows: 50}, "", Options{DarkMode: true})
	h.component.Mount()

	assert.Equal(t, 71, h.component.Field().Len())
	assert.Equal(t, 1, h.frames.Len())

	h.runFrames(time.Now())
	assert.Equal(t, 1, h.frames.Len(), "frame rescheduled for the next iteration")

	h.component.Unmount()
	assert.Zero(t, h.frames.Len())
	assert.Zero(t, h.onResize.Len()+h.onMove.Len()+h.onLeave.Len()+h.onMotion.Len())
}

func TestHost_ResizeNotifiesField(t *testing.T) {
	size := &termSize{cols: 200, rows: 50}
	h, _ := newTestHost(t, size, "", Options{DarkMode: true})
	h.component.Mount()

	h.updateScreen()
	assert.Equal(t, 71, h.component.Field().Len(), "unchanged size is not a resize")

	size.cols, size.rows = 80, 24
	h.updateScreen()

	w, ht := h.component.Field().Size()
	assert.Equal(t, 640.0, w)
	assert.Equal(t, 384.0, ht)
	assert.True(t, h.component.Field().Environment().Mobile)
	assert.Equal(t, 40, h.component.Field().Len())
}

func TestHost_PointerEvents(t *testing.T) {
	h, _ := newTestHost(t, &termSize{cols: 200, rows: 50}, "", Options{DarkMode: true})
	h.component.Mount()

	h.handleEvent(input.Event{Type: input.EventPointerMove, Col: 1, Row: 1})
	x, y, active := h.component.Field().Pointer()
	assert.True(t, active)
	assert.Equal(t, 4.0, x)
	assert.Equal(t, 8.0, y)

	h.handleEvent(input.Event{Type: input.EventPointerMove, Col: 201, Row: 1})
	_, _, active = h.component.Field().Pointer()
	assert.False(t, active, "outside the grid counts as leaving")

	h.handleEvent(input.Event{Type: input.EventPointerMove, Col: 10, Row: 10})
	h.handleEvent(input.Event{Type: input.EventPointerLeave})
	x, y, active = h.component.Field().Pointer()
	assert.False(t, active)
	assert.Equal(t, config.PointerSentinel, x)
	assert.Equal(t, config.PointerSentinel, y)
}

func TestHost_ToggleTheme(t *testing.T) {
	h, _ := newTestHost(t, &termSize{cols: 200, rows: 50}, "", Options{DarkMode: true})
	h.component.Mount()
	before := h.component.Field().Particles()

	h.handleEvent(input.Event{Type: input.EventToggleTheme})

	assert.Equal(t, field.LightPalette.Background, h.canvas.Background())
	assert.Equal(t, field.LightPalette, h.component.Field().Palette())
	assert.Equal(t, before, h.component.Field().Particles())
	assert.True(t, h.component.Running())
	assert.Equal(t, 1, h.frames.Len())
}

func TestHost_ToggleMotion(t *testing.T) {
	h, _ := newTestHost(t, &termSize{cols: 200, rows: 50}, "", Options{DarkMode: true})
	h.component.Mount()

	h.handleEvent(input.Event{Type: input.EventToggleMotion})
	assert.True(t, h.PrefersReducedMotion())
	assert.False(t, h.component.Running())
	assert.Zero(t, h.frames.Len())
	assert.Equal(t, 1, h.onMotion.Len())

	h.handleEvent(input.Event{Type: input.EventToggleMotion})
	assert.True(t, h.component.Running())
	assert.Equal(t, 1, h.frames.Len())
}

func TestHost_QuitStopsLoop(t *testing.T) {
	h, _ := newTestHost(t, &termSize{cols: 200, rows: 50}, "", Options{DarkMode: true})
	h.running = true

	h.handleEvent(input.Event{Type: input.EventQuit})
	assert.False(t, h.running)
}

func TestHost_RunEndsOnQuit(t *testing.T) {
	h, out := newTestHost(t, &termSize{cols: 40, rows: 12}, "tq", Options{DarkMode: true})

	done := make(chan error, 1)
	go func() { done <- h.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}

	assert.False(t, h.component.Mounted())
	s := out.String()
	assert.Contains(t, s, "\033[?1003h", "pointer tracking enabled")
	assert.Contains(t, s, "\033[?1003l", "pointer tracking disabled")
	assert.True(t, strings.HasSuffix(s, "\033[?25h"), "cursor restored last")
}

func TestHost_RunEndsOnContextCancel(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	h := NewHost(bufio.NewReader(r), &bytes.Buffer{}, Options{
		TermSizeFunc:     (&termSize{cols: 40, rows: 12}).get,
		DevicePixelRatio: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestHost_ShutdownNotice(t *testing.T) {
	shutdown := make(chan struct{})
	h, _ := newTestHost(t, &termSize{cols: 40, rows: 12}, "", Options{DarkMode: true, Shutdown: shutdown})
	h.running = true

	h.processShutdown(time.Second)
	assert.False(t, h.shuttingDown)

	close(shutdown)
	h.processShutdown(0)
	assert.True(t, h.shuttingDown)
	assert.True(t, h.running)

	h.processShutdown(config.ShutdownNotice)
	assert.False(t, h.running)
}
