// Package loop runs the particle field in a terminal with the standard
// Input → Update → Draw cycle.
package loop

import (
	"bufio"
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/particles/internal/config"
	"github.com/tomz197/particles/internal/draw"
	"github.com/tomz197/particles/internal/field"
	"github.com/tomz197/particles/internal/input"
	"github.com/tomz197/particles/internal/listeners"
)

// Options configures a terminal host.
type Options struct {
	TermSizeFunc     draw.TermSizeFunc
	DarkMode         bool
	ReducedMotion    bool
	DevicePixelRatio float64
	Logger           *log.Logger
	Rand             *rand.Rand

	// Shutdown, when closed, shows a goodbye notice and ends Run shortly after.
	Shutdown <-chan struct{}
}

// Host implements field.Host on top of a terminal connection. All listener
// and frame callbacks run on the goroutine calling Run.
type Host struct {
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter
	writer       io.Writer
	reader       *bufio.Reader
	inputStream  *input.Stream
	termSizeFunc draw.TermSizeFunc
	logger       *log.Logger
	component    *field.Component

	darkMode bool
	reduced  bool
	dpr      float64
	running  bool

	shutdown      <-chan struct{}
	shutdownTimer time.Duration // Remaining notice time once shutdown started
	shuttingDown  bool

	onResize  listeners.Set[func(width, height float64)]
	onMove    listeners.Set[func(x, y float64)]
	onLeave   listeners.Set[func()]
	onMotion  listeners.Set[func(reduced bool)]
	frames    listeners.Set[func(now time.Time)]
	pointerIn bool
}

var _ field.Host = (*Host)(nil)

// NewHost creates a host reading input from r and drawing to w.
func NewHost(r *bufio.Reader, w io.Writer, opts Options) *Host {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	termWidth, termHeight, err := termSizeFunc()
	if err != nil {
		logger.Warn("failed to read terminal size", "err", err)
	}
	canvas := draw.NewScaledCanvas(termWidth, termHeight,
		float64(termWidth*config.CellWidth), float64(termHeight*config.CellHeight))
	canvas.SetBackground(field.PaletteFor(opts.DarkMode).Background)

	h := &Host{
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w),
		writer:       w,
		reader:       r,
		termSizeFunc: termSizeFunc,
		logger:       logger,
		darkMode:     opts.DarkMode,
		reduced:      opts.ReducedMotion,
		dpr:          opts.DevicePixelRatio,
		shutdown:     opts.Shutdown,
	}
	h.component = field.NewComponent(h, field.Options{
		DarkMode: opts.DarkMode,
		Rand:     opts.Rand,
		Logger:   logger,
	})
	return h
}

// Surface returns the terminal canvas.
func (h *Host) Surface() draw.Surface {
	return h.canvas
}

// Size returns the logical size of the terminal.
func (h *Host) Size() (width, height float64) {
	return float64(h.canvas.TerminalWidth() * config.CellWidth),
		float64(h.canvas.TerminalHeight() * config.CellHeight)
}

// DevicePixelRatio returns the configured ratio.
func (h *Host) DevicePixelRatio() float64 {
	return h.dpr
}

// PrefersReducedMotion reports the current reduced-motion setting.
func (h *Host) PrefersReducedMotion() bool {
	return h.reduced
}

// OnResize registers a resize listener.
func (h *Host) OnResize(fn func(width, height float64)) func() {
	return h.onResize.Add(fn)
}

// OnPointerMove registers a pointer-move listener.
func (h *Host) OnPointerMove(fn func(x, y float64)) func() {
	return h.onMove.Add(fn)
}

// OnPointerLeave registers a pointer-leave listener.
func (h *Host) OnPointerLeave(fn func()) func() {
	return h.onLeave.Add(fn)
}

// OnReducedMotionChange registers a reduced-motion listener.
func (h *Host) OnReducedMotionChange(fn func(reduced bool)) func() {
	return h.onMotion.Add(fn)
}

// RequestFrame schedules fn for the next loop iteration.
func (h *Host) RequestFrame(fn func(now time.Time)) func() {
	return h.frames.Add(fn)
}

// Component returns the hosted component.
func (h *Host) Component() *field.Component {
	return h.component
}

// Run mounts the field and drives it until the user quits, the input stream
// ends, the shutdown notice elapses or ctx is cancelled.
func (h *Host) Run(ctx context.Context) error {
	h.inputStream = input.StartStream(h.reader)

	draw.HideCursor(h.writer)
	draw.EnablePointer(h.writer)
	defer func() {
		draw.DisablePointer(h.writer)
		draw.ResetAttributes(h.writer)
		draw.ClearScreen(h.writer)
		draw.ShowCursor(h.writer)
	}()
	draw.ClearScreenWith(h.writer, h.canvas.Background())

	h.component.Mount()
	defer h.component.Unmount()

	h.running = true
	lastTime := time.Now()

	for h.running {
		frameStart := time.Now()
		delta := frameStart.Sub(lastTime)
		lastTime = frameStart

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		h.processInput()
		h.processShutdown(delta)
		h.updateScreen()
		h.runFrames(frameStart)

		if err := h.drawFrame(); err != nil {
			return err
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.TargetFrameTime {
			time.Sleep(config.TargetFrameTime - elapsed)
		}
	}

	return nil
}

// processInput reads pending input and dispatches it to listeners.
func (h *Host) processInput() {
	for _, ev := range input.ReadEvents(h.inputStream) {
		h.handleEvent(ev)
	}
	if h.inputStream.Closed() {
		h.running = false
	}
}

func (h *Host) handleEvent(ev input.Event) {
	switch ev.Type {
	case input.EventQuit:
		h.running = false
	case input.EventToggleTheme:
		h.SetDarkMode(!h.darkMode)
	case input.EventToggleMotion:
		h.SetReducedMotion(!h.reduced)
	case input.EventPointerLeave:
		h.pointerLeave()
	case input.EventPointerMove:
		if ev.Col < 1 || ev.Row < 1 || ev.Col > h.canvas.TerminalWidth() || ev.Row > h.canvas.TerminalHeight() {
			h.pointerLeave()
			return
		}
		x, y := h.canvas.TerminalToLogical(ev.Col, ev.Row)
		h.pointerIn = true
		h.onMove.Each(func(fn func(x, y float64)) { fn(x, y) })
	}
}

func (h *Host) pointerLeave() {
	if !h.pointerIn {
		return
	}
	h.pointerIn = false
	h.onLeave.Each(func(fn func()) { fn() })
}

// SetDarkMode switches the theme of the canvas and the field.
func (h *Host) SetDarkMode(dark bool) {
	if dark == h.darkMode {
		return
	}
	h.darkMode = dark
	h.canvas.SetBackground(field.PaletteFor(dark).Background)
	h.component.SetDarkMode(dark)
	draw.ClearScreenWith(h.chunkWriter, h.canvas.Background())
	h.logger.Debug("theme changed", "dark", dark)
}

// SetReducedMotion changes the reduced-motion setting and notifies listeners.
func (h *Host) SetReducedMotion(reduced bool) {
	if reduced == h.reduced {
		return
	}
	h.reduced = reduced
	h.onMotion.Each(func(fn func(bool)) { fn(reduced) })
}

// updateScreen polls the terminal size and notifies resize listeners when it
// changed.
func (h *Host) updateScreen() {
	termWidth, termHeight, err := h.termSizeFunc()
	if err != nil {
		return
	}
	if termWidth == h.canvas.TerminalWidth() && termHeight == h.canvas.TerminalHeight() {
		return
	}

	h.canvas.ResizeTerminal(termWidth, termHeight)
	draw.ClearScreenWith(h.chunkWriter, h.canvas.Background())

	width, height := h.Size()
	h.logger.Debug("terminal resized", "cols", termWidth, "rows", termHeight)
	h.onResize.Each(func(fn func(w, ht float64)) { fn(width, height) })
}

// runFrames runs the frame callbacks requested before this iteration.
// Callbacks requested while running wait for the next iteration.
func (h *Host) runFrames(now time.Time) {
	for _, fn := range h.frames.Take() {
		fn(now)
	}
}

// processShutdown counts down the goodbye notice once the shutdown channel
// is closed.
func (h *Host) processShutdown(delta time.Duration) {
	if h.shutdown == nil {
		return
	}
	if !h.shuttingDown {
		select {
		case <-h.shutdown:
			h.shuttingDown = true
			h.shutdownTimer = config.ShutdownNotice
		default:
			return
		}
	}
	h.shutdownTimer -= delta
	if h.shutdownTimer <= 0 {
		h.running = false
	}
}

// drawFrame renders the canvas and overlays.
func (h *Host) drawFrame() error {
	h.canvas.Render(h.chunkWriter)
	if h.shuttingDown {
		h.drawShutdownNotice()
	}
	return h.chunkWriter.Flush()
}

func (h *Host) drawShutdownNotice() {
	const msg = " Server shutting down. Goodbye! "
	col := (h.canvas.TerminalWidth()-len(msg))/2 + 1
	row := h.canvas.TerminalHeight()/2 + 1
	if col < 1 {
		col = 1
	}
	h.chunkWriter.WriteAt(col, row, "\033[7m"+msg+"\033[0m")
	h.canvas.ForceRedraw()
}
