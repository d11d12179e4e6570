// Package window hosts the particle field in a desktop window through ebiten.
package window

import (
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tomz197/particles/internal/draw"
	"github.com/tomz197/particles/internal/field"
	"github.com/tomz197/particles/internal/listeners"
)

// Options configures a window host.
type Options struct {
	Width, Height    int // Initial window size in logical pixels
	DarkMode         bool
	ReducedMotion    bool
	DevicePixelRatio float64 // 0 asks the monitor
	Logger           *log.Logger
	Rand             *rand.Rand
}

// Game is an ebiten.Game implementing field.Host. Ebiten calls Update, Draw
// and Layout from one goroutine, so listeners never run concurrently.
type Game struct {
	surface   *Surface
	component *field.Component
	logger    *log.Logger

	width, height float64 // Logical window size seen by the field
	layoutW       int     // Latest outside size reported to Layout
	layoutH       int
	dpr           float64
	darkMode      bool
	reduced       bool
	pointerIn     bool

	onResize listeners.Set[func(width, height float64)]
	onMove   listeners.Set[func(x, y float64)]
	onLeave  listeners.Set[func()]
	onMotion listeners.Set[func(reduced bool)]
	frames   listeners.Set[func(now time.Time)]
}

var (
	_ ebiten.Game = (*Game)(nil)
	_ field.Host  = (*Game)(nil)
)

// New creates a window host. The field mounts on the first Update.
func New(opts Options) *Game {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	dpr := opts.DevicePixelRatio
	if dpr <= 0 {
		dpr = 1
		if m := ebiten.Monitor(); m != nil {
			dpr = m.DeviceScaleFactor()
		}
	}

	g := &Game{
		surface:  NewSurface(field.PaletteFor(opts.DarkMode).Background),
		logger:   logger,
		width:    float64(opts.Width),
		height:   float64(opts.Height),
		layoutW:  opts.Width,
		layoutH:  opts.Height,
		dpr:      dpr,
		darkMode: opts.DarkMode,
		reduced:  opts.ReducedMotion,
	}
	g.component = field.NewComponent(g, field.Options{
		DarkMode: opts.DarkMode,
		Rand:     opts.Rand,
		Logger:   logger,
	})
	return g
}

// Surface returns the offscreen image surface.
func (g *Game) Surface() draw.Surface {
	return g.surface
}

// Size returns the logical window size.
func (g *Game) Size() (width, height float64) {
	return g.width, g.height
}

// DevicePixelRatio returns the configured or monitor ratio.
func (g *Game) DevicePixelRatio() float64 {
	return g.dpr
}

// PrefersReducedMotion reports the current reduced-motion setting.
func (g *Game) PrefersReducedMotion() bool {
	return g.reduced
}

// OnResize registers a resize listener.
func (g *Game) OnResize(fn func(width, height float64)) func() {
	return g.onResize.Add(fn)
}

// OnPointerMove registers a pointer-move listener.
func (g *Game) OnPointerMove(fn func(x, y float64)) func() {
	return g.onMove.Add(fn)
}

// OnPointerLeave registers a pointer-leave listener.
func (g *Game) OnPointerLeave(fn func()) func() {
	return g.onLeave.Add(fn)
}

// OnReducedMotionChange registers a reduced-motion listener.
func (g *Game) OnReducedMotionChange(fn func(reduced bool)) func() {
	return g.onMotion.Add(fn)
}

// RequestFrame schedules fn for the next Update.
func (g *Game) RequestFrame(fn func(now time.Time)) func() {
	return g.frames.Add(fn)
}

// Component returns the hosted component.
func (g *Game) Component() *field.Component {
	return g.component
}

// Update handles keys, resizes and the pointer, then runs pending frames.
// Quitting returns ebiten.Termination.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.component.Unmount()
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.SetDarkMode(!g.darkMode)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.SetReducedMotion(!g.reduced)
	}

	if !g.component.Mounted() {
		g.component.Mount()
	}

	g.syncSize(g.layoutW, g.layoutH)

	cx, cy := ebiten.CursorPosition()
	g.syncPointer(float64(cx), float64(cy), ebiten.IsFocused())

	g.runFrames(time.Now())
	return nil
}

// Draw copies the offscreen surface to the screen.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.surface.background)
	if g.surface.image != nil {
		screen.DrawImage(g.surface.image, nil)
	}
}

// Layout records the outside size and returns the backing size in device
// pixels, so one screen pixel maps to one surface pixel.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.layoutW, g.layoutH = outsideWidth, outsideHeight
	return g.screenSize(outsideWidth, outsideHeight)
}

func (g *Game) screenSize(outsideWidth, outsideHeight int) (int, int) {
	scale := field.ClampDPR(g.dpr)
	return max(int(float64(outsideWidth)*scale), 1), max(int(float64(outsideHeight)*scale), 1)
}

// SetDarkMode switches the theme.
func (g *Game) SetDarkMode(dark bool) {
	if dark == g.darkMode {
		return
	}
	g.darkMode = dark
	g.surface.SetBackground(field.PaletteFor(dark).Background)
	g.component.SetDarkMode(dark)
}

// SetReducedMotion changes the reduced-motion setting and notifies listeners.
func (g *Game) SetReducedMotion(reduced bool) {
	if reduced == g.reduced {
		return
	}
	g.reduced = reduced
	g.onMotion.Each(func(fn func(bool)) { fn(reduced) })
}

func (g *Game) syncSize(outsideWidth, outsideHeight int) {
	width, height := float64(outsideWidth), float64(outsideHeight)
	if width == g.width && height == g.height {
		return
	}
	g.width, g.height = width, height
	g.logger.Debug("window resized", "width", outsideWidth, "height", outsideHeight)
	g.onResize.Each(func(fn func(w, h float64)) { fn(width, height) })
}

// syncPointer takes the cursor in screen pixels. The pointer leaves when the
// cursor is outside the window or the window lost focus.
func (g *Game) syncPointer(sx, sy float64, focused bool) {
	scale := field.ClampDPR(g.dpr)
	x, y := sx/scale, sy/scale
	inside := focused && x >= 0 && y >= 0 && x < g.width && y < g.height

	if !inside {
		if g.pointerIn {
			g.pointerIn = false
			g.onLeave.Each(func(fn func()) { fn() })
		}
		return
	}
	g.pointerIn = true
	g.onMove.Each(func(fn func(x, y float64)) { fn(x, y) })
}

func (g *Game) runFrames(now time.Time) {
	for _, fn := range g.frames.Take() {
		fn(now)
	}
}
