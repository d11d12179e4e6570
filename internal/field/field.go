// Package field implements the particle field: a pool of drifting points
// repelled by the pointer and joined by distance-faded links, rendered onto a
// draw.Surface once per frame.
package field

import (
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/particles/internal/config"
	"github.com/tomz197/particles/internal/draw"
	"github.com/tomz197/particles/internal/physics"
	"golang.org/x/time/rate"
)

// Options configures a Field.
type Options struct {
	DarkMode         bool
	ReducedMotion    bool
	DevicePixelRatio float64 // Clamped to [1, 2]

	// Rand seeds particle placement. Defaults to a time-seeded source.
	Rand *rand.Rand

	// Logger defaults to a logger that discards everything.
	Logger *log.Logger
}

// pointer is the last known cursor position in surface-local coordinates.
type pointer struct {
	x, y   float64
	active bool
}

// Field owns the particle pool and everything a frame needs. It is not safe
// for concurrent use: the host calls every method from its single frame
// loop.
type Field struct {
	surface   draw.Surface
	particles []Particle
	width     float64
	height    float64
	env       Environment
	tunables  Tunables
	palette   Palette
	pointer   pointer
	limiter   *rate.Limiter
	rng       *rand.Rand
	logger    *log.Logger
}

// New creates a field drawing onto surface. The pool stays empty until the
// first Resize.
func New(surface draw.Surface, opts Options) *Field {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	f := &Field{
		surface: surface,
		env: Environment{
			DarkMode:         opts.DarkMode,
			ReducedMotion:    opts.ReducedMotion,
			DevicePixelRatio: ClampDPR(opts.DevicePixelRatio),
		},
		palette: PaletteFor(opts.DarkMode),
		pointer: pointer{x: config.PointerSentinel, y: config.PointerSentinel},
		limiter: rate.NewLimiter(rate.Every(config.MobileFrameTime), 1),
		rng:     rng,
		logger:  logger,
	}
	f.tunables = TunablesFor(f.env.Mobile)
	return f
}

// Resize adopts a new logical surface size and reconciles the pool with the
// target count by appending or truncating only the difference. When
// the surface shrinks, kept particles outside the new bounds are moved onto
// the nearest edge.
func (f *Field) Resize(width, height float64) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	shrunk := width < f.width || height < f.height
	f.width = width
	f.height = height

	if mobile := IsMobile(width); mobile != f.env.Mobile || len(f.particles) == 0 {
		if mobile != f.env.Mobile {
			f.logger.Debug("viewport tier changed", "mobile", mobile, "width", width)
		}
		f.env.Mobile = mobile
		f.tunables = TunablesFor(mobile)
	}

	f.surface.Resize(width, height, f.env.DevicePixelRatio)

	target := f.tunables.targetCount(width, height)
	before := len(f.particles)
	switch {
	case before < target:
		for i := before; i < target; i++ {
			f.particles = append(f.particles, newRandomParticle(f.rng, width, height))
		}
	case before > target:
		clear(f.particles[target:])
		f.particles = f.particles[:target]
	}

	// Survivors of a shrink may lie outside the new bounds.
	if shrunk {
		for i := range f.particles[:min(before, target)] {
			f.particles[i].confine(width, height)
		}
	}

	if before != target {
		f.logger.Debug("particle pool reconciled", "from", before, "to", target, "width", width, "height", height)
	}
}

// PointerMove records the cursor position and marks the pointer active.
func (f *Field) PointerMove(x, y float64) {
	f.pointer = pointer{x: x, y: y, active: true}
}

// PointerLeave marks the pointer inactive and parks it far outside the surface.
func (f *Field) PointerLeave() {
	f.pointer = pointer{x: config.PointerSentinel, y: config.PointerSentinel}
}

// Step advances and renders one frame. It returns false when the frame was
// skipped: always under reduced motion, and on mobile when less than
// config.MobileFrameTime passed since the last drawn frame.
func (f *Field) Step(now time.Time) bool {
	if f.env.ReducedMotion {
		return false
	}
	if f.tunables.Throttle && !f.limiter.AllowN(now, 1) {
		return false
	}

	f.surface.Clear()

	repulse := f.pointer.active && f.tunables.Repulse
	color := f.palette.Point
	for i := range f.particles {
		p := &f.particles[i]
		if repulse {
			p.repel(f.pointer.x, f.pointer.y, f.tunables.RepulseDistance)
		}
		p.advance(f.width, f.height)
		p.draw(f.surface, color)
	}

	if f.tunables.Links {
		f.drawLinks()
	}
	return true
}

// drawLinks joins every pair of particles closer than the link distance.
// The pass is O(n²); pool sizing keeps n in the tens to low hundreds.
func (f *Field) drawLinks() {
	maxDist := f.tunables.LinkDistance
	maxDist2 := maxDist * maxDist
	color := f.palette.Point

	for i := 0; i < len(f.particles); i++ {
		a := &f.particles[i]
		for j := i + 1; j < len(f.particles); j++ {
			b := &f.particles[j]
			dist2 := physics.DistanceSquared(a.X, a.Y, b.X, b.Y)
			if dist2 >= maxDist2 {
				continue
			}
			alpha := LinkOpacity(math.Sqrt(dist2), maxDist)
			f.surface.StrokeLine(
				draw.Point{X: a.X, Y: a.Y},
				draw.Point{X: b.X, Y: b.Y},
				config.LinkWidth, color, alpha,
			)
		}
	}
}

// LinkOpacity returns the link opacity at distance d: config.LinkOpacity at
// 0, falling linearly to 0 at maxDist.
func LinkOpacity(d, maxDist float64) float64 {
	return physics.Fade(d, maxDist, config.LinkOpacity)
}

// ClearSurface erases the surface without touching the simulation.
func (f *Field) ClearSurface() {
	f.surface.Clear()
}

// SetDarkMode switches the palette.
func (f *Field) SetDarkMode(dark bool) {
	f.env.DarkMode = dark
	f.palette = PaletteFor(dark)
}

// SetReducedMotion sets the reduced-motion flag. While set, Step is a no-op.
func (f *Field) SetReducedMotion(reduced bool) {
	f.env.ReducedMotion = reduced
}

// SetDevicePixelRatio updates the ratio used by the next Resize.
func (f *Field) SetDevicePixelRatio(dpr float64) {
	f.env.DevicePixelRatio = ClampDPR(dpr)
}

// Particles returns a copy of the pool.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Len returns the pool size.
func (f *Field) Len() int {
	return len(f.particles)
}

// Size returns the logical surface size.
func (f *Field) Size() (width, height float64) {
	return f.width, f.height
}

// Environment returns the current environment.
func (f *Field) Environment() Environment {
	return f.env
}

// Tunables returns the tunables of the current tier.
func (f *Field) Tunables() Tunables {
	return f.tunables
}

// Palette returns the active palette.
func (f *Field) Palette() Palette {
	return f.palette
}

// Pointer returns the recorded pointer position and whether it is active.
func (f *Field) Pointer() (x, y float64, active bool) {
	return f.pointer.x, f.pointer.y, f.pointer.active
}
