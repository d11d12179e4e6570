package field

import (
	"math/rand"

	"github.com/tomz197/particles/internal/config"
	"github.com/tomz197/particles/internal/draw"
	"github.com/tomz197/particles/internal/physics"
)

// Particle is a simulated point. Velocity is in logical units per frame.
type Particle struct {
	X, Y   float64 // Position
	VX, VY float64 // Velocity
}

// newRandomParticle places a particle uniformly inside width x height with a
// small random velocity.
func newRandomParticle(rng *rand.Rand, width, height float64) Particle {
	return Particle{
		X:  rng.Float64() * width,
		Y:  rng.Float64() * height,
		VX: (rng.Float64() - 0.5) * config.InitialSpeed,
		VY: (rng.Float64() - 0.5) * config.InitialSpeed,
	}
}

// repel adds the pointer impulse when the particle is inside radius.
func (p *Particle) repel(px, py, radius float64) {
	ix, iy := physics.Repulse(p.X, p.Y, px, py, radius, config.RepulseStrength)
	p.VX += ix
	p.VY += iy
}

// advance integrates one frame, damps the velocity and reflects it at the
// surface bounds. Position is not pulled back inside, so a particle may sit
// up to one frame's travel past an edge until the reflected velocity
// returns it. Only outward velocity is reflected: a particle already heading
// back inside keeps its direction.
func (p *Particle) advance(width, height float64) {
	p.X += p.VX
	p.Y += p.VY

	p.VX *= config.Damping
	p.VY *= config.Damping

	if (p.X <= 0 && p.VX < 0) || (p.X >= width && p.VX > 0) {
		p.VX = -p.VX
	}
	if (p.Y <= 0 && p.VY < 0) || (p.Y >= height && p.VY > 0) {
		p.VY = -p.VY
	}
}

// confine moves the particle onto the nearest point of the surface.
func (p *Particle) confine(width, height float64) {
	p.X = min(max(p.X, 0), width)
	p.Y = min(max(p.Y, 0), height)
}

// draw renders the particle as a disc.
func (p *Particle) draw(s draw.Surface, c draw.RGB) {
	s.FillCircle(p.X, p.Y, config.ParticleRadius, c, config.ParticleOpacity)
}
