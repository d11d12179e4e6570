// Package physics provides distance utilities and the pointer repulsion model.
package physics

import "math"

// minDistance keeps the direction vector finite when a particle sits exactly
// under the pointer.
const minDistance = 0.0001

// Distance calculates the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Sqrt(DistanceSquared(x1, y1, x2, y2))
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// RepulseForce returns the graded force magnitude at distance d from the
// pointer: (radius-d)/radius inside the radius, 0 outside.
func RepulseForce(d, radius float64) float64 {
	if radius <= 0 || d >= radius {
		return 0
	}
	if d < 0 {
		d = 0
	}
	return (radius - d) / radius
}

// Repulse returns the velocity impulse pushing a point at (px, py) away from
// the source at (sx, sy). The impulse is zero outside radius.
func Repulse(px, py, sx, sy, radius, strength float64) (ix, iy float64) {
	dx := px - sx
	dy := py - sy
	dist2 := dx*dx + dy*dy
	if dist2 >= radius*radius {
		return 0, 0
	}
	dist := math.Max(minDistance, math.Sqrt(dist2))
	force := RepulseForce(dist, radius) * strength
	return dx / dist * force, dy / dist * force
}

// Fade scales base linearly from base at distance 0 down to 0 at maxDist.
func Fade(d, maxDist, base float64) float64 {
	if maxDist <= 0 || d >= maxDist {
		return 0
	}
	if d <= 0 {
		return base
	}
	return base * (1 - d/maxDist)
}
