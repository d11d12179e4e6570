// Package config centralizes all tunable field parameters and runtime settings.
package config

import "time"

// Particle pool sizing.
const (
	MinParticles   = 40    // Floor applied to the area-derived count
	DesktopDensity = 18000 // Surface units² per particle above the breakpoint
	MobileDensity  = 26000 // Sparser sampling at or below the breakpoint
)

// Viewport tiers.
const (
	MobileBreakpoint = 768 // Logical width at or below which the mobile tier applies
	MinDPR           = 1.0
	MaxDPR           = 2.0
)

// Motion
const (
	Damping         = 0.985 // Velocity multiplier applied every frame
	InitialSpeed    = 0.6   // Initial velocity components lie in ±InitialSpeed/2
	RepulseDistance = 100.0
	RepulseStrength = 0.6
	PointerSentinel = -9999.0 // Pointer position while inactive
	MobileFrameTime = 28 * time.Millisecond
)

// Rendering
const (
	ParticleRadius  = 2.0
	ParticleOpacity = 0.85
	LinkDistance    = 150.0
	LinkOpacity     = 0.28
	LinkWidth       = 1.0
)

// Terminal cell metrics in logical units. Each row holds two sub-pixels.
const (
	CellWidth  = 8
	CellHeight = 16
)

// Host rendering
const (
	TargetFPS       = 60
	TargetFrameTime = time.Second / TargetFPS
)

// Shutdown
const (
	ShutdownDrainTimeout = 15 * time.Second
	ShutdownNotice       = 2 * time.Second // How long sessions show the goodbye notice
)
