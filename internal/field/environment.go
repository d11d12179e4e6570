package field

import (
	"github.com/tomz197/particles/internal/config"
	"github.com/tomz197/particles/internal/draw"
)

// Palette is the color pair for one theme. Point colors both discs and
// links; Background is what hosts paint behind the surface.
type Palette struct {
	Point      draw.RGB
	Background draw.RGB
}

// Theme palettes.
var (
	DarkPalette = Palette{
		Point:      draw.RGB{R: 243, G: 108, B: 33},
		Background: draw.RGB{R: 10, G: 10, B: 10},
	}
	LightPalette = Palette{
		Point:      draw.RGB{R: 255, G: 102, B: 0},
		Background: draw.RGB{R: 255, G: 255, B: 255},
	}
)

// PaletteFor returns the palette selected by the dark-mode flag.
func PaletteFor(darkMode bool) Palette {
	if darkMode {
		return DarkPalette
	}
	return LightPalette
}

// Environment holds the inputs the field derives its behavior from.
type Environment struct {
	DarkMode         bool
	Mobile           bool
	ReducedMotion    bool
	DevicePixelRatio float64
}

// Tunables are the per-tier simulation parameters.
type Tunables struct {
	LinkDistance    float64
	RepulseDistance float64
	Density         float64 // Surface units² per particle
	MinParticles    int
	Links           bool // Link pass enabled
	Repulse         bool // Pointer repulsion enabled
	Throttle        bool // Frames limited to config.MobileFrameTime
}

// TunablesFor returns the tunables of the mobile or desktop tier.
func TunablesFor(mobile bool) Tunables {
	t := Tunables{
		LinkDistance:    config.LinkDistance,
		RepulseDistance: config.RepulseDistance,
		Density:         config.DesktopDensity,
		MinParticles:    config.MinParticles,
		Links:           true,
		Repulse:         true,
	}
	if mobile {
		t.Density = config.MobileDensity
		t.Links = false
		t.Repulse = false
		t.Throttle = true
	}
	return t
}

// IsMobile reports whether a logical viewport width falls in the mobile tier.
func IsMobile(width float64) bool {
	return width <= config.MobileBreakpoint
}

// ClampDPR clamps a device pixel ratio to [1, 2]. Non-positive or NaN
// ratios count as 1.
func ClampDPR(dpr float64) float64 {
	if !(dpr >= config.MinDPR) {
		return config.MinDPR
	}
	if dpr > config.MaxDPR {
		return config.MaxDPR
	}
	return dpr
}

// TargetCount returns max(floor, floor(width*height/density)) for the tier.
func TargetCount(width, height float64, mobile bool) int {
	return TunablesFor(mobile).targetCount(width, height)
}

func (t Tunables) targetCount(width, height float64) int {
	area := width * height
	if area < 0 {
		area = 0
	}
	n := int(area / t.Density)
	if n < t.MinParticles {
		return t.MinParticles
	}
	return n
}
