// Package draw provides drawing surfaces: the Surface contract the field
// renders onto, a truecolor half-block terminal canvas and a recording
// surface.
package draw

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// RGB is an opaque 8-bit color. Opacity is passed separately to each draw call.
type RGB struct {
	R, G, B uint8
}

// Surface is a 2D drawing target addressed in logical units.
type Surface interface {
	// Resize sets the logical size and device pixel ratio. The backing store
	// becomes floor(width*dpr) x floor(height*dpr) where the surface controls
	// its own backing, and subsequent draw calls keep using logical units.
	Resize(width, height, dpr float64)

	// Clear erases the whole surface.
	Clear()

	// FillCircle draws a filled disc at opacity alpha in [0,1].
	FillCircle(x, y, radius float64, c RGB, alpha float64)

	// StrokeLine draws a line of the given width at opacity alpha in [0,1].
	StrokeLine(p1, p2 Point, width float64, c RGB, alpha float64)
}

// BlockUpperHalf is the glyph every canvas cell is drawn with: foreground
// colors the top sub-pixel, background the bottom one.
const BlockUpperHalf = '▀'

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
