package window

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tomz197/particles/internal/draw"
)

// Surface is a draw.Surface backed by an offscreen ebiten image sized in
// device pixels. Draw calls take logical coordinates.
type Surface struct {
	image      *ebiten.Image
	width      float64
	height     float64
	dpr        float64
	background color.NRGBA
}

var _ draw.Surface = (*Surface)(nil)

// NewSurface creates a surface cleared to bg. The image is allocated on the
// first Resize.
func NewSurface(bg draw.RGB) *Surface {
	return &Surface{dpr: 1, background: toNRGBA(bg, 1)}
}

// Resize reallocates the backing image when its pixel size changed.
func (s *Surface) Resize(width, height, dpr float64) {
	s.width, s.height, s.dpr = width, height, dpr

	bw, bh := draw.BackingSize(width, height, dpr)
	bw, bh = max(bw, 1), max(bh, 1)
	if s.image != nil {
		if b := s.image.Bounds(); b.Dx() == bw && b.Dy() == bh {
			return
		}
		s.image.Deallocate()
	}
	s.image = ebiten.NewImage(bw, bh)
	s.image.Fill(s.background)
}

// SetBackground sets the clear color.
func (s *Surface) SetBackground(bg draw.RGB) {
	s.background = toNRGBA(bg, 1)
}

// Clear fills the image with the background.
func (s *Surface) Clear() {
	if s.image != nil {
		s.image.Fill(s.background)
	}
}

// FillCircle draws an antialiased disc.
func (s *Surface) FillCircle(x, y, radius float64, c draw.RGB, alpha float64) {
	if s.image == nil {
		return
	}
	vector.DrawFilledCircle(s.image,
		float32(x*s.dpr), float32(y*s.dpr), float32(radius*s.dpr),
		toNRGBA(c, alpha), true)
}

// StrokeLine draws an antialiased segment.
func (s *Surface) StrokeLine(p1, p2 draw.Point, width float64, c draw.RGB, alpha float64) {
	if s.image == nil {
		return
	}
	vector.StrokeLine(s.image,
		float32(p1.X*s.dpr), float32(p1.Y*s.dpr),
		float32(p2.X*s.dpr), float32(p2.Y*s.dpr),
		float32(width*s.dpr), toNRGBA(c, alpha), true)
}

// DevicePixelRatio returns the ratio of the last Resize.
func (s *Surface) DevicePixelRatio() float64 {
	return s.dpr
}

// BackingSize returns the pixel size of the image.
func (s *Surface) BackingSize() (int, int) {
	return draw.BackingSize(s.width, s.height, s.dpr)
}

func toNRGBA(c draw.RGB, alpha float64) color.NRGBA {
	switch {
	case alpha <= 0:
		alpha = 0
	case alpha >= 1:
		alpha = 1
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(alpha*255 + 0.5)}
}
