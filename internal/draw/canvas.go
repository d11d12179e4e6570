package draw

import (
	"io"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Canvas is a truecolor drawing buffer with 2x vertical resolution using
// half-block characters. Draw calls use logical coordinates that are scaled
// to terminal sub-pixels, and each pixel accumulates color by alpha blending
// over the background.
type Canvas struct {
	termWidth      int              // Actual terminal columns
	termHeight     int              // Actual terminal rows
	subPixelHeight int              // termHeight * 2
	pixels         []colorful.Color // Flat slice: [y * termWidth + x]
	background     colorful.Color

	// Scaling from logical to pixel coordinates
	logicalWidth  float64
	logicalHeight float64
	dpr           float64
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// Last emitted cells, used to only write what changed
	prev        []cell
	forceRedraw bool

	renderBuf strings.Builder // Buffer for batching render output
	numBuf    [20]byte        // Scratch buffer for allocation-free integer formatting
}

// cell is a rendered terminal cell: the upper half is drawn with the
// foreground color, the lower half with the background color.
type cell struct {
	top, bottom RGB
}

var _ Surface = (*Canvas)(nil)

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
// logicalWidth/Height define the coordinate space used by draw calls.
// termWidth/Height are the actual terminal dimensions.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
		dpr:           1,
	}
	c.ResizeTerminal(termWidth, termHeight)
	return c
}

// ResizeTerminal updates the canvas for new terminal dimensions while keeping logical size.
func (c *Canvas) ResizeTerminal(termWidth, termHeight int) {
	if termWidth < 0 {
		termWidth = 0
	}
	if termHeight < 0 {
		termHeight = 0
	}
	subPixelHeight := termHeight * 2

	// Reallocate if size changed
	if termWidth != c.termWidth || termHeight != c.termHeight || c.pixels == nil {
		c.pixels = make([]colorful.Color, subPixelHeight*termWidth)
		c.prev = make([]cell, termHeight*termWidth)
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = subPixelHeight
		c.forceRedraw = true
		c.Clear()
	}

	c.updateScale()
}

// Resize sets the logical size. The terminal grid is the backing store, so
// dpr is recorded but does not change the pixel count.
func (c *Canvas) Resize(width, height, dpr float64) {
	c.logicalWidth = width
	c.logicalHeight = height
	c.dpr = dpr
	c.updateScale()
}

func (c *Canvas) updateScale() {
	c.scaleX, c.scaleY = 0, 0
	if c.logicalWidth > 0 {
		c.scaleX = float64(c.termWidth) / c.logicalWidth
	}
	if c.logicalHeight > 0 {
		c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
	}
}

// SetBackground sets the color pixels are cleared to and blended over.
func (c *Canvas) SetBackground(bg RGB) {
	nc := toColorful(bg)
	if nc == c.background {
		return
	}
	c.background = nc
	c.forceRedraw = true
}

// Background returns the current background color.
func (c *Canvas) Background() RGB {
	return fromColorful(c.background)
}

// ForceRedraw makes the next Render emit every cell.
func (c *Canvas) ForceRedraw() {
	c.forceRedraw = true
}

// Clear resets all pixels to the background.
func (c *Canvas) Clear() {
	for i := range c.pixels {
		c.pixels[i] = c.background
	}
}

// blendPixel blends color at alpha into a pixel at terminal sub-pixel
// coordinates (no scaling).
func (c *Canvas) blendPixel(x, y int, col colorful.Color, alpha float64) {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight {
		return
	}
	i := y*c.termWidth + x
	c.pixels[i] = c.pixels[i].BlendRgb(col, clamp01(alpha))
}

// FillCircle draws a filled disc at logical coordinates.
func (c *Canvas) FillCircle(x, y, radius float64, col RGB, alpha float64) {
	nc := toColorful(col)
	// Sub-pixels are square in logical units when the cell metrics are 1:2.
	r := radius * c.scaleX
	rasterDisc(x*c.scaleX, y*c.scaleY, r, func(px, py int) {
		c.blendPixel(px, py, nc, alpha)
	})
}

// StrokeLine draws a line using Bresenham's algorithm. Lines are a single
// sub-pixel wide regardless of width.
func (c *Canvas) StrokeLine(p1, p2 Point, width float64, col RGB, alpha float64) {
	nc := toColorful(col)
	x1, y1 := c.toPixel(p1)
	x2, y2 := c.toPixel(p2)
	rasterLine(x1, y1, x2, y2, func(px, py int) {
		c.blendPixel(px, py, nc, alpha)
	})
}

func (c *Canvas) toPixel(p Point) (int, int) {
	return round(p.X * c.scaleX), round(p.Y * c.scaleY)
}

// At returns the color of the sub-pixel under logical coordinates (x, y).
func (c *Canvas) At(x, y float64) RGB {
	px, py := c.toPixel(Point{X: x, Y: y})
	if px < 0 || px >= c.termWidth || py < 0 || py >= c.subPixelHeight {
		return fromColorful(c.background)
	}
	return fromColorful(c.pixels[py*c.termWidth+px])
}

// maxChunkSize is the maximum bytes to write at once. It stays below a typical
// 1500 byte MTU so SSH sessions get smooth packets.
const maxChunkSize = 1400

// Render outputs the cells that changed since the previous Render using
// half-block characters with 24-bit foreground/background colors.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()

	var lastFg, lastBg RGB
	haveColor := false
	lastRow, lastCol := -1, -1

	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth

		for col := 0; col < c.termWidth; col++ {
			cur := cell{
				top:    fromColorful(c.pixels[topOffset+col]),
				bottom: fromColorful(c.pixels[bottomOffset+col]),
			}
			idx := row*c.termWidth + col
			if !c.forceRedraw && c.prev[idx] == cur {
				continue
			}
			c.prev[idx] = cur

			// Consecutive cells on a row need no cursor move
			if row != lastRow || col != lastCol+1 {
				c.writeCursor(row+1, col+1)
			}
			if !haveColor || cur.top != lastFg {
				c.writeColor(38, cur.top)
				lastFg = cur.top
			}
			if !haveColor || cur.bottom != lastBg {
				c.writeColor(48, cur.bottom)
				lastBg = cur.bottom
			}
			haveColor = true
			c.renderBuf.WriteRune(BlockUpperHalf)
			lastRow, lastCol = row, col
		}
	}
	c.forceRedraw = false

	if c.renderBuf.Len() == 0 {
		return
	}
	c.renderBuf.WriteString("\033[0m")

	// Write output in chunks for optimal network flow
	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

func (c *Canvas) writeCursor(row, col int) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(row), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col), 10))
	c.renderBuf.WriteByte('H')
}

// writeColor writes an SGR truecolor sequence; layer is 38 (fg) or 48 (bg).
func (c *Canvas) writeColor(layer int, col RGB) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(layer), 10))
	c.renderBuf.WriteString(";2;")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col.R), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col.G), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col.B), 10))
	c.renderBuf.WriteByte('m')
}

// LogicalWidth returns the logical width.
func (c *Canvas) LogicalWidth() float64 {
	return c.logicalWidth
}

// LogicalHeight returns the logical height.
func (c *Canvas) LogicalHeight() float64 {
	return c.logicalHeight
}

// DevicePixelRatio returns the ratio passed to the last Resize.
func (c *Canvas) DevicePixelRatio() float64 {
	return c.dpr
}

// TerminalWidth returns the actual terminal column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the actual terminal row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// TerminalToLogical converts a 1-based terminal position (col, row) to the
// logical coordinates of the cell center.
func (c *Canvas) TerminalToLogical(col, row int) (x, y float64) {
	if c.scaleX == 0 || c.scaleY == 0 {
		return 0, 0
	}
	x = (float64(col-1) + 0.5) / c.scaleX
	y = (float64(row-1)*2 + 1) / c.scaleY
	return x, y
}

func toColorful(c RGB) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round(v float64) int {
	return int(math.Round(v))
}
