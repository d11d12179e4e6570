package draw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	black  = RGB{}
	orange = RGB{R: 255, G: 102, B: 0}
)

// newTestCanvas returns a 10x5 cell canvas with 8x16 logical cells.
func newTestCanvas() *Canvas {
	return NewScaledCanvas(10, 5, 80, 80)
}

func TestCanvas_FillCircleOpaque(t *testing.T) {
	c := newTestCanvas()

	c.FillCircle(8, 8, 2, orange, 1)

	assert.Equal(t, orange, c.At(8, 8))
	assert.Equal(t, black, c.At(24, 24))
}

func TestCanvas_AlphaBlendsOverBackground(t *testing.T) {
	c := newTestCanvas()

	c.FillCircle(8, 8, 2, RGB{R: 255}, 0.5)

	got := c.At(8, 8)
	assert.Equal(t, uint8(128), got.R)
	assert.Zero(t, got.G)
	assert.Zero(t, got.B)
}

func TestCanvas_OutOfBoundsIgnored(t *testing.T) {
	c := newTestCanvas()

	assert.NotPanics(t, func() {
		c.FillCircle(-50, -50, 2, orange, 1)
		c.FillCircle(500, 500, 2, orange, 1)
		c.StrokeLine(Point{X: -100, Y: -100}, Point{X: 400, Y: 400}, 1, orange, 1)
	})
}

func TestCanvas_StrokeLineCoversRow(t *testing.T) {
	c := newTestCanvas()

	c.StrokeLine(Point{X: 0, Y: 8}, Point{X: 72, Y: 8}, 1, orange, 1)

	for x := 0.0; x <= 72; x += 8 {
		assert.Equal(t, orange, c.At(x, 8), "x=%v", x)
	}
	assert.Equal(t, black, c.At(8, 24))
}

func TestCanvas_ClearUsesBackground(t *testing.T) {
	c := newTestCanvas()
	bg := RGB{R: 10, G: 10, B: 10}

	c.FillCircle(8, 8, 2, orange, 1)
	c.SetBackground(bg)
	c.Clear()

	assert.Equal(t, bg, c.At(8, 8))
	assert.Equal(t, bg, c.Background())
}

func TestCanvas_RenderOnlyChangedCells(t *testing.T) {
	c := newTestCanvas()
	var out bytes.Buffer

	c.Render(&out)
	first := out.String()
	require.NotEmpty(t, first)
	assert.Equal(t, 50, strings.Count(first, string(BlockUpperHalf)))

	out.Reset()
	c.Render(&out)
	assert.Empty(t, out.String(), "unchanged frame must not emit anything")

	c.FillCircle(8, 8, 2, orange, 1)
	out.Reset()
	c.Render(&out)
	changed := out.String()
	assert.Equal(t, 1, strings.Count(changed, string(BlockUpperHalf)))
	assert.Contains(t, changed, "\033[1;2H")
	assert.Contains(t, changed, "\033[48;2;255;102;0m")
}

func TestCanvas_ForceRedraw(t *testing.T) {
	c := newTestCanvas()
	var out bytes.Buffer

	c.Render(&out)
	c.ForceRedraw()
	out.Reset()
	c.Render(&out)

	assert.Equal(t, 50, strings.Count(out.String(), string(BlockUpperHalf)))
}

func TestCanvas_ResizeKeepsLogicalMapping(t *testing.T) {
	c := newTestCanvas()

	c.ResizeTerminal(20, 10)
	c.Resize(160, 160, 2)

	assert.Equal(t, 20, c.TerminalWidth())
	assert.Equal(t, 10, c.TerminalHeight())
	assert.Equal(t, 160.0, c.LogicalWidth())
	assert.Equal(t, 2.0, c.DevicePixelRatio())

	x, y := c.TerminalToLogical(1, 1)
	assert.Equal(t, 4.0, x)
	assert.Equal(t, 8.0, y)

	x, y = c.TerminalToLogical(20, 10)
	assert.Equal(t, 156.0, x)
	assert.Equal(t, 152.0, y)
}

func TestChunkWriter_FlushesEverything(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out)

	payload := strings.Repeat("x", maxChunkSize*3+17)
	cw.WriteString(payload)
	cw.WriteAt(3, 2, "hi")

	require.NoError(t, cw.Flush())
	assert.Equal(t, payload+"\033[2;3Hhi", out.String())
	assert.Zero(t, cw.Len())
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()

	r.Resize(100.5, 50.2, 2)
	r.FillCircle(1, 2, 2, orange, 0.85)
	r.StrokeLine(Point{}, Point{X: 3, Y: 4}, 1, orange, 0.1)

	assert.Len(t, r.Circles, 1)
	assert.Len(t, r.Lines, 1)

	w, h := r.BackingSize()
	assert.Equal(t, 201, w)
	assert.Equal(t, 100, h)

	r.Clear()
	assert.Empty(t, r.Circles)
	assert.Empty(t, r.Lines)
	assert.Equal(t, 1, r.Clears)
}
