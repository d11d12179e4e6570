package draw

// Circle is a recorded FillCircle call.
type Circle struct {
	X, Y, Radius float64
	Color        RGB
	Alpha        float64
}

// Line is a recorded StrokeLine call.
type Line struct {
	From, To Point
	Width    float64
	Color    RGB
	Alpha    float64
}

// Recorder is a Surface that keeps the draw calls of the current frame.
// Clear starts a new frame.
type Recorder struct {
	Width, Height, DPR float64

	Clears  int
	Resizes int
	Circles []Circle
	Lines   []Line
}

var _ Surface = (*Recorder)(nil)

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Resize records the logical size and ratio.
func (r *Recorder) Resize(width, height, dpr float64) {
	r.Width, r.Height, r.DPR = width, height, dpr
	r.Resizes++
}

// Clear drops the recorded calls of the previous frame.
func (r *Recorder) Clear() {
	r.Clears++
	r.Circles = r.Circles[:0]
	r.Lines = r.Lines[:0]
}

// FillCircle records a disc.
func (r *Recorder) FillCircle(x, y, radius float64, c RGB, alpha float64) {
	r.Circles = append(r.Circles, Circle{X: x, Y: y, Radius: radius, Color: c, Alpha: alpha})
}

// StrokeLine records a line.
func (r *Recorder) StrokeLine(p1, p2 Point, width float64, c RGB, alpha float64) {
	r.Lines = append(r.Lines, Line{From: p1, To: p2, Width: width, Color: c, Alpha: alpha})
}

// BackingSize returns the pixel dimensions a raster surface would allocate.
func (r *Recorder) BackingSize() (int, int) {
	return BackingSize(r.Width, r.Height, r.DPR)
}

// BackingSize returns floor(width*dpr) x floor(height*dpr).
func BackingSize(width, height, dpr float64) (int, int) {
	w := int(width * dpr)
	h := int(height * dpr)
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}
