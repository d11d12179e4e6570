package field

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/particles/internal/draw"
)

// Host is the environment a Component mounts into: it owns the surface,
// delivers resize and pointer events and schedules frames. All callbacks run
// on the host's single loop, never concurrently with each other.
type Host interface {
	Surface() draw.Surface
	Size() (width, height float64)
	DevicePixelRatio() float64
	PrefersReducedMotion() bool

	// Each On* call registers a listener and returns the func removing it.
	OnResize(fn func(width, height float64)) (remove func())
	OnPointerMove(fn func(x, y float64)) (remove func())
	OnPointerLeave(fn func()) (remove func())
	OnReducedMotionChange(fn func(reduced bool)) (remove func())

	// RequestFrame schedules fn once for the next display refresh.
	RequestFrame(fn func(now time.Time)) (cancel func())
}

// scope collects release funcs and runs them in reverse order exactly once.
type scope struct {
	releases []func()
	done     bool
}

func (s *scope) add(fn func()) {
	if fn != nil {
		s.releases = append(s.releases, fn)
	}
}

func (s *scope) release() {
	if s.done {
		return
	}
	s.done = true
	for i := len(s.releases) - 1; i >= 0; i-- {
		s.releases[i]()
	}
	s.releases = nil
}

// Component binds a Field to a Host for the duration of a mount.
type Component struct {
	host   Host
	field  *Field
	logger *log.Logger

	scope       *scope // non-nil while mounted
	cancelFrame func()
}

// NewComponent creates an unmounted component. Reduced motion and the
// device pixel ratio come from the host, not from opts.
func NewComponent(host Host, opts Options) *Component {
	opts.ReducedMotion = host.PrefersReducedMotion()
	opts.DevicePixelRatio = host.DevicePixelRatio()
	f := New(host.Surface(), opts)
	return &Component{
		host:   host,
		field:  f,
		logger: f.logger,
	}
}

// Mount attaches the field to the host. Under reduced motion the surface is
// cleared once and only the reduced-motion listener is registered;
// otherwise the pool is sized, listeners are registered and the frame loop
// starts. Mounting twice is a no-op.
func (c *Component) Mount() {
	if c.scope != nil {
		return
	}
	s := &scope{}
	c.scope = s

	mounted := false
	defer func() {
		if !mounted {
			s.release()
			c.scope = nil
		}
	}()

	c.field.SetReducedMotion(c.host.PrefersReducedMotion())
	c.field.SetDevicePixelRatio(c.host.DevicePixelRatio())

	s.add(c.host.OnReducedMotionChange(c.onReducedMotionChange))

	if c.field.env.ReducedMotion {
		c.field.ClearSurface()
		c.logger.Info("mounted static field", "reason", "reduced motion")
		mounted = true
		return
	}

	c.field.Resize(c.host.Size())
	s.add(c.host.OnResize(c.field.Resize))
	s.add(c.host.OnPointerMove(c.field.PointerMove))
	s.add(c.host.OnPointerLeave(c.field.PointerLeave))
	s.add(c.stopFrames)
	c.requestFrame(s)

	c.logger.Info("mounted field", "particles", c.field.Len(), "mobile", c.field.env.Mobile)
	mounted = true
}

// Unmount cancels the pending frame and removes every listener. No step
// runs after Unmount returns. Unmounting twice is a no-op.
func (c *Component) Unmount() {
	if c.scope == nil {
		return
	}
	c.scope.release()
	c.scope = nil
	c.logger.Info("unmounted field")
}

// SetDarkMode switches the palette by tearing the mount down and building it
// again. The particle pool survives the remount.
func (c *Component) SetDarkMode(dark bool) {
	if c.field.env.DarkMode == dark {
		return
	}
	wasMounted := c.Mounted()
	c.Unmount()
	c.field.SetDarkMode(dark)
	if wasMounted {
		c.Mount()
	}
}

// Mounted reports whether the component is attached.
func (c *Component) Mounted() bool {
	return c.scope != nil
}

// Running reports whether the frame loop is scheduled.
func (c *Component) Running() bool {
	return c.cancelFrame != nil
}

// Field returns the underlying field.
func (c *Component) Field() *Field {
	return c.field
}

func (c *Component) requestFrame(s *scope) {
	c.cancelFrame = c.host.RequestFrame(func(now time.Time) {
		// A stale callback from an earlier mount must never step.
		if c.scope != s {
			return
		}
		c.cancelFrame = nil
		c.field.Step(now)
		c.requestFrame(s)
	})
}

func (c *Component) stopFrames() {
	if c.cancelFrame != nil {
		c.cancelFrame()
		c.cancelFrame = nil
	}
}

func (c *Component) onReducedMotionChange(reduced bool) {
	if reduced == c.field.env.ReducedMotion {
		return
	}
	c.logger.Info("reduced motion changed", "reduced", reduced)
	c.Unmount()
	c.Mount()
}
