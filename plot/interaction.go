package plot

// State is the pointer tracking state of a Controller.
type State uint8

const (
	// Idle means no sample is highlighted.
	Idle State = iota
	// Tracking means the pointer is over the plot and a sample is
	// highlighted.
	Tracking
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Tracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// Frame is the geometry of the most recent draw, which pointer queries are
// answered against until the next draw.
type Frame struct {
	Projector Projector
	// Len is the number of points in the drawn series.
	Len int
	// Valid is false when the draw rendered the empty state.
	Valid bool
}

// Hover describes the highlighted sample.
type Hover struct {
	Index   int
	Pointer Point
}

// Controller resolves pointer positions to samples of the drawn series.
// It never modifies the series. Every method that takes an event reports
// whether the chart must be redrawn.
type Controller struct {
	frame   Frame
	state   State
	inside  bool
	pointer Point
	index   int
}

// State returns the current tracking state.
func (c *Controller) State() State {
	return c.state
}

// Hover returns the highlighted sample while tracking.
func (c *Controller) Hover() (Hover, bool) {
	if c.state != Tracking {
		return Hover{}, false
	}
	return Hover{Index: c.index, Pointer: c.pointer}, true
}

// SetFrame records the geometry of a finished draw. An invalid frame puts
// the controller in Idle and pointer events are ignored until a valid frame
// arrives. While tracking, the highlighted index is resolved again against
// the new geometry.
func (c *Controller) SetFrame(f Frame) (redraw bool) {
	c.frame = f
	if !f.Valid || f.Len == 0 {
		c.frame.Valid = false
		return c.reset()
	}
	if c.inside {
		return c.resolve()
	}
	return false
}

// PointerEntered handles the pointer entering the widget at p.
func (c *Controller) PointerEntered(p Point) (redraw bool) {
	c.inside = true
	c.pointer = p
	return c.resolve()
}

// PointerMoved handles the pointer moving to p within the widget. Moves
// while tracking always redraw, since the overlay follows the pointer.
func (c *Controller) PointerMoved(p Point) (redraw bool) {
	c.inside = true
	c.pointer = p
	return c.resolve() || c.state == Tracking
}

// PointerExited handles the pointer leaving the widget.
func (c *Controller) PointerExited() (redraw bool) {
	c.inside = false
	return c.reset()
}

func (c *Controller) resolve() bool {
	if !c.frame.Valid || !c.frame.Projector.Rect.Contains(c.pointer) {
		return c.reset()
	}
	idx := c.frame.Projector.Index(c.pointer.X, c.frame.Len)
	changed := c.state != Tracking || idx != c.index
	c.state = Tracking
	c.index = idx
	return changed
}

func (c *Controller) reset() bool {
	if c.state == Idle {
		return false
	}
	c.state = Idle
	c.index = 0
	return true
}
