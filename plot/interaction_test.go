package plot

import (
	"testing"
)

func testFrame(t *testing.T, n int) Frame {
	t.Helper()
	s := dailySeries(date(2025, 1, 1), n, func(i int) float64 { return float64(i * i) })
	rng, err := CalculateRange(s)
	if err != nil {
		t.Fatal(err)
	}
	return Frame{
		Projector: NewProjector(Rect{X: 50, Y: 40, Width: 700, Height: 500}, rng),
		Len:       n,
		Valid:     true,
	}
}

func expectState(t *testing.T, c *Controller, state State, index int) {
	t.Helper()
	if c.State() != state {
		t.Fatalf("expected state %v, got %v", state, c.State())
	}
	h, ok := c.Hover()
	if ok != (state == Tracking) {
		t.Fatalf("hover availability %v does not match state %v", ok, state)
	}
	if ok && h.Index != index {
		t.Errorf("expected highlighted index %d, got %d", index, h.Index)
	}
}

func TestControllerTransitions(t *testing.T) {
	var c Controller
	c.SetFrame(testFrame(t, 11))
	expectState(t, &c, Idle, 0)

	if c.PointerEntered(Pt(10, 10)) {
		t.Errorf("entering outside the plot should not redraw")
	}
	expectState(t, &c, Idle, 0)

	if !c.PointerMoved(Pt(400, 300)) {
		t.Errorf("moving into the plot should redraw")
	}
	expectState(t, &c, Tracking, 5)

	if !c.PointerMoved(Pt(750, 300)) {
		t.Errorf("moving while tracking should redraw")
	}
	expectState(t, &c, Tracking, 10)

	if !c.PointerMoved(Pt(50, 40)) {
		t.Errorf("moving while tracking should redraw")
	}
	expectState(t, &c, Tracking, 0)

	if !c.PointerMoved(Pt(790, 300)) {
		t.Errorf("leaving the plot should redraw")
	}
	expectState(t, &c, Idle, 0)

	if c.PointerMoved(Pt(795, 300)) {
		t.Errorf("moving outside the plot while idle should not redraw")
	}

	c.PointerEntered(Pt(400, 100))
	expectState(t, &c, Tracking, 5)
	if !c.PointerExited() {
		t.Errorf("exiting while tracking should redraw")
	}
	expectState(t, &c, Idle, 0)
	if c.PointerExited() {
		t.Errorf("exiting while idle should not redraw")
	}
}

func TestControllerInvalidFrame(t *testing.T) {
	var c Controller
	c.SetFrame(testFrame(t, 11))
	c.PointerEntered(Pt(400, 300))
	expectState(t, &c, Tracking, 5)

	if !c.SetFrame(Frame{}) {
		t.Errorf("an empty draw while tracking should redraw")
	}
	expectState(t, &c, Idle, 0)

	if c.PointerMoved(Pt(400, 300)) {
		t.Errorf("pointer events must be ignored after an empty draw")
	}
	expectState(t, &c, Idle, 0)

	// The pointer is still over the widget, so the next real frame resumes
	// tracking.
	if !c.SetFrame(testFrame(t, 11)) {
		t.Errorf("a valid frame under the pointer should redraw")
	}
	expectState(t, &c, Tracking, 5)
}

func TestControllerReplacedSeries(t *testing.T) {
	var c Controller
	c.SetFrame(testFrame(t, 101))
	c.PointerEntered(Pt(750, 300))
	expectState(t, &c, Tracking, 100)

	c.SetFrame(testFrame(t, 3))
	expectState(t, &c, Tracking, 2)

	if c.SetFrame(testFrame(t, 3)) {
		t.Errorf("an identical frame should not redraw")
	}
}
