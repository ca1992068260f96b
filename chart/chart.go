// Package chart draws a plot.Series as an interactive line chart using Gio.
package chart

import (
	"image"
	"log"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"git.sr.ht/~whereswaldon/stockchart/plot"
)

// Chart is a price chart widget. It tracks the pointer and draws a
// crosshair with a tooltip over the nearest point. Methods must be called
// from the goroutine running the window's event loop.
type Chart struct {
	Style Style

	series  plot.Series
	ctrl    plot.Controller
	scratch op.Ops
	size    image.Point
	metric  unit.Metric
	drawn   bool
}

// NewChart returns an empty chart using the default style.
func NewChart() *Chart {
	return &Chart{Style: DefaultStyle()}
}

// Load replaces the plotted series. Invalid series are logged and
// treated as empty. The next frame draws the new data and recomputes any
// hovered point against it.
func (c *Chart) Load(s plot.Series) {
	if err := s.Validate(); err != nil {
		log.Printf("chart: ignoring %d points: %v", len(s), err)
		s = nil
	}
	c.series = s
}

// Series returns the currently plotted series.
func (c *Chart) Series() plot.Series {
	return c.series
}

// Size returns the size of the most recent frame.
func (c *Chart) Size() image.Point {
	return c.size
}

// Metric returns the metric of the most recent frame.
func (c *Chart) Metric() unit.Metric {
	return c.metric
}

// Hovered returns the highlighted point, if the pointer is over the plot.
func (c *Chart) Hovered() (plot.PricePoint, bool) {
	h, ok := c.ctrl.Hover()
	if !ok || h.Index >= len(c.series) {
		return plot.PricePoint{}, false
	}
	return c.series[h.Index], true
}

// Update processes pointer events against the most recently drawn frame,
// reporting whether the chart needs to be redrawn.
func (c *Chart) Update(gtx C) bool {
	redraw := false
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: c,
			Kinds:  pointer.Enter | pointer.Leave | pointer.Move | pointer.Cancel,
		})
		if !ok {
			break
		}
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		// Gio positions grow downward; the plot is y-up.
		p := plot.Pt(float64(e.Position.X), float64(c.size.Y)-float64(e.Position.Y))
		switch e.Kind {
		case pointer.Enter:
			redraw = c.ctrl.PointerEntered(p) || redraw
		case pointer.Move:
			redraw = c.ctrl.PointerMoved(p) || redraw
		case pointer.Leave, pointer.Cancel:
			redraw = c.ctrl.PointerExited() || redraw
		}
	}
	return redraw
}

// Layout draws the chart filling gtx.Constraints.Max.
func (c *Chart) Layout(gtx C, th *material.Theme) D {
	c.Update(gtx)
	c.size = gtx.Constraints.Max
	c.metric = gtx.Metric

	p := newPainter(gtx, th, c.Style)
	sc := prepare(p, c.series)
	c.ctrl.SetFrame(sc.frame())

	var hover *plot.Hover
	if h, ok := c.ctrl.Hover(); ok {
		hover = &h
	}
	if !paintScene(gtx, &c.scratch, th, c.Style, sc, hover) {
		// Nothing meaningful was drawn, so there is nothing to track.
		c.ctrl.SetFrame(plot.Frame{})
	}
	c.drawn = sc.valid

	defer clip.Rect{Max: c.size}.Push(gtx.Ops).Pop()
	if c.drawn {
		pointer.CursorCrosshair.Add(gtx.Ops)
	}
	event.Op(gtx.Ops, c)
	return D{Size: c.size}
}
