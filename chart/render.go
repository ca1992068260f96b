package chart

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"gioui.org/x/stroke"
	"github.com/dustin/go-humanize"

	"git.sr.ht/~whereswaldon/stockchart/plot"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

// scene is the geometry of one frame. A zero scene (valid == false) draws
// the empty state.
type scene struct {
	series plot.Series
	rng    plot.DataRange
	ticks  plot.TickSet
	rect   plot.Rect
	proj   plot.Projector
	dates  []plot.DateTick
	valid  bool
}

// frame returns the geometry pointer interaction should resolve against.
func (sc scene) frame() plot.Frame {
	return plot.Frame{Projector: sc.proj, Len: len(sc.series), Valid: sc.valid}
}

// painter draws into a widget of the given size using y-up plot
// coordinates.
type painter struct {
	gtx   C
	th    *material.Theme
	style Style
	size  image.Point
}

func newPainter(gtx C, th *material.Theme, style Style) *painter {
	return &painter{gtx: gtx, th: th, style: style, size: gtx.Constraints.Max}
}

func (p *painter) canText() bool {
	return p.th != nil && p.th.Shaper != nil
}

// pt converts a y-up plot point into a Gio position.
func (p *painter) pt(x, y float64) f32.Point {
	return f32.Pt(float32(x), float32(float64(p.size.Y)-y))
}

func (p *painter) px(v unit.Dp) float32 {
	return p.gtx.Metric.PxPerDp * float32(v)
}

// label records txt without drawing it, reporting its size.
func (p *painter) label(txt string, size unit.Sp, c color.NRGBA) (op.CallOp, image.Point, bool) {
	if !p.canText() {
		return op.CallOp{}, image.Point{}, false
	}
	gtx := p.gtx
	gtx.Constraints = layout.Constraints{Max: image.Pt(math.MaxInt32>>1, math.MaxInt32>>1)}
	macro := op.Record(gtx.Ops)
	l := material.Label(p.th, size, txt)
	l.Color = c
	l.MaxLines = 1
	l.Alignment = text.Start
	dims := l.Layout(gtx)
	return macro.Stop(), dims.Size, true
}

func (p *painter) measure(label string) (float64, error) {
	_, size, ok := p.label(label, p.style.LabelSize, p.style.Text)
	if !ok {
		return 0, fmt.Errorf("no text shaper available")
	}
	return float64(size.X), nil
}

// drawLabel draws txt with its top-left corner at the Gio position pos.
func (p *painter) drawLabel(call op.CallOp, pos image.Point) {
	defer op.Offset(pos).Push(p.gtx.Ops).Pop()
	call.Add(p.gtx.Ops)
}

// layoutScene computes the geometry of s for the painter's size.
func (p *painter) layoutScene(s plot.Series) (sc scene, err error) {
	if err := s.Validate(); err != nil {
		return scene{}, err
	}
	rng, err := plot.CalculateRange(s)
	if err != nil {
		return scene{}, err
	}
	ticks := plot.ValueTicks(rng)
	rect, err := plot.ComputePlotRect(float64(p.size.X), float64(p.size.Y), ticks, p.measure, p.style.pxMargins(p.gtx.Metric))
	if err != nil {
		return scene{}, err
	}
	proj := plot.NewProjector(rect, rng)
	return scene{
		series: s,
		rng:    rng,
		ticks:  ticks,
		rect:   rect,
		proj:   proj,
		dates:  plot.DateTicks(s, proj),
		valid:  true,
	}, nil
}

func (p *painter) background() {
	paint.FillShape(p.gtx.Ops, p.style.Background, clip.Rect{Max: p.size}.Op())
}

// empty draws the background and the centered empty-state message.
func (p *painter) empty() {
	p.background()
	call, size, ok := p.label(p.style.EmptyMessage, p.style.EmptySize, p.style.Muted)
	if !ok {
		return
	}
	p.drawLabel(call, p.size.Sub(size).Div(2))
}

// inside reports whether the y-up coordinate y lies within the plot rect,
// allowing half a pixel for rounding.
func inside(rect plot.Rect, y float64) bool {
	return y >= rect.Y-0.5 && y <= rect.MaxY()+0.5
}

func (p *painter) grid(sc scene) {
	var path stroke.Path
	for _, v := range sc.ticks.Values {
		y := sc.proj.Y(v)
		if !inside(sc.rect, y) {
			continue
		}
		path.Segments = append(path.Segments,
			stroke.MoveTo(p.pt(sc.rect.X, y)),
			stroke.LineTo(p.pt(sc.rect.MaxX(), y)),
		)
	}
	if len(path.Segments) == 0 {
		return
	}
	paint.FillShape(p.gtx.Ops, p.style.Grid,
		stroke.Stroke{Path: path, Width: p.px(p.style.GridWidth), Cap: stroke.FlatCap}.Op(p.gtx.Ops))
}

// area fills the region between the price line and the plot baseline with
// a vertical gradient.
func (p *painter) area(sc scene, points []plot.Point) {
	var path clip.Path
	path.Begin(p.gtx.Ops)
	path.MoveTo(p.pt(points[0].X, sc.rect.Y))
	for _, pt := range points {
		path.LineTo(p.pt(pt.X, pt.Y))
	}
	path.LineTo(p.pt(points[len(points)-1].X, sc.rect.Y))
	path.Close()
	defer clip.Outline{Path: path.End()}.Op().Push(p.gtx.Ops).Pop()
	paint.LinearGradientOp{
		Stop1:  p.pt(sc.rect.X, sc.rect.MaxY()),
		Color1: withAlpha(p.style.Line, p.style.FillTop),
		Stop2:  p.pt(sc.rect.X, sc.rect.Y),
		Color2: withAlpha(p.style.Line, p.style.FillBottom),
	}.Add(p.gtx.Ops)
	paint.PaintOp{}.Add(p.gtx.Ops)
}

func (p *painter) line(points []plot.Point) {
	var path stroke.Path
	path.Segments = append(path.Segments, stroke.MoveTo(p.pt(points[0].X, points[0].Y)))
	for _, pt := range points[1:] {
		path.Segments = append(path.Segments, stroke.LineTo(p.pt(pt.X, pt.Y)))
	}
	paint.FillShape(p.gtx.Ops, p.style.Line,
		stroke.Stroke{Path: path, Width: p.px(p.style.LineWidth), Cap: stroke.RoundCap}.Op(p.gtx.Ops))
}

// valueLabels draws the tick labels right-aligned against the left edge of
// the plot. The label that coincides with the minimum is left out so it
// does not collide with the date labels.
func (p *painter) valueLabels(sc scene) {
	gap := int(p.px(p.style.TickLength))
	for i, v := range sc.ticks.Values {
		if i == 0 && math.Abs(v-sc.rng.MinValue) < 0.001 {
			continue
		}
		y := sc.proj.Y(v)
		if !inside(sc.rect, y) {
			continue
		}
		call, size, ok := p.label(plot.FormatValue(v, sc.ticks.Interval), p.style.LabelSize, p.style.Text)
		if !ok {
			return
		}
		pos := p.pt(sc.rect.X, y).Round()
		pos.X -= size.X + gap
		pos.Y -= size.Y / 2
		p.drawLabel(call, pos)
	}
}

// dateLabels draws a short tick below the x-axis for each date and centers
// its label underneath, keeping labels inside the plot's horizontal extent.
func (p *painter) dateLabels(sc scene) {
	tick := float64(p.px(p.style.TickLength))
	var path stroke.Path
	for _, d := range sc.dates {
		path.Segments = append(path.Segments,
			stroke.MoveTo(p.pt(d.X, sc.rect.Y)),
			stroke.LineTo(p.pt(d.X, sc.rect.Y-tick)),
		)
	}
	if len(path.Segments) > 0 {
		paint.FillShape(p.gtx.Ops, p.style.Axis,
			stroke.Stroke{Path: path, Width: p.px(p.style.AxisWidth), Cap: stroke.FlatCap}.Op(p.gtx.Ops))
	}
	for _, d := range sc.dates {
		call, size, ok := p.label(d.Label, p.style.LabelSize, p.style.Text)
		if !ok {
			return
		}
		x := d.X - float64(size.X)/2
		x = math.Max(sc.rect.X, math.Min(x, sc.rect.MaxX()-float64(size.X)))
		pos := p.pt(x, sc.rect.Y-tick).Round()
		p.drawLabel(call, pos)
	}
}

func (p *painter) axes(sc scene) {
	var path stroke.Path
	path.Segments = []stroke.Segment{
		stroke.MoveTo(p.pt(sc.rect.X, sc.rect.MaxY())),
		stroke.LineTo(p.pt(sc.rect.X, sc.rect.Y)),
		stroke.LineTo(p.pt(sc.rect.MaxX(), sc.rect.Y)),
	}
	paint.FillShape(p.gtx.Ops, p.style.Axis,
		stroke.Stroke{Path: path, Width: p.px(p.style.AxisWidth), Cap: stroke.FlatCap}.Op(p.gtx.Ops))
}

// crosshair draws dashed guides through the hovered point, a marker on the
// curve and the tooltip.
func (p *painter) crosshair(sc scene, h plot.Hover) {
	if h.Index < 0 || h.Index >= len(sc.series) {
		return
	}
	pp := sc.series[h.Index]
	at := sc.proj.Point(pp)

	var path stroke.Path
	path.Segments = []stroke.Segment{
		stroke.MoveTo(p.pt(at.X, sc.rect.Y)),
		stroke.LineTo(p.pt(at.X, sc.rect.MaxY())),
		stroke.MoveTo(p.pt(sc.rect.X, at.Y)),
		stroke.LineTo(p.pt(sc.rect.MaxX(), at.Y)),
	}
	paint.FillShape(p.gtx.Ops, p.style.Crosshair, stroke.Stroke{
		Path:   path,
		Width:  p.px(p.style.AxisWidth),
		Cap:    stroke.FlatCap,
		Dashes: stroke.Dashes{Dashes: []float32{p.px(p.style.Dash), p.px(p.style.Space)}},
	}.Op(p.gtx.Ops))

	center := p.pt(at.X, at.Y).Round()
	r := int(p.px(p.style.MarkerSize) + .5)
	border := int(p.px(p.style.LineWidth)/2 + .5)
	outer := image.Rectangle{Min: center.Sub(image.Pt(r+border, r+border)), Max: center.Add(image.Pt(r+border, r+border))}
	inner := image.Rectangle{Min: center.Sub(image.Pt(r-border, r-border)), Max: center.Add(image.Pt(r-border, r-border))}
	paint.FillShape(p.gtx.Ops, p.style.Line, clip.Ellipse(outer).Op(p.gtx.Ops))
	paint.FillShape(p.gtx.Ops, white, clip.Ellipse(inner).Op(p.gtx.Ops))

	p.tooltip(sc, h.Index, at)
}

// TooltipLines returns the text shown for the point at index i of s.
func TooltipLines(s plot.Series, i int) (date, value, change string, up bool) {
	pp := s[i]
	date = pp.Time.Format("Jan 2, 2006 15:04")
	value = humanize.FormatFloat("#,###.##", pp.Value)
	if pct, ok := s.Change(i); ok {
		change = fmt.Sprintf("%+.2f%%", pct)
		up = pct >= 0
	}
	return date, value, change, up
}

func (p *painter) tooltip(sc scene, i int, at plot.Point) {
	date, value, change, up := TooltipLines(sc.series, i)
	type line struct {
		call op.CallOp
		size image.Point
	}
	var lines []line
	add := func(txt string, c color.NRGBA) bool {
		if txt == "" {
			return true
		}
		call, size, ok := p.label(txt, p.style.TooltipSize, c)
		if ok {
			lines = append(lines, line{call, size})
		}
		return ok
	}
	changeColor := p.style.Down
	if up {
		changeColor = p.style.Up
	}
	if !add(date, p.style.Muted) || !add(value, p.style.Text) || !add(change, changeColor) {
		return
	}

	pad := int(p.px(p.style.TooltipPad))
	var box image.Point
	for _, l := range lines {
		box.X = max(box.X, l.size.X)
		box.Y += l.size.Y
	}
	box = box.Add(image.Pt(2*pad, 2*pad))

	// Position in y-up space first, flipping to the left of the point when
	// the tooltip would overflow the plot.
	gap := float64(p.px(p.style.TooltipGap))
	w, h := float64(box.X), float64(box.Y)
	x := at.X + gap
	if x+w > sc.rect.MaxX() {
		x = at.X - gap - w
	}
	x = math.Max(x, sc.rect.X)
	y := at.Y - h/2
	y = math.Max(sc.rect.Y, math.Min(y, sc.rect.MaxY()-h))

	origin := p.pt(x, y+h).Round()
	bounds := image.Rectangle{Min: origin, Max: origin.Add(box)}
	paint.FillShape(p.gtx.Ops, p.style.Tooltip, clip.Rect(bounds).Op())
	lo, hi := layout.FPt(bounds.Min), layout.FPt(bounds.Max)
	var border stroke.Path
	border.Segments = []stroke.Segment{
		stroke.MoveTo(lo),
		stroke.LineTo(f32.Pt(hi.X, lo.Y)),
		stroke.LineTo(hi),
		stroke.LineTo(f32.Pt(lo.X, hi.Y)),
		stroke.LineTo(lo),
	}
	paint.FillShape(p.gtx.Ops, p.style.Border,
		stroke.Stroke{Path: border, Width: p.px(p.style.AxisWidth), Cap: stroke.SquareCap}.Op(p.gtx.Ops))

	pos := origin.Add(image.Pt(pad, pad))
	for _, l := range lines {
		p.drawLabel(l.call, pos)
		pos.Y += l.size.Y
	}
}

// draw paints a complete frame of sc with an optional hover overlay.
func (p *painter) draw(sc scene, hover *plot.Hover) {
	if !sc.valid {
		p.empty()
		return
	}
	p.background()
	points := sc.proj.Points(sc.series)
	p.grid(sc)
	p.area(sc, points)
	p.line(points)
	p.valueLabels(sc)
	p.dateLabels(sc)
	p.axes(sc)
	if hover != nil {
		p.crosshair(sc, *hover)
	}
}

// prepare computes the scene for s, logging and falling back to the empty
// state when no plot can be drawn.
func prepare(p *painter, s plot.Series) (sc scene) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("chart: layout failed: %v", r)
			sc = scene{}
		}
	}()
	if len(s) == 0 {
		return scene{}
	}
	sc, err := p.layoutScene(s)
	if err != nil {
		log.Printf("chart: not plotting %d points: %v", len(s), err)
		return scene{}
	}
	return sc
}

// paintScene records the frame into scratch and only replays it into
// gtx.Ops once drawing completed, so a failure never leaves a partially
// drawn chart behind.
func paintScene(gtx C, scratch *op.Ops, th *material.Theme, style Style, sc scene, hover *plot.Hover) (ok bool) {
	scratch.Reset()
	inner := gtx
	inner.Ops = scratch
	defer func() {
		if r := recover(); r != nil {
			log.Printf("chart: drawing failed: %v", r)
			newPainter(gtx, th, style).empty()
			ok = false
		}
	}()
	macro := op.Record(scratch)
	newPainter(inner, th, style).draw(sc, hover)
	macro.Stop().Add(gtx.Ops)
	return true
}

// Render draws s into gtx.Constraints.Max without any hover overlay.
func Render(gtx C, th *material.Theme, s plot.Series, style Style) D {
	p := newPainter(gtx, th, style)
	sc := prepare(p, s)
	paintScene(gtx, new(op.Ops), th, style, sc, nil)
	return D{Size: gtx.Constraints.Max}
}
