package chart

import (
	"image"
	"math"
	"testing"
	"time"

	"gioui.org/f32"
	"gioui.org/font/gofont"
	"gioui.org/io/input"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/widget/material"

	"git.sr.ht/~whereswaldon/stockchart/plot"
)

func testTheme() *material.Theme {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()), text.NoSystemFonts())
	return th
}

func testSeries(n int) plot.Series {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(plot.Series, n)
	for i := range s {
		s[i] = plot.PricePoint{Time: start.AddDate(0, 0, i), Value: 100 + 10*math.Sin(float64(i)/5)}
	}
	return s
}

func TestTooltipLines(t *testing.T) {
	s := plot.Series{
		{Time: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), Value: 1000},
		{Time: time.Date(2025, 3, 5, 15, 30, 0, 0, time.UTC), Value: 1234.567},
		{Time: time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC), Value: 950},
	}
	type testcase struct {
		index                int
		date, value, change string
		up                   bool
	}
	for _, tc := range []testcase{
		{index: 0, date: "Mar 4, 2025 00:00", value: "1,000.00", change: "+0.00%", up: true},
		{index: 1, date: "Mar 5, 2025 15:30", value: "1,234.57", change: "+23.46%", up: true},
		{index: 2, date: "Mar 6, 2025 00:00", value: "950.00", change: "-5.00%", up: false},
	} {
		date, value, change, up := TooltipLines(s, tc.index)
		if date != tc.date || value != tc.value || change != tc.change || up != tc.up {
			t.Errorf("[%d] expected %q %q %q %v, got %q %q %q %v",
				tc.index, tc.date, tc.value, tc.change, tc.up, date, value, change, up)
		}
	}
}

func TestTooltipLinesZeroBase(t *testing.T) {
	s := plot.Series{
		{Time: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), Value: 0},
		{Time: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), Value: 3},
	}
	if _, _, change, _ := TooltipLines(s, 1); change != "" {
		t.Errorf("expected no change line for a zero first value, got %q", change)
	}
}

func TestLoadRejectsInvalidSeries(t *testing.T) {
	c := NewChart()
	c.Load(testSeries(10))
	if len(c.Series()) != 10 {
		t.Fatalf("expected 10 points, got %d", len(c.Series()))
	}
	bad := testSeries(3)
	bad[1].Value = math.NaN()
	c.Load(bad)
	if len(c.Series()) != 0 {
		t.Errorf("expected invalid series to be dropped, got %d points", len(c.Series()))
	}
}

type harness struct {
	router input.Router
	ops    op.Ops
	th     *material.Theme
	size   image.Point
}

func (h *harness) frame(c *Chart) {
	h.ops.Reset()
	gtx := layout.Context{
		Ops:         &h.ops,
		Constraints: layout.Exact(h.size),
		Source:      h.router.Source(),
		Now:         time.Now(),
	}
	gtx.Metric.PxPerDp = 1
	gtx.Metric.PxPerSp = 1
	c.Layout(gtx, h.th)
	h.router.Frame(&h.ops)
}

func (h *harness) move(x, y float32) {
	h.router.Queue(pointer.Event{
		Kind:     pointer.Move,
		Source:   pointer.Mouse,
		Position: f32.Pt(x, y),
	})
}

func TestChartHover(t *testing.T) {
	h := &harness{th: testTheme(), size: image.Pt(800, 600)}
	c := NewChart()
	c.Load(testSeries(50))
	h.frame(c)
	if _, ok := c.Hovered(); ok {
		t.Fatalf("expected no hover before any pointer event")
	}

	h.move(775, 300)
	h.frame(c)
	p, ok := c.Hovered()
	if !ok {
		t.Fatalf("expected the right edge of the plot to be hovered")
	}
	if last := c.Series()[49]; !p.Time.Equal(last.Time) {
		t.Errorf("expected the last point to be hovered, got %v", p.Time)
	}

	// Over the value labels, outside the plot.
	h.move(2, 300)
	h.frame(c)
	if _, ok := c.Hovered(); ok {
		t.Errorf("expected no hover left of the plot")
	}

	h.move(775, 300)
	h.frame(c)
	c.Load(nil)
	h.frame(c)
	if _, ok := c.Hovered(); ok {
		t.Errorf("expected hover to end once the chart is empty")
	}
}

func TestChartTooSmall(t *testing.T) {
	h := &harness{th: testTheme(), size: image.Pt(30, 30)}
	c := NewChart()
	c.Load(testSeries(50))
	h.frame(c)
	h.move(15, 15)
	h.frame(c)
	if _, ok := c.Hovered(); ok {
		t.Errorf("expected no hover when the plot does not fit")
	}
}

func TestRenderWithoutShaper(t *testing.T) {
	var ops op.Ops
	gtx := layout.Context{Ops: &ops, Constraints: layout.Exact(image.Pt(400, 300))}
	gtx.Metric.PxPerDp = 1
	dims := Render(gtx, &material.Theme{}, testSeries(20), DefaultStyle())
	if dims.Size != image.Pt(400, 300) {
		t.Errorf("expected the chart to fill its constraints, got %v", dims.Size)
	}
}

func TestExport(t *testing.T) {
	size := image.Pt(320, 200)
	img, err := Export(testTheme(), testSeries(30), DefaultStyle(), size, unitMetric())
	if err != nil {
		t.Skipf("offscreen rendering unavailable: %v", err)
	}
	if img.Bounds().Size() != size {
		t.Fatalf("expected a %v image, got %v", size, img.Bounds().Size())
	}
	// The top-left corner lies in the margin and shows the background.
	if r, g, b, _ := img.At(1, 1).RGBA(); r != 0 || g != 0 || b != 0 {
		t.Errorf("expected a black background, got %v", img.At(1, 1))
	}
}

func TestExportNoSize(t *testing.T) {
	c := NewChart()
	if _, err := c.ExportImage(testTheme(), image.Point{}); err == nil {
		t.Errorf("expected an error exporting a chart that was never laid out")
	}
}
