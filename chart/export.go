package chart

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"time"

	"gioui.org/gpu/headless"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"git.sr.ht/~whereswaldon/stockchart/plot"
)

// ErrNoSize is returned when exporting a chart that has never been laid
// out without an explicit size.
var ErrNoSize = errors.New("chart has no size")

// Export renders s offscreen at the given pixel size. The image never
// contains hover decorations.
func Export(th *material.Theme, s plot.Series, style Style, size image.Point, metric unit.Metric) (*image.RGBA, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoSize, size)
	}
	if metric.PxPerDp == 0 {
		metric = unitMetric()
	}
	win, err := headless.NewWindow(size.X, size.Y)
	if err != nil {
		return nil, fmt.Errorf("failed creating offscreen window: %w", err)
	}
	defer win.Release()

	var ops op.Ops
	gtx := layout.Context{
		Ops:         &ops,
		Constraints: layout.Exact(size),
		Metric:      metric,
		Now:         time.Now(),
	}
	Render(gtx, th, s, style)
	if err := win.Frame(&ops); err != nil {
		return nil, fmt.Errorf("failed rendering offscreen frame: %w", err)
	}
	img := image.NewRGBA(image.Rectangle{Max: size})
	if err := win.Screenshot(img); err != nil {
		return nil, fmt.Errorf("failed reading offscreen frame: %w", err)
	}
	return img, nil
}

func unitMetric() unit.Metric {
	return unit.Metric{PxPerDp: 1, PxPerSp: 1}
}

// ExportImage renders the chart's current series offscreen. A zero size
// uses the size of the most recent frame.
func (c *Chart) ExportImage(th *material.Theme, size image.Point) (*image.RGBA, error) {
	if size == (image.Point{}) {
		size = c.size
	}
	return Export(th, c.series, c.Style, size, c.metric)
}

// WritePNG encodes img to w.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed encoding png: %w", err)
	}
	return nil
}
