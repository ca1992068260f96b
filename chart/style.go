package chart

import (
	"image/color"

	"gioui.org/unit"
	"git.sr.ht/~whereswaldon/stockchart/plot"
)

// Style holds the colors, sizes and margins used to draw a chart.
type Style struct {
	Background color.NRGBA
	Grid       color.NRGBA
	Axis       color.NRGBA
	Line       color.NRGBA
	Text       color.NRGBA
	Muted      color.NRGBA
	Up         color.NRGBA
	Down       color.NRGBA
	Crosshair  color.NRGBA
	Tooltip    color.NRGBA
	Border     color.NRGBA

	// FillTop and FillBottom are the alpha of the area fill at the top of
	// the plot and at its baseline.
	FillTop, FillBottom float32

	LabelSize   unit.Sp
	TooltipSize unit.Sp
	EmptySize   unit.Sp

	GridWidth   unit.Dp
	LineWidth   unit.Dp
	AxisWidth   unit.Dp
	TickLength  unit.Dp
	MarkerSize  unit.Dp
	TooltipPad  unit.Dp
	TooltipGap  unit.Dp
	Dash, Space unit.Dp

	// Margins are expressed in Dp.
	Margins plot.Margins

	EmptyMessage string
}

var (
	white     = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	green     = color.NRGBA{G: 0xff, A: 0xff}
	red       = color.NRGBA{R: 0xff, G: 0x3b, B: 0x30, A: 0xff}
	darkGray  = color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff}
	lightGray = color.NRGBA{R: 0xaa, G: 0xaa, B: 0xaa, A: 0xff}
)

// DefaultStyle returns a green-on-black style.
func DefaultStyle() Style {
	return Style{
		Background:   color.NRGBA{A: 0xff},
		Grid:         darkGray,
		Axis:         white,
		Line:         green,
		Text:         white,
		Muted:        lightGray,
		Up:           green,
		Down:         red,
		Crosshair:    withAlpha(white, 0.5),
		Tooltip:      color.NRGBA{A: 204},
		Border:       withAlpha(green, 0.6),
		FillTop:      0.35,
		FillBottom:   0.02,
		LabelSize:    10,
		TooltipSize:  11,
		EmptySize:    16,
		GridWidth:    0.5,
		LineWidth:    2,
		AxisWidth:    1,
		TickLength:   5,
		MarkerSize:   4,
		TooltipPad:   8,
		TooltipGap:   15,
		Dash:         4,
		Space:        2,
		Margins:      plot.DefaultMargins,
		EmptyMessage: "No data available",
	}
}

func withAlpha(c color.NRGBA, alpha float32) color.NRGBA {
	c.A = uint8(alpha*255 + .5)
	return c
}

// pxMargins converts the Dp margins of s to pixels.
func (s Style) pxMargins(m unit.Metric) plot.Margins {
	scale := float64(m.PxPerDp)
	if scale == 0 {
		scale = 1
	}
	return plot.Margins{
		Base:         s.Margins.Base * scale,
		Top:          s.Margins.Top * scale,
		Bottom:       s.Margins.Bottom * scale,
		LabelPadding: s.Margins.LabelPadding * scale,
		FallbackLeft: s.Margins.FallbackLeft * scale,
	}
}
