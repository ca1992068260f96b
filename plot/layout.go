package plot

import (
	"errors"
	"fmt"
)

// ErrPlotTooSmall is returned when the widget leaves no room for the plot
// after the margins are taken out.
var ErrPlotTooSmall = errors.New("plot area too small")

// Margins are the fixed spacing constants around the plot rectangle, in
// pixels.
type Margins struct {
	Base         float64 `yaml:"base"`
	Top          float64 `yaml:"top"`
	Bottom       float64 `yaml:"bottom"`
	LabelPadding float64 `yaml:"label_padding"`
	// FallbackLeft replaces the measured left margin when labels cannot be
	// measured.
	FallbackLeft float64 `yaml:"fallback_left"`
}

// DefaultMargins matches the desktop widget's look.
var DefaultMargins = Margins{
	Base:         20,
	Top:          20,
	Bottom:       40,
	LabelPadding: 10,
	FallbackLeft: 60,
}

// MeasureFunc reports the rendered width of label in pixels.
type MeasureFunc func(label string) (width float64, err error)

// LeftMargin returns the room needed left of the plot so that no value
// label is clipped.
func LeftMargin(ticks TickSet, measure MeasureFunc, m Margins) float64 {
	if measure == nil {
		return max(m.Base, m.FallbackLeft)
	}
	var widest float64
	for _, v := range ticks.Values {
		w, err := measure(FormatValue(v, ticks.Interval))
		if err != nil {
			return max(m.Base, m.FallbackLeft)
		}
		widest = max(widest, w)
	}
	return max(m.Base, widest+m.LabelPadding)
}

// ComputePlotRect insets a widget of the given size by the margins, with the
// left margin sized to fit the value labels of ticks.
func ComputePlotRect(width, height float64, ticks TickSet, measure MeasureFunc, m Margins) (Rect, error) {
	left := LeftMargin(ticks, measure, m)
	r := Rect{
		X:      left,
		Y:      m.Bottom,
		Width:  width - left - m.Base,
		Height: height - m.Bottom - m.Top,
	}
	if r.Empty() {
		return Rect{}, fmt.Errorf("%w: %.0fx%.0f leaves %.0fx%.0f", ErrPlotTooSmall, width, height, r.Width, r.Height)
	}
	return r, nil
}
