// Package plot holds the geometry behind the price chart: data ranges,
// axis ticks, plot layout, data-to-pixel projection and pointer tracking.
// It has no GUI dependencies; the chart package draws what it computes.
//
// Pixel coordinates in this package are y-up with the origin at the
// bottom-left corner of the widget.
package plot

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInvalidSeries is returned by Series.Validate.
	ErrInvalidSeries = errors.New("invalid series")
	// ErrEmptySeries means there is nothing to plot. It is not a failure.
	ErrEmptySeries = errors.New("empty series")
	// ErrDegenerateRange means every point shares a timestamp or a value,
	// so the data cannot be spread over a two dimensional plot.
	ErrDegenerateRange = errors.New("degenerate data range")
)

// PricePoint is a single observation of an instrument's price.
type PricePoint struct {
	Time  time.Time
	Value float64
}

// Series is an ordered sequence of observations. Insertion order is
// chronological order; a Series is never re-sorted.
type Series []PricePoint

// Validate reports whether the series can be handed to the chart. Values
// must be finite, timestamps set, and timestamps must never go backwards.
func (s Series) Validate() error {
	for i, p := range s {
		if p.Time.IsZero() {
			return fmt.Errorf("%w: point %d has no timestamp", ErrInvalidSeries, i)
		}
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return fmt.Errorf("%w: point %d has non-finite value %v", ErrInvalidSeries, i, p.Value)
		}
		if i > 0 && p.Time.Before(s[i-1].Time) {
			return fmt.Errorf("%w: point %d at %s precedes point %d at %s", ErrInvalidSeries,
				i, p.Time.Format(time.RFC3339), i-1, s[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// First returns the first value of the series, used as the reference for
// performance figures.
func (s Series) First() (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	return s[0].Value, true
}

// Change returns the relative change in percent from the first point of the
// series to point i. ok is false when the first value is zero or i is out
// of range.
func (s Series) Change(i int) (percent float64, ok bool) {
	if i < 0 || i >= len(s) {
		return 0, false
	}
	first := s[0].Value
	if first == 0 {
		return 0, false
	}
	return (s[i].Value - first) / first * 100, true
}
