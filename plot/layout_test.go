package plot

import (
	"errors"
	"testing"
)

// monospace measures labels as if every glyph were 6px wide.
func monospace(label string) (float64, error) {
	return float64(len(label)) * 6, nil
}

func TestComputePlotRect(t *testing.T) {
	ticks := ValueTicks(valueRange(10, 20))
	broken := func(string) (float64, error) { return 0, errors.New("no font") }
	wide := func(label string) (float64, error) { return float64(len(label)) * 30, nil }

	type testcase struct {
		name    string
		measure MeasureFunc
		expect  Rect
	}
	for _, tc := range []testcase{
		{
			name:    "label width plus padding",
			measure: monospace,
			expect:  Rect{X: 22, Y: 40, Width: 758, Height: 540},
		},
		{
			name:    "wide labels",
			measure: wide,
			expect:  Rect{X: 70, Y: 40, Width: 710, Height: 540},
		},
		{
			name:    "measurement failure",
			measure: broken,
			expect:  Rect{X: 60, Y: 40, Width: 720, Height: 540},
		},
		{
			name:   "no measurer",
			expect: Rect{X: 60, Y: 40, Width: 720, Height: 540},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r, err := ComputePlotRect(800, 600, ticks, tc.measure, DefaultMargins)
			if err != nil {
				t.Fatal(err)
			}
			if r != tc.expect {
				t.Errorf("expected %+v, got %+v", tc.expect, r)
			}
		})
	}
}

func TestComputePlotRectBaseMargin(t *testing.T) {
	ticks := ValueTicks(valueRange(1, 2))
	tiny := func(string) (float64, error) { return 1, nil }
	r, err := ComputePlotRect(400, 300, ticks, tiny, DefaultMargins)
	if err != nil {
		t.Fatal(err)
	}
	if r.X != DefaultMargins.Base {
		t.Errorf("expected the base margin %v to win over narrow labels, got %v", DefaultMargins.Base, r.X)
	}
}

func TestComputePlotRectTooSmall(t *testing.T) {
	ticks := ValueTicks(valueRange(10, 20))
	for _, size := range [][2]float64{{40, 600}, {800, 60}, {0, 0}} {
		_, err := ComputePlotRect(size[0], size[1], ticks, monospace, DefaultMargins)
		if !errors.Is(err, ErrPlotTooSmall) {
			t.Errorf("%v: expected ErrPlotTooSmall, got %v", size, err)
		}
	}
}
