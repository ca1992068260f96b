package plot

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestSeriesValidate(t *testing.T) {
	good := dailySeries(date(2025, 1, 1), 5, func(i int) float64 { return float64(i) })
	if err := good.Validate(); err != nil {
		t.Errorf("expected chronological series to be valid, got %v", err)
	}
	if err := (Series{}).Validate(); err != nil {
		t.Errorf("expected empty series to be valid, got %v", err)
	}
	repeated := Series{
		{Time: date(2025, 1, 1), Value: 1},
		{Time: date(2025, 1, 1), Value: 2},
	}
	if err := repeated.Validate(); err != nil {
		t.Errorf("repeated timestamps are allowed, got %v", err)
	}

	for name, s := range map[string]Series{
		"backwards": {
			{Time: date(2025, 1, 2), Value: 1},
			{Time: date(2025, 1, 1), Value: 2},
		},
		"nan":     {{Time: date(2025, 1, 1), Value: math.NaN()}},
		"inf":     {{Time: date(2025, 1, 1), Value: math.Inf(1)}},
		"no time": {{Time: time.Time{}, Value: 1}},
	} {
		if err := s.Validate(); !errors.Is(err, ErrInvalidSeries) {
			t.Errorf("%s: expected ErrInvalidSeries, got %v", name, err)
		}
	}
}

func TestSeriesChange(t *testing.T) {
	s := Series{
		{Time: date(2025, 1, 1), Value: 20},
		{Time: date(2025, 1, 2), Value: 25},
		{Time: date(2025, 1, 3), Value: 15},
	}
	for i, expect := range []float64{0, 25, -25} {
		got, ok := s.Change(i)
		if !ok {
			t.Errorf("[%d] expected change to be defined", i)
		}
		if !approx(got, expect) {
			t.Errorf("[%d] expected %v%%, got %v%%", i, expect, got)
		}
	}
	if _, ok := s.Change(3); ok {
		t.Errorf("expected out of range index to be rejected")
	}
	zero := Series{{Time: date(2025, 1, 1), Value: 0}, {Time: date(2025, 1, 2), Value: 1}}
	if _, ok := zero.Change(1); ok {
		t.Errorf("expected change from zero to be undefined")
	}
	if v, ok := s.First(); !ok || v != 20 {
		t.Errorf("expected first value 20, got %v %v", v, ok)
	}
}
