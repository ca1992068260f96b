package backend

import (
	"errors"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestParsePeriod(t *testing.T) {
	for _, p := range Periods {
		parsed, err := ParsePeriod(p.String())
		if err != nil {
			t.Errorf("%v: %v", p, err)
		} else if parsed != p {
			t.Errorf("expected %v, got %v", p, parsed)
		}
	}
	if p, err := ParsePeriod(" YTD "); err != nil || p != PYTD {
		t.Errorf("expected case-insensitive parsing, got %v %v", p, err)
	}
	if _, err := ParsePeriod("4y"); !errors.Is(err, ErrUnknownPeriod) {
		t.Errorf("expected ErrUnknownPeriod, got %v", err)
	}
	if Period(0).Valid() {
		t.Errorf("expected the zero period to be invalid")
	}
}

func TestPeriodQuery(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	type testcase struct {
		period   Period
		rng      string
		interval string
	}
	for _, tc := range []testcase{
		{period: P1D, rng: "1d", interval: "5m"},
		{period: P1W, rng: "5d", interval: "30m"},
		{period: P1Mo, rng: "1mo", interval: "1d"},
		{period: PYTD, rng: "ytd", interval: "1d"},
		{period: P5Y, rng: "5y", interval: "1d"},
		{period: PMax, rng: "max", interval: "1d"},
	} {
		q := tc.period.Query(now)
		if q.Get("range") != tc.rng || q.Get("interval") != tc.interval {
			t.Errorf("%v: expected range=%s interval=%s, got %s", tc.period, tc.rng, tc.interval, q.Encode())
		}
	}

	q := P3Y.Query(now)
	if q.Has("range") {
		t.Errorf("expected 3y to use an explicit window, got %s", q.Encode())
	}
	if q.Get("period1") != "1655294400" || q.Get("period2") != "1749988800" {
		t.Errorf("unexpected 3y window: %s", q.Encode())
	}
}

func TestPeriodSince(t *testing.T) {
	end := time.Date(2025, 6, 15, 16, 0, 0, 0, time.UTC)
	for _, tc := range []struct {
		period Period
		expect time.Time
	}{
		{P1D, time.Date(2025, 6, 14, 16, 0, 0, 0, time.UTC)},
		{P1W, time.Date(2025, 6, 8, 16, 0, 0, 0, time.UTC)},
		{P3Mo, time.Date(2025, 3, 15, 16, 0, 0, 0, time.UTC)},
		{PYTD, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{P3Y, time.Date(2022, 6, 15, 16, 0, 0, 0, time.UTC)},
		{PMax, time.Time{}},
	} {
		if got := tc.period.Since(end); !got.Equal(tc.expect) {
			t.Errorf("%v: expected %v, got %v", tc.period, tc.expect, got)
		}
	}
}

func TestPeriodYAML(t *testing.T) {
	var doc struct {
		Period Period `yaml:"period"`
	}
	if err := yaml.Unmarshal([]byte("period: 6mo\n"), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Period != P6Mo {
		t.Errorf("expected 6mo, got %v", doc.Period)
	}
	if err := yaml.Unmarshal([]byte("period: fortnight\n"), &doc); err == nil {
		t.Errorf("expected an unknown period to fail")
	}
}
