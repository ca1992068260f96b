package backend

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Period is the time span of history requested for a symbol.
type Period uint8

const (
	P1D Period = iota + 1
	P1W
	P1Mo
	P3Mo
	P6Mo
	PYTD
	P1Y
	P2Y
	P3Y
	P5Y
	PMax
)

// Periods lists every selectable period in display order.
var Periods = []Period{P1D, P1W, P1Mo, P3Mo, P6Mo, PYTD, P1Y, P2Y, P3Y, P5Y, PMax}

// FetchParams describe how a period is requested from the quote API. When
// LookbackYears is set, the request uses an explicit time window instead of
// a named range.
type FetchParams struct {
	Range         string
	Interval      string
	LookbackYears int
}

type periodInfo struct {
	label  string
	params FetchParams
	// since returns the start of the period ending at end.
	since func(end time.Time) time.Time
}

func monthsBack(n int) func(time.Time) time.Time {
	return func(end time.Time) time.Time { return end.AddDate(0, -n, 0) }
}

func yearsBack(n int) func(time.Time) time.Time {
	return func(end time.Time) time.Time { return end.AddDate(-n, 0, 0) }
}

var periods = map[Period]periodInfo{
	P1D: {
		label:  "1d",
		params: FetchParams{Range: "1d", Interval: "5m"},
		since:  func(end time.Time) time.Time { return end.Add(-24 * time.Hour) },
	},
	P1W: {
		label:  "1w",
		params: FetchParams{Range: "5d", Interval: "30m"},
		since:  func(end time.Time) time.Time { return end.AddDate(0, 0, -7) },
	},
	P1Mo: {label: "1mo", params: FetchParams{Range: "1mo", Interval: "1d"}, since: monthsBack(1)},
	P3Mo: {label: "3mo", params: FetchParams{Range: "3mo", Interval: "1d"}, since: monthsBack(3)},
	P6Mo: {label: "6mo", params: FetchParams{Range: "6mo", Interval: "1d"}, since: monthsBack(6)},
	PYTD: {
		label:  "ytd",
		params: FetchParams{Range: "ytd", Interval: "1d"},
		since: func(end time.Time) time.Time {
			return time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, end.Location())
		},
	},
	P1Y: {label: "1y", params: FetchParams{Range: "1y", Interval: "1d"}, since: yearsBack(1)},
	P2Y: {label: "2y", params: FetchParams{Range: "2y", Interval: "1d"}, since: yearsBack(2)},
	// The API has no 3y range.
	P3Y: {label: "3y", params: FetchParams{Interval: "1d", LookbackYears: 3}, since: yearsBack(3)},
	P5Y: {label: "5y", params: FetchParams{Range: "5y", Interval: "1d"}, since: yearsBack(5)},
	PMax: {
		label:  "max",
		params: FetchParams{Range: "max", Interval: "1d"},
		since:  func(time.Time) time.Time { return time.Time{} },
	},
}

func (p Period) Valid() bool {
	_, ok := periods[p]
	return ok
}

func (p Period) String() string {
	if info, ok := periods[p]; ok {
		return info.label
	}
	return "Period(" + strconv.Itoa(int(p)) + ")"
}

// Params returns the fetch parameters for p.
func (p Period) Params() FetchParams {
	return periods[p].params
}

// Since returns the first instant covered by p when the history ends at
// end. PMax returns the zero time.
func (p Period) Since(end time.Time) time.Time {
	info, ok := periods[p]
	if !ok {
		return time.Time{}
	}
	return info.since(end)
}

// Query builds the chart API query for p relative to now.
func (p Period) Query(now time.Time) url.Values {
	params := p.Params()
	q := url.Values{}
	q.Set("interval", params.Interval)
	if params.LookbackYears > 0 {
		q.Set("period1", strconv.FormatInt(now.AddDate(-params.LookbackYears, 0, 0).Unix(), 10))
		q.Set("period2", strconv.FormatInt(now.Unix(), 10))
	} else {
		q.Set("range", params.Range)
	}
	return q
}

// ParsePeriod parses a period label such as "ytd" or "3mo".
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range Periods {
		if periods[p].label == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
}

func (p Period) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPeriod, p)
	}
	return []byte(p.String()), nil
}

func (p *Period) UnmarshalText(b []byte) error {
	parsed, err := ParsePeriod(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
