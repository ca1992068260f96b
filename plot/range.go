package plot

import "time"

// DataRange holds the bounds of a Series in both dimensions. TimeSpan and
// ValueSpan are always positive.
type DataRange struct {
	MinTime, MaxTime   time.Time
	MinValue, MaxValue float64
	TimeSpan           time.Duration
	ValueSpan          float64
}

// CalculateRange derives the DataRange of s. It returns ErrEmptySeries for
// an empty series and ErrDegenerateRange when either span would be zero.
func CalculateRange(s Series) (DataRange, error) {
	if len(s) == 0 {
		return DataRange{}, ErrEmptySeries
	}
	r := DataRange{
		MinTime:  s[0].Time,
		MaxTime:  s[0].Time,
		MinValue: s[0].Value,
		MaxValue: s[0].Value,
	}
	for _, p := range s[1:] {
		if p.Time.Before(r.MinTime) {
			r.MinTime = p.Time
		}
		if p.Time.After(r.MaxTime) {
			r.MaxTime = p.Time
		}
		r.MinValue = min(r.MinValue, p.Value)
		r.MaxValue = max(r.MaxValue, p.Value)
	}
	r.TimeSpan = r.MaxTime.Sub(r.MinTime)
	r.ValueSpan = r.MaxValue - r.MinValue
	if r.TimeSpan <= 0 || !(r.ValueSpan > 0) {
		return DataRange{}, ErrDegenerateRange
	}
	return r, nil
}
