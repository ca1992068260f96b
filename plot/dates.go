package plot

import (
	"time"
)

// DateStep is the calendar unit between two date-axis ticks.
type DateStep uint8

const (
	StepDay DateStep = iota
	StepFiveDays
	StepMonth
	StepTwoMonths
	StepYear
)

func (s DateStep) String() string {
	switch s {
	case StepDay:
		return "day"
	case StepFiveDays:
		return "5 days"
	case StepMonth:
		return "month"
	case StepTwoMonths:
		return "2 months"
	case StepYear:
		return "year"
	default:
		return "unknown"
	}
}

const day = 24 * time.Hour

// DateScale pairs a calendar step with the layout used to label it.
type DateScale struct {
	Step   DateStep
	Layout string
}

// ChooseDateScale picks the date-axis granularity for a time span.
func ChooseDateScale(span time.Duration) DateScale {
	switch days := span.Hours() / 24; {
	case days <= 10:
		return DateScale{Step: StepDay, Layout: "Mon 02"}
	case days <= 31:
		return DateScale{Step: StepFiveDays, Layout: "02/01"}
	case days <= 180:
		return DateScale{Step: StepMonth, Layout: "Jan"}
	case days <= 730:
		return DateScale{Step: StepTwoMonths, Layout: "Jan 06"}
	default:
		return DateScale{Step: StepYear, Layout: "2006"}
	}
}

// start returns the calendar boundary at or before t where ticks begin.
func (s DateScale) start(t time.Time) time.Time {
	y, m, d := t.Date()
	switch s.Step {
	case StepMonth, StepTwoMonths:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	case StepYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	}
}

func (s DateScale) next(t time.Time) time.Time {
	switch s.Step {
	case StepFiveDays:
		return t.AddDate(0, 0, 5)
	case StepMonth:
		return t.AddDate(0, 1, 0)
	case StepTwoMonths:
		return t.AddDate(0, 2, 0)
	case StepYear:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// DateTick is one labeled position on the date axis.
type DateTick struct {
	Time  time.Time
	X     float64
	Label string
}

// DateTicks lays out the date axis for s. Ticks sit on calendar boundaries
// between the range's bounds; positions outside the plot rectangle and
// labels that repeat an earlier one are dropped. When fewer than two
// calendar ticks fit, the samples at the start, thirds and end of the series
// are labeled instead.
func DateTicks(s Series, proj Projector) []DateTick {
	rng := proj.Range
	if len(s) == 0 || rng.TimeSpan <= 0 {
		return nil
	}
	scale := ChooseDateScale(rng.TimeSpan)
	seen := map[string]bool{}
	var ticks []DateTick
	for t := scale.start(rng.MinTime); !t.After(rng.MaxTime); t = scale.next(t) {
		x := proj.X(t)
		if x < proj.Rect.X || x > proj.Rect.MaxX() {
			continue
		}
		label := t.Format(scale.Layout)
		if seen[label] {
			continue
		}
		seen[label] = true
		ticks = append(ticks, DateTick{Time: t, X: x, Label: label})
	}
	if len(ticks) >= 2 {
		return ticks
	}
	return fallbackDateTicks(s, proj, scale)
}

func fallbackDateTicks(s Series, proj Projector, scale DateScale) []DateTick {
	layout := scale.Layout
	if proj.Range.TimeSpan <= day {
		layout = "15:04"
	}
	n := len(s)
	seen := map[string]bool{}
	var ticks []DateTick
	for _, i := range []int{0, n / 3, 2 * n / 3, n - 1} {
		t := s[i].Time
		label := t.Format(layout)
		if seen[label] {
			continue
		}
		seen[label] = true
		ticks = append(ticks, DateTick{Time: t, X: proj.X(t), Label: label})
	}
	return ticks
}
