package plot

import (
	"math"
	"strconv"
)

const (
	minTicks = 4
	maxTicks = 6
)

// TickSet is the set of labeled reference values on the value axis.
type TickSet struct {
	// Values are strictly increasing and never empty for a valid range.
	Values   []float64
	Interval float64
	NiceMin  float64
	NiceMax  float64
	// Count is the number of grid steps between NiceMin and NiceMax
	// inclusive, before values far below the data are dropped.
	Count int
}

// niceInterval rounds span/(targetTicks-1) up to the closest 1, 2 or 5
// times a power of ten.
func niceInterval(span float64, targetTicks int) float64 {
	rough := span / float64(targetTicks-1)
	magnitude := math.Pow(10, floor(math.Log10(rough)))
	normalized := rough / magnitude
	var nice float64
	switch {
	case normalized <= 1:
		nice = 1
	case normalized <= 2:
		nice = 2
	case normalized <= 5:
		nice = 5
	default:
		nice = 10
	}
	return nice * magnitude
}

// ValueTicks plans the value axis for rng. Target tick counts 4 through 6
// are tried in order and the first whose rounded grid has between 4 and 6
// ticks wins; otherwise the grid for 4 targets is used.
func ValueTicks(rng DataRange) TickSet {
	var best TickSet
	for target := minTicks; target <= maxTicks; target++ {
		interval := niceInterval(rng.ValueSpan, target)
		candidate := TickSet{
			Interval: interval,
			NiceMin:  floor(rng.MinValue/interval) * interval,
			NiceMax:  ceil(rng.MaxValue/interval) * interval,
		}
		candidate.Count = int(math.Round((candidate.NiceMax-candidate.NiceMin)/interval)) + 1
		if candidate.Count >= minTicks && candidate.Count <= maxTicks {
			best = candidate
			break
		}
		if target == minTicks {
			best = candidate
		}
	}

	tolerance := rng.MinValue - best.Interval*0.1
	for i := 0; i < best.Count; i++ {
		v := best.NiceMin + float64(i)*best.Interval
		if v < tolerance {
			continue
		}
		if math.Abs(v) < best.Interval*1e-9 {
			// Avoid "-0" labels from accumulated rounding.
			v = 0
		}
		best.Values = append(best.Values, v)
	}
	return best
}

// FormatValue renders an axis value with as many decimals as the tick
// interval needs.
func FormatValue(v, interval float64) string {
	switch {
	case interval >= 1:
		return strconv.FormatFloat(v, 'f', 0, 64)
	case interval >= 0.1:
		return strconv.FormatFloat(v, 'f', 1, 64)
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}
