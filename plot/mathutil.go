package plot

import (
	"math"

	"golang.org/x/exp/constraints"
)

type number interface {
	constraints.Integer | constraints.Float
}

func clamp[T number](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func floor[T constraints.Float](a T) T {
	return T(math.Floor(float64(a)))
}

func ceil[T constraints.Float](a T) T {
	return T(math.Ceil(float64(a)))
}
