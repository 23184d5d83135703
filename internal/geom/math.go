package geom

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Epsilon is the tolerance used for float32 degeneracy checks.
const Epsilon = 1e-6

// Zero reports whether v is within Epsilon of zero.
func Zero(v float32) bool {
	return v > -Epsilon && v < Epsilon
}

// Equal reports whether a and b are within Epsilon of each other.
func Equal(a, b float32) bool {
	return Zero(a - b)
}

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Finite reports whether v is neither NaN nor infinite.
func Finite[T constraints.Float](v T) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float32) float64 {
	return float64(deg) * math.Pi / 180
}
