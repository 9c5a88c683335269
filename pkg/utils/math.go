package utils

import "math"

// DefaultTolerance is the absolute tolerance used when comparing rates
const DefaultTolerance = 1e-9

// ApproxEqual reports whether a and b differ by at most tolerance
func ApproxEqual(a, b, tolerance float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= tolerance
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FiniteOr returns v, or fallback when v is NaN or infinite
func FiniteOr(v, fallback float64) float64 {
	if IsFinite(v) {
		return v
	}
	return fallback
}
