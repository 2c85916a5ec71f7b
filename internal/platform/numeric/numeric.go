// Package numeric holds the clamping and aggregation helpers shared by the
// estimators. Every function is NaN-safe: NaN collapses to the lower bound.
package numeric

import "math"

func Clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func ClampRange(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// ClampScore bounds a 0-100 score.
func ClampScore(x float64) float64 {
	return ClampRange(x, 0, 100)
}

// Logistic returns 1/(1+exp(-k(x-mid))).
func Logistic(x, k, mid float64) float64 {
	return Clamp01(1.0 / (1.0 + math.Exp(-k*(x-mid))))
}

func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Std is the population standard deviation.
func Std(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	acc := 0.0
	for _, x := range xs {
		d := x - m
		acc += d * d
	}
	return math.Sqrt(acc / float64(len(xs)))
}

func Max(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	out := xs[0]
	for _, x := range xs[1:] {
		if x > out {
			out = x
		}
	}
	return out
}

// SafeDiv returns num/den, or def when den is not strictly positive.
func SafeDiv(num, den, def float64) float64 {
	if den <= 0 || math.IsNaN(den) {
		return def
	}
	return num / den
}
