// Package stats provides the window arithmetic shared by the estimator, the
// signal generator and the regime filter: rolling moments, single-predictor
// OLS, and the augmented Dickey-Fuller test. Everything operates on plain
// float64 slices describing one trailing window; callers own the slicing.
package stats

import "math"

// Mean returns the arithmetic mean of xs. Zero for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}

// Variance returns the population variance (ddof=0) of xs.
func Variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	ss := 0.0
	for _, v := range xs {
		d := v - m
		ss += d * d
	}
	return ss / float64(len(xs))
}

// StdDev returns the population standard deviation of xs.
func StdDev(xs []float64) float64 {
	return math.Sqrt(Variance(xs))
}

// OLS fits y = intercept + slope*x over the paired samples and reports
// whether the fit is defined (x must have non-zero variance and the slices
// must be non-empty and of equal length).
func OLS(y, x []float64) (slope, intercept float64, ok bool) {
	n := len(x)
	if n == 0 || n != len(y) {
		return 0, 0, false
	}
	mx := Mean(x)
	my := Mean(y)
	var cov, varx float64
	for i := 0; i < n; i++ {
		dx := x[i] - mx
		cov += dx * (y[i] - my)
		varx += dx * dx
	}
	if varx == 0 {
		return 0, 0, false
	}
	slope = cov / varx
	intercept = my - slope*mx
	return slope, intercept, true
}
