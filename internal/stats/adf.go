package stats

import "math"

// ADFResult holds the outcome of an augmented Dickey-Fuller test on one
// window. The null hypothesis is a unit root (non-stationary series); small
// p-values reject it in favor of mean reversion.
type ADFResult struct {
	Tau    float64 // t-statistic of the lagged-level coefficient
	PValue float64 // approximate one-sided MacKinnon p-value, clamped to (0.001, 0.999)
	Lags   int
	Obs    int // effective observations after differencing and lagging
}

// ADF runs an augmented Dickey-Fuller regression with intercept on xs:
//
//	dx[t] = alpha + phi*xs[t-1] + sum_i gamma_i*dx[t-i] + e[t]
//
// and returns the t-statistic of phi with its approximate p-value. ok is
// false when the window is too short for the requested lag order or the
// regression is degenerate (e.g. a constant window).
func ADF(xs []float64, lags int) (ADFResult, bool) {
	if lags < 0 {
		lags = 0
	}
	n := len(xs)
	// need at least a handful of effective observations beyond the parameters
	k := 2 + lags // intercept, lagged level, lagged diffs
	eff := n - 1 - lags
	if eff < k+3 {
		return ADFResult{}, false
	}

	dx := make([]float64, n-1)
	for i := 1; i < n; i++ {
		dx[i-1] = xs[i] - xs[i-1]
	}

	// Build the design matrix row by row: t runs over the effective sample.
	y := make([]float64, eff)
	design := make([][]float64, eff)
	for i := 0; i < eff; i++ {
		t := i + lags // index into dx
		row := make([]float64, k)
		row[0] = 1
		row[1] = xs[t] // level lagged one step behind dx[t]
		for j := 1; j <= lags; j++ {
			row[1+j] = dx[t-j]
		}
		design[i] = row
		y[i] = dx[t]
	}

	coef, se, ok := olsMulti(y, design)
	if !ok || se[1] == 0 {
		return ADFResult{}, false
	}
	tau := coef[1] / se[1]
	return ADFResult{
		Tau:    tau,
		PValue: MacKinnonP(tau),
		Lags:   lags,
		Obs:    eff,
	}, true
}

// dfQuantiles maps asymptotic quantiles of the Dickey-Fuller tau distribution
// (regression with constant, no trend) to cumulative probabilities. The three
// conventional critical values (-3.43/-2.86/-2.57 at 1/5/10%) anchor the
// table; the remaining knots are interpolation support.
var dfQuantiles = []struct{ tau, p float64 }{
	{-4.32, 0.001},
	{-3.43, 0.010},
	{-3.12, 0.025},
	{-2.86, 0.050},
	{-2.57, 0.100},
	{-2.22, 0.200},
	{-1.57, 0.500},
	{-1.00, 0.750},
	{-0.44, 0.900},
	{-0.07, 0.950},
	{0.23, 0.975},
	{0.60, 0.990},
}

// MacKinnonP converts a Dickey-Fuller tau statistic into an approximate
// one-sided p-value by piecewise-linear interpolation over the asymptotic
// quantile table, clamped to (0.001, 0.999). The approximation is coarse in
// the far tails, which is immaterial for thresholding at conventional
// significance levels.
func MacKinnonP(tau float64) float64 {
	if math.IsNaN(tau) {
		return 0.999
	}
	q := dfQuantiles
	if tau <= q[0].tau {
		return q[0].p
	}
	if tau >= q[len(q)-1].tau {
		return 0.999
	}
	for i := 1; i < len(q); i++ {
		if tau <= q[i].tau {
			lo, hi := q[i-1], q[i]
			frac := (tau - lo.tau) / (hi.tau - lo.tau)
			return lo.p + frac*(hi.p-lo.p)
		}
	}
	return 0.999
}

// olsMulti fits y = X*coef by ordinary least squares via the normal
// equations and returns the coefficient standard errors alongside. Suited to
// the tiny designs used here (k <= 4); ok is false when X'X is singular or
// there are no residual degrees of freedom.
func olsMulti(y []float64, x [][]float64) (coef, se []float64, ok bool) {
	n := len(x)
	if n == 0 || len(y) != n {
		return nil, nil, false
	}
	k := len(x[0])
	if n <= k {
		return nil, nil, false
	}

	// X'X and X'y
	xtx := make([][]float64, k)
	for i := range xtx {
		xtx[i] = make([]float64, k)
	}
	xty := make([]float64, k)
	for r := 0; r < n; r++ {
		row := x[r]
		for i := 0; i < k; i++ {
			xty[i] += row[i] * y[r]
			for j := i; j < k; j++ {
				xtx[i][j] += row[i] * row[j]
			}
		}
	}
	for i := 0; i < k; i++ {
		for j := 0; j < i; j++ {
			xtx[i][j] = xtx[j][i]
		}
	}

	inv, invOK := invertSymmetric(xtx)
	if !invOK {
		return nil, nil, false
	}

	coef = make([]float64, k)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			coef[i] += inv[i][j] * xty[j]
		}
	}

	// residual variance with dof correction
	var rss float64
	for r := 0; r < n; r++ {
		pred := 0.0
		for i := 0; i < k; i++ {
			pred += x[r][i] * coef[i]
		}
		d := y[r] - pred
		rss += d * d
	}
	sigma2 := rss / float64(n-k)

	se = make([]float64, k)
	for i := 0; i < k; i++ {
		v := sigma2 * inv[i][i]
		if v < 0 {
			v = 0
		}
		se[i] = math.Sqrt(v)
	}
	return coef, se, true
}

// invertSymmetric inverts a small symmetric positive-definite matrix by
// Gauss-Jordan elimination with partial pivoting.
func invertSymmetric(m [][]float64) ([][]float64, bool) {
	k := len(m)
	a := make([][]float64, k)
	inv := make([][]float64, k)
	for i := 0; i < k; i++ {
		a[i] = append([]float64(nil), m[i]...)
		inv[i] = make([]float64, k)
		inv[i][i] = 1
	}
	for col := 0; col < k; col++ {
		pivot := col
		for r := col + 1; r < k; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-14 {
			return nil, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		inv[col], inv[pivot] = inv[pivot], inv[col]

		p := a[col][col]
		for j := 0; j < k; j++ {
			a[col][j] /= p
			inv[col][j] /= p
		}
		for r := 0; r < k; r++ {
			if r == col {
				continue
			}
			f := a[r][col]
			if f == 0 {
				continue
			}
			for j := 0; j < k; j++ {
				a[r][j] -= f * a[col][j]
				inv[r][j] -= f * inv[col][j]
			}
		}
	}
	return inv, true
}
