// Package signal builds the mean-reversion signal chain: rolling hedge
// ratio, spread, and rolling z-score over an aligned log-price pair.
package signal

import (
	"fmt"

	"github.com/quantfold/pairtrade/internal/domain"
	"github.com/quantfold/pairtrade/internal/stats"
)

// HedgeRatios estimates the time-varying hedge ratio: at each step t >=
// window-1 it fits logY on logX (with intercept) over exactly the trailing
// window observations and takes the slope. The first window-1 entries are
// absent. Entries where the fit is degenerate (constant logX window) are
// also absent.
func HedgeRatios(pair domain.PairSeries, window int) ([]domain.OptFloat, error) {
	if window < 2 {
		return nil, fmt.Errorf("hedge ratio window must be >= 2, got %d", window)
	}
	n := pair.Len()
	if n < window {
		return nil, fmt.Errorf("%w: %d bars < estimator window %d",
			domain.ErrInsufficientData, n, window)
	}

	betas := make([]domain.OptFloat, n)
	for t := window - 1; t < n; t++ {
		lo := t - window + 1
		slope, _, ok := stats.OLS(pair.LogY[lo:t+1], pair.LogX[lo:t+1])
		if !ok {
			continue
		}
		betas[t] = domain.Float(slope)
	}
	return betas, nil
}
