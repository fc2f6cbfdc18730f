package signal

import (
	"fmt"

	"github.com/quantfold/pairtrade/internal/domain"
	"github.com/quantfold/pairtrade/internal/stats"
)

// SpreadSeries combines log prices with the hedge ratio into the spread
// logY - beta*logX. Absent wherever the hedge ratio is absent.
func SpreadSeries(pair domain.PairSeries, betas []domain.OptFloat) ([]domain.OptFloat, error) {
	if len(betas) != pair.Len() {
		return nil, fmt.Errorf("%w: %d hedge ratios for %d bars",
			domain.ErrMisalignedInput, len(betas), pair.Len())
	}
	spread := make([]domain.OptFloat, pair.Len())
	for i, b := range betas {
		if !b.Valid {
			continue
		}
		spread[i] = domain.Float(pair.LogY[i] - b.Value*pair.LogX[i])
	}
	return spread, nil
}

// ZScores normalizes the spread by its rolling mean and population standard
// deviation over the given window. A z-score is defined only when every
// spread value in the trailing window is defined; a zero rolling standard
// deviation yields an absent entry, never an infinity.
func ZScores(spread []domain.OptFloat, window int) ([]domain.OptFloat, error) {
	if window < 2 {
		return nil, fmt.Errorf("z-score window must be >= 2, got %d", window)
	}
	n := len(spread)
	z := make([]domain.OptFloat, n)
	buf := make([]float64, 0, window)

	for t := window - 1; t < n; t++ {
		buf = buf[:0]
		defined := true
		for i := t - window + 1; i <= t; i++ {
			if !spread[i].Valid {
				defined = false
				break
			}
			buf = append(buf, spread[i].Value)
		}
		if !defined {
			continue
		}
		sd := stats.StdDev(buf)
		if sd == 0 {
			continue
		}
		z[t] = domain.Float((spread[t].Value - stats.Mean(buf)) / sd)
	}
	return z, nil
}
