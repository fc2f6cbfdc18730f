// Package metrics reduces a finished run into its summary risk numbers.
// Pure functions of the equity curve, return series and trade history;
// calling them twice on the same inputs yields identical summaries.
package metrics

import (
	"math"

	"github.com/quantfold/pairtrade/internal/domain"
	"github.com/quantfold/pairtrade/internal/stats"
)

// Summarize computes the performance snapshot of one run.
//
// Sharpe is annualized from per-period simple net returns as
// mean/std * sqrt(periodsPerYear) with population std, and is absent when
// the return standard deviation is zero. Hit rate is the fraction of closed
// trades with positive net P&L, absent when no trade closed. Max drawdown is
// the largest peak-to-trough fractional decline, reported as a value <= 0.
func Summarize(equity []domain.EquityPoint, netReturns []float64, trades []domain.Trade, periodsPerYear float64) domain.PerformanceSummary {
	s := domain.PerformanceSummary{
		Bars:        len(equity),
		MaxDrawdown: MaxDrawdown(equity),
		Sharpe:      Sharpe(netReturns, periodsPerYear),
	}
	if len(equity) > 0 {
		s.TotalReturn = equity[len(equity)-1].Equity - 1.0
	}

	for _, t := range trades {
		s.ClosedTrades++
		if t.NetPnL > 0 {
			s.WinningTrades++
		} else {
			s.LosingTrades++
		}
	}
	if s.ClosedTrades > 0 {
		s.HitRate = domain.Float(float64(s.WinningTrades) / float64(s.ClosedTrades))
	}
	return s
}

// Sharpe annualizes mean/std of the per-period returns. Absent for empty or
// zero-variance input.
func Sharpe(returns []float64, periodsPerYear float64) domain.OptFloat {
	if len(returns) == 0 || periodsPerYear <= 0 {
		return domain.Absent()
	}
	sd := stats.StdDev(returns)
	if sd == 0 {
		return domain.Absent()
	}
	return domain.Float(stats.Mean(returns) / sd * math.Sqrt(periodsPerYear))
}

// MaxDrawdown returns the worst peak-to-trough fractional decline of the
// equity curve (0 for a non-decreasing curve).
func MaxDrawdown(equity []domain.EquityPoint) float64 {
	worst := 0.0
	peak := math.Inf(-1)
	for _, p := range equity {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := p.Equity/peak - 1.0
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}
