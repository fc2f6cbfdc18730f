package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/pairtrade/internal/domain"
)

func equityCurve(vals ...float64) []domain.EquityPoint {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.EquityPoint, len(vals))
	for i, v := range vals {
		out[i] = domain.EquityPoint{Timestamp: start.Add(time.Duration(i) * time.Hour), Equity: v}
	}
	return out
}

func TestSharpe_KnownValue(t *testing.T) {
	returns := []float64{0.01, -0.01, 0.01, -0.01}
	// mean 0, std 0.01 -> sharpe 0 regardless of annualization
	s := Sharpe(returns, 8760)
	require.True(t, s.Valid)
	assert.InDelta(t, 0.0, s.Value, 1e-12)

	returns = []float64{0.02, 0.01, 0.03, 0.02}
	// mean 0.02, population std sqrt(0.00005/...)
	mean, sd := 0.02, math.Sqrt(0.00005/1.0)
	s = Sharpe(returns, 365)
	require.True(t, s.Valid)
	assert.InDelta(t, mean/sd*math.Sqrt(365), s.Value, 1e-9)
}

func TestSharpe_Undefined(t *testing.T) {
	assert.False(t, Sharpe(nil, 365).Valid)
	assert.False(t, Sharpe([]float64{0.01, 0.01, 0.01}, 365).Valid, "zero variance")
	assert.False(t, Sharpe([]float64{0.01, 0.02}, 0).Valid)
}

func TestMaxDrawdown(t *testing.T) {
	testCases := []struct {
		name   string
		equity []domain.EquityPoint
		want   float64
	}{
		{"flat", equityCurve(1, 1, 1), 0},
		{"monotone up", equityCurve(1, 1.1, 1.2), 0},
		{"single dip", equityCurve(1, 1.2, 0.9, 1.3), 0.9/1.2 - 1},
		{"two dips takes the worse", equityCurve(1, 0.95, 1.1, 0.77, 1.2), 0.77/1.1 - 1},
		{"empty", nil, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, MaxDrawdown(tc.equity), 1e-12)
		})
	}
}

func TestSummarize_HitRateAndCounts(t *testing.T) {
	trades := []domain.Trade{
		{NetPnL: 0.02}, {NetPnL: -0.01}, {NetPnL: 0.005}, {NetPnL: -0.002},
	}
	s := Summarize(equityCurve(1, 1.01, 1.02), []float64{0, 0.01, 0.0099}, trades, 8760)

	require.True(t, s.HitRate.Valid)
	assert.InDelta(t, 0.5, s.HitRate.Value, 1e-12)
	assert.Equal(t, 4, s.ClosedTrades)
	assert.Equal(t, 2, s.WinningTrades)
	assert.Equal(t, 2, s.LosingTrades)
	assert.InDelta(t, 0.02, s.TotalReturn, 1e-12)
}

func TestSummarize_NoTrades(t *testing.T) {
	s := Summarize(equityCurve(1, 1, 1), []float64{0, 0, 0}, nil, 8760)
	assert.False(t, s.HitRate.Valid, "0/0 hit rate is absent, not zero")
	assert.False(t, s.Sharpe.Valid, "flat returns have no Sharpe")
	assert.Equal(t, 0.0, s.MaxDrawdown)
	assert.Equal(t, 0.0, s.TotalReturn)
}

func TestSummarize_Idempotent(t *testing.T) {
	eq := equityCurve(1, 1.02, 0.99, 1.05, 1.01)
	rets := []float64{0, 0.02, -0.0294, 0.0606, -0.0381}
	trades := []domain.Trade{{NetPnL: 0.03}, {NetPnL: -0.01}}

	a := Summarize(eq, rets, trades, 8760)
	b := Summarize(eq, rets, trades, 8760)
	assert.Equal(t, a, b)
}
