package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/pairtrade/internal/backtest"
	"github.com/quantfold/pairtrade/internal/config"
	"github.com/quantfold/pairtrade/internal/domain"
)

func openTestStore(t *testing.T) *RunStore {
	t.Helper()
	store, err := NewRunStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func resultFixture(runID string, startedAt time.Time) *backtest.Result {
	return &backtest.Result{
		RunID:     runID,
		StartedAt: startedAt,
		Config:    config.Default(),
		Equity: []domain.EquityPoint{
			{Timestamp: startedAt, Equity: 1.0},
			{Timestamp: startedAt.Add(time.Hour), Equity: 1.01},
		},
		Returns: []float64{0, 0.01},
		Trades: []domain.Trade{
			{
				EntryTime: startedAt, ExitTime: startedAt.Add(time.Hour),
				Direction: domain.ShortSpread, Size: 1.0,
				EntrySpread: 0.04, ExitSpread: 0.002,
				GrossPnL: 0.012, NetPnL: 0.01, HoldingBars: 1,
				ExitReason: domain.ExitTarget,
			},
		},
		Summary: domain.PerformanceSummary{
			Sharpe:        domain.Float(2.1),
			HitRate:       domain.Float(1.0),
			MaxDrawdown:   0,
			TotalReturn:   0.01,
			Bars:          2,
			ClosedTrades:  1,
			WinningTrades: 1,
		},
	}
}

func TestRunStore_SaveAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveRun(ctx, resultFixture("run-a", start)))
	require.NoError(t, store.SaveRun(ctx, resultFixture("run-b", start.Add(time.Minute))))

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// newest first
	assert.Equal(t, "run-b", runs[0].ID)
	assert.Equal(t, "run-a", runs[1].ID)

	r := runs[1]
	assert.Equal(t, "BTC/USD", r.SymbolY)
	assert.Equal(t, "ETH/USD", r.SymbolX)
	assert.Equal(t, "1h", r.Timeframe)
	assert.Equal(t, 2, r.Bars)
	assert.Equal(t, 1, r.ClosedTrades)
	assert.InDelta(t, 0.01, r.TotalReturn, 1e-12)
	require.True(t, r.Sharpe.Valid)
	assert.InDelta(t, 2.1, r.Sharpe.Value, 1e-12)
	require.True(t, r.HitRate.Valid)
	assert.InDelta(t, 1.0, r.HitRate.Value, 1e-12)
}

func TestRunStore_AbsentStatsStoredAsNull(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	res := resultFixture("run-degenerate", time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC))
	res.Trades = nil
	res.Summary = domain.PerformanceSummary{Bars: 2}

	require.NoError(t, store.SaveRun(ctx, res))

	runs, err := store.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.False(t, runs[0].Sharpe.Valid)
	assert.False(t, runs[0].HitRate.Valid)
}

func TestRunStore_DuplicateRunID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	res := resultFixture("run-dup", time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC))

	require.NoError(t, store.SaveRun(ctx, res))
	require.Error(t, store.SaveRun(ctx, res), "primary key rejects a duplicate run id")
}

func TestRunStore_ListLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, store.SaveRun(ctx, resultFixture(id, start.Add(time.Duration(i)*time.Minute))))
	}

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r3", runs[0].ID)
}
