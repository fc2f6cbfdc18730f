// Package backtest orchestrates the single-pass pipeline over an aligned
// price pair: hedge ratio -> spread -> z-score, regime gate in parallel,
// then the position state machine and the cost-aware simulator, reduced at
// the end into a performance summary.
package backtest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quantfold/pairtrade/internal/config"
	"github.com/quantfold/pairtrade/internal/domain"
	"github.com/quantfold/pairtrade/internal/metrics"
	"github.com/quantfold/pairtrade/internal/regime"
	"github.com/quantfold/pairtrade/internal/signal"
	"github.com/quantfold/pairtrade/internal/strategy"
)

// Diagnostics carries the per-timestamp derived series of a run, aligned to
// the input index, for reporting and charts.
type Diagnostics struct {
	Betas     []domain.OptFloat `json:"betas"`
	Spread    []domain.OptFloat `json:"spread"`
	ZScores   []domain.OptFloat `json:"zscores"`
	PValues   []domain.OptFloat `json:"pvalues"`
	Positions []domain.Position `json:"positions"`
}

// Result is the complete output of one backtest run.
type Result struct {
	RunID     string                    `json:"run_id"`
	StartedAt time.Time                 `json:"started_at"`
	Config    config.Config             `json:"config"`
	Series    Diagnostics               `json:"series"`
	Equity    []domain.EquityPoint      `json:"equity"`
	Returns   []float64                 `json:"returns"`
	Trades    []domain.Trade            `json:"trades"`
	Summary   domain.PerformanceSummary `json:"summary"`
}

// Run executes the full pipeline over the pair. The input is never mutated,
// so independent runs (parameter sweeps) may share it. Fails outright on
// precondition violations; statistical undefined-ness flows through as
// absent values instead.
func Run(pair domain.PairSeries, cfg config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := pair.Len()
	minLen := cfg.Signal.EstimatorWindow
	if cfg.Regime.Enabled && cfg.Regime.Window > minLen {
		minLen = cfg.Regime.Window
	}
	if n < minLen+1 {
		return nil, fmt.Errorf("%w: %d bars, need at least %d", domain.ErrInsufficientData, n, minLen+1)
	}

	log.Info().
		Str("pair", pair.SymbolY+"/"+pair.SymbolX).
		Int("bars", n).
		Int("estimator_window", cfg.Signal.EstimatorWindow).
		Int("zscore_window", cfg.ZScoreWindow()).
		Bool("regime_enabled", cfg.Regime.Enabled).
		Msg("backtest run starting")

	betas, err := signal.HedgeRatios(pair, cfg.Signal.EstimatorWindow)
	if err != nil {
		return nil, err
	}
	spread, err := signal.SpreadSeries(pair, betas)
	if err != nil {
		return nil, err
	}
	zscores, err := signal.ZScores(spread, cfg.ZScoreWindow())
	if err != nil {
		return nil, err
	}
	flags := regime.NewFilter(cfg.Regime).Flags(spread)

	machine := strategy.NewMachine(cfg.Strategy)
	sim := newSimulator(cfg.Costs, cfg.Sizing, n)
	scales := volScales(spread, cfg.Sizing.VolTargeting)

	for t := 0; t < n; t++ {
		decision := machine.Step(zscores[t], flags[t].Pass)
		if t == n-1 && machine.State() != domain.Flat {
			decision = machine.ForceClose(domain.ExitFinalMark)
		}
		sim.step(stepInput{
			index:    t,
			pair:     &pair,
			beta:     betas[t],
			spread:   spread[t],
			decision: decision,
			volScale: scales[t],
		})
	}

	pvalues := make([]domain.OptFloat, n)
	for i, f := range flags {
		pvalues[i] = f.PValue
	}

	summary := metrics.Summarize(sim.equityCurve, sim.netReturns, sim.trades, cfg.PeriodsPerYear())
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Config:    cfg,
		Series: Diagnostics{
			Betas:     betas,
			Spread:    spread,
			ZScores:   zscores,
			PValues:   pvalues,
			Positions: sim.positions,
		},
		Equity:  sim.equityCurve,
		Returns: sim.netReturns,
		Trades:  sim.trades,
		Summary: summary,
	}

	log.Info().
		Str("run_id", res.RunID).
		Int("trades", len(res.Trades)).
		Float64("final_equity", res.Equity[n-1].Equity).
		Float64("max_drawdown", summary.MaxDrawdown).
		Msg("backtest run complete")
	return res, nil
}
