package backtest

import (
	"math"

	"github.com/quantfold/pairtrade/internal/config"
	"github.com/quantfold/pairtrade/internal/domain"
	"github.com/quantfold/pairtrade/internal/stats"
	"github.com/quantfold/pairtrade/internal/strategy"
)

// simulator turns position transitions into trade events, costs and equity.
// It exclusively owns the open trade and the trade history for one run.
//
// Leg weights at entry: w_y = sign*a, w_x = -sign*a*beta with
// a = gross/(1+|beta|), so |w_y|+|w_x| = gross. Weights are frozen for the
// life of the trade; costs are charged only when the position changes, once
// per leg, proportional to the traded notional.
type simulator struct {
	costs  config.CostConfig
	sizing config.SizingConfig

	wY, wX float64 // weights carried into the next period
	equity float64

	open      *domain.Trade
	entryCost float64
	trades    []domain.Trade

	equityCurve []domain.EquityPoint
	netReturns  []float64
	positions   []domain.Position
}

func newSimulator(costs config.CostConfig, sizing config.SizingConfig, n int) *simulator {
	return &simulator{
		costs:       costs,
		sizing:      sizing,
		equity:      1.0,
		trades:      make([]domain.Trade, 0, 16),
		equityCurve: make([]domain.EquityPoint, 0, n),
		netReturns:  make([]float64, 0, n),
		positions:   make([]domain.Position, 0, n),
	}
}

// stepInput is everything the simulator needs for one timestamp.
type stepInput struct {
	index    int
	pair     *domain.PairSeries
	beta     domain.OptFloat
	spread   domain.OptFloat
	decision strategy.Decision
	volScale float64 // effective gross multiplier, 1 when vol targeting is off
}

// step advances one period: accrue the mark-to-market return on the weights
// held since the previous period, then apply the position transition (trade
// open/close plus its costs), then roll equity forward.
func (s *simulator) step(in stepInput) {
	t := in.index
	grossRet := 0.0
	if t > 0 {
		rY := in.pair.CloseY[t]/in.pair.CloseY[t-1] - 1
		rX := in.pair.CloseX[t]/in.pair.CloseX[t-1] - 1
		grossRet = s.wY*rY + s.wX*rX
	}
	if s.open != nil {
		s.open.GrossPnL += grossRet
		s.open.HoldingBars++
	}

	cost := 0.0
	switch in.decision.Action {
	case strategy.ActionClose:
		cost += s.closeTrade(in)
	case strategy.ActionOpen:
		cost += s.openTrade(in)
	}

	netRet := grossRet - cost
	s.equity *= 1 + netRet
	s.netReturns = append(s.netReturns, netRet)
	s.equityCurve = append(s.equityCurve, domain.EquityPoint{
		Timestamp: in.pair.Timestamps[t],
		Equity:    s.equity,
	})
	s.positions = append(s.positions, in.decision.State)
}

func (s *simulator) openTrade(in stepInput) float64 {
	gross := s.sizing.GrossLeverage * in.volScale
	if vt := s.sizing.VolTargeting; vt.Enabled && gross > vt.MaxGrossLeverage {
		gross = vt.MaxGrossLeverage
	}
	beta := in.beta.Value // entries require a defined z-score, hence a defined beta
	a := gross / (1 + math.Abs(beta))
	sign := in.decision.State.Sign()
	s.wY = sign * a
	s.wX = -sign * a * beta

	notional := math.Abs(s.wY) + math.Abs(s.wX)
	cost := notional * (s.costs.FeeRate + s.costs.SlippageRate)

	s.open = &domain.Trade{
		EntryTime:   in.pair.Timestamps[in.index],
		Direction:   in.decision.State,
		Size:        notional,
		EntrySpread: in.spread.Value,
	}
	s.entryCost = cost
	return cost
}

func (s *simulator) closeTrade(in stepInput) float64 {
	notional := math.Abs(s.wY) + math.Abs(s.wX)
	cost := notional * (s.costs.FeeRate + s.costs.SlippageRate)
	s.wY, s.wX = 0, 0

	if s.open != nil {
		tr := *s.open
		tr.ExitTime = in.pair.Timestamps[in.index]
		tr.ExitSpread = in.spread.Or(tr.EntrySpread)
		tr.ExitReason = in.decision.Reason
		tr.NetPnL = tr.GrossPnL - s.entryCost - cost
		s.trades = append(s.trades, tr)
		s.open = nil
		s.entryCost = 0
	}
	return cost
}

// volScales precomputes the per-step effective gross multiplier from the
// realized volatility of spread changes over the trailing window. All ones
// when targeting is disabled or the window is not yet computable.
func volScales(spread []domain.OptFloat, vt config.VolTargetConfig) []float64 {
	n := len(spread)
	scales := make([]float64, n)
	for i := range scales {
		scales[i] = 1
	}
	if !vt.Enabled {
		return scales
	}

	diffs := make([]domain.OptFloat, n)
	for i := 1; i < n; i++ {
		if spread[i].Valid && spread[i-1].Valid {
			diffs[i] = domain.Float(spread[i].Value - spread[i-1].Value)
		}
	}

	buf := make([]float64, 0, vt.Window)
	for t := vt.Window; t < n; t++ {
		buf = buf[:0]
		ok := true
		for i := t - vt.Window + 1; i <= t; i++ {
			if !diffs[i].Valid {
				ok = false
				break
			}
			buf = append(buf, diffs[i].Value)
		}
		if !ok {
			continue
		}
		vol := stats.StdDev(buf)
		if vol == 0 {
			continue
		}
		scale := vt.TargetVol / vol
		if scale < vt.MinScale {
			scale = vt.MinScale
		}
		if scale > vt.MaxScale {
			scale = vt.MaxScale
		}
		scales[t] = scale
	}
	return scales
}
