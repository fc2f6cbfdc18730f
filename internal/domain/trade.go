package domain

import "time"

// ExitReason records why a trade was closed.
type ExitReason string

const (
	ExitTarget    ExitReason = "target"     // z-score reverted inside the exit band
	ExitRegime    ExitReason = "regime"     // regime filter invalidated the pair
	ExitDataGap   ExitReason = "data_gap"   // z-score became undefined mid-hold
	ExitMaxHold   ExitReason = "max_hold"   // holding-period safety stop
	ExitFinalMark ExitReason = "final_mark" // force-closed at the end of the series
)

// Trade is the immutable record of one completed round trip. It is created
// when a position opens and finalized exactly once when it closes; the
// simulator owns the only open trade at any time.
type Trade struct {
	EntryTime   time.Time  `json:"entry_time"`
	ExitTime    time.Time  `json:"exit_time"`
	Direction   Position   `json:"direction"`
	Size        float64    `json:"size"` // gross exposure at entry, fraction of equity
	EntrySpread float64    `json:"entry_spread"`
	ExitSpread  float64    `json:"exit_spread"`
	GrossPnL    float64    `json:"gross_pnl"` // cumulative gross return over the hold
	NetPnL      float64    `json:"net_pnl"`   // gross minus entry and exit costs
	HoldingBars int        `json:"holding_bars"`
	ExitReason  ExitReason `json:"exit_reason"`
}

// EquityPoint is one sample of the portfolio value curve.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
}

// PerformanceSummary is a derived, stateless snapshot of a finished run.
// Sharpe and HitRate are absent when their inputs are degenerate (zero
// return variance, zero closed trades).
type PerformanceSummary struct {
	Sharpe        OptFloat `json:"sharpe"`
	MaxDrawdown   float64  `json:"max_drawdown"` // peak-to-trough fraction, <= 0
	HitRate       OptFloat `json:"hit_rate"`
	TotalReturn   float64  `json:"total_return"`
	Bars          int      `json:"bars"`
	ClosedTrades  int      `json:"closed_trades"`
	WinningTrades int      `json:"winning_trades"`
	LosingTrades  int      `json:"losing_trades"`
}
