package domain

import (
	"fmt"
	"math"
	"time"
)

// Bar is a single OHLCV observation for one asset.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// BarSeries is an ordered sequence of bars for one asset.
type BarSeries struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// Len returns the number of bars.
func (s BarSeries) Len() int { return len(s.Bars) }

// Validate checks the standalone invariants of a series: strictly increasing
// timestamps and positive close prices.
func (s BarSeries) Validate() error {
	for i, b := range s.Bars {
		if b.Close <= 0 {
			return fmt.Errorf("%w: %s bar %d at %s has non-positive close %f",
				ErrMisalignedInput, s.Symbol, i, b.Timestamp.Format(time.RFC3339), b.Close)
		}
		if i > 0 && !b.Timestamp.After(s.Bars[i-1].Timestamp) {
			return fmt.Errorf("%w: %s timestamps not strictly increasing at index %d",
				ErrMisalignedInput, s.Symbol, i)
		}
	}
	return nil
}

// PairSeries holds the aligned log-close values of the two legs. Index i of
// every slice refers to the same timestamp. Y is the dependent leg (BTC in
// the default configuration), X the hedging leg (ETH).
type PairSeries struct {
	SymbolY    string      `json:"symbol_y"`
	SymbolX    string      `json:"symbol_x"`
	Timestamps []time.Time `json:"timestamps"`
	CloseY     []float64   `json:"close_y"`
	CloseX     []float64   `json:"close_x"`
	LogY       []float64   `json:"log_y"`
	LogX       []float64   `json:"log_x"`
}

// Len returns the number of aligned observations.
func (p PairSeries) Len() int { return len(p.Timestamps) }

// NewPairSeries validates alignment of the two legs and derives log closes.
// Both series must be non-empty, share an identical timestamp index, and
// carry positive closes.
func NewPairSeries(y, x BarSeries) (PairSeries, error) {
	if y.Len() == 0 || x.Len() == 0 {
		return PairSeries{}, fmt.Errorf("%w: empty input series", ErrInsufficientData)
	}
	if y.Len() != x.Len() {
		return PairSeries{}, fmt.Errorf("%w: %s has %d bars, %s has %d",
			ErrMisalignedInput, y.Symbol, y.Len(), x.Symbol, x.Len())
	}
	if err := y.Validate(); err != nil {
		return PairSeries{}, err
	}
	if err := x.Validate(); err != nil {
		return PairSeries{}, err
	}

	p := PairSeries{
		SymbolY:    y.Symbol,
		SymbolX:    x.Symbol,
		Timestamps: make([]time.Time, y.Len()),
		CloseY:     make([]float64, y.Len()),
		CloseX:     make([]float64, y.Len()),
		LogY:       make([]float64, y.Len()),
		LogX:       make([]float64, y.Len()),
	}
	for i := range y.Bars {
		if !y.Bars[i].Timestamp.Equal(x.Bars[i].Timestamp) {
			return PairSeries{}, fmt.Errorf("%w: index %d: %s at %s vs %s at %s",
				ErrMisalignedInput, i,
				y.Symbol, y.Bars[i].Timestamp.Format(time.RFC3339),
				x.Symbol, x.Bars[i].Timestamp.Format(time.RFC3339))
		}
		p.Timestamps[i] = y.Bars[i].Timestamp
		p.CloseY[i] = y.Bars[i].Close
		p.CloseX[i] = x.Bars[i].Close
		p.LogY[i] = math.Log(y.Bars[i].Close)
		p.LogX[i] = math.Log(x.Bars[i].Close)
	}
	return p, nil
}
