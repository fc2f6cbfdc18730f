// Package regime gates trading on whether the pair currently behaves as a
// cointegrated, mean-reverting system. The test is Engle-Granger style: the
// spread is already the cointegrating residual (the hedge ratio is
// re-estimated per window upstream), so each step runs an augmented
// Dickey-Fuller test with intercept on the trailing spread window and
// rejects the unit-root null at the configured significance.
package regime

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/quantfold/pairtrade/internal/domain"
	"github.com/quantfold/pairtrade/internal/stats"
)

// Config holds the regime filter parameters.
type Config struct {
	Enabled      bool    `yaml:"enabled"`
	Window       int     `yaml:"window"`       // trailing spread observations per test
	Significance float64 `yaml:"significance"` // p-value threshold, default 0.05
	ADFLags      int     `yaml:"adf_lags"`     // augmentation lags, default 1
}

// DefaultConfig returns the conventional filter settings.
func DefaultConfig() Config {
	return Config{Enabled: true, Window: 300, Significance: 0.05, ADFLags: 1}
}

// Validate checks the parameter domains.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Window < 2 {
		return fmt.Errorf("regime window must be >= 2, got %d", c.Window)
	}
	if c.Significance <= 0 || c.Significance > 1 {
		return fmt.Errorf("regime significance must be in (0, 1], got %f", c.Significance)
	}
	if c.ADFLags < 0 {
		return fmt.Errorf("regime adf_lags must be >= 0, got %d", c.ADFLags)
	}
	return nil
}

// Flag is the per-step gate decision plus its test diagnostics.
type Flag struct {
	Defined bool            // false during warm-up
	Pass    bool            // true when the mean-reverting regime is confirmed
	PValue  domain.OptFloat // ADF p-value for the step, absent when untestable
}

// Filter evaluates the gate over a spread series.
type Filter struct {
	cfg Config
}

// NewFilter builds a filter from validated config.
func NewFilter(cfg Config) *Filter {
	return &Filter{cfg: cfg}
}

// Flags produces one gate decision per timestamp. With the filter disabled
// every step where the spread is defined passes. With it enabled, step t
// passes when the ADF p-value over the trailing window of fully-defined
// spread values is below the significance threshold; windows containing
// absent spreads or degenerate regressions are undefined and fail closed.
func (f *Filter) Flags(spread []domain.OptFloat) []Flag {
	n := len(spread)
	flags := make([]Flag, n)

	if !f.cfg.Enabled {
		for i, s := range spread {
			if s.Valid {
				flags[i] = Flag{Defined: true, Pass: true}
			}
		}
		return flags
	}

	w := f.cfg.Window
	buf := make([]float64, 0, w)
	passed := 0
	for t := w - 1; t < n; t++ {
		buf = buf[:0]
		defined := true
		for i := t - w + 1; i <= t; i++ {
			if !spread[i].Valid {
				defined = false
				break
			}
			buf = append(buf, spread[i].Value)
		}
		if !defined {
			continue
		}
		res, ok := stats.ADF(buf, f.cfg.ADFLags)
		if !ok {
			// testable window but degenerate regression: defined, fails
			flags[t] = Flag{Defined: true}
			continue
		}
		pass := res.PValue < f.cfg.Significance
		if pass {
			passed++
		}
		flags[t] = Flag{Defined: true, Pass: pass, PValue: domain.Float(res.PValue)}
	}

	log.Debug().
		Int("window", w).
		Float64("significance", f.cfg.Significance).
		Int("passed", passed).
		Int("bars", n).
		Msg("regime filter evaluated")
	return flags
}
