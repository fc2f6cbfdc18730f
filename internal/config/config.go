// Package config loads and validates the backtest configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quantfold/pairtrade/internal/regime"
	"github.com/quantfold/pairtrade/internal/strategy"
)

// SignalConfig holds the rolling estimation windows.
type SignalConfig struct {
	EstimatorWindow int `yaml:"estimator_window"` // trailing OLS window for the hedge ratio
	ZScoreWindow    int `yaml:"zscore_window"`    // 0 reuses the estimator window
}

// CostConfig holds the per-leg transaction cost model.
type CostConfig struct {
	FeeRate      float64 `yaml:"fee_rate"`      // fraction of traded notional per leg
	SlippageRate float64 `yaml:"slippage_rate"` // fraction of traded notional per leg
}

// VolTargetConfig scales gross exposure to a target spread volatility.
// Disabled by default; when enabled the effective gross leverage becomes
// gross * clamp(target_vol/realized_vol, min_scale, max_scale), capped at
// max_gross_leverage.
type VolTargetConfig struct {
	Enabled          bool    `yaml:"enabled"`
	Window           int     `yaml:"window"`     // trailing window for realized spread vol
	TargetVol        float64 `yaml:"target_vol"` // target per-bar spread volatility
	MinScale         float64 `yaml:"min_scale"`
	MaxScale         float64 `yaml:"max_scale"`
	MaxGrossLeverage float64 `yaml:"max_gross_leverage"`
}

// SizingConfig holds exposure sizing.
type SizingConfig struct {
	GrossLeverage float64         `yaml:"gross_leverage"` // |w_y| + |w_x| at entry
	VolTargeting  VolTargetConfig `yaml:"vol_targeting"`
}

// DataConfig describes the input pair and its sampling frequency.
type DataConfig struct {
	SymbolY             string  `yaml:"symbol_y"`
	SymbolX             string  `yaml:"symbol_x"`
	Timeframe           string  `yaml:"timeframe"`
	CSVY                string  `yaml:"csv_y"`
	CSVX                string  `yaml:"csv_x"`
	Limit               int     `yaml:"limit"` // candles per symbol on fetch
	AnnualizationFactor float64 `yaml:"annualization_factor"` // 0 derives from timeframe
}

// OutputConfig controls where run artifacts land.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Charts bool   `yaml:"charts"`
	DBPath string `yaml:"db_path"` // empty disables sqlite persistence
}

// Config is the full backtest configuration.
type Config struct {
	Signal   SignalConfig    `yaml:"signal"`
	Strategy strategy.Config `yaml:"strategy"`
	Regime   regime.Config   `yaml:"regime"`
	Costs    CostConfig      `yaml:"costs"`
	Sizing   SizingConfig    `yaml:"sizing"`
	Data     DataConfig      `yaml:"data"`
	Output   OutputConfig    `yaml:"output"`
}

// periodsPerYear maps bar timeframes to annualization factors.
var periodsPerYear = map[string]float64{
	"1m":  525600,
	"5m":  105120,
	"15m": 35040,
	"1h":  8760,
	"4h":  2190,
	"1d":  365,
}

// Default returns the baseline BTC/ETH hourly configuration.
func Default() Config {
	return Config{
		Signal:   SignalConfig{EstimatorWindow: 200, ZScoreWindow: 0},
		Strategy: strategy.Config{EntryZ: 2.0, ExitZ: 0.5, MaxHoldingBars: 336},
		Regime:   regime.DefaultConfig(),
		Costs:    CostConfig{FeeRate: 0.0004, SlippageRate: 0.0002},
		Sizing: SizingConfig{
			GrossLeverage: 1.0,
			VolTargeting: VolTargetConfig{
				Enabled:          false,
				Window:           200,
				TargetVol:        0.0015,
				MinScale:         0.0,
				MaxScale:         3.0,
				MaxGrossLeverage: 2.0,
			},
		},
		Data: DataConfig{
			SymbolY:   "BTC/USD",
			SymbolX:   "ETH/USD",
			Timeframe: "1h",
			CSVY:      "data/btcusd_1h.csv",
			CSVX:      "data/ethusd_1h.csv",
			Limit:     1500,
		},
		Output: OutputConfig{Dir: "results", Charts: true},
	}
}

// Load reads a YAML config file over the defaults and validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ZScoreWindow resolves the z-score window, defaulting to the estimator's.
func (c Config) ZScoreWindow() int {
	if c.Signal.ZScoreWindow > 0 {
		return c.Signal.ZScoreWindow
	}
	return c.Signal.EstimatorWindow
}

// PeriodsPerYear resolves the Sharpe annualization factor from the explicit
// setting or the timeframe table, falling back to daily.
func (c Config) PeriodsPerYear() float64 {
	if c.Data.AnnualizationFactor > 0 {
		return c.Data.AnnualizationFactor
	}
	if ppy, ok := periodsPerYear[c.Data.Timeframe]; ok {
		return ppy
	}
	return 365
}

// Validate enforces the recognized parameter domains.
func (c Config) Validate() error {
	if c.Signal.EstimatorWindow < 2 {
		return fmt.Errorf("signal.estimator_window must be >= 2, got %d", c.Signal.EstimatorWindow)
	}
	if c.Signal.ZScoreWindow < 0 || c.Signal.ZScoreWindow == 1 {
		return fmt.Errorf("signal.zscore_window must be 0 or >= 2, got %d", c.Signal.ZScoreWindow)
	}
	if err := c.Strategy.Validate(); err != nil {
		return err
	}
	if err := c.Regime.Validate(); err != nil {
		return err
	}
	if c.Costs.FeeRate < 0 || c.Costs.SlippageRate < 0 {
		return fmt.Errorf("costs must be >= 0, got fee %f slippage %f",
			c.Costs.FeeRate, c.Costs.SlippageRate)
	}
	if c.Sizing.GrossLeverage <= 0 {
		return fmt.Errorf("sizing.gross_leverage must be > 0, got %f", c.Sizing.GrossLeverage)
	}
	if vt := c.Sizing.VolTargeting; vt.Enabled {
		if vt.Window < 2 {
			return fmt.Errorf("vol_targeting.window must be >= 2, got %d", vt.Window)
		}
		if vt.TargetVol <= 0 {
			return fmt.Errorf("vol_targeting.target_vol must be > 0, got %f", vt.TargetVol)
		}
		if vt.MinScale < 0 || vt.MaxScale < vt.MinScale {
			return fmt.Errorf("vol_targeting scale bounds invalid: [%f, %f]", vt.MinScale, vt.MaxScale)
		}
		if vt.MaxGrossLeverage <= 0 {
			return fmt.Errorf("vol_targeting.max_gross_leverage must be > 0, got %f", vt.MaxGrossLeverage)
		}
	}
	if c.Data.AnnualizationFactor < 0 {
		return fmt.Errorf("data.annualization_factor must be >= 0, got %f", c.Data.AnnualizationFactor)
	}
	return nil
}
