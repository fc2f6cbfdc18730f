package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Validates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	raw := `
signal:
  estimator_window: 120
  zscore_window: 60
strategy:
  entry_z: 1.8
  exit_z: 0.4
regime:
  enabled: false
costs:
  fee_rate: 0.001
data:
  timeframe: 4h
`
	path := filepath.Join(t.TempDir(), "backtest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.Signal.EstimatorWindow)
	assert.Equal(t, 60, cfg.Signal.ZScoreWindow)
	assert.Equal(t, 1.8, cfg.Strategy.EntryZ)
	assert.Equal(t, 0.4, cfg.Strategy.ExitZ)
	assert.False(t, cfg.Regime.Enabled)
	assert.Equal(t, 0.001, cfg.Costs.FeeRate)
	// untouched keys keep their defaults
	assert.Equal(t, 0.0002, cfg.Costs.SlippageRate)
	assert.Equal(t, "BTC/USD", cfg.Data.SymbolY)
	assert.Equal(t, 2190.0, cfg.PeriodsPerYear())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("signal:\n  estimator_window: 1\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "estimator_window")
}

func TestZScoreWindow_DefaultsToEstimator(t *testing.T) {
	cfg := Default()
	cfg.Signal.EstimatorWindow = 150
	cfg.Signal.ZScoreWindow = 0
	assert.Equal(t, 150, cfg.ZScoreWindow())

	cfg.Signal.ZScoreWindow = 40
	assert.Equal(t, 40, cfg.ZScoreWindow())
}

func TestPeriodsPerYear(t *testing.T) {
	cases := []struct {
		timeframe string
		explicit  float64
		want      float64
	}{
		{"1h", 0, 8760},
		{"1d", 0, 365},
		{"5m", 0, 105120},
		{"3h", 0, 365},   // unknown timeframe falls back to daily
		{"1h", 252, 252}, // explicit factor wins
	}
	for _, tc := range cases {
		cfg := Default()
		cfg.Data.Timeframe = tc.timeframe
		cfg.Data.AnnualizationFactor = tc.explicit
		assert.Equal(t, tc.want, cfg.PeriodsPerYear(), "timeframe %s", tc.timeframe)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"estimator window too small", func(c *Config) { c.Signal.EstimatorWindow = 1 }},
		{"zscore window of one", func(c *Config) { c.Signal.ZScoreWindow = 1 }},
		{"negative zscore window", func(c *Config) { c.Signal.ZScoreWindow = -5 }},
		{"exit above entry", func(c *Config) { c.Strategy.ExitZ = c.Strategy.EntryZ + 1 }},
		{"zero entry", func(c *Config) { c.Strategy.EntryZ = 0 }},
		{"regime window too small", func(c *Config) { c.Regime.Window = 1 }},
		{"significance above one", func(c *Config) { c.Regime.Significance = 1.5 }},
		{"negative fee", func(c *Config) { c.Costs.FeeRate = -0.001 }},
		{"zero gross leverage", func(c *Config) { c.Sizing.GrossLeverage = 0 }},
		{"negative annualization", func(c *Config) { c.Data.AnnualizationFactor = -1 }},
		{"vol targeting bad window", func(c *Config) {
			c.Sizing.VolTargeting.Enabled = true
			c.Sizing.VolTargeting.Window = 1
		}},
		{"vol targeting zero target", func(c *Config) {
			c.Sizing.VolTargeting.Enabled = true
			c.Sizing.VolTargeting.TargetVol = 0
		}},
		{"vol targeting inverted scales", func(c *Config) {
			c.Sizing.VolTargeting.Enabled = true
			c.Sizing.VolTargeting.MinScale = 2
			c.Sizing.VolTargeting.MaxScale = 1
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
