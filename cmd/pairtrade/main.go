package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	appName = "pairtrade"
	version = "v0.3.0"
)

func main() {
	// optional .env for local overrides (config path, data dir)
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Market-neutral BTC/ETH pairs-trading backtester",
		Version: version,
		Long: `pairtrade evaluates a market-neutral pairs-trading strategy on BTC and ETH:
rolling OLS hedge ratio, spread z-score signal, Engle-Granger regime gate,
and a cost-aware P&L simulation with summary risk metrics.`,
	}

	verbose := rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	cobra.OnInitialize(func() {
		if *verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	})

	rootCmd.AddCommand(newBacktestCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newSweepCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// configPath resolves the config file location: flag, then env, then default.
func configPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("PAIRTRADE_CONFIG"); env != "" {
		return env
	}
	return "config/backtest.yaml"
}
