package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quantfold/pairtrade/internal/backtest"
	"github.com/quantfold/pairtrade/internal/config"
	"github.com/quantfold/pairtrade/internal/data"
	"github.com/quantfold/pairtrade/internal/report"
	"github.com/quantfold/pairtrade/internal/storage"
)

func newBacktestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run the pairs backtest over CSV snapshots",
		Long: `Load the aligned BTC/ETH bar snapshots, run the full pipeline
(hedge ratio -> z-score -> regime gate -> position -> P&L) and write the run
artifacts: summary table, trades, equity curve, charts.`,
		RunE: runBacktest,
	}
	cmd.Flags().String("config", "", "config file (default config/backtest.yaml, env PAIRTRADE_CONFIG)")
	cmd.Flags().String("csv-y", "", "override path of the Y-leg bar snapshot")
	cmd.Flags().String("csv-x", "", "override path of the X-leg bar snapshot")
	cmd.Flags().String("db", "", "override sqlite path for run persistence")
	cmd.Flags().Bool("no-charts", false, "skip PNG chart rendering")
	cmd.Flags().Bool("trades", false, "print the full trade table")
	return cmd
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath(cfgPath))
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("csv-y"); v != "" {
		cfg.Data.CSVY = v
	}
	if v, _ := cmd.Flags().GetString("csv-x"); v != "" {
		cfg.Data.CSVX = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.Output.DBPath = v
	}
	if v, _ := cmd.Flags().GetBool("no-charts"); v {
		cfg.Output.Charts = false
	}

	pair, err := data.LoadPairCSV(cfg.Data.CSVY, cfg.Data.CSVX, cfg.Data.SymbolY, cfg.Data.SymbolX)
	if err != nil {
		return fmt.Errorf("load pair data: %w", err)
	}

	res, err := backtest.Run(pair, cfg)
	if err != nil {
		return err
	}

	report.PrintSummary(os.Stdout, res)
	if v, _ := cmd.Flags().GetBool("trades"); v {
		report.PrintTrades(os.Stdout, res.Trades)
	}

	writer := report.NewWriter(cfg.Output.Dir)
	if err := writer.WriteResult(res); err != nil {
		return err
	}
	if cfg.Output.Charts {
		if err := writer.WriteCharts(res); err != nil {
			return err
		}
	}

	if cfg.Output.DBPath != "" {
		store, err := storage.NewRunStore(cfg.Output.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveRun(context.Background(), res); err != nil {
			return fmt.Errorf("persist run: %w", err)
		}
		log.Info().Str("db", cfg.Output.DBPath).Str("run_id", res.RunID).Msg("run persisted")
	}

	fmt.Printf("artifacts: %s\n", writer.OutputDir())
	return nil
}
