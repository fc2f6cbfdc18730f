package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quantfold/pairtrade/internal/backtest"
	"github.com/quantfold/pairtrade/internal/config"
	"github.com/quantfold/pairtrade/internal/data"
	"github.com/quantfold/pairtrade/internal/report"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Grid-sweep windows and thresholds over the same input",
		Long: `Run the backtest for every combination of the given estimator windows and
entry/exit thresholds. Each combination is an independent run over the same
immutable input series, fanned out across workers.`,
		RunE: runSweep,
	}
	cmd.Flags().String("config", "", "config file (default config/backtest.yaml, env PAIRTRADE_CONFIG)")
	cmd.Flags().IntSlice("windows", nil, "estimator windows to sweep (default: config value)")
	cmd.Flags().Float64Slice("entry", nil, "entry thresholds to sweep")
	cmd.Flags().Float64Slice("exit", nil, "exit thresholds to sweep")
	cmd.Flags().Int("workers", 0, "parallel workers (default: NumCPU)")
	cmd.Flags().String("out", "", "write the full sweep result JSON to this file")
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath(cfgPath))
	if err != nil {
		return err
	}

	pair, err := data.LoadPairCSV(cfg.Data.CSVY, cfg.Data.CSVX, cfg.Data.SymbolY, cfg.Data.SymbolX)
	if err != nil {
		return fmt.Errorf("load pair data: %w", err)
	}

	windows, _ := cmd.Flags().GetIntSlice("windows")
	entries, _ := cmd.Flags().GetFloat64Slice("entry")
	exits, _ := cmd.Flags().GetFloat64Slice("exit")
	workers, _ := cmd.Flags().GetInt("workers")

	grid := backtest.SweepGrid{
		EstimatorWindows: windows,
		EntryZ:           entries,
		ExitZ:            exits,
	}
	results := backtest.Sweep(pair, cfg, grid, workers)
	report.PrintSweep(os.Stdout, results)

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		b, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal sweep results: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(out, b, 0644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
	}
	return nil
}
