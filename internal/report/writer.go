// Package report renders a finished run for humans: artifact files, PNG
// charts, and console tables. The engine hands over an immutable Result;
// nothing here feeds back into the computation.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quantfold/pairtrade/internal/backtest"
)

// Writer lays run artifacts out under a dated directory:
// <dir>/<YYYY-MM-DD>/summary.json, trades.csv, equity.csv and the charts.
type Writer struct {
	outputDir string
}

// NewWriter creates a writer rooted at outputDir.
func NewWriter(outputDir string) *Writer {
	return &Writer{
		outputDir: filepath.Join(outputDir, time.Now().Format("2006-01-02")),
	}
}

// OutputDir returns the resolved dated directory.
func (w *Writer) OutputDir() string { return w.outputDir }

// WriteResult persists the summary JSON, trade history CSV and equity CSV.
func (w *Writer) WriteResult(res *backtest.Result) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := w.writeSummary(res); err != nil {
		return err
	}
	if err := w.writeTrades(res); err != nil {
		return err
	}
	if err := w.writeEquity(res); err != nil {
		return err
	}
	log.Info().Str("dir", w.outputDir).Msg("run artifacts written")
	return nil
}

func (w *Writer) writeSummary(res *backtest.Result) error {
	payload := struct {
		RunID     string      `json:"run_id"`
		StartedAt time.Time   `json:"started_at"`
		Config    interface{} `json:"config"`
		Summary   interface{} `json:"summary"`
		Trades    int         `json:"trades"`
	}{res.RunID, res.StartedAt, res.Config, res.Summary, len(res.Trades)}

	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	path := filepath.Join(w.outputDir, "summary.json")
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (w *Writer) writeTrades(res *backtest.Result) error {
	path := filepath.Join(w.outputDir, "trades.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := []string{"entry_time", "exit_time", "direction", "size",
		"entry_spread", "exit_spread", "gross_pnl", "net_pnl", "holding_bars", "exit_reason"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, t := range res.Trades {
		rec := []string{
			t.EntryTime.Format(time.RFC3339),
			t.ExitTime.Format(time.RFC3339),
			t.Direction.String(),
			strconv.FormatFloat(t.Size, 'f', 6, 64),
			strconv.FormatFloat(t.EntrySpread, 'f', 8, 64),
			strconv.FormatFloat(t.ExitSpread, 'f', 8, 64),
			strconv.FormatFloat(t.GrossPnL, 'f', 8, 64),
			strconv.FormatFloat(t.NetPnL, 'f', 8, 64),
			strconv.Itoa(t.HoldingBars),
			string(t.ExitReason),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (w *Writer) writeEquity(res *backtest.Result) error {
	path := filepath.Join(w.outputDir, "equity.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"timestamp", "equity", "net_return"}); err != nil {
		return err
	}
	for i, p := range res.Equity {
		rec := []string{
			p.Timestamp.Format(time.RFC3339),
			strconv.FormatFloat(p.Equity, 'f', 8, 64),
			strconv.FormatFloat(res.Returns[i], 'f', 8, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
