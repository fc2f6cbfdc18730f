package report

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/quantfold/pairtrade/internal/backtest"
	"github.com/quantfold/pairtrade/internal/domain"
)

// PrintSummary writes the performance summary as a console table.
func PrintSummary(w io.Writer, res *backtest.Result) {
	s := res.Summary
	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")
	table.Append("Bars", fmt.Sprintf("%d", s.Bars))
	table.Append("Total return", fmt.Sprintf("%.2f%%", s.TotalReturn*100))
	table.Append("Sharpe", fmtOpt(s.Sharpe, "%.2f"))
	table.Append("Max drawdown", fmt.Sprintf("%.2f%%", s.MaxDrawdown*100))
	table.Append("Hit rate", fmtOptPct(s.HitRate))
	table.Append("Closed trades", fmt.Sprintf("%d (%dW/%dL)", s.ClosedTrades, s.WinningTrades, s.LosingTrades))
	table.Render()
}

// PrintTrades writes the trade history as a console table.
func PrintTrades(w io.Writer, trades []domain.Trade) {
	if len(trades) == 0 {
		fmt.Fprintln(w, "no closed trades")
		return
	}
	table := tablewriter.NewWriter(w)
	table.Header("#", "Dir", "Entry", "Exit", "Bars", "Size", "Net PnL", "Reason")
	for i, t := range trades {
		table.Append(
			fmt.Sprintf("%d", i+1),
			t.Direction.String(),
			t.EntryTime.Format(time.DateTime),
			t.ExitTime.Format(time.DateTime),
			fmt.Sprintf("%d", t.HoldingBars),
			fmt.Sprintf("%.2f", t.Size),
			fmt.Sprintf("%+.4f%%", t.NetPnL*100),
			string(t.ExitReason),
		)
	}
	table.Render()
}

// PrintSweep writes the sweep leaderboard, best combination first.
func PrintSweep(w io.Writer, results []backtest.SweepResult) {
	table := tablewriter.NewWriter(w)
	table.Header("Window", "Entry", "Exit", "Equity", "Sharpe", "MaxDD", "Trades", "Error")
	for _, r := range results {
		table.Append(
			fmt.Sprintf("%d", r.EstimatorWindow),
			fmt.Sprintf("%.2f", r.EntryZ),
			fmt.Sprintf("%.2f", r.ExitZ),
			fmt.Sprintf("%.4f", r.FinalEquity),
			fmtOpt(r.Summary.Sharpe, "%.2f"),
			fmt.Sprintf("%.2f%%", r.Summary.MaxDrawdown*100),
			fmt.Sprintf("%d", r.Trades),
			r.Err,
		)
	}
	table.Render()
}

func fmtOpt(v domain.OptFloat, format string) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf(format, v.Value)
}

func fmtOptPct(v domain.OptFloat) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v.Value*100)
}
