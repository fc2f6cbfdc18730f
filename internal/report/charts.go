package report

import (
	"fmt"
	"os"
	"path/filepath"

	charts "github.com/vicanso/go-charts/v2"

	"github.com/quantfold/pairtrade/internal/backtest"
	"github.com/quantfold/pairtrade/internal/domain"
)

// WriteCharts renders the three run charts next to the other artifacts:
// equity curve, z-score with entry/exit bands, and the rolling
// cointegration p-value with its significance threshold.
func (w *Writer) WriteCharts(res *backtest.Result) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	labels := make([]string, len(res.Equity))
	for i, p := range res.Equity {
		labels[i] = p.Timestamp.Format("01-02 15:04")
	}

	eq := make([]float64, len(res.Equity))
	for i, p := range res.Equity {
		eq[i] = p.Equity
	}
	title := fmt.Sprintf("Equity: %s vs %s (%s)",
		res.Config.Data.SymbolY, res.Config.Data.SymbolX, res.Config.Data.Timeframe)
	if err := w.renderLines("equity_curve.png", title, labels, [][]float64{eq}, []string{"equity"}); err != nil {
		return err
	}

	entry := res.Config.Strategy.EntryZ
	exit := res.Config.Strategy.ExitZ
	zSeries := [][]float64{
		optValues(res.Series.ZScores),
		constSeries(len(labels), entry),
		constSeries(len(labels), -entry),
		constSeries(len(labels), exit),
		constSeries(len(labels), -exit),
	}
	zNames := []string{"z-score", "entry", "-entry", "exit", "-exit"}
	if err := w.renderLines("zscore.png", "Spread Z-Score", labels, zSeries, zNames); err != nil {
		return err
	}

	if res.Config.Regime.Enabled {
		pSeries := [][]float64{
			optValues(res.Series.PValues),
			constSeries(len(labels), res.Config.Regime.Significance),
		}
		pNames := []string{"p-value", "threshold"}
		if err := w.renderLines("coint_pvalue.png", "Rolling Cointegration p-value", labels, pSeries, pNames); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) renderLines(file, title string, labels []string, series [][]float64, names []string) error {
	painter, err := charts.LineRender(series,
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			BoundaryGap: charts.FalseFlag(),
			SplitNumber: 8,
		}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(1000),
		charts.HeightOptionFunc(500),
	)
	if err != nil {
		return fmt.Errorf("render %s: %w", file, err)
	}
	img, err := painter.Bytes()
	if err != nil {
		return fmt.Errorf("encode %s: %w", file, err)
	}
	path := filepath.Join(w.outputDir, file)
	if err := os.WriteFile(path, img, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// optValues maps an optional series to floats, substituting the chart null
// marker for absent entries so warm-up gaps stay gaps.
func optValues(vals []domain.OptFloat) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		if v.Valid {
			out[i] = v.Value
		} else {
			out[i] = charts.GetNullValue()
		}
	}
	return out
}

func constSeries(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
