// Package data supplies the engine's external input collaborators: CSV bar
// snapshots on disk and the Kraken public OHLC endpoint that produces them.
// The backtest core itself never touches I/O.
package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/quantfold/pairtrade/internal/domain"
)

var csvHeader = []string{"timestamp", "open", "high", "low", "close", "volume"}

// LoadBarsCSV reads a bar snapshot written by WriteBarsCSV: a header row and
// one row per bar with a unix-seconds timestamp.
func LoadBarsCSV(path, symbol string) (domain.BarSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.BarSeries{}, fmt.Errorf("open bars csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)

	if _, err := r.Read(); err != nil {
		return domain.BarSeries{}, fmt.Errorf("read csv header %s: %w", path, err)
	}

	series := domain.BarSeries{Symbol: symbol}
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.BarSeries{}, fmt.Errorf("read %s line %d: %w", path, line+1, err)
		}
		line++

		bar, err := parseBar(rec)
		if err != nil {
			return domain.BarSeries{}, fmt.Errorf("parse %s line %d: %w", path, line, err)
		}
		series.Bars = append(series.Bars, bar)
	}
	return series, nil
}

func parseBar(rec []string) (domain.Bar, error) {
	ts, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return domain.Bar{}, fmt.Errorf("timestamp %q: %w", rec[0], err)
	}
	vals := make([]float64, 5)
	for i := 1; i < 6; i++ {
		v, err := strconv.ParseFloat(rec[i], 64)
		if err != nil {
			return domain.Bar{}, fmt.Errorf("%s %q: %w", csvHeader[i], rec[i], err)
		}
		vals[i-1] = v
	}
	return domain.Bar{
		Timestamp: time.Unix(ts, 0).UTC(),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}

// WriteBarsCSV persists a bar series as a replayable snapshot.
func WriteBarsCSV(path string, series domain.BarSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bars csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range series.Bars {
		rec := []string{
			strconv.FormatInt(b.Timestamp.Unix(), 10),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// LoadPairCSV loads both legs, inner-joins them on timestamp (bars present
// in only one leg are dropped, like the original exchange pulls can
// produce), and validates the aligned result.
func LoadPairCSV(pathY, pathX, symbolY, symbolX string) (domain.PairSeries, error) {
	y, err := LoadBarsCSV(pathY, symbolY)
	if err != nil {
		return domain.PairSeries{}, err
	}
	x, err := LoadBarsCSV(pathX, symbolX)
	if err != nil {
		return domain.PairSeries{}, err
	}
	jy, jx := innerJoin(y, x)
	return domain.NewPairSeries(jy, jx)
}

// innerJoin keeps only timestamps present in both series, preserving order.
// Assumes each input is individually sorted; duplicates are caught later by
// alignment validation.
func innerJoin(y, x domain.BarSeries) (domain.BarSeries, domain.BarSeries) {
	outY := domain.BarSeries{Symbol: y.Symbol}
	outX := domain.BarSeries{Symbol: x.Symbol}
	i, j := 0, 0
	for i < len(y.Bars) && j < len(x.Bars) {
		ty, tx := y.Bars[i].Timestamp, x.Bars[j].Timestamp
		switch {
		case ty.Equal(tx):
			outY.Bars = append(outY.Bars, y.Bars[i])
			outX.Bars = append(outX.Bars, x.Bars[j])
			i++
			j++
		case ty.Before(tx):
			i++
		default:
			j++
		}
	}
	return outY, outX
}
