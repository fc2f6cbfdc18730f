package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/pairtrade/internal/domain"
)

func makeSeries(symbol string, start time.Time, closes []float64) domain.BarSeries {
	s := domain.BarSeries{Symbol: symbol}
	for i, c := range closes {
		s.Bars = append(s.Bars, domain.Bar{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      c * 0.99,
			High:      c * 1.01,
			Low:       c * 0.98,
			Close:     c,
			Volume:    float64(100 + i),
		})
	}
	return s
}

func TestBarsCSV_RoundTrip(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	want := makeSeries("BTC/USD", start, []float64{50000, 50120.5, 49980.25})
	path := filepath.Join(t.TempDir(), "btc.csv")

	require.NoError(t, WriteBarsCSV(path, want))
	got, err := LoadBarsCSV(path, "BTC/USD")
	require.NoError(t, err)

	require.Equal(t, want.Len(), got.Len())
	for i := range want.Bars {
		assert.True(t, want.Bars[i].Timestamp.Equal(got.Bars[i].Timestamp), "bar %d", i)
		assert.Equal(t, want.Bars[i].Close, got.Bars[i].Close, "bar %d", i)
		assert.Equal(t, want.Bars[i].Volume, got.Bars[i].Volume, "bar %d", i)
	}
}

func TestLoadBarsCSV_MissingFile(t *testing.T) {
	_, err := LoadBarsCSV(filepath.Join(t.TempDir(), "absent.csv"), "BTC/USD")
	require.Error(t, err)
}

func TestLoadBarsCSV_BadField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	raw := "timestamp,open,high,low,close,volume\n1717200000,1,2,0.5,oops,10\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	_, err := LoadBarsCSV(path, "BTC/USD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close")
}

func TestLoadBarsCSV_WrongFieldCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.csv")
	raw := "timestamp,open,high,low,close,volume\n1717200000,1,2,0.5,1.5\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	_, err := LoadBarsCSV(path, "BTC/USD")
	require.Error(t, err)
}

func TestInnerJoin_DropsUnmatched(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	y := makeSeries("BTC/USD", start, []float64{1, 2, 3, 4})
	x := makeSeries("ETH/USD", start, []float64{10, 20, 30, 40})
	// drop bar 1 from y and bar 2 from x: the join keeps timestamps 0 and 3
	y.Bars = append(y.Bars[:1], y.Bars[2:]...)
	x.Bars = append(x.Bars[:2], x.Bars[3:]...)

	jy, jx := innerJoin(y, x)
	require.Len(t, jy.Bars, 2)
	require.Len(t, jx.Bars, 2)
	assert.True(t, jy.Bars[0].Timestamp.Equal(start))
	assert.True(t, jy.Bars[1].Timestamp.Equal(start.Add(3*time.Hour)))
	for i := range jy.Bars {
		assert.True(t, jy.Bars[i].Timestamp.Equal(jx.Bars[i].Timestamp))
	}
}

func TestLoadPairCSV_AlignsLegs(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	y := makeSeries("BTC/USD", start, []float64{50000, 50100, 50200, 50300})
	x := makeSeries("ETH/USD", start, []float64{3000, 3010, 3020, 3030})
	x.Bars = x.Bars[1:] // ETH misses the first hour

	pathY := filepath.Join(dir, "btc.csv")
	pathX := filepath.Join(dir, "eth.csv")
	require.NoError(t, WriteBarsCSV(pathY, y))
	require.NoError(t, WriteBarsCSV(pathX, x))

	pair, err := LoadPairCSV(pathY, pathX, "BTC/USD", "ETH/USD")
	require.NoError(t, err)
	require.Equal(t, 3, pair.Len())
	assert.Equal(t, "BTC/USD", pair.SymbolY)
	assert.Equal(t, 50100.0, pair.CloseY[0])
	assert.Equal(t, 3010.0, pair.CloseX[0])
}
