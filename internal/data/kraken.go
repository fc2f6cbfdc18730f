package data

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/quantfold/pairtrade/internal/domain"
)

const krakenBaseURL = "https://api.kraken.com/0/public"

// krakenPairs maps config symbols to Kraken pair codes.
var krakenPairs = map[string]string{
	"BTC/USD": "XBTUSD",
	"ETH/USD": "ETHUSD",
}

// timeframeMinutes maps bar timeframes to Kraken OHLC intervals.
var timeframeMinutes = map[string]int{
	"1m":  1,
	"5m":  5,
	"15m": 15,
	"1h":  60,
	"4h":  240,
	"1d":  1440,
}

// KrakenClient fetches public OHLC candles. Calls are rate limited to the
// public API budget and wrapped in a circuit breaker so a flapping endpoint
// fails fast instead of hammering.
type KrakenClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewKrakenClient builds a client with the public-tier defaults: 1 request
// per second, 30s timeout, breaker tripping after 5 consecutive failures.
func NewKrakenClient() *KrakenClient {
	return &KrakenClient{
		baseURL: krakenBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(1.0), 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "kraken-public",
			Timeout: 60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).
					Str("from", from.String()).Str("to", to.String()).
					Msg("circuit breaker state change")
			},
		}),
	}
}

// NewKrakenClientAt points the client at an alternate base URL (tests).
func NewKrakenClientAt(baseURL string) *KrakenClient {
	c := NewKrakenClient()
	c.baseURL = baseURL
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

type krakenEnvelope struct {
	Error  []string                   `json:"error"`
	Result map[string]json.RawMessage `json:"result"`
}

// OHLC fetches up to limit candles for the configured symbol/timeframe pair.
// Kraken returns at most 720 candles per call; asking for more is truncated
// to what the venue serves.
func (c *KrakenClient) OHLC(ctx context.Context, symbol, timeframe string, limit int) (domain.BarSeries, error) {
	pair, ok := krakenPairs[symbol]
	if !ok {
		return domain.BarSeries{}, fmt.Errorf("no kraken pair mapping for %q", symbol)
	}
	interval, ok := timeframeMinutes[timeframe]
	if !ok {
		return domain.BarSeries{}, fmt.Errorf("unsupported timeframe %q", timeframe)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.BarSeries{}, err
	}

	u := fmt.Sprintf("%s/OHLC?%s", c.baseURL, url.Values{
		"pair":     {pair},
		"interval": {strconv.Itoa(interval)},
	}.Encode())

	body, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("kraken OHLC %s: status %d", pair, resp.StatusCode)
		}
		var env krakenEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return nil, fmt.Errorf("decode kraken response: %w", err)
		}
		if len(env.Error) > 0 {
			return nil, fmt.Errorf("kraken error: %v", env.Error)
		}
		return env.Result, nil
	})
	if err != nil {
		return domain.BarSeries{}, fmt.Errorf("fetch %s %s: %w", symbol, timeframe, err)
	}

	result := body.(map[string]json.RawMessage)
	bars, err := parseKrakenOHLC(result, pair)
	if err != nil {
		return domain.BarSeries{}, err
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}

	log.Info().Str("symbol", symbol).Str("timeframe", timeframe).
		Int("bars", len(bars)).Msg("fetched kraken OHLC")
	return domain.BarSeries{Symbol: symbol, Bars: bars}, nil
}

// parseKrakenOHLC extracts the candle array for the pair. Kraken keys the
// result by its internal pair name (e.g. XXBTZUSD for XBTUSD), so take the
// sole non-"last" entry.
func parseKrakenOHLC(result map[string]json.RawMessage, pair string) ([]domain.Bar, error) {
	// Rows mix types: [time, "open", "high", "low", "close", "vwap", "volume", count]
	var raw [][]json.RawMessage
	found := false
	for key, msg := range result {
		if key == "last" {
			continue
		}
		if err := json.Unmarshal(msg, &raw); err != nil {
			return nil, fmt.Errorf("decode OHLC rows for %s: %w", key, err)
		}
		found = true
		break
	}
	if !found {
		return nil, fmt.Errorf("kraken response has no OHLC data for %s", pair)
	}

	bars := make([]domain.Bar, 0, len(raw))
	for i, row := range raw {
		if len(row) < 7 {
			return nil, fmt.Errorf("OHLC row %d has %d fields", i, len(row))
		}
		var ts int64
		if err := json.Unmarshal(row[0], &ts); err != nil {
			return nil, fmt.Errorf("OHLC row %d timestamp: %w", i, err)
		}
		fields := make([]float64, 4)
		for j := 1; j <= 4; j++ {
			v, err := numField(row[j])
			if err != nil {
				return nil, fmt.Errorf("OHLC row %d field %d: %w", i, j, err)
			}
			fields[j-1] = v
		}
		vol, err := numField(row[6])
		if err != nil {
			return nil, fmt.Errorf("OHLC row %d volume: %w", i, err)
		}
		bars = append(bars, domain.Bar{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      fields[0],
			High:      fields[1],
			Low:       fields[2],
			Close:     fields[3],
			Volume:    vol,
		})
	}
	return bars, nil
}

// numField parses a value Kraken serializes either as a JSON number or as a
// decimal string.
func numField(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseFloat(s, 64)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	return f, nil
}
