package backtest

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/quantfold/pairtrade/internal/config"
	"github.com/quantfold/pairtrade/internal/domain"
)

// SweepGrid enumerates the parameter combinations to evaluate. Empty
// dimensions fall back to the base config's value.
type SweepGrid struct {
	EstimatorWindows []int     `yaml:"estimator_windows"`
	EntryZ           []float64 `yaml:"entry_z"`
	ExitZ            []float64 `yaml:"exit_z"`
}

// SweepResult is one grid point's outcome.
type SweepResult struct {
	EstimatorWindow int                       `json:"estimator_window"`
	EntryZ          float64                   `json:"entry_z"`
	ExitZ           float64                   `json:"exit_z"`
	FinalEquity     float64                   `json:"final_equity"`
	Trades          int                       `json:"trades"`
	Summary         domain.PerformanceSummary `json:"summary"`
	Err             string                    `json:"error,omitempty"`
}

// Sweep runs every combination of the grid as an independent backtest over
// the shared, immutable input pair, fanned out across workers. Combinations
// violating parameter domains (e.g. exit >= entry) are reported with their
// error rather than aborting the sweep. Results come back sorted by final
// equity, best first.
func Sweep(pair domain.PairSeries, base config.Config, grid SweepGrid, workers int) []SweepResult {
	windows := grid.EstimatorWindows
	if len(windows) == 0 {
		windows = []int{base.Signal.EstimatorWindow}
	}
	entries := grid.EntryZ
	if len(entries) == 0 {
		entries = []float64{base.Strategy.EntryZ}
	}
	exits := grid.ExitZ
	if len(exits) == 0 {
		exits = []float64{base.Strategy.ExitZ}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	type job struct {
		window int
		entry  float64
		exit   float64
	}
	jobs := make(chan job)
	results := make([]SweepResult, 0, len(windows)*len(entries)*len(exits))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				cfg := base
				cfg.Signal.EstimatorWindow = j.window
				cfg.Strategy.EntryZ = j.entry
				cfg.Strategy.ExitZ = j.exit

				sr := SweepResult{EstimatorWindow: j.window, EntryZ: j.entry, ExitZ: j.exit}
				res, err := Run(pair, cfg)
				if err != nil {
					sr.Err = err.Error()
				} else {
					sr.FinalEquity = res.Equity[len(res.Equity)-1].Equity
					sr.Trades = len(res.Trades)
					sr.Summary = res.Summary
				}
				mu.Lock()
				results = append(results, sr)
				mu.Unlock()
			}
		}()
	}

	total := 0
	for _, w := range windows {
		for _, en := range entries {
			for _, ex := range exits {
				jobs <- job{window: w, entry: en, exit: ex}
				total++
			}
		}
	}
	close(jobs)
	wg.Wait()

	sort.Slice(results, func(i, k int) bool {
		if (results[i].Err == "") != (results[k].Err == "") {
			return results[i].Err == ""
		}
		return results[i].FinalEquity > results[k].FinalEquity
	})

	log.Info().
		Int("combinations", total).
		Int("workers", workers).
		Msg(fmt.Sprintf("sweep finished, best final equity %.4f", bestEquity(results)))
	return results
}

func bestEquity(results []SweepResult) float64 {
	if len(results) == 0 || results[0].Err != "" {
		return 0
	}
	return results[0].FinalEquity
}
