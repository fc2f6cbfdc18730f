// Package storage keeps a local history of backtest runs so parameter
// experiments remain comparable across sessions. SQLite via modernc (pure
// Go, no CGo); one row per run plus its closed trades.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/quantfold/pairtrade/internal/backtest"
	"github.com/quantfold/pairtrade/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    started_at    DATETIME NOT NULL,
    symbol_y      TEXT NOT NULL,
    symbol_x      TEXT NOT NULL,
    timeframe     TEXT NOT NULL,
    bars          INTEGER NOT NULL,
    config_json   TEXT NOT NULL,
    total_return  REAL NOT NULL,
    sharpe        REAL,
    max_drawdown  REAL NOT NULL,
    hit_rate      REAL,
    closed_trades INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
    run_id       TEXT NOT NULL REFERENCES runs(id),
    seq          INTEGER NOT NULL,
    entry_time   DATETIME NOT NULL,
    exit_time    DATETIME NOT NULL,
    direction    TEXT NOT NULL,
    size         REAL NOT NULL,
    entry_spread REAL NOT NULL,
    exit_spread  REAL NOT NULL,
    gross_pnl    REAL NOT NULL,
    net_pnl      REAL NOT NULL,
    holding_bars INTEGER NOT NULL,
    exit_reason  TEXT NOT NULL,
    PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
`

// RunRecord is a stored run summary row.
type RunRecord struct {
	ID           string
	StartedAt    time.Time
	SymbolY      string
	SymbolX      string
	Timeframe    string
	Bars         int
	TotalReturn  float64
	Sharpe       domain.OptFloat
	MaxDrawdown  float64
	HitRate      domain.OptFloat
	ClosedTrades int
}

// RunStore persists runs to a SQLite file.
type RunStore struct {
	db *sql.DB
}

// NewRunStore opens (or creates) the database and applies the schema.
func NewRunStore(path string) (*RunStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &RunStore{db: db}, nil
}

// Close releases the database handle.
func (s *RunStore) Close() error { return s.db.Close() }

// SaveRun writes one finished run and its trades atomically.
func (s *RunStore) SaveRun(ctx context.Context, res *backtest.Result) error {
	cfgJSON, err := json.Marshal(res.Config)
	if err != nil {
		return fmt.Errorf("marshal run config: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, symbol_y, symbol_x, timeframe, bars,
			config_json, total_return, sharpe, max_drawdown, hit_rate, closed_trades)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.StartedAt,
		res.Config.Data.SymbolY, res.Config.Data.SymbolX, res.Config.Data.Timeframe,
		res.Summary.Bars, string(cfgJSON),
		res.Summary.TotalReturn, nullable(res.Summary.Sharpe),
		res.Summary.MaxDrawdown, nullable(res.Summary.HitRate),
		res.Summary.ClosedTrades,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", res.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades (run_id, seq, entry_time, exit_time, direction, size,
			entry_spread, exit_spread, gross_pnl, net_pnl, holding_bars, exit_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare trade insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range res.Trades {
		if _, err := stmt.ExecContext(ctx,
			res.RunID, i, t.EntryTime, t.ExitTime, t.Direction.String(), t.Size,
			t.EntrySpread, t.ExitSpread, t.GrossPnL, t.NetPnL, t.HoldingBars,
			string(t.ExitReason),
		); err != nil {
			return fmt.Errorf("insert trade %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// ListRuns returns stored run summaries, newest first.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, symbol_y, symbol_x, timeframe, bars,
			total_return, sharpe, max_drawdown, hit_rate, closed_trades
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var sharpe, hitRate sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.SymbolY, &r.SymbolX, &r.Timeframe,
			&r.Bars, &r.TotalReturn, &sharpe, &r.MaxDrawdown, &hitRate, &r.ClosedTrades,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if sharpe.Valid {
			r.Sharpe = domain.Float(sharpe.Float64)
		}
		if hitRate.Valid {
			r.HitRate = domain.Float(hitRate.Float64)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// nullable maps an absent OptFloat to SQL NULL.
func nullable(v domain.OptFloat) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Value
}
