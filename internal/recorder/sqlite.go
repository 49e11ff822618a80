package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"MarketSim/internal/logger"
	"MarketSim/internal/model"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// SQLiteRecorder exports simulation runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	// WAL lets dashboards read while a run is being written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id           TEXT PRIMARY KEY,
			generated_at INTEGER NOT NULL,
			anchor       TEXT NOT NULL,
			seed         INTEGER NOT NULL,
			start_price  REAL NOT NULL,
			num_days     INTEGER NOT NULL,
			volatility   REAL NOT NULL,
			ma_window    INTEGER NOT NULL,
			params_json  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_generated ON runs(generated_at)`,

		`CREATE TABLE IF NOT EXISTS series_rows (
			run_id       TEXT NOT NULL REFERENCES runs(id),
			idx          INTEGER NOT NULL,
			date         TEXT NOT NULL,
			price        REAL NOT NULL,
			moving_avg   REAL,
			daily_return REAL,
			PRIMARY KEY (run_id, idx)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Render stores the run and all of its rows in one transaction.
func (r *SQLiteRecorder) Render(ctx context.Context, res *model.SimulationResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	params, err := json.Marshal(res.Params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	p := res.Params
	if _, err := tx.ExecContext(ctx, `INSERT INTO runs
		(id, generated_at, anchor, seed, start_price, num_days, volatility, ma_window, params_json)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		res.ID, res.GeneratedAt.Unix(), res.Anchor.Format(dateLayout), res.Seed,
		p.StartPrice, p.NumDays, p.VolatilityPercent, p.MAWindow, string(params),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO series_rows
		(run_id, idx, date, price, moving_avg, daily_return)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare rows: %w", err)
	}
	defer stmt.Close()

	for i, row := range res.Series {
		if _, err := stmt.ExecContext(ctx, res.ID, i, row.Date.Format(dateLayout),
			row.Price, row.MovingAverage, row.DailyReturn); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	logger.Debug("recorded run %s (%d rows)", res.ID, len(res.Series))
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (r *SQLiteRecorder) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx, `SELECT r.id, r.generated_at, r.anchor, r.seed,
			r.start_price, r.num_days, r.volatility, r.ma_window,
			(SELECT COUNT(*) FROM series_rows s WHERE s.run_id = r.id)
		FROM runs r ORDER BY r.generated_at DESC, r.rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			rec       RunRecord
			generated int64
			anchor    string
		)
		if err := rows.Scan(&rec.ID, &generated, &anchor, &rec.Seed,
			&rec.Params.StartPrice, &rec.Params.NumDays, &rec.Params.VolatilityPercent, &rec.Params.MAWindow,
			&rec.Rows); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.GeneratedAt = time.Unix(generated, 0)
		if rec.Anchor, err = time.Parse(dateLayout, anchor); err != nil {
			return nil, fmt.Errorf("parse anchor %q: %w", anchor, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// LoadSeries reads back the rows stored for a run, in order.
func (r *SQLiteRecorder) LoadSeries(ctx context.Context, runID string) (model.DerivedSeries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx, `SELECT date, price, moving_avg, daily_return
		FROM series_rows WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	var series model.DerivedSeries
	for rows.Next() {
		var (
			date    string
			row     model.Row
			ma, ret sql.NullFloat64
		)
		if err := rows.Scan(&date, &row.Price, &ma, &ret); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if row.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("parse date %q: %w", date, err)
		}
		if ma.Valid {
			row.MovingAverage = model.Some(ma.Float64)
		}
		if ret.Valid {
			row.DailyReturn = model.Some(ret.Float64)
		}
		series = append(series, row)
	}
	return series, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	logger.Info("closing sqlite recorder")
	return r.db.Close()
}
