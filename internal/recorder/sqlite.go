package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"PatternSentinel/internal/model"
)

// SQLiteRecorder persists scan history to a SQLite database.
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

	// WAL mode so ad-hoc readers don't block the scan writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			mode      TEXT,
			scanned   INTEGER,
			found     INTEGER,
			surfaced  INTEGER,
			errors    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON scan_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS patterns (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id             INTEGER NOT NULL,
			symbol             TEXT NOT NULL,
			asset_type         TEXT,
			status             TEXT,
			mode               TEXT,
			score              INTEGER,
			confidence_pct     REAL,
			peak1_time         INTEGER,
			peak1_price        REAL,
			peak2_time         INTEGER,
			peak2_price        REAL,
			candle_distance    INTEGER,
			price_diff_pct     REAL,
			trough_depth_pct   REAL,
			neckline           REAL,
			current_price      REAL,
			price_target       REAL,
			rsi_peak1          REAL,
			rsi_peak2          REAL,
			rsi_divergence     INTEGER,
			volume_decline_pct REAL,
			generated_at       INTEGER,
			FOREIGN KEY (run_id) REFERENCES scan_runs(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_patterns_run ON patterns(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_patterns_symbol ON patterns(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordScan writes the run summary and every surfaced pattern in one transaction.
func (r *SQLiteRecorder) RecordScan(run *ScanRun, patterns []*model.ScoredPattern) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO scan_runs
		(timestamp, mode, scanned, found, surfaced, errors)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), run.Mode, run.Scanned, run.Found, run.Surfaced, run.Errors,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	for _, p := range patterns {
		c := p.Candidate
		divergence := 0
		if p.Divergence.IsBearishDivergence {
			divergence = 1
		}
		_, err := tx.Exec(`INSERT INTO patterns
			(run_id, symbol, asset_type, status, mode, score, confidence_pct,
			 peak1_time, peak1_price, peak2_time, peak2_price,
			 candle_distance, price_diff_pct, trough_depth_pct,
			 neckline, current_price, price_target,
			 rsi_peak1, rsi_peak2, rsi_divergence,
			 volume_decline_pct, generated_at)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			runID, p.Symbol, p.AssetType, string(p.Status), p.Mode, p.Score, p.ConfidencePct,
			c.Peak1.Time.Unix(), c.Peak1.Price, c.Peak2.Time.Unix(), c.Peak2.Price,
			c.CandleDistance, c.PriceDiffPct, c.TroughDepthPct,
			p.Neckline, p.CurrentPrice, p.PriceTarget,
			p.Divergence.Peak1RSI, p.Divergence.Peak2RSI, divergence,
			p.VolumeDeclinePct, p.GeneratedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("insert pattern %s: %w", p.Symbol, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
