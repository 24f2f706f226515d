// CLAUDE:SUMMARY SQLite journal of runs and per-wallet outcomes; best-effort writes that never fail the pipeline.
// Package journal records each run and the outcome of every wallet it
// touched in a local SQLite database, for diagnosis after the fact. The
// spreadsheet remains the only store of metric values that matters for
// resume.
//
// Usage:
//
//	import _ "modernc.org/sqlite"
//	j, err := journal.Open("walletscan.db", logger)
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Outcome is one wallet's result within a run.
type Outcome struct {
	Row         int
	Wallet      string
	Status      string
	Activities  string
	HoldingsPnL string
	Error       string
	Screenshot  string
	Duration    time.Duration
}

// Totals are the per-run counters written by FinishRun.
type Totals struct {
	Processed int
	Skipped   int
	Failed    int
}

// Run is a row of the runs table.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
	Source     string
	Status     string
	Totals     Totals
	Error      string
}

// Journal writes to the journal database. Write methods log failures and
// return nothing: a broken journal must not stop a run.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Open opens (creating if needed) the journal at path and applies Schema.
// The caller must blank-import modernc.org/sqlite.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("journal: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}
	// One writer; also keeps ":memory:" on a single database.
	db.SetMaxOpenConns(1)

	for _, p := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("journal: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: schema: %w", err)
	}
	return New(db, logger), nil
}

// New wraps an already-initialised database.
func New(db *sql.DB, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{
		db:     db,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return "run_" + uuid.Must(uuid.NewV7()).String() },
	}
}

// Close closes the database.
func (j *Journal) Close() error { return j.db.Close() }

// StartRun inserts a running row and returns its ID.
func (j *Journal) StartRun(ctx context.Context, source string) string {
	id := j.newID()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, source) VALUES (?, ?, ?)`,
		id, j.now().UnixMilli(), source)
	if err != nil {
		j.logger.Warn("journal: start run failed", "run_id", id, "error", err)
	}
	return id
}

// RecordOutcome appends a wallet outcome to runID.
func (j *Journal) RecordOutcome(ctx context.Context, runID string, o Outcome) {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO wallet_outcomes (
			run_id, row_index, wallet, status, activities, holdings_pnl,
			error, screenshot, duration_ms, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		runID, o.Row, o.Wallet, o.Status, nullable(o.Activities), nullable(o.HoldingsPnL),
		nullable(o.Error), nullable(o.Screenshot), o.Duration.Milliseconds(), j.now().UnixMilli())
	if err != nil {
		j.logger.Warn("journal: record outcome failed", "run_id", runID, "row", o.Row, "error", err)
	}
}

// FinishRun closes runID with its totals. runErr is nil on success.
func (j *Journal) FinishRun(ctx context.Context, runID string, t Totals, runErr error) {
	status, msg := "done", ""
	if runErr != nil {
		status, msg = "failed", runErr.Error()
	}
	_, err := j.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, status = ?, processed = ?, skipped = ?, failed = ?, error = ?
		WHERE run_id = ?`,
		j.now().UnixMilli(), status, t.Processed, t.Skipped, t.Failed, nullable(msg), runID)
	if err != nil {
		j.logger.Warn("journal: finish run failed", "run_id", runID, "error", err)
	}
}

// Recent returns the latest runs, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, started_at, COALESCE(finished_at, 0), source, status,
		       processed, skipped, failed, COALESCE(error, '')
		FROM runs ORDER BY started_at DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		if err := rows.Scan(&r.ID, &started, &finished, &r.Source, &r.Status,
			&r.Totals.Processed, &r.Totals.Skipped, &r.Totals.Failed, &r.Error); err != nil {
			return nil, fmt.Errorf("journal: scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(started)
		if finished > 0 {
			r.FinishedAt = time.UnixMilli(finished)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Outcomes returns the outcomes recorded for runID in row order.
func (j *Journal) Outcomes(ctx context.Context, runID string) ([]Outcome, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT row_index, wallet, status, COALESCE(activities, ''), COALESCE(holdings_pnl, ''),
		       COALESCE(error, ''), COALESCE(screenshot, ''), duration_ms
		FROM wallet_outcomes WHERE run_id = ? ORDER BY outcome_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("journal: outcomes: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		var ms int64
		if err := rows.Scan(&o.Row, &o.Wallet, &o.Status, &o.Activities, &o.HoldingsPnL,
			&o.Error, &o.Screenshot, &ms); err != nil {
			return nil, fmt.Errorf("journal: scan outcome: %w", err)
		}
		o.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, o)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
