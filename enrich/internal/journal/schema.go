package journal

// Schema contains the DDL for the journal tables. Applied by Open.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    started_at INTEGER NOT NULL,
    finished_at INTEGER,
    source TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'running',
    processed INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0,
    failed INTEGER NOT NULL DEFAULT 0,
    error TEXT
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);

CREATE TABLE IF NOT EXISTS wallet_outcomes (
    outcome_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    row_index INTEGER NOT NULL,
    wallet TEXT NOT NULL,
    status TEXT NOT NULL,
    activities TEXT,
    holdings_pnl TEXT,
    error TEXT,
    screenshot TEXT,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_outcomes_run ON wallet_outcomes(run_id, row_index);
CREATE INDEX IF NOT EXISTS idx_outcomes_wallet ON wallet_outcomes(wallet, created_at DESC);
`
