package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Actions recorded per snapshot outcome
const (
	ActionDelete = "DELETE"
	ActionSkip   = "SKIP"
	ActionError  = "ERROR"
)

// DB manages the SQLite database holding cleanup run history
type DB struct {
	db *sql.DB
}

// Open creates a new database connection and initializes the schema
func Open(dbPath string) (*DB, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// file: prefix with _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// A trivial query both checks permissions and forces file creation
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	// WAL mode allows the query tool to read while a run is writing
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	h := &DB{db: db}
	if err = h.initSchema(); err != nil {
		return nil, err
	}

	err = nil
	return h, nil
}

func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		config TEXT NOT NULL,
		remote TEXT NOT NULL,
		max_keep INTEGER NOT NULL,
		discovered INTEGER,
		deleted INTEGER,
		attempts INTEGER
	);

	CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		number INTEGER NOT NULL,
		path TEXT NOT NULL,
		detail TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
	CREATE INDEX IF NOT EXISTS idx_outcomes_action ON outcomes(action);
	CREATE INDEX IF NOT EXISTS idx_outcomes_timestamp ON outcomes(timestamp);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := d.db.Exec(schema)
	return err
}

// BeginRun records the start of a cleanup run and returns its id
func (d *DB) BeginRun(configName, remote string, maxKeep int) (int64, error) {
	res, err := d.db.Exec(
		`INSERT INTO runs (started_at, config, remote, max_keep) VALUES (?, ?, ?, ?)`,
		time.Now().UTC(), configName, remote, maxKeep,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FinishRun records the final counters of a cleanup run
func (d *DB) FinishRun(runID int64, discovered, deleted, attempts int) error {
	_, err := d.db.Exec(
		`UPDATE runs SET finished_at = ?, discovered = ?, deleted = ?, attempts = ? WHERE id = ?`,
		time.Now().UTC(), discovered, deleted, attempts, runID,
	)
	return err
}

// RecordOutcome inserts a per-snapshot outcome for a run
func (d *DB) RecordOutcome(runID int64, action string, number int, path, detail string) error {
	_, err := d.db.Exec(
		`INSERT INTO outcomes (run_id, timestamp, action, number, path, detail) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC(), action, number, path, detail,
	)
	return err
}

// RunRecorder binds outcome recording to a single run id
type RunRecorder struct {
	db    *DB
	runID int64
}

// Run returns a recorder scoped to the given run
func (d *DB) Run(runID int64) *RunRecorder {
	return &RunRecorder{db: d, runID: runID}
}

func (r *RunRecorder) RecordOutcome(action string, number int, path, detail string) error {
	return r.db.RecordOutcome(r.runID, action, number, path, detail)
}

func (d *DB) Close() error {
	return d.db.Close()
}
