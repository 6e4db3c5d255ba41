package history

import (
	"database/sql"
	"time"
)

// OutcomeRecord is one per-snapshot outcome joined with its run's config
type OutcomeRecord struct {
	ID        int64     `json:"id"`
	RunID     int64     `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Config    string    `json:"config"`
	Action    string    `json:"action"`
	Number    int       `json:"number"`
	Path      string    `json:"path"`
	Detail    string    `json:"detail,omitempty"`
}

// RunRecord is one cleanup run with its final counters
type RunRecord struct {
	ID         int64      `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Config     string     `json:"config"`
	Remote     string     `json:"remote"`
	MaxKeep    int        `json:"max_keep"`
	Discovered *int       `json:"discovered,omitempty"`
	Deleted    *int       `json:"deleted,omitempty"`
	Attempts   *int       `json:"attempts,omitempty"`
}

const outcomeColumns = `
	SELECT o.id, o.run_id, o.timestamp, r.config, o.action, o.number, o.path, o.detail
	FROM outcomes o
	JOIN runs r ON r.id = o.run_id
`

// RecentOutcomes returns the N most recent per-snapshot outcomes
func (d *DB) RecentOutcomes(limit int) ([]OutcomeRecord, error) {
	return d.queryOutcomes(outcomeColumns+` ORDER BY o.timestamp DESC LIMIT ?`, limit)
}

// OutcomesByAction returns recent outcomes filtered by action type
func (d *DB) OutcomesByAction(action string, limit int) ([]OutcomeRecord, error) {
	return d.queryOutcomes(outcomeColumns+` WHERE o.action = ? ORDER BY o.timestamp DESC LIMIT ?`, action, limit)
}

// OutcomesByConfig returns recent outcomes for one snapper config
func (d *DB) OutcomesByConfig(configName string, limit int) ([]OutcomeRecord, error) {
	return d.queryOutcomes(outcomeColumns+` WHERE r.config = ? ORDER BY o.timestamp DESC LIMIT ?`, configName, limit)
}

func (d *DB) queryOutcomes(query string, args ...interface{}) ([]OutcomeRecord, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []OutcomeRecord
	for rows.Next() {
		var rec OutcomeRecord
		var detail sql.NullString
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Timestamp, &rec.Config, &rec.Action, &rec.Number, &rec.Path, &detail); err != nil {
			return nil, err
		}
		rec.Detail = detail.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RecentRuns returns the N most recent cleanup runs
func (d *DB) RecentRuns(limit int) ([]RunRecord, error) {
	rows, err := d.db.Query(`
		SELECT id, started_at, finished_at, config, remote, max_keep, discovered, deleted, attempts
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var finished sql.NullTime
		var discovered, deleted, attempts sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.StartedAt, &finished, &rec.Config, &rec.Remote, &rec.MaxKeep, &discovered, &deleted, &attempts); err != nil {
			return nil, err
		}
		if finished.Valid {
			t := finished.Time
			rec.FinishedAt = &t
		}
		rec.Discovered = nullableInt(discovered)
		rec.Deleted = nullableInt(deleted)
		rec.Attempts = nullableInt(attempts)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
