package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pable/go-cricket-metrics/internal/features"
)

// FeatureRun is one persisted training-table build.
type FeatureRun struct {
	ID        string
	CreatedAt time.Time
	Params    features.Params
	Schema    []string
	Rows      int
}

// ShortID returns the first 8 characters of the run id, for display.
func (r FeatureRun) ShortID() string {
	if len(r.ID) <= 8 {
		return r.ID
	}
	return r.ID[:8]
}

// CreateFeatureRun stores a training table under a fresh run id and returns
// the run. Rows keep their input order via row_index.
func (db *DB) CreateFeatureRun(p features.Params, rows []features.Vector) (*FeatureRun, error) {
	run := &FeatureRun{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Params:    p,
		Schema:    features.Schema,
		Rows:      len(rows),
	}
	params, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}
	schema, err := json.Marshal(run.Schema)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO feature_runs(run_id, created_at, params, schema, row_count)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.Format(timeLayout), string(params), string(schema), run.Rows,
	)
	if err != nil {
		return nil, fmt.Errorf("insert feature run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO feature_rows(run_id, match_id, row_index, vector)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for i, v := range rows {
		b, err := json.Marshal(v.Values)
		if err != nil {
			return nil, fmt.Errorf("encode row %d: %w", v.MatchID, err)
		}
		if _, err := stmt.Exec(run.ID, v.MatchID, i, string(b)); err != nil {
			return nil, fmt.Errorf("insert feature row %d: %w", v.MatchID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return run, nil
}

// fixed-width so created_at sorts lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "run_id, created_at, params, schema, row_count"

// ListFeatureRuns returns all runs, newest first.
func (db *DB) ListFeatureRuns() ([]FeatureRun, error) {
	rows, err := db.conn.Query("SELECT " + runColumns + " FROM feature_runs ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FeatureRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetFeatureRunByPrefix finds a run whose id starts with the given prefix.
// Returns nil, nil when nothing matches.
func (db *DB) GetFeatureRunByPrefix(prefix string) (*FeatureRun, error) {
	row := db.conn.QueryRow(
		"SELECT "+runColumns+" FROM feature_runs WHERE run_id LIKE ? ORDER BY created_at DESC LIMIT 1",
		prefix+"%",
	)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FeatureRows returns every stored vector of a run, in build order.
func (db *DB) FeatureRows(runID string) ([]features.Vector, error) {
	rows, err := db.conn.Query(
		"SELECT match_id, vector FROM feature_rows WHERE run_id = ? ORDER BY row_index", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []features.Vector
	for rows.Next() {
		v, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetFeatureRow returns one match's vector from a run, or nil if absent.
func (db *DB) GetFeatureRow(runID string, matchID int64) (*features.Vector, error) {
	row := db.conn.QueryRow(
		"SELECT match_id, vector FROM feature_rows WHERE run_id = ? AND match_id = ?", runID, matchID)
	v, err := scanRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// DeleteFeatureRun removes a run and its rows. Returns false if no such run.
func (db *DB) DeleteFeatureRun(runID string) (bool, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM feature_rows WHERE run_id = ?", runID); err != nil {
		return false, err
	}
	res, err := tx.Exec("DELETE FROM feature_runs WHERE run_id = ?", runID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, tx.Commit()
}

func scanRun(r scanner) (FeatureRun, error) {
	var (
		run            FeatureRun
		created        string
		params, schema string
	)
	if err := r.Scan(&run.ID, &created, &params, &schema, &run.Rows); err != nil {
		return run, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return run, fmt.Errorf("run %s: bad created_at %q: %w", run.ID, created, err)
	}
	run.CreatedAt = t
	if err := json.Unmarshal([]byte(params), &run.Params); err != nil {
		return run, fmt.Errorf("run %s: decode params: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(schema), &run.Schema); err != nil {
		return run, fmt.Errorf("run %s: decode schema: %w", run.ID, err)
	}
	return run, nil
}

func scanRow(r scanner) (features.Vector, error) {
	var (
		v   features.Vector
		raw string
	)
	if err := r.Scan(&v.MatchID, &raw); err != nil {
		return v, err
	}
	if err := json.Unmarshal([]byte(raw), &v.Values); err != nil {
		return v, fmt.Errorf("match %d: decode vector: %w", v.MatchID, err)
	}
	return v, nil
}
