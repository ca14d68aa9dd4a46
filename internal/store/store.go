// Package store persists scoring runs and their per-atom results in a
// local SQLite database so runs can be compared over time.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store provides persistence for scoring runs.
type Store struct {
	db *sql.DB
}

// Run describes one recorded scoring run.
type Run struct {
	RunID       string          `json:"run_id"`
	AtomsPath   string          `json:"atoms_path"`
	MapPath     string          `json:"map_path"`
	Method      string          `json:"method"`
	Params      json.RawMessage `json:"params,omitempty"`
	NAtoms      int             `json:"n_atoms"`
	NScored     int             `json:"n_scored"` // atoms with a defined score
	MeanQ       float64         `json:"mean_q"`   // over defined scores; NaN if none
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
}

// Open opens (creating if needed) the run database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS qscore_runs (
			run_id        TEXT PRIMARY KEY,
			atoms_path    TEXT,
			map_path      TEXT,
			method        TEXT,
			params        TEXT,
			n_atoms       BIGINT,
			n_scored      BIGINT,
			mean_q        DOUBLE,
			started_at    TIMESTAMP,
			completed_at  TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS qscore_atom_scores (
			run_id        TEXT,
			atom_index    BIGINT,
			q             DOUBLE,
			FOREIGN KEY(run_id) REFERENCES qscore_runs(run_id)
		);
		CREATE INDEX IF NOT EXISTS idx_atom_scores_run
			ON qscore_atom_scores(run_id, atom_index);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create run schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts a run and its per-atom scores, returning the run ID
// (generated when run.RunID is empty). Undefined scores (NaN) are stored
// as NULL and excluded from the run's mean.
func (s *Store) RecordRun(run Run, scores []float64) (string, error) {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	run.NAtoms = len(scores)
	run.NScored, run.MeanQ = summarise(scores)

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin run insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO qscore_runs (
			run_id, atoms_path, map_path, method, params,
			n_atoms, n_scored, mean_q, started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.AtomsPath,
		run.MapPath,
		run.Method,
		string(run.Params),
		run.NAtoms,
		run.NScored,
		nullIfNaN(run.MeanQ),
		run.StartedAt.UTC().Format(time.RFC3339),
		run.CompletedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert run %s: %w", run.RunID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO qscore_atom_scores (run_id, atom_index, q) VALUES (?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare score insert: %w", err)
	}
	defer stmt.Close()
	for i, q := range scores {
		if _, err := stmt.Exec(run.RunID, i, nullIfNaN(q)); err != nil {
			return "", fmt.Errorf("insert score for atom %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run %s: %w", run.RunID, err)
	}
	return run.RunID, nil
}

// ListRuns returns recorded runs, most recent first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT run_id, atoms_path, map_path, method, params,
		       n_atoms, n_scored, mean_q, started_at, completed_at
		FROM qscore_runs
		ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var params string
		var meanQ sql.NullFloat64
		var started, completed string
		if err := rows.Scan(&r.RunID, &r.AtomsPath, &r.MapPath, &r.Method, &params,
			&r.NAtoms, &r.NScored, &meanQ, &started, &completed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if params != "" {
			r.Params = json.RawMessage(params)
		}
		r.MeanQ = floatOrNaN(meanQ)
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			r.StartedAt = t
		}
		if t, err := time.Parse(time.RFC3339, completed); err == nil {
			r.CompletedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Scores returns the per-atom scores of one run in atom order, NaN where
// the correlation was undefined.
func (s *Store) Scores(runID string) ([]float64, error) {
	rows, err := s.db.Query(`
		SELECT q FROM qscore_atom_scores
		WHERE run_id = ?
		ORDER BY atom_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("load scores for run %s: %w", runID, err)
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var q sql.NullFloat64
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, floatOrNaN(q))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if scores == nil {
		return nil, fmt.Errorf("no scores recorded for run %s", runID)
	}
	return scores, nil
}

func summarise(scores []float64) (defined int, mean float64) {
	sum := 0.0
	for _, q := range scores {
		if !math.IsNaN(q) {
			defined++
			sum += q
		}
	}
	if defined == 0 {
		return 0, math.NaN()
	}
	return defined, sum / float64(defined)
}

func nullIfNaN(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
