// Package store persists run history in a local SQLite database, so the
// walkthrough can show how verdicts held up across backends and shots.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/strikereaper/qiskit-tutorial/internal/result"
)

// ErrRunNotFound is returned when a run ID is not in the database.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded execution.
type Run struct {
	ID         string
	CreatedAt  time.Time
	Backend    string
	Oracle     string // human description, e.g. "balanced (mask 101)"
	OracleKind string
	Inputs     int
	Shots      int
	Counts     result.Counts
	Verdict    string
	Correct    bool // verdict agreed with the oracle's actual kind
	Duration   time.Duration
}

// Store wraps the SQLite database holding run history.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates or opens the database at path and brings the schema up
// to date.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	// Single writer keeps SQLite happy under concurrent commands.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			backend TEXT NOT NULL,
			oracle TEXT NOT NULL,
			oracle_kind TEXT NOT NULL,
			inputs INTEGER NOT NULL,
			shots INTEGER NOT NULL,
			counts TEXT NOT NULL,
			verdict TEXT NOT NULL,
			correct INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveRun records one execution. A zero CreatedAt is stamped with now.
func (s *Store) SaveRun(r *Run) error {
	if r.ID == "" {
		return fmt.Errorf("run needs an id")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	counts, err := json.Marshal(r.Counts)
	if err != nil {
		return fmt.Errorf("encode counts: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(`
		INSERT INTO runs (id, created_at, backend, oracle, oracle_kind, inputs, shots, counts, verdict, correct, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt, r.Backend, r.Oracle, r.OracleKind, r.Inputs, r.Shots,
		string(counts), r.Verdict, boolToInt(r.Correct), r.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.ID, err)
	}
	return nil
}

// ListRuns returns the newest runs first, up to limit (0 means all).
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, created_at, backend, oracle, oracle_kind, inputs, shots, counts, verdict, correct, duration_ms
		FROM runs ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun fetches one run by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, created_at, backend, oracle, oracle_kind, inputs, shots, counts, verdict, correct, duration_ms
		FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	return r, err
}

// Stats summarizes the recorded history.
type Stats struct {
	TotalRuns int
	Correct   int
	Constant  int
	Balanced  int
}

// Stats aggregates over all recorded runs.
func (s *Store) Stats() (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(correct), 0),
		       COALESCE(SUM(CASE WHEN oracle_kind = 'constant' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN oracle_kind = 'balanced' THEN 1 ELSE 0 END), 0)
		FROM runs`)
	st := &Stats{}
	if err := row.Scan(&st.TotalRuns, &st.Correct, &st.Constant, &st.Balanced); err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

// Prune deletes all but the newest keep runs, returning how many were
// removed.
func (s *Store) Prune(keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be non-negative, got %d", keep)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY created_at DESC, id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		r          Run
		counts     string
		correct    int
		durationMS int64
	)
	err := row.Scan(&r.ID, &r.CreatedAt, &r.Backend, &r.Oracle, &r.OracleKind,
		&r.Inputs, &r.Shots, &counts, &r.Verdict, &correct, &durationMS)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(counts), &r.Counts); err != nil {
		return nil, fmt.Errorf("decode counts for run %s: %w", r.ID, err)
	}
	r.Correct = correct != 0
	r.Duration = time.Duration(durationMS) * time.Millisecond
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
