package store

import (
	"database/sql"
	"fmt"
)

// Schema history:
// v1: runs table (id, created_at, backend, oracle, inputs, shots, counts, verdict)
// v2: added oracle_kind and correct for verdict accuracy tracking
// v3: added duration_ms

// Migration adds one column to an existing table. CREATE TABLE carries
// the full current schema for fresh databases; these cover databases
// created before a column existed.
type Migration struct {
	Table  string
	Column string
	Def    string
}

var pendingMigrations = []Migration{
	{"runs", "oracle_kind", "TEXT NOT NULL DEFAULT ''"},
	{"runs", "correct", "INTEGER NOT NULL DEFAULT 0"},
	{"runs", "duration_ms", "INTEGER NOT NULL DEFAULT 0"},
}

// runMigrations brings an existing database up to the current schema.
func (s *Store) runMigrations() error {
	for _, m := range pendingMigrations {
		if !tableExists(s.db, m.Table) {
			continue
		}
		if columnExists(s.db, m.Table, m.Column) {
			continue
		}
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("migrate %s.%s: %w", m.Table, m.Column, err)
		}
	}
	return nil
}

// columnExists checks a table for a column using PRAGMA table_info.
func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid, notnull, pk int
			name, ctype      string
			dflt             any
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}

// tableExists checks whether a table is present.
func tableExists(db *sql.DB, table string) bool {
	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table,
	).Scan(&count)
	return err == nil && count > 0
}
