package lemma

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the cache in a lemma_cache table, one row per token.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the SQLite database at path and
// ensures the lemma_cache table exists.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite cache: no path configured")
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open lemma cache db: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS lemma_cache (
		token      TEXT PRIMARY KEY,
		lemma      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create lemma_cache table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load reads every cached token.
func (s *SQLiteStore) Load() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT token, lemma FROM lemma_cache`)
	if err != nil {
		return nil, fmt.Errorf("load lemma cache: %w", err)
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var token, lemma string
		if err := rows.Scan(&token, &lemma); err != nil {
			return nil, fmt.Errorf("scan lemma cache: %w", err)
		}
		m[token] = lemma
	}
	return m, rows.Err()
}

// Save upserts every entry in one transaction.
func (s *SQLiteStore) Save(m map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO lemma_cache (token, lemma, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET lemma = excluded.lemma, updated_at = excluded.updated_at
		WHERE lemma_cache.lemma <> excluded.lemma`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for token, lemma := range m {
		if _, err := stmt.Exec(token, lemma, now); err != nil {
			return fmt.Errorf("upsert %s: %w", token, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of cached tokens.
func (s *SQLiteStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM lemma_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count lemma cache: %w", err)
	}
	return n, nil
}

// Close closes the SQLite connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
