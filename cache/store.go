// Package cache persists compiled bytecode keyed by source hash, so
// repeated runs of an unchanged program skip the front end.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed compile cache.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS programs (
		hash TEXT PRIMARY KEY,
		bytecode BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the cached bytecode for a source hash, if present.
func (s *Store) Get(hash string) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT bytecode FROM programs WHERE hash = ?`, hash).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying cache: %w", err)
	}
	return data, true, nil
}

// Put stores bytecode under a source hash, replacing any previous entry.
func (s *Store) Put(hash string, data []byte) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO programs (hash, bytecode) VALUES (?, ?)`, hash, data)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// SourceHash returns the cache key for a source text.
func SourceHash(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}
