// Package storex provides the durable key-value store backing client-side
// state: visitor identity, auth token, cached user, anonymous cart marker.
package storex

import (
	"database/sql"
	"errors"
	"sync"

	_ "modernc.org/sqlite"
)

// Store is a string-keyed durable store. Implementations must be safe for
// concurrent use. Get reports absence via the bool, not an error.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// SQLite is a Store backed by a single-table sqlite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the state database at path.
// Use "file:state?mode=memory&cache=shared" for an in-memory store.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("storex: empty db path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Single connection: the store is a tiny kv table and modernc sqlite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(key string) (string, bool) {
	var v string
	err := s.db.QueryRow(`SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if err != nil {
		return "", false
	}
	return v, true
}

func (s *SQLite) Set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO kv (k, v) VALUES (?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v`, key, value)
	return err
}

func (s *SQLite) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE k = ?`, key)
	return err
}

func (s *SQLite) Close() error { return s.db.Close() }

// Memory is an in-process Store for tests. FailWrites simulates a storage
// quota failure: Set/Delete return an error and leave data untouched.
type Memory struct {
	mu         sync.RWMutex
	m          map[string]string
	FailWrites bool
	FailReads  bool
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

var errWriteFailed = errors.New("storex: write failed")

func (s *Memory) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailReads {
		return "", false
	}
	v, ok := s.m[key]
	return v, ok
}

func (s *Memory) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return errWriteFailed
	}
	s.m[key] = value
	return nil
}

func (s *Memory) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return errWriteFailed
	}
	delete(s.m, key)
	return nil
}

func (s *Memory) Close() error { return nil }
