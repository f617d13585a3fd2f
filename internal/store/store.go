// Package store persists saved strategies, chat history, price alerts, the
// waitlist backup and locally entered settings in a single SQLite file.
//
// Each collection is one JSON document under a fixed key named after the
// browser client's localStorage keys; the saved strategies document keeps the
// browser's shape so it can be imported and exported as-is. A document that
// fails to decode is logged and read as empty; the next write replaces it.
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

	"flytz/internal/logging"

	_ "github.com/mattn/go-sqlite3"
)

// Document keys.
const (
	KeyStrategies  = "flytz_strategies_v1"
	KeyChatHistory = "flytz_chat_history"
	KeyAlerts      = "flytz_price_alerts"
	KeyWaitlist    = "flytz_email_waitlist_backup"
	KeySettings    = "settings"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store manages the Flytz database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
	now    func() time.Time
}

// NewStore creates or opens the database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Store("Opened %s", dbPath)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS documents (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`)
	return err
}

// =============================================================================
// DOCUMENT PRIMITIVES
// =============================================================================

// readDoc decodes the document at key into out. It reports false when the key
// is absent or the stored JSON is corrupt. Callers hold s.mu.
func (s *Store) readDoc(key string, out interface{}) (bool, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM documents WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		logging.StoreWarn("Corrupted document %s, treating as empty: %v", key, err)
		return false, nil
	}
	return true, nil
}

// writeDoc replaces the document at key. Callers hold s.mu.
func (s *Store) writeDoc(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO documents (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(data), s.now())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Store) deleteDoc(key string) error {
	if _, err := s.db.Exec(`DELETE FROM documents WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// RawDocument returns the stored JSON for key, for export.
func (s *Store) RawDocument(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRow(`SELECT value FROM documents WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

// ImportDocument stores raw JSON under key after checking it parses.
func (s *Store) ImportDocument(key string, raw []byte) error {
	if !json.Valid(raw) {
		return fmt.Errorf("document %s is not valid JSON", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeDoc(key, json.RawMessage(raw))
}
