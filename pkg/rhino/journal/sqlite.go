package journal

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists journal entries to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite journal store.
// The path should be a file path (e.g., "./journal.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS journal (
			registry_id TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			op TEXT NOT NULL,
			handle_id INTEGER NOT NULL,
			tokened INTEGER NOT NULL,
			detail TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			PRIMARY KEY (registry_id, sequence)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_journal_registry_id
		ON journal(registry_id)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	// Calculate sequence as max + 1 for this registry
	_, err := s.db.Exec(`
		INSERT INTO journal (registry_id, sequence, op, handle_id, tokened, detail, timestamp)
		VALUES (
			?,
			COALESCE((SELECT MAX(sequence) FROM journal WHERE registry_id = ?), 0) + 1,
			?, ?, ?, ?, ?
		)
	`, e.RegistryID, e.RegistryID, string(e.Op), int64(e.HandleID), e.Tokened,
		e.Detail, time.Now().UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(registryID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT sequence, op, handle_id, tokened, detail, timestamp
		FROM journal
		WHERE registry_id = ?
		ORDER BY sequence
	`, registryID)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var op, timestamp string
		var handleID int64
		if err := rows.Scan(&e.Sequence, &op, &handleID, &e.Tokened, &e.Detail, &timestamp); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.RegistryID = registryID
		e.Op = Op(op)
		e.HandleID = uint64(handleID)
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}

	return entries, nil
}

// Purge implements Store.
func (s *SQLiteStore) Purge(registryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		DELETE FROM journal WHERE registry_id = ?
	`, registryID)
	if err != nil {
		return fmt.Errorf("purge journal entries: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
