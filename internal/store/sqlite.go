package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/PandeyAnukrati/Carti/internal/model/chat"
)

const schema = `
CREATE TABLE IF NOT EXISTS transcripts (
	key        TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// SQLiteStore implements Store on a local SQLite database, one row per
// partition key with the transcript serialized as JSON. It is the durable
// analog of the browser-local storage the original widget used.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the transcript database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open transcript database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply transcript schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load returns the transcript saved under key. Rows that fail to decode are
// treated as missing so callers reseed rather than surface a storage fault.
func (s *SQLiteStore) Load(ctx context.Context, key string) (chat.Transcript, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM transcripts WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}

	var t chat.Transcript
	if err := json.Unmarshal([]byte(payload), &t); err != nil {
		return nil, ErrNotFound
	}
	return t, nil
}

// Save upserts the transcript under key. Empty transcripts are not written.
func (s *SQLiteStore) Save(ctx context.Context, key string, t chat.Transcript) error {
	if len(t) == 0 {
		return nil
	}

	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transcripts (key, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		key, string(payload))
	if err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

// Clear removes the row for key.
func (s *SQLiteStore) Clear(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transcripts WHERE key = ?`, key); err != nil {
		return fmt.Errorf("clear transcript: %w", err)
	}
	return nil
}
