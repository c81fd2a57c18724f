package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound marks lookups for keys that were never stored.
var ErrNotFound = errors.New("not found")

const dayFormat = "2006-01-02"

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS blobs (
			key TEXT PRIMARY KEY,
			data BLOB
		);`,
		`CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			record JSON
		);`,
		`CREATE TABLE IF NOT EXISTS usage (
			user_id TEXT,
			resource TEXT,
			day TEXT,
			count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, resource, day)
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// --- BlobStore Implementation ---

func (s *SQLiteStore) PutBlob(ctx context.Context, key string, data []byte) (string, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (key, data) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET data=excluded.data
	`, key, data)
	if err != nil {
		return "", fmt.Errorf("failed to store blob %s: %w", key, err)
	}
	return key, nil
}

func (s *SQLiteStore) GetBlob(ctx context.Context, key string) ([]byte, error) {
	row := s.db.QueryRowContext(ctx, "SELECT data FROM blobs WHERE key = ?", key)

	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("blob %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load blob %s: %w", key, err)
	}
	return data, nil
}

// --- MetadataStore Implementation ---

func (s *SQLiteStore) PutMetadata(ctx context.Context, key string, record Record) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode metadata %s: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, record) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET record=excluded.record
	`, key, encoded)
	if err != nil {
		return fmt.Errorf("failed to store metadata %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) GetMetadata(ctx context.Context, key string) (Record, error) {
	row := s.db.QueryRowContext(ctx, "SELECT record FROM metadata WHERE key = ?", key)

	var encoded []byte
	if err := row.Scan(&encoded); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("metadata %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load metadata %s: %w", key, err)
	}

	var record Record
	if err := json.Unmarshal(encoded, &record); err != nil {
		return nil, fmt.Errorf("failed to decode metadata %s: %w", key, err)
	}
	return record, nil
}

func (s *SQLiteStore) ListMetadata(ctx context.Context, prefix string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, record FROM metadata WHERE key LIKE ? || '%' ORDER BY key", prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata %s: %w", prefix, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var key string
		var encoded []byte
		if err := rows.Scan(&key, &encoded); err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		var record Record
		if len(encoded) > 0 {
			_ = json.Unmarshal(encoded, &record)
		}
		entries = append(entries, Entry{Key: key, Record: record})
	}
	return entries, nil
}

// --- UsageStore Implementation ---

func (s *SQLiteStore) IncrementUsage(ctx context.Context, userID, resource string, at time.Time) error {
	day := at.UTC().Format(dayFormat)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage (user_id, resource, day, count) VALUES (?, ?, ?, 1)
		ON CONFLICT(user_id, resource, day) DO UPDATE SET count=count+1
	`, userID, resource, day)
	if err != nil {
		return fmt.Errorf("failed to record usage for %s: %w", userID, err)
	}
	return nil
}

func (s *SQLiteStore) CountSince(ctx context.Context, userID, resource string, since time.Time) (int, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(count), 0) FROM usage
		WHERE user_id = ? AND resource = ? AND day >= ?
	`, userID, resource, since.UTC().Format(dayFormat))

	var total int
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count usage for %s: %w", userID, err)
	}
	return total, nil
}
