package internal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Storage is the SQLite-backed KV
type Storage struct {
	db   *sql.DB
	path string
}

// NewStorage wraps an open database. path is only used in error messages.
func NewStorage(db *sql.DB, path string) *Storage {
	return &Storage{db: db, path: path}
}

// OpenStorage opens the database at path and wraps it
func OpenStorage(ctx context.Context, path string) (*Storage, error) {
	db, err := OpenDatabase(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewStorage(db, path), nil
}

// Get returns the value stored under key. ok is false when the key is
// absent or holds NULL.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT value FROM "+TableName+" WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StorageError{Path: s.path, Op: "get", Err: fmt.Errorf("%s: %w", key, err)}
	}
	return value.String, value.Valid, nil
}

// Set stores value under key, replacing any previous value
func (s *Storage) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO "+TableName+" (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return &StorageError{Path: s.path, Op: "set", Err: fmt.Errorf("%s: %w", key, err)}
	}
	return nil
}

// Keys lists every stored key
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	pairs, err := QueryKV(ctx, s.db, "%")
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	keys := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		keys = append(keys, pair.Key)
	}
	return keys, nil
}

// Close closes the underlying database
func (s *Storage) Close() error {
	return s.db.Close()
}
