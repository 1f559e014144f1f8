package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetValue returns the value stored under key. The boolean is false when
// the key is absent.
func (s *SQLiteStore) GetValue(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM kv WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %q: %w", key, err)
	}
	return value, true, nil
}

// SetValue stores value under key, replacing any previous value.
func (s *SQLiteStore) SetValue(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)",
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	return nil
}

// DeleteValue removes key. Deleting an absent key is not an error.
func (s *SQLiteStore) DeleteValue(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}
