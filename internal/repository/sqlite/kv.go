package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/mesto/internal/repository"
)

var _ repository.KeyValueStore = (*KVDB)(nil)

// KVDB is a tiny durable key-value store, the CLI's stand-in for browser
// localStorage. Get one from DB.KV.
type KVDB struct {
	conn *sql.DB
}

// GetItem returns the value stored under key. ok is false when the key is
// missing.
func (k *KVDB) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := k.conn.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("sqlite: reading key %q: %w", key, err)
	}
	return value, true, nil
}

// SetItem stores value under key, replacing any previous value.
func (k *KVDB) SetItem(ctx context.Context, key, value string) error {
	_, err := k.conn.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: writing key %q: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key. Removing a missing key succeeds.
func (k *KVDB) RemoveItem(ctx context.Context, key string) error {
	if _, err := k.conn.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite: removing key %q: %w", key, err)
	}
	return nil
}
