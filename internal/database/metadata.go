package database

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"
)

const lastReconcileKey = "last_reconcile"

// GetMetadata retrieves a metadata value by key.
// Returns sql.ErrNoRows if the key doesn't exist.
func (d *Database) GetMetadata(ctx context.Context, key string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value string
	err := d.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetMetadata sets a metadata key-value pair.
func (d *Database) SetMetadata(ctx context.Context, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// GetLastReconcile returns when the index was last reconciled against
// storage. Returns zero time if never run.
func (d *Database) GetLastReconcile(ctx context.Context) (time.Time, error) {
	value, err := d.GetMetadata(ctx, lastReconcileKey)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}

	unix, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(unix, 0), nil
}

// SetLastReconcile records the time of a reconciliation run.
func (d *Database) SetLastReconcile(ctx context.Context, t time.Time) error {
	return d.SetMetadata(ctx, lastReconcileKey, strconv.FormatInt(t.Unix(), 10))
}
