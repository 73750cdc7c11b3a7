package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"video-ingest/internal/assets"
)

// UpsertAsset stores a, replacing any previous row and renditions for its id.
func (d *Database) UpsertAsset(ctx context.Context, a *assets.Asset) (err error) {
	start := time.Now()
	defer func() { recordQuery("upsert_asset", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var meta assets.Metadata
	hasMeta := a.Metadata != nil
	if hasMeta {
		meta = *a.Metadata
	}
	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	return d.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO assets (id, original_name, extension, has_metadata, width, height, duration_seconds, state, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, strftime('%s', 'now'))
			ON CONFLICT(id) DO UPDATE SET
				original_name = excluded.original_name,
				extension = excluded.extension,
				has_metadata = excluded.has_metadata,
				width = excluded.width,
				height = excluded.height,
				duration_seconds = excluded.duration_seconds,
				state = excluded.state,
				updated_at = excluded.updated_at
		`, a.ID, a.OriginalName, a.OriginalExtension, hasMeta, meta.Width, meta.Height, meta.DurationSeconds,
			string(a.State), created.Unix())
		if err != nil {
			return fmt.Errorf("upsert asset %s: %w", a.ID, err)
		}

		return writeRenditions(ctx, tx, a.ID, a.Renditions)
	})
}

// SetState updates the lifecycle state of id.
func (d *Database) SetState(ctx context.Context, id string, state assets.State) (err error) {
	start := time.Now()
	defer func() { recordQuery("set_state", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := d.db.ExecContext(ctx,
		"UPDATE assets SET state = ?, updated_at = strftime('%s', 'now') WHERE id = ?",
		string(state), id)
	if err != nil {
		return fmt.Errorf("set state of %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return assets.NotFound("asset", id)
	}
	return nil
}

// SetRenditions replaces the tier outcomes of id.
func (d *Database) SetRenditions(ctx context.Context, id string, r assets.Renditions) (err error) {
	start := time.Now()
	defer func() { recordQuery("set_renditions", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return d.withTx(ctx, func(tx *sql.Tx) error {
		return writeRenditions(ctx, tx, id, r)
	})
}

func writeRenditions(ctx context.Context, tx *sql.Tx, id string, r assets.Renditions) error {
	for tier, rd := range r {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO renditions (asset_id, tier, state, error, updated_at)
			VALUES (?, ?, ?, ?, strftime('%s', 'now'))
			ON CONFLICT(asset_id, tier) DO UPDATE SET
				state = excluded.state,
				error = excluded.error,
				updated_at = excluded.updated_at
		`, id, tier, string(rd.State), rd.Error)
		if err != nil {
			return fmt.Errorf("write rendition %s/%s: %w", id, tier, err)
		}
	}
	return nil
}

// GetAsset returns the indexed record of id, or a NotFoundError.
func (d *Database) GetAsset(ctx context.Context, id string) (a *assets.Asset, err error) {
	start := time.Now()
	defer func() { recordQuery("get_asset", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx, `
		SELECT id, original_name, extension, has_metadata, width, height, duration_seconds, state, created_at
		FROM assets WHERE id = ?
	`, id)

	a, err = scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, assets.NotFound("asset", id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, "SELECT asset_id, tier, state, error FROM renditions WHERE asset_id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := scanRenditions(rows, map[string]*assets.Asset{id: a}); err != nil {
		return nil, err
	}
	return a, nil
}

// ListAssets returns every indexed asset keyed by id.
func (d *Database) ListAssets(ctx context.Context) (out map[string]*assets.Asset, err error) {
	start := time.Now()
	defer func() { recordQuery("list_assets", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, original_name, extension, has_metadata, width, height, duration_seconds, state, created_at
		FROM assets
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out = make(map[string]*assets.Asset)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rrows, err := d.db.QueryContext(ctx, "SELECT asset_id, tier, state, error FROM renditions")
	if err != nil {
		return nil, err
	}
	defer rrows.Close()

	if err := scanRenditions(rrows, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAsset removes id and its renditions. Deleting an unknown id is not
// an error.
func (d *Database) DeleteAsset(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { recordQuery("delete_asset", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return d.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM renditions WHERE asset_id = ?", id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM assets WHERE id = ?", id)
		return err
	})
}

// PruneMissing deletes every indexed asset whose id is not in present and
// returns how many were removed.
func (d *Database) PruneMissing(ctx context.Context, present []string) (int, error) {
	return d.PruneMissingBefore(ctx, present, time.Time{})
}

// PruneMissingBefore is PruneMissing restricted to rows last updated at or
// before cutoff. A zero cutoff matches every row.
func (d *Database) PruneMissingBefore(ctx context.Context, present []string, cutoff time.Time) (removed int, err error) {
	start := time.Now()
	defer func() { recordQuery("prune_missing", start, err) }()

	keep := make(map[string]bool, len(present))
	for _, id := range present {
		keep[id] = true
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, "SELECT id, updated_at FROM assets")
		if err != nil {
			return err
		}

		var stale []string
		for rows.Next() {
			var (
				id      string
				updated int64
			)
			if err := rows.Scan(&id, &updated); err != nil {
				_ = rows.Close()
				return err
			}
			if keep[id] || (!cutoff.IsZero() && updated > cutoff.Unix()) {
				continue
			}
			stale = append(stale, id)
		}
		if err := rows.Close(); err != nil {
			return err
		}

		for _, id := range stale {
			if _, err := tx.ExecContext(ctx, "DELETE FROM renditions WHERE asset_id = ?", id); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM assets WHERE id = ?", id); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*assets.Asset, error) {
	var (
		a       assets.Asset
		hasMeta bool
		meta    assets.Metadata
		state   string
		created int64
	)
	if err := row.Scan(&a.ID, &a.OriginalName, &a.OriginalExtension, &hasMeta,
		&meta.Width, &meta.Height, &meta.DurationSeconds, &state, &created); err != nil {
		return nil, err
	}

	if hasMeta {
		a.Metadata = &meta
	}
	a.State = assets.State(state)
	a.CreatedAt = time.Unix(created, 0)
	a.Renditions = make(assets.Renditions)
	return &a, nil
}

func scanRenditions(rows *sql.Rows, into map[string]*assets.Asset) error {
	for rows.Next() {
		var id, tier, state, msg string
		if err := rows.Scan(&id, &tier, &state, &msg); err != nil {
			return err
		}
		if a, ok := into[id]; ok {
			a.Renditions[tier] = assets.Rendition{State: assets.RenditionState(state), Error: msg}
		}
	}
	return rows.Err()
}
