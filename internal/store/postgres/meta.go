package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PutMetaIfAbsent inserts key=value only when the key does not exist.
// The ON CONFLICT DO NOTHING form makes this a single-statement
// compare-and-swap, so concurrent callers cannot both win.
func (s *Store) PutMetaIfAbsent(ctx context.Context, key, value string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO sync_meta (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING`,
		key, value)
	if err != nil {
		return false, fmt.Errorf("failed to put meta key %q: %w", key, err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetMeta returns the value for key, or "" when absent.
func (s *Store) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM sync_meta WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta key %q: %w", key, err)
	}
	return value, nil
}

// SetMeta upserts key=value.
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sync_meta (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to set meta key %q: %w", key, err)
	}
	return nil
}

// DeleteMeta removes key; deleting an absent key succeeds.
func (s *Store) DeleteMeta(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sync_meta WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete meta key %q: %w", key, err)
	}
	return nil
}
