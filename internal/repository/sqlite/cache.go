package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/repo-explorer/internal/repository"
)

var _ repository.CacheRepository = (*DB)(nil)

// GetCached returns the value under key if it has not expired at now.
func (db *DB) GetCached(ctx context.Context, key string, now time.Time) ([]byte, bool, error) {
	var value []byte
	err := db.conn.QueryRowContext(ctx,
		`SELECT value FROM lookup_cache WHERE key = ? AND expires_at > ?`,
		key,
		now.UnixNano(),
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("sqlite: reading cache key %s: %w", key, err)
	}
	return value, true, nil
}

// PutCached stores value under key until expiresAt, replacing any previous entry.
func (db *DB) PutCached(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO lookup_cache (key, value, expires_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			expires_at = excluded.expires_at`,
		key,
		value,
		expiresAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: writing cache key %s: %w", key, err)
	}
	return nil
}

// PurgeExpired deletes every entry that expired at or before now.
func (db *DB) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM lookup_cache WHERE expires_at <= ?`,
		now.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: purging cache: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n, nil
}
