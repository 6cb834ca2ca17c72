// Package repository defines the storage interfaces the service layer depends on.
//
// The service only sees these interfaces, never *sqlite.DB, so tests can pass
// in-memory fakes and the backend can change without touching business logic.
package repository

import (
	"context"
	"time"

	"github.com/sakif/repo-explorer/internal/model"
)

// SessionRepository persists the SearchState of explorer sessions so a
// restarted server can restore a visitor's last search.
type SessionRepository interface {
	// SaveSession inserts or replaces the state stored under id.
	SaveSession(ctx context.Context, id string, state model.SearchState) error
	// GetSession returns apperror.ErrNotFound for an unknown id.
	GetSession(ctx context.Context, id string) (*model.SearchState, error)
	DeleteSession(ctx context.Context, id string) error
}

// CacheRepository is a key/value store with per-entry expiry, used for the
// optional lookup cache.
type CacheRepository interface {
	// GetCached reports ok=false for missing keys and for entries that
	// expired at or before now.
	GetCached(ctx context.Context, key string, now time.Time) (value []byte, ok bool, err error)
	PutCached(ctx context.Context, key string, value []byte, expiresAt time.Time) error
	// PurgeExpired deletes expired entries and returns how many were removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
