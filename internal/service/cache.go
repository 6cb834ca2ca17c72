package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/sakif/repo-explorer/internal/explorer"
	"github.com/sakif/repo-explorer/internal/model"
	"github.com/sakif/repo-explorer/internal/repository"
)

var _ explorer.Lister = (*CachedLister)(nil)

// CachedLister serves repeated lookups from a CacheRepository for ttl.
//
// Entries are keyed by (username, page, sort) for listings and by username
// for repository counts. Failures are never cached. Cache errors are logged
// and the lookup falls through to the upstream Lister.
type CachedLister struct {
	next   explorer.Lister
	cache  repository.CacheRepository
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewCachedLister wraps next with a cache. ttl must be positive.
func NewCachedLister(next explorer.Lister, cache repository.CacheRepository, ttl time.Duration, logger *slog.Logger) *CachedLister {
	return &CachedLister{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "cache")),
		now:    time.Now,
	}
}

func listingKey(username string, page int, sort model.SortOrder) string {
	return fmt.Sprintf("repos:%s:%d:%s", username, page, sort)
}

func countKey(username string) string {
	return "user:" + username
}

func (c *CachedLister) ListRepositories(ctx context.Context, username string, page int, sort model.SortOrder) ([]model.Repository, error) {
	key := listingKey(username, page, sort)

	if raw, ok := c.get(ctx, key); ok {
		var repos []model.Repository
		if err := json.Unmarshal(raw, &repos); err == nil {
			return repos, nil
		}
		c.logger.Warn("discarding unreadable cache entry", slog.String("key", key))
	}

	repos, err := c.next.ListRepositories(ctx, username, page, sort)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(repos); err == nil {
		c.put(ctx, key, raw)
	}
	return repos, nil
}

func (c *CachedLister) PublicRepoCount(ctx context.Context, username string) (int, error) {
	key := countKey(username)

	if raw, ok := c.get(ctx, key); ok {
		if n, err := strconv.Atoi(string(raw)); err == nil {
			return n, nil
		}
		c.logger.Warn("discarding unreadable cache entry", slog.String("key", key))
	}

	n, err := c.next.PublicRepoCount(ctx, username)
	if err != nil {
		return 0, err
	}
	c.put(ctx, key, []byte(strconv.Itoa(n)))
	return n, nil
}

func (c *CachedLister) get(ctx context.Context, key string) ([]byte, bool) {
	raw, ok, err := c.cache.GetCached(ctx, key, c.now())
	if err != nil {
		c.logger.Error("cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		return nil, false
	}
	if ok {
		c.logger.Debug("cache hit", slog.String("key", key))
	}
	return raw, ok
}

func (c *CachedLister) put(ctx context.Context, key string, raw []byte) {
	now := c.now()
	if err := c.cache.PutCached(ctx, key, raw, now.Add(c.ttl)); err != nil {
		c.logger.Error("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if n, err := c.cache.PurgeExpired(ctx, now); err != nil {
		c.logger.Error("cache purge failed", slog.String("error", err.Error()))
	} else if n > 0 {
		c.logger.Debug("cache purged", slog.Int64("removed", n))
	}
}
