// Package service contains the business logic layer of the application.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → sessions, persistence, caching
//	Repository (data layer)  → reads/writes SQLite
//
// ExplorerService owns one explorer.Explorer per visitor session. Sessions
// live in memory while active and are written to the SessionRepository every
// time a fetch settles, so a restarted server picks up where a visitor left off.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sakif/repo-explorer/internal/apperror"
	"github.com/sakif/repo-explorer/internal/explorer"
	"github.com/sakif/repo-explorer/internal/model"
	"github.com/sakif/repo-explorer/internal/repository"
)

// DefaultMaxActiveSessions bounds the in-memory sessions. The least recently
// used session is evicted first and restored from the repository on its next
// request.
const DefaultMaxActiveSessions = 1000

// Option configures optional ExplorerService settings.
type Option func(*ExplorerService)

// WithMaxActiveSessions sets how many sessions stay in memory. n <= 0 keeps
// DefaultMaxActiveSessions.
func WithMaxActiveSessions(n int) Option {
	return func(s *ExplorerService) {
		if n > 0 {
			s.maxActive = n
		}
	}
}

// ExplorerService handles business logic for explorer sessions.
type ExplorerService struct {
	lister    explorer.Lister
	sessions  repository.SessionRepository
	logger    *slog.Logger
	maxActive int

	// active is safe for concurrent use; Get marks a session as used.
	active *lru.Cache[string, *explorer.Explorer]
}

// NewExplorerService creates a new ExplorerService.
func NewExplorerService(lister explorer.Lister, sessions repository.SessionRepository, logger *slog.Logger, opts ...Option) *ExplorerService {
	s := &ExplorerService{
		lister:    lister,
		sessions:  sessions,
		logger:    logger,
		maxActive: DefaultMaxActiveSessions,
	}
	for _, opt := range opts {
		opt(s)
	}

	// lru only rejects a non-positive size, which WithMaxActiveSessions rules out.
	s.active, _ = lru.NewWithEvict(s.maxActive, func(id string, _ *explorer.Explorer) {
		s.logger.Debug("session dropped from memory", slog.String("session", id))
	})
	return s
}

// SubmitSearch runs a new search in session id.
func (s *ExplorerService) SubmitSearch(ctx context.Context, id, username string) (model.Snapshot, error) {
	e, err := s.session(ctx, id)
	if err != nil {
		return model.Snapshot{}, err
	}
	return s.tag(id, e.SubmitSearch(ctx, username)), nil
}

// ChangeSortOrder parses order ("asc" or "desc") and re-sorts session id's current page.
func (s *ExplorerService) ChangeSortOrder(ctx context.Context, id, order string) (model.Snapshot, error) {
	sort, err := model.ParseSortOrder(strings.TrimSpace(order))
	if err != nil {
		return model.Snapshot{}, apperror.ValidationFailed("order", "sort order must be asc or desc")
	}

	e, err := s.session(ctx, id)
	if err != nil {
		return model.Snapshot{}, err
	}
	return s.tag(id, e.ChangeSortOrder(ctx, sort)), nil
}

// ChangePage moves session id to page.
func (s *ExplorerService) ChangePage(ctx context.Context, id string, page int) (model.Snapshot, error) {
	e, err := s.session(ctx, id)
	if err != nil {
		return model.Snapshot{}, err
	}
	return s.tag(id, e.ChangePage(ctx, page)), nil
}

// Snapshot returns session id's current state without fetching anything.
func (s *ExplorerService) Snapshot(ctx context.Context, id string) (model.Snapshot, error) {
	e, err := s.session(ctx, id)
	if err != nil {
		return model.Snapshot{}, err
	}
	return s.tag(id, e.Snapshot()), nil
}

// Lookup runs one stateless fetch outside any session.
func (s *ExplorerService) Lookup(ctx context.Context, username string, page int, sort model.SortOrder) model.Snapshot {
	e := explorer.New(s.lister, s.logger, explorer.WithState(model.SearchState{
		Username: username,
		Sort:     sort,
		Page:     page,
	}))
	return e.FetchPage(ctx, username, page, sort)
}

// Forget drops session id from memory and storage.
func (s *ExplorerService) Forget(ctx context.Context, id string) error {
	s.active.Remove(id)

	err := s.sessions.DeleteSession(ctx, id)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return err
	}
	s.logger.Info("session forgotten", slog.String("session", id))
	return nil
}

// session returns the active Explorer for id, restoring it from the
// repository or creating a fresh one as needed.
func (s *ExplorerService) session(ctx context.Context, id string) (*explorer.Explorer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("session", "session ID is required")
	}

	if e, ok := s.active.Get(id); ok {
		return e, nil
	}

	opts := []explorer.Option{explorer.WithSettleFunc(s.persist(id))}

	state, err := s.sessions.GetSession(ctx, id)
	switch {
	case err == nil:
		opts = append(opts, explorer.WithState(*state))
		s.logger.Debug("session restored", slog.String("session", id))
	case errors.Is(err, apperror.ErrNotFound):
		s.logger.Debug("session created", slog.String("session", id))
	default:
		// Storage trouble must not take the explorer down; start fresh.
		s.logger.Error("failed to load session",
			slog.String("session", id),
			slog.String("error", err.Error()),
		)
	}

	e := explorer.New(s.lister, s.logger.With(slog.String("session", id)), opts...)

	// Another request for the same id may have won the race.
	if existing, ok, _ := s.active.PeekOrAdd(id, e); ok {
		return existing, nil
	}
	return e, nil
}

// persist returns the settle hook that writes session id's state.
func (s *ExplorerService) persist(id string) explorer.SettleFunc {
	return func(ctx context.Context, state model.SearchState) {
		// The request may already be cancelled; the write should still happen.
		ctx = context.WithoutCancel(ctx)
		if err := s.sessions.SaveSession(ctx, id, state); err != nil {
			s.logger.Error("failed to save session",
				slog.String("session", id),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (s *ExplorerService) tag(id string, snap model.Snapshot) model.Snapshot {
	snap.SessionID = id
	return snap
}
