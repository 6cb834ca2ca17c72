// Package explorer implements one repository-explorer session: the username,
// sort order and page a visitor has chosen, and the result of the latest
// lookup for them.
//
// An Explorer moves through Idle → Loading → {Success, Error} and back to
// Loading on every SubmitSearch, ChangeSortOrder or ChangePage. Each fetch is
// tagged with a sequence number; a fetch that completes after a newer one was
// issued is discarded, so the last request issued always wins.
package explorer

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/sakif/repo-explorer/internal/apperror"
	"github.com/sakif/repo-explorer/internal/model"
)

// Lister performs the two upstream calls of a lookup.
// *github.Client satisfies it, as does service.CachedLister.
type Lister interface {
	ListRepositories(ctx context.Context, username string, page int, sort model.SortOrder) ([]model.Repository, error)
	PublicRepoCount(ctx context.Context, username string) (int, error)
}

// SettleFunc is called with the session state after every fetch that was
// not superseded.
type SettleFunc func(ctx context.Context, state model.SearchState)

// Option configures an Explorer.
type Option func(*Explorer)

// WithState starts the Explorer from a previously saved state instead of a
// fresh one. The result set starts empty; nothing is fetched.
func WithState(state model.SearchState) Option {
	return func(e *Explorer) {
		if state.Page == 0 {
			state.Page = 1
		}
		if state.Sort == "" {
			state.Sort = model.SortDescending
		}
		e.state = state
	}
}

// WithSettleFunc registers fn to observe settled fetches.
func WithSettleFunc(fn SettleFunc) Option {
	return func(e *Explorer) {
		e.onSettle = fn
	}
}

// Explorer is safe for concurrent use. Upstream calls run without holding
// the lock, so a slow lookup never blocks Snapshot.
type Explorer struct {
	lister   Lister
	logger   *slog.Logger
	onSettle SettleFunc

	mu     sync.Mutex
	state  model.SearchState
	result model.QueryResult
	seq    uint64 // id of the most recently issued fetch
}

// New creates an Explorer in the Idle state.
func New(lister Lister, logger *slog.Logger, opts ...Option) *Explorer {
	e := &Explorer{
		lister: lister,
		logger: logger,
		state:  model.NewSearchState(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns a copy of the current state and result.
func (e *Explorer) Snapshot() model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Explorer) snapshotLocked() model.Snapshot {
	result := e.result
	result.Repositories = append([]model.Repository(nil), e.result.Repositories...)
	return model.NewSnapshot(e.state, result)
}

// SubmitSearch resets the page to 1 and fetches it for username with the
// current sort order. The empty username is accepted and simply fails upstream.
func (e *Explorer) SubmitSearch(ctx context.Context, username string) model.Snapshot {
	return e.fetch(ctx, e.issue(func(s *model.SearchState) {
		s.Username = username
		s.Page = 1
	}))
}

// ChangeSortOrder switches the order and re-fetches the current page.
// Unlike SubmitSearch it does not go back to page 1.
func (e *Explorer) ChangeSortOrder(ctx context.Context, order model.SortOrder) model.Snapshot {
	return e.fetch(ctx, e.issue(func(s *model.SearchState) {
		s.Sort = order
	}))
}

// ChangePage moves to page and re-fetches with the current sort order.
// page is not clamped; the UI only offers pages in [1, TotalPages].
func (e *Explorer) ChangePage(ctx context.Context, page int) model.Snapshot {
	return e.fetch(ctx, e.issue(func(s *model.SearchState) {
		s.Page = page
	}))
}

// FetchPage points the Explorer at (username, page, sort) and runs one
// lookup, returning the snapshot once it has settled or been superseded.
//
// The previous result is cleared before the listing request goes out. A
// listing failure ends the fetch with the generic lookup error and skips the
// metadata request. A metadata failure keeps the listing and marks the total
// page count unknown.
func (e *Explorer) FetchPage(ctx context.Context, username string, page int, sort model.SortOrder) model.Snapshot {
	return e.fetch(ctx, e.issue(func(s *model.SearchState) {
		s.Username = username
		s.Page = page
		s.Sort = sort
	}))
}

// request is one issued fetch.
type request struct {
	id       uint64
	username string
	page     int
	sort     model.SortOrder
}

// issue applies update to the state and numbers the fetch for the new state
// in the same critical section, so the latest state change always owns the
// latest sequence number.
func (e *Explorer) issue(update func(*model.SearchState)) request {
	e.mu.Lock()
	defer e.mu.Unlock()

	update(&e.state)
	e.seq++
	e.result = model.QueryResult{Loading: true}
	return request{id: e.seq, username: e.state.Username, page: e.state.Page, sort: e.state.Sort}
}

func (e *Explorer) fetch(ctx context.Context, req request) model.Snapshot {
	id, username, page, sort := req.id, req.username, req.page, req.sort

	log := e.logger.With(
		slog.Uint64("fetch", id),
		slog.String("username", username),
		slog.Int("page", page),
		slog.String("sort", string(sort)),
	)
	log.Debug("fetch started")

	repos, err := e.lister.ListRepositories(ctx, username, page, sort)

	e.mu.Lock()
	if id != e.seq {
		defer e.mu.Unlock()
		log.Debug("stale listing discarded", slog.Uint64("latest", e.seq))
		return e.snapshotLocked()
	}
	if err != nil {
		e.result = model.QueryResult{
			Error:   userMessage(err),
			Outcome: model.OutcomeFailure,
		}
		snap := e.snapshotLocked()
		state := e.state
		e.mu.Unlock()

		log.Info("listing failed", slog.String("error", causeOf(err)))
		e.settle(ctx, state)
		return snap
	}
	e.result.Repositories = repos
	e.mu.Unlock()

	count, countErr := e.lister.PublicRepoCount(ctx, username)

	e.mu.Lock()
	if id != e.seq {
		defer e.mu.Unlock()
		log.Debug("stale metadata discarded", slog.Uint64("latest", e.seq))
		return e.snapshotLocked()
	}
	e.result.Loading = false
	if countErr != nil {
		e.result.Outcome = model.OutcomePartial
		e.state.TotalPages = 0
		e.state.TotalKnown = false
	} else {
		e.result.Outcome = model.OutcomeSuccess
		e.state.TotalPages = model.TotalPages(count)
		e.state.TotalKnown = true
	}
	snap := e.snapshotLocked()
	state := e.state
	e.mu.Unlock()

	if countErr != nil {
		log.Warn("metadata failed, total pages unknown",
			slog.Int("repos", len(repos)),
			slog.String("error", causeOf(countErr)),
		)
	} else {
		log.Info("fetch settled",
			slog.Int("repos", len(repos)),
			slog.Int("totalPages", state.TotalPages),
		)
	}
	e.settle(ctx, state)
	return snap
}

func (e *Explorer) settle(ctx context.Context, state model.SearchState) {
	if e.onSettle != nil {
		e.onSettle(ctx, state)
	}
}

// userMessage collapses every failure into the one message users see.
func userMessage(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && errors.Is(err, apperror.ErrLookupFailed) {
		return appErr.Message
	}
	return apperror.LookupFailedMessage
}

// causeOf returns the underlying failure text for logs.
func causeOf(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Cause != nil {
		return appErr.Cause.Error()
	}
	return err.Error()
}
