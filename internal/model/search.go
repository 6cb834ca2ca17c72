package model

import (
	"fmt"
	"time"
)

// SortOrder is the star-count ordering requested from the API.
type SortOrder string

const (
	SortDescending SortOrder = "desc" // "most stars"
	SortAscending  SortOrder = "asc"  // "fewest stars"
)

// ParseSortOrder accepts "asc" or "desc". Anything else is an error.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case SortAscending, SortDescending:
		return SortOrder(s), nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

// Outcome classifies how a fetch settled.
type Outcome string

const (
	OutcomeNone    Outcome = ""        // nothing fetched yet, or fetch still in flight
	OutcomeSuccess Outcome = "success" // listing and metadata both succeeded
	OutcomePartial Outcome = "partial" // listing succeeded, metadata failed
	OutcomeFailure Outcome = "failure" // listing failed
)

// SearchState is the user-controlled part of a session.
// TotalKnown is false until a fetch has settled with a usable total.
type SearchState struct {
	Username   string    `json:"username"`
	Sort       SortOrder `json:"sort"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
	TotalKnown bool      `json:"totalKnown"`
}

// NewSearchState returns the state of a freshly opened session.
func NewSearchState() SearchState {
	return SearchState{Sort: SortDescending, Page: 1, TotalPages: 1}
}

// QueryResult is replaced wholesale on every fetch, never merged.
type QueryResult struct {
	Loading      bool         `json:"loading"`
	Error        string       `json:"error,omitempty"`
	Outcome      Outcome      `json:"outcome,omitempty"`
	Repositories []Repository `json:"repositories"`
}

// Snapshot is an immutable copy of a session's state plus the navigation
// flags derived from it. Templates and the JSON API render Snapshots.
type Snapshot struct {
	SessionID string      `json:"sessionId,omitempty"`
	State     SearchState `json:"state"`
	Result    QueryResult `json:"result"`
	HasPrev   bool        `json:"hasPrev"`
	HasNext   bool        `json:"hasNext"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// NewSnapshot derives the navigation flags from state and result.
//
// Prev is offered only above page 1. Next is offered below totalPages when
// the total is known; when it is not, only if the current page came back full.
func NewSnapshot(state SearchState, result QueryResult) Snapshot {
	if result.Repositories == nil {
		result.Repositories = []Repository{}
	}
	snap := Snapshot{
		State:     state,
		Result:    result,
		UpdatedAt: time.Now(),
	}
	if result.Loading || len(result.Repositories) == 0 {
		return snap
	}
	snap.HasPrev = state.Page > 1
	if state.TotalKnown {
		snap.HasNext = state.Page < state.TotalPages
	} else {
		snap.HasNext = len(result.Repositories) == PageSize
	}
	return snap
}

// Status names the state-machine position of a result:
// idle, loading, success or error. A partial outcome counts as success.
func (r QueryResult) Status() string {
	switch {
	case r.Loading:
		return "loading"
	case r.Outcome == OutcomeFailure:
		return "error"
	case r.Outcome == OutcomeNone:
		return "idle"
	default:
		return "success"
	}
}
