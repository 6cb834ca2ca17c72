package model

import "testing"

func TestTotalPages(t *testing.T) {
	tests := []struct {
		publicRepos int
		want        int
	}{
		{publicRepos: 0, want: 0},
		{publicRepos: 1, want: 1},
		{publicRepos: 9, want: 1},
		{publicRepos: 10, want: 1},
		{publicRepos: 11, want: 2},
		{publicRepos: 100, want: 10},
		{publicRepos: 101, want: 11},
		{publicRepos: -3, want: 0},
	}

	for _, tt := range tests {
		if got := TotalPages(tt.publicRepos); got != tt.want {
			t.Errorf("TotalPages(%d) = %d, want %d", tt.publicRepos, got, tt.want)
		}
	}
}

func TestParseSortOrder(t *testing.T) {
	for _, s := range []string{"asc", "desc"} {
		if got, err := ParseSortOrder(s); err != nil || string(got) != s {
			t.Errorf("ParseSortOrder(%q) = %q, %v", s, got, err)
		}
	}
	for _, s := range []string{"", "stars", "DESC"} {
		if _, err := ParseSortOrder(s); err == nil {
			t.Errorf("ParseSortOrder(%q) should fail", s)
		}
	}
}

func TestNewSnapshot_Navigation(t *testing.T) {
	full := make([]Repository, PageSize)
	short := make([]Repository, 3)

	tests := []struct {
		name     string
		state    SearchState
		result   QueryResult
		wantPrev bool
		wantNext bool
	}{
		{
			name:   "first of several pages",
			state:  SearchState{Page: 1, TotalPages: 3, TotalKnown: true},
			result: QueryResult{Repositories: full, Outcome: OutcomeSuccess},
			// prev disabled at page 1
			wantPrev: false,
			wantNext: true,
		},
		{
			name:     "middle page",
			state:    SearchState{Page: 2, TotalPages: 3, TotalKnown: true},
			result:   QueryResult{Repositories: full, Outcome: OutcomeSuccess},
			wantPrev: true,
			wantNext: true,
		},
		{
			name:     "last page",
			state:    SearchState{Page: 3, TotalPages: 3, TotalKnown: true},
			result:   QueryResult{Repositories: short, Outcome: OutcomeSuccess},
			wantPrev: true,
			wantNext: false,
		},
		{
			name:     "zero total pages",
			state:    SearchState{Page: 1, TotalPages: 0, TotalKnown: true},
			result:   QueryResult{Repositories: short, Outcome: OutcomeSuccess},
			wantPrev: false,
			wantNext: false,
		},
		{
			name:     "unknown total, full page",
			state:    SearchState{Page: 2},
			result:   QueryResult{Repositories: full, Outcome: OutcomePartial},
			wantPrev: true,
			wantNext: true,
		},
		{
			name:     "unknown total, short page",
			state:    SearchState{Page: 2},
			result:   QueryResult{Repositories: short, Outcome: OutcomePartial},
			wantPrev: true,
			wantNext: false,
		},
		{
			name:     "no repositories hides controls",
			state:    SearchState{Page: 4, TotalPages: 9, TotalKnown: true},
			result:   QueryResult{Outcome: OutcomeFailure, Error: "x"},
			wantPrev: false,
			wantNext: false,
		},
		{
			name:     "loading hides controls",
			state:    SearchState{Page: 2, TotalPages: 9, TotalKnown: true},
			result:   QueryResult{Loading: true, Repositories: full},
			wantPrev: false,
			wantNext: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := NewSnapshot(tt.state, tt.result)
			if snap.HasPrev != tt.wantPrev {
				t.Errorf("HasPrev = %v, want %v", snap.HasPrev, tt.wantPrev)
			}
			if snap.HasNext != tt.wantNext {
				t.Errorf("HasNext = %v, want %v", snap.HasNext, tt.wantNext)
			}
		})
	}
}

func TestNewSnapshot_NeverNilRepositories(t *testing.T) {
	snap := NewSnapshot(NewSearchState(), QueryResult{})
	if snap.Result.Repositories == nil {
		t.Error("Repositories should be an empty slice, not nil")
	}
}

func TestQueryResult_Status(t *testing.T) {
	tests := []struct {
		result QueryResult
		want   string
	}{
		{QueryResult{}, "idle"},
		{QueryResult{Loading: true}, "loading"},
		{QueryResult{Outcome: OutcomeSuccess}, "success"},
		{QueryResult{Outcome: OutcomePartial}, "success"},
		{QueryResult{Outcome: OutcomeFailure}, "error"},
	}
	for _, tt := range tests {
		if got := tt.result.Status(); got != tt.want {
			t.Errorf("%+v.Status() = %q, want %q", tt.result, got, tt.want)
		}
	}
}
