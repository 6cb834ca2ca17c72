package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/repo-explorer/internal/apperror"
	"github.com/sakif/repo-explorer/internal/model"
)

// newTestClient points a Client at handler.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	c, err := New(Config{BaseURL: srv.URL, Timeout: time.Second}, logger)
	require.NoError(t, err)
	return c
}

func TestListRepositories_Query(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"id": 2, "name": "Hello-World", "description": "My first repo", "stargazers_count": 80, "html_url": "https://github.com/octocat/Hello-World"},
			{"id": 1, "name": "Spoon-Knife", "stargazers_count": 12, "html_url": "https://github.com/octocat/Spoon-Knife"}
		]`)
	}))

	repos, err := c.ListRepositories(context.Background(), "octocat", 1, model.SortDescending)
	require.NoError(t, err)

	assert.Equal(t, "/users/octocat/repos", gotPath)
	assert.Equal(t, map[string]string{
		"per_page":  "10",
		"page":      "1",
		"sort":      "stars",
		"direction": "desc",
	}, gotQuery)

	require.Len(t, repos, 2)
	assert.Equal(t, model.Repository{
		ID:          2,
		Name:        "Hello-World",
		Description: "My first repo",
		Stars:       80,
		URL:         "https://github.com/octocat/Hello-World",
	}, repos[0])
	// Order is the API's, no client-side re-sort.
	assert.Equal(t, "Spoon-Knife", repos[1].Name)
	assert.Empty(t, repos[1].Description)
}

func TestListRepositories_Ascending(t *testing.T) {
	var direction, page string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		direction = r.URL.Query().Get("direction")
		page = r.URL.Query().Get("page")
		fmt.Fprint(w, `[]`)
	}))

	repos, err := c.ListRepositories(context.Background(), "octocat", 3, model.SortAscending)
	require.NoError(t, err)
	assert.Empty(t, repos)
	assert.Equal(t, "asc", direction)
	assert.Equal(t, "3", page)
}

func TestListRepositories_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "user not found", status: http.StatusNotFound, body: `{"message":"Not Found"}`},
		{name: "rate limited", status: http.StatusForbidden, body: `{"message":"API rate limit exceeded"}`},
		{name: "server error", status: http.StatusInternalServerError, body: `{"message":"boom"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))

			repos, err := c.ListRepositories(context.Background(), "ghost", 1, model.SortDescending)
			assert.Nil(t, repos)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrLookupFailed))
			assert.Equal(t, apperror.LookupFailedMessage, err.Error())
		})
	}
}

func TestListRepositories_EmptyUsername(t *testing.T) {
	var gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	}))

	_, err := c.ListRepositories(context.Background(), "", 1, model.SortDescending)
	assert.True(t, errors.Is(err, apperror.ErrLookupFailed))
	assert.Equal(t, "/users//repos", gotPath)
}

func TestListRepositories_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	c, err := New(Config{BaseURL: url, Timeout: time.Second}, logger)
	require.NoError(t, err)

	_, err = c.ListRepositories(context.Background(), "octocat", 1, model.SortDescending)
	assert.True(t, errors.Is(err, apperror.ErrLookupFailed))
}

func TestListRepositories_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	c, err := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, logger)
	require.NoError(t, err)

	_, err = c.ListRepositories(context.Background(), "octocat", 1, model.SortDescending)
	assert.True(t, errors.Is(err, apperror.ErrLookupFailed))
}

func TestPublicRepoCount(t *testing.T) {
	var gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"login":"octocat","public_repos":8}`)
	}))

	n, err := c.PublicRepoCount(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, "/users/octocat", gotPath)
}

func TestPublicRepoCount_Failures(t *testing.T) {
	t.Run("non-success status", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
		}))
		_, err := c.PublicRepoCount(context.Background(), "ghost")
		assert.True(t, errors.Is(err, apperror.ErrLookupFailed))
	})

	t.Run("missing public_repos", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"login":"octocat"}`)
		}))
		_, err := c.PublicRepoCount(context.Background(), "octocat")
		assert.True(t, errors.Is(err, apperror.ErrLookupFailed))
	})
}

func TestNew_BadBaseURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	_, err := New(Config{BaseURL: "://nope"}, logger)
	assert.Error(t, err)
}
