package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"4d63.com/testcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/repo-explorer/internal/model"
)

// fakeGitHub serves a user with repos named repo-1..repo-n and records the
// request URIs it saw.
type fakeGitHub struct {
	mu          sync.Mutex
	requests    []string
	publicRepos int
	failUser    bool
}

func newFakeGitHub(t *testing.T, publicRepos int) (*fakeGitHub, string) {
	t.Helper()
	f := &fakeGitHub{publicRepos: publicRepos}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv.URL + "/"
}

func (f *fakeGitHub) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.URL.RequestURI())
	failUser := f.failUser
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/users/octocat/repos":
		var page int
		fmt.Sscan(r.URL.Query().Get("page"), &page)
		repos := []map[string]any{}
		for i := (page - 1) * 10; i < f.publicRepos && i < page*10; i++ {
			repos = append(repos, map[string]any{
				"id":               i + 1,
				"name":             fmt.Sprintf("repo-%d", i+1),
				"html_url":         fmt.Sprintf("https://github.com/octocat/repo-%d", i+1),
				"stargazers_count": 100 - i,
			})
		}
		json.NewEncoder(w).Encode(repos)
	case "/users/octocat":
		if failUser {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message":"boom"}`)
			return
		}
		fmt.Fprintf(w, `{"login":"octocat","public_repos":%d}`, f.publicRepos)
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	}
}

func TestLookup(t *testing.T) {
	gh, url := newFakeGitHub(t, 12)

	args := []string{"repos", "lookup", "octocat", "--api-url", url, "--token", ""}
	exitCode, stdout, stderr := testcli.Main(t, args, nil, run)
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "", stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "★    100  repo-1  https://github.com/octocat/repo-1", lines[0])
	assert.Equal(t, "Page 1 of 2", lines[10])

	assert.Equal(t, []string{
		"/users/octocat/repos?direction=desc&page=1&per_page=10&sort=stars",
		"/users/octocat",
	}, gh.requests)
}

func TestLookupPageAndSort(t *testing.T) {
	gh, url := newFakeGitHub(t, 12)

	args := []string{"repos", "lookup", "octocat", "--page", "2", "--sort", "asc", "--api-url", url, "--token", ""}
	exitCode, stdout, stderr := testcli.Main(t, args, nil, run)
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "", stderr)
	assert.Equal(t, `★     90  repo-11  https://github.com/octocat/repo-11
★     89  repo-12  https://github.com/octocat/repo-12
Page 2 of 2
`, stdout)

	require.NotEmpty(t, gh.requests)
	assert.Equal(t, "/users/octocat/repos?direction=asc&page=2&per_page=10&sort=stars", gh.requests[0])
}

func TestLookupJSON(t *testing.T) {
	_, url := newFakeGitHub(t, 3)

	args := []string{"repos", "lookup", "octocat", "--json", "--api-url", url, "--token", ""}
	exitCode, stdout, _ := testcli.Main(t, args, nil, run)
	assert.Equal(t, 0, exitCode)

	var snap model.Snapshot
	require.NoError(t, json.Unmarshal([]byte(stdout), &snap))
	assert.Equal(t, "octocat", snap.State.Username)
	assert.Equal(t, 1, snap.State.TotalPages)
	assert.Equal(t, model.OutcomeSuccess, snap.Result.Outcome)
	assert.Len(t, snap.Result.Repositories, 3)
	assert.False(t, snap.HasNext)
}

func TestLookupUnknownUser(t *testing.T) {
	gh, url := newFakeGitHub(t, 12)

	args := []string{"repos", "lookup", "ghost", "--api-url", url, "--token", ""}
	exitCode, stdout, stderr := testcli.Main(t, args, nil, run)
	assert.Equal(t, 1, exitCode)
	assert.Equal(t, "", stdout)
	assert.Equal(t, "error: user not found or API error\n", stderr)

	// No metadata request after a failed listing.
	assert.Len(t, gh.requests, 1)
}

func TestLookupMetadataFailure(t *testing.T) {
	gh, url := newFakeGitHub(t, 12)
	gh.failUser = true

	args := []string{"repos", "lookup", "octocat", "--api-url", url, "--token", ""}
	exitCode, stdout, _ := testcli.Main(t, args, nil, run)
	assert.Equal(t, 0, exitCode)
	assert.True(t, strings.HasSuffix(stdout, "Page 1 of ?\n"), stdout)
}

func TestLookupNoRepos(t *testing.T) {
	_, url := newFakeGitHub(t, 0)

	args := []string{"repos", "lookup", "octocat", "--api-url", url, "--token", ""}
	exitCode, stdout, _ := testcli.Main(t, args, nil, run)
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "no repositories\n", stdout)
}

func TestLookupInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "bad sort", args: []string{"--sort", "up"}, want: `unknown sort order "up"`},
		{name: "page zero", args: []string{"--page", "0"}, want: "invalid page 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"repos", "lookup", "octocat", "--api-url", "http://127.0.0.1:1/"}, tt.args...)
			exitCode, stdout, stderr := testcli.Main(t, args, nil, run)
			assert.Equal(t, 1, exitCode)
			assert.Equal(t, "", stdout)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestLookupMissingUsername(t *testing.T) {
	exitCode, _, stderr := testcli.Main(t, []string{"repos", "lookup"}, nil, run)
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr, "accepts 1 arg(s), received 0")
}
