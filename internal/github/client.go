// Package github talks to the GitHub REST API.
//
// It exposes exactly the two calls the explorer needs: the paginated,
// star-sorted listing of a user's repositories, and the user's public
// repository count. Every failure, whatever its cause, comes back as
// apperror.LookupFailed so callers only ever handle one error kind.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v58/github"
	"golang.org/x/oauth2"

	"github.com/sakif/repo-explorer/internal/apperror"
	"github.com/sakif/repo-explorer/internal/model"
)

const (
	DefaultBaseURL = "https://api.github.com/"
	DefaultTimeout = 10 * time.Second

	// sortByStars is sent verbatim as the listing's sort parameter.
	sortByStars = "stars"
)

// Config holds client configuration.
type Config struct {
	BaseURL string        // API root, must end with "/" (one is added if missing)
	Token   string        // optional; raises the rate limit when set
	Timeout time.Duration // per-call timeout; zero means DefaultTimeout
}

// Client wraps a go-github client.
type Client struct {
	api     *gh.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewHTTPClient returns an http.Client that authenticates with token, or a
// plain client when token is empty.
func NewHTTPClient(ctx context.Context, token string) *http.Client {
	if token == "" {
		return &http.Client{}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return oauth2.NewClient(ctx, ts)
}

// New creates a Client for cfg.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	api := gh.NewClient(NewHTTPClient(context.Background(), cfg.Token))

	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("github: parsing base URL %q: %w", cfg.BaseURL, err)
		}
		api.BaseURL = u
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		api:     api,
		timeout: timeout,
		logger:  logger.With(slog.String("component", "github")),
	}, nil
}

// ListRepositories issues
//
//	GET /users/{username}/repos?per_page=10&page={page}&sort=stars&direction={sort}
//
// and returns the repositories in the order the API sent them.
// page is passed through unchecked.
func (c *Client) ListRepositories(ctx context.Context, username string, page int, sort model.SortOrder) ([]model.Repository, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts := &gh.RepositoryListByUserOptions{
		Sort:      sortByStars,
		Direction: string(sort),
		ListOptions: gh.ListOptions{
			Page:    page,
			PerPage: model.PageSize,
		},
	}

	repos, _, err := c.api.Repositories.ListByUser(ctx, username, opts)
	if err != nil {
		c.logger.Debug("listing request failed",
			slog.String("username", username),
			slog.Int("page", page),
			slog.String("error", err.Error()),
		)
		return nil, apperror.LookupFailed(err)
	}

	result := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		result = append(result, model.Repository{
			ID:          r.GetID(),
			Name:        r.GetName(),
			Description: r.GetDescription(),
			Stars:       r.GetStargazersCount(),
			URL:         r.GetHTMLURL(),
		})
	}
	return result, nil
}

// PublicRepoCount issues GET /users/{username} and returns public_repos.
func (c *Client) PublicRepoCount(ctx context.Context, username string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	user, _, err := c.api.Users.Get(ctx, username)
	if err != nil {
		c.logger.Debug("metadata request failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return 0, apperror.LookupFailed(err)
	}
	if user.PublicRepos == nil {
		return 0, apperror.LookupFailed(fmt.Errorf("github: response for %q has no public_repos", username))
	}
	return user.GetPublicRepos(), nil
}
