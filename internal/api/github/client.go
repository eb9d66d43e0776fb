package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gogithub "github.com/google/go-github/v33/github"

	"github.com/vilaca/gh-lookup/internal/api"
	"github.com/vilaca/gh-lookup/internal/domain"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultWebURL  = "https://github.com"

	apiVersion = "2022-11-28"
	mediaType  = "application/vnd.github+json"

	endpointUser         = "user"
	endpointRepositories = "repositories"
)

// Client implements api.Client for the GitHub REST API.
// Only public, unauthenticated endpoints are used.
type Client struct {
	*api.BaseClient
	gh       *gogithub.Client
	webURL   string
	observer RequestObserver
}

// RequestObserver receives the outcome and latency of every upstream request.
type RequestObserver interface {
	ObserveRequest(endpoint, outcome string, duration time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithObserver reports request timings to o.
func WithObserver(o RequestObserver) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a new GitHub client.
// httpClient supplies the timeout and transport; nil uses a default client.
func NewClient(config api.ClientConfig, httpClient *http.Client, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	apiURL, err := url.Parse(baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", config.BaseURL, err)
	}

	webURL := strings.TrimRight(config.WebURL, "/")
	if webURL == "" {
		webURL = defaultWebURL
	}

	withHeaders := withAPIHeaders(httpClient)
	gh := gogithub.NewClient(withHeaders)
	gh.BaseURL = apiURL

	c := &Client{
		BaseClient: api.NewBaseClient(baseURL, withHeaders, config.MaxConcurrent),
		gh:         gh,
		webURL:     webURL,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GetUser retrieves the public profile of username.
func (c *Client) GetUser(ctx context.Context, username string) (*domain.Profile, error) {
	var user *gogithub.User
	err := c.doRequest(ctx, endpointUser, func() (*gogithub.Response, error) {
		var resp *gogithub.Response
		var err error
		user, resp, err = c.gh.Users.Get(ctx, url.PathEscape(username))
		if err == nil && user.GetLogin() == "" {
			err = &api.DecodeError{Err: errors.New("user response has no login")}
		}
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return c.convertProfile(user), nil
}

// GetUserRepositories retrieves the first page of username's repositories, most recently updated first.
func (c *Client) GetUserRepositories(ctx context.Context, username string) ([]domain.Repository, error) {
	opts := &gogithub.RepositoryListOptions{
		Sort:        domain.RepositorySort,
		ListOptions: gogithub.ListOptions{PerPage: domain.RepositoryPageSize},
	}

	var ghRepos []*gogithub.Repository
	err := c.doRequest(ctx, endpointRepositories, func() (*gogithub.Response, error) {
		var resp *gogithub.Response
		var err error
		ghRepos, resp, err = c.gh.Repositories.List(ctx, url.PathEscape(username), opts)
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get repositories: %w", err)
	}

	return convertRepositories(ghRepos), nil
}

// doRequest runs call in a request slot, classifies its error and reports it to the observer.
func (c *Client) doRequest(ctx context.Context, endpoint string, call func() (*gogithub.Response, error)) error {
	return c.DoLimited(ctx, func() error {
		start := time.Now()
		err := classify(call())
		if c.observer != nil {
			c.observer.ObserveRequest(endpoint, requestOutcome(err), time.Since(start))
		}
		return err
	})
}

// classify maps a go-github error onto the api error types.
// A response means the server answered: non-2xx is a StatusError, anything
// else went wrong reading the body. No response is a transport failure.
func classify(resp *gogithub.Response, err error) error {
	if err == nil {
		return nil
	}

	var decodeErr *api.DecodeError
	if errors.As(err, &decodeErr) {
		return err
	}

	if resp != nil && resp.Response != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &api.StatusError{StatusCode: resp.StatusCode, Body: errorMessage(err)}
		}
		return &api.DecodeError{Err: err}
	}

	return fmt.Errorf("request failed: %w", err)
}

// errorMessage extracts the upstream message from a go-github error.
func errorMessage(err error) string {
	var errResp *gogithub.ErrorResponse
	if errors.As(err, &errResp) {
		return errResp.Message
	}
	var rateErr *gogithub.RateLimitError
	if errors.As(err, &rateErr) {
		return rateErr.Message
	}
	var abuseErr *gogithub.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return abuseErr.Message
	}
	return ""
}

// requestOutcome buckets an error for metrics labels.
func requestOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("%dxx", statusErr.StatusCode/100)
	}
	var decodeErr *api.DecodeError
	if errors.As(err, &decodeErr) {
		return "decode_error"
	}
	return "transport_error"
}

// convertProfile converts a GitHub user to the domain model.
func (c *Client) convertProfile(user *gogithub.User) *domain.Profile {
	htmlURL := user.GetHTMLURL()
	if htmlURL == "" {
		htmlURL = c.webURL + "/" + user.GetLogin()
	}

	return &domain.Profile{
		Login:       user.GetLogin(),
		Name:        user.GetName(),
		AvatarURL:   user.GetAvatarURL(),
		HTMLURL:     htmlURL,
		Bio:         user.GetBio(),
		PublicRepos: user.GetPublicRepos(),
		Followers:   user.GetFollowers(),
		Following:   user.GetFollowing(),
	}
}

// convertRepositories converts GitHub repositories to domain models, keeping upstream order.
func convertRepositories(ghRepos []*gogithub.Repository) []domain.Repository {
	repos := make([]domain.Repository, 0, len(ghRepos))
	for _, repo := range ghRepos {
		if repo == nil {
			continue
		}
		repos = append(repos, domain.Repository{
			Name:            repo.GetName(),
			HTMLURL:         repo.GetHTMLURL(),
			Description:     repo.GetDescription(),
			Language:        repo.GetLanguage(),
			StargazersCount: repo.GetStargazersCount(),
		})
	}
	return repos
}

// headerTransport pins the media type and API version on every request.
type headerTransport struct {
	base http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Accept", mediaType)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	return t.base.RoundTrip(req)
}

// withAPIHeaders returns a copy of httpClient whose transport sets the GitHub headers.
func withAPIHeaders(httpClient *http.Client) *http.Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	wrapped := *httpClient
	wrapped.Transport = &headerTransport{base: base}
	return &wrapped
}
