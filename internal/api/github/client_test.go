package github

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vilaca/gh-lookup/internal/api"
)

// roundTripFunc is a test double for the HTTP transport.
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func mockHTTPClient(fn roundTripFunc) *http.Client {
	return &http.Client{Transport: fn}
}

type observation struct {
	endpoint string
	outcome  string
}

type mockObserver struct {
	observed []observation
}

func (m *mockObserver) ObserveRequest(endpoint, outcome string, _ time.Duration) {
	m.observed = append(m.observed, observation{endpoint: endpoint, outcome: outcome})
}

func response(req *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Request:    req,
	}
}

func respond(status int, body string) *http.Client {
	return mockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return response(req, status, body), nil
	})
}

func newTestClient(t *testing.T, httpClient *http.Client, opts ...Option) *Client {
	t.Helper()
	client, err := NewClient(api.ClientConfig{
		BaseURL: "https://api.github.com",
		WebURL:  "https://github.com",
	}, httpClient, opts...)
	require.NoError(t, err)
	return client
}

// TestGetUser tests retrieving and converting a GitHub user.
func TestGetUser(t *testing.T) {
	// Arrange
	responseBody := `{
		"login": "octocat",
		"name": "The Octocat",
		"avatar_url": "https://avatars.githubusercontent.com/u/583231",
		"html_url": "https://github.com/octocat",
		"bio": "Mascot",
		"public_repos": 8,
		"followers": 100,
		"following": 9,
		"site_admin": false
	}`

	var gotReq *http.Request
	mockHTTP := mockHTTPClient(func(req *http.Request) (*http.Response, error) {
		gotReq = req
		return response(req, http.StatusOK, responseBody), nil
	})
	client := newTestClient(t, mockHTTP)

	// Act
	profile, err := client.GetUser(context.Background(), "octocat")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, gotReq)
	assert.Equal(t, "https://api.github.com/users/octocat", gotReq.URL.String())
	assert.Equal(t, http.MethodGet, gotReq.Method)
	assert.Equal(t, "application/vnd.github+json", gotReq.Header.Get("Accept"))
	assert.Equal(t, "2022-11-28", gotReq.Header.Get("X-GitHub-Api-Version"))
	assert.Empty(t, gotReq.Header.Get("Authorization"))

	assert.Equal(t, "octocat", profile.Login)
	assert.Equal(t, "The Octocat", profile.Name)
	assert.Equal(t, "Mascot", profile.Bio)
	assert.Equal(t, "https://avatars.githubusercontent.com/u/583231", profile.AvatarURL)
	assert.Equal(t, "https://github.com/octocat", profile.HTMLURL)
	assert.Equal(t, 8, profile.PublicRepos)
	assert.Equal(t, 100, profile.Followers)
	assert.Equal(t, 9, profile.Following)
}

// TestGetUser_NullFields tests that null name and bio become empty strings and a missing html_url is derived.
func TestGetUser_NullFields(t *testing.T) {
	client := newTestClient(t, respond(http.StatusOK, `{"login":"ghost","name":null,"bio":null,"avatar_url":"a.png"}`))

	profile, err := client.GetUser(context.Background(), "ghost")

	require.NoError(t, err)
	assert.Empty(t, profile.Name)
	assert.Empty(t, profile.Bio)
	assert.Equal(t, "ghost", profile.DisplayName())
	assert.Equal(t, "https://github.com/ghost", profile.HTMLURL)
}

// TestGetUser_EscapesUsername tests that the username is path-escaped.
func TestGetUser_EscapesUsername(t *testing.T) {
	var gotPath string
	mockHTTP := mockHTTPClient(func(req *http.Request) (*http.Response, error) {
		gotPath = req.URL.EscapedPath()
		return response(req, http.StatusOK, `{"login":"x"}`), nil
	})
	client := newTestClient(t, mockHTTP)

	_, err := client.GetUser(context.Background(), "a b/c")

	require.NoError(t, err)
	assert.Equal(t, "/users/a%20b%2Fc", gotPath)
}

// TestGetUser_Errors tests the classification of failed user requests.
func TestGetUser_Errors(t *testing.T) {
	tests := []struct {
		name         string
		httpClient   *http.Client
		wantNotFound bool
		wantStatus   int
		wantDecode   bool
	}{
		{
			name:         "not found",
			httpClient:   respond(http.StatusNotFound, `{"message":"Not Found"}`),
			wantNotFound: true,
			wantStatus:   http.StatusNotFound,
		},
		{
			name:       "server error",
			httpClient: respond(http.StatusInternalServerError, `oops`),
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "rate limited",
			httpClient: respond(http.StatusForbidden, `{"message":"API rate limit exceeded"}`),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "malformed body",
			httpClient: respond(http.StatusOK, `{"login":`),
			wantDecode: true,
		},
		{
			name:       "null body",
			httpClient: respond(http.StatusOK, `null`),
			wantDecode: true,
		},
		{
			name:       "object without login",
			httpClient: respond(http.StatusOK, `{"name":"nobody"}`),
			wantDecode: true,
		},
		{
			name: "network failure",
			httpClient: mockHTTPClient(func(*http.Request) (*http.Response, error) {
				return nil, errors.New("dial tcp: connection refused")
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			client := newTestClient(t, tt.httpClient)

			// Act
			profile, err := client.GetUser(context.Background(), "someone")

			// Assert
			require.Error(t, err)
			assert.Nil(t, profile)
			assert.Equal(t, tt.wantNotFound, errors.Is(err, api.ErrNotFound))

			var statusErr *api.StatusError
			if tt.wantStatus != 0 {
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, tt.wantStatus, statusErr.StatusCode)
			} else {
				assert.False(t, errors.As(err, &statusErr))
			}

			var decodeErr *api.DecodeError
			assert.Equal(t, tt.wantDecode, errors.As(err, &decodeErr))
		})
	}
}

// TestGetUserRepositories tests the repositories request and that upstream order is kept.
func TestGetUserRepositories(t *testing.T) {
	// Arrange
	responseBody := `[
		{"name":"newest","html_url":"https://github.com/octocat/newest","description":"fresh","language":"Go","stargazers_count":42},
		{"name":"older","html_url":"https://github.com/octocat/older","description":null,"language":null,"stargazers_count":0}
	]`

	var gotReq *http.Request
	mockHTTP := mockHTTPClient(func(req *http.Request) (*http.Response, error) {
		gotReq = req
		return response(req, http.StatusOK, responseBody), nil
	})
	client := newTestClient(t, mockHTTP)

	// Act
	repos, err := client.GetUserRepositories(context.Background(), "octocat")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, gotReq)
	assert.Equal(t, "/users/octocat/repos", gotReq.URL.Path)
	assert.Equal(t, "updated", gotReq.URL.Query().Get("sort"))
	assert.Equal(t, "100", gotReq.URL.Query().Get("per_page"))
	assert.Equal(t, "application/vnd.github+json", gotReq.Header.Get("Accept"))
	require.Len(t, repos, 2)
	assert.Equal(t, "newest", repos[0].Name)
	assert.Equal(t, "Go", repos[0].Language)
	assert.Equal(t, "fresh", repos[0].Description)
	assert.Equal(t, 42, repos[0].StargazersCount)
	assert.Equal(t, "older", repos[1].Name)
	assert.Empty(t, repos[1].Language)
	assert.Empty(t, repos[1].Description)
}

// TestGetUserRepositories_Empty tests that an empty array yields an empty, non-nil slice.
func TestGetUserRepositories_Empty(t *testing.T) {
	client := newTestClient(t, respond(http.StatusOK, `[]`))

	repos, err := client.GetUserRepositories(context.Background(), "empty")

	require.NoError(t, err)
	assert.NotNil(t, repos)
	assert.Empty(t, repos)
}

// TestGetUserRepositories_APIError tests that a non-2xx response is an error.
func TestGetUserRepositories_APIError(t *testing.T) {
	client := newTestClient(t, respond(http.StatusBadGateway, `bad gateway`))

	repos, err := client.GetUserRepositories(context.Background(), "octocat")

	require.Error(t, err)
	assert.Nil(t, repos)
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

// TestClient_ObservesRequests tests that every request is reported to the observer.
func TestClient_ObservesRequests(t *testing.T) {
	observer := &mockObserver{}
	client := newTestClient(t, respond(http.StatusNotFound, `{}`), WithObserver(observer))

	_, _ = client.GetUser(context.Background(), "nobody")
	_, _ = client.GetUserRepositories(context.Background(), "nobody")

	assert.Equal(t, []observation{
		{endpoint: endpointUser, outcome: "4xx"},
		{endpoint: endpointRepositories, outcome: "4xx"},
	}, observer.observed)
}

// TestClient_AgainstServer exercises the client over a real HTTP round trip.
func TestClient_AgainstServer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octocat", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"login":"octocat","html_url":"https://github.com/octocat"}`))
	})
	mux.HandleFunc("/users/octocat/repos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`[{"name":"hello-world","html_url":"https://github.com/octocat/hello-world"}]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(api.ClientConfig{BaseURL: server.URL}, server.Client())
	require.NoError(t, err)

	profile, err := client.GetUser(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, "octocat", profile.Login)

	repos, err := client.GetUserRepositories(context.Background(), "octocat")
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "hello-world", repos[0].Name)
}

// TestNewClient_InvalidBaseURL tests that a malformed API URL is rejected.
func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient(api.ClientConfig{BaseURL: "http://[::1"}, nil)

	assert.Error(t, err)
}

// TestGetUser_UpstreamMessage tests that the upstream error message is kept on the status error.
func TestGetUser_UpstreamMessage(t *testing.T) {
	client := newTestClient(t, respond(http.StatusUnprocessableEntity, `{"message":"Validation Failed"}`))

	_, err := client.GetUser(context.Background(), "someone")

	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.StatusCode)
	assert.Equal(t, "Validation Failed", statusErr.Body)
}

// TestGetUser_CancelledContext tests that a cancelled request is a transport failure, not a status.
func TestGetUser_CancelledContext(t *testing.T) {
	client := newTestClient(t, mockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return nil, req.Context().Err()
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetUser(ctx, "octocat")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	var statusErr *api.StatusError
	assert.False(t, errors.As(err, &statusErr))
}
