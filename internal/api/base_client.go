package api

import (
	"context"
	"net/http"
)

const (
	// MaxConcurrentRequests limits concurrent API requests to avoid overwhelming the API
	MaxConcurrentRequests = 5
)

// HTTPClient interface for HTTP operations (allows mocking in tests).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// BaseClient contains common fields and functionality for all API clients.
type BaseClient struct {
	BaseURL    string
	HTTPClient HTTPClient
	Semaphore  chan struct{} // Limits concurrent requests
}

// NewBaseClient creates a new base client bounded to maxConcurrent in-flight requests.
// A non-positive maxConcurrent uses MaxConcurrentRequests.
func NewBaseClient(baseURL string, httpClient HTTPClient, maxConcurrent int) *BaseClient {
	if maxConcurrent <= 0 {
		maxConcurrent = MaxConcurrentRequests
	}

	return &BaseClient{
		BaseURL:    baseURL,
		HTTPClient: httpClient,
		Semaphore:  make(chan struct{}, maxConcurrent),
	}
}

// DoLimited performs an operation once a request slot is free.
// Returns ctx.Err() if the context ends while waiting; the operation is not retried.
func (c *BaseClient) DoLimited(ctx context.Context, fn func() error) error {
	select {
	case c.Semaphore <- struct{}{}:
		defer func() { <-c.Semaphore }()
	case <-ctx.Done():
		return ctx.Err()
	}

	return fn()
}
