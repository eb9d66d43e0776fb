package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/vilaca/gh-lookup/internal/domain"
)

// Client defines the interface for hosting platform clients.
// Consumers depend on this interface, not on the GitHub implementation.
type Client interface {
	// GetUser returns the profile of the given username.
	// Returns an error matching ErrNotFound when the user does not exist.
	GetUser(ctx context.Context, username string) (*domain.Profile, error)

	// GetUserRepositories returns the first page of the user's repositories,
	// most recently updated first.
	GetUserRepositories(ctx context.Context, username string) ([]domain.Repository, error)
}

// ClientConfig holds common configuration for API clients.
type ClientConfig struct {
	BaseURL       string // REST API root, e.g. https://api.github.com
	WebURL        string // Web root used to build profile links, e.g. https://github.com
	MaxConcurrent int
}

// ErrNotFound is matched by a StatusError carrying 404.
var ErrNotFound = errors.New("not found")

// StatusError is returned when the upstream API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}

// Is reports 404 responses as ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// DecodeError is returned when a 2xx response body cannot be parsed.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
