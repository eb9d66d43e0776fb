package domain

import "fmt"

// ErrorKind classifies a failed lookup.
type ErrorKind string

const (
	KindEmptyInput    ErrorKind = "empty_input"
	KindUserNotFound  ErrorKind = "user_not_found"
	KindUpstreamError ErrorKind = "upstream_error"
	KindTransport     ErrorKind = "transport_error"
	KindRepoFetch     ErrorKind = "repo_fetch_error"
)

// User-facing messages. These never include upstream error details.
const (
	MessageEmptyInput    = "Please enter a username"
	MessageUserNotFound  = "User not found. Please check the username and try again."
	MessageUpstreamError = "An error occurred while fetching user data."
	MessageTransport     = "An error occurred. Please try again later."
	MessageRepoFetch     = "Failed to fetch repositories"
)

// LookupError is a classified lookup failure.
// Err holds the diagnostic cause for operators and may be nil.
type LookupError struct {
	Kind ErrorKind
	Err  error
}

// NewLookupError creates a classified error wrapping the diagnostic cause.
func NewLookupError(kind ErrorKind, cause error) *LookupError {
	return &LookupError{Kind: kind, Err: cause}
}

func (e *LookupError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Is matches another *LookupError of the same kind, so errors.Is works with kind-only targets.
func (e *LookupError) Is(target error) bool {
	t, ok := target.(*LookupError)
	if !ok {
		return false
	}
	return t.Err == nil && t.Kind == e.Kind
}

// UserMessage returns the text shown to the end user for this kind of failure.
func (e *LookupError) UserMessage() string {
	switch e.Kind {
	case KindEmptyInput:
		return MessageEmptyInput
	case KindUserNotFound:
		return MessageUserNotFound
	case KindUpstreamError:
		return MessageUpstreamError
	case KindRepoFetch:
		return MessageRepoFetch
	default:
		return MessageTransport
	}
}

// Kind-only targets for errors.Is.
var (
	ErrEmptyInput    = &LookupError{Kind: KindEmptyInput}
	ErrUserNotFound  = &LookupError{Kind: KindUserNotFound}
	ErrUpstreamError = &LookupError{Kind: KindUpstreamError}
	ErrTransport     = &LookupError{Kind: KindTransport}
	ErrRepoFetch     = &LookupError{Kind: KindRepoFetch}
)
