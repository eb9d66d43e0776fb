package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/vilaca/gh-lookup/internal/api"
	"github.com/vilaca/gh-lookup/internal/domain"
)

// Presenter receives the steps of a lookup in causal order.
// PresentRepositories is only ever called after PresentProfile, and never after PresentError.
type Presenter interface {
	PresentProfile(profile domain.Profile)
	PresentRepositories(result domain.RepositoryResult)
	PresentError(err *domain.LookupError)
}

// OutcomeRecorder counts lookup outcomes (implemented by metrics.Metrics).
type OutcomeRecorder interface {
	RecordLookup(outcome string)
}

// Lookup outcome labels.
const (
	OutcomeSuccess = "success"
)

// LookupService runs the two-step user lookup: profile first, then repositories.
type LookupService struct {
	client   api.Client
	logger   *slog.Logger
	recorder OutcomeRecorder
}

// NewLookupService creates a lookup service over client.
// A nil logger uses slog.Default(); recorder may be nil.
func NewLookupService(client api.Client, logger *slog.Logger, recorder OutcomeRecorder) *LookupService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LookupService{
		client:   client,
		logger:   logger,
		recorder: recorder,
	}
}

// FetchProfile normalises raw input and fetches the profile.
// Returns the trimmed username used for the request. No request is made for blank input.
func (s *LookupService) FetchProfile(ctx context.Context, raw string) (string, *domain.Profile, *domain.LookupError) {
	username := strings.TrimSpace(raw)
	if username == "" {
		return "", nil, domain.NewLookupError(domain.KindEmptyInput, nil)
	}

	profile, err := s.client.GetUser(ctx, username)
	if err != nil {
		lookupErr := domain.NewLookupError(classifyProfileError(err), err)
		s.logger.WarnContext(ctx, "profile lookup failed",
			slog.String("username", username),
			slog.String("kind", string(lookupErr.Kind)),
			slog.Any("error", err),
		)
		return username, nil, lookupErr
	}

	return username, profile, nil
}

// FetchRepositories fetches the repositories of an already resolved username.
func (s *LookupService) FetchRepositories(ctx context.Context, username string) domain.RepositoryResult {
	repos, err := s.client.GetUserRepositories(ctx, username)
	if err != nil {
		s.logger.WarnContext(ctx, "repository lookup failed",
			slog.String("username", username),
			slog.Any("error", err),
		)
		return domain.RepositoriesFailed(domain.NewLookupError(domain.KindRepoFetch, err))
	}

	return domain.RepositoriesOK(repos)
}

// Lookup performs a full lookup, reporting each step to p as it completes.
// p may be nil when only the returned summary is needed.
func (s *LookupService) Lookup(ctx context.Context, raw string, p Presenter) domain.LookupResult {
	if p == nil {
		p = discardPresenter{}
	}

	username, profile, lookupErr := s.FetchProfile(ctx, raw)
	if lookupErr != nil {
		p.PresentError(lookupErr)
		s.record(string(lookupErr.Kind))
		return domain.LookupResult{Username: username, Err: lookupErr}
	}

	p.PresentProfile(*profile)

	repos := s.FetchRepositories(ctx, username)
	p.PresentRepositories(repos)

	if repos.OK() {
		s.record(OutcomeSuccess)
	} else {
		s.record(string(repos.Err.Kind))
	}

	s.logger.DebugContext(ctx, "lookup completed",
		slog.String("username", username),
		slog.Int("repositories", len(repos.Repositories)),
	)

	return domain.LookupResult{
		Username:     username,
		Profile:      profile,
		Repositories: repos,
	}
}

func (s *LookupService) record(outcome string) {
	if s.recorder != nil {
		s.recorder.RecordLookup(outcome)
	}
}

// classifyProfileError maps a client error to a lookup error kind.
func classifyProfileError(err error) domain.ErrorKind {
	if errors.Is(err, api.ErrNotFound) {
		return domain.KindUserNotFound
	}

	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return domain.KindUpstreamError
	}

	return domain.KindTransport
}

type discardPresenter struct{}

func (discardPresenter) PresentProfile(domain.Profile)               {}
func (discardPresenter) PresentRepositories(domain.RepositoryResult) {}
func (discardPresenter) PresentError(*domain.LookupError)            {}
