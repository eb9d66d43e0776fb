package domain

// Repository represents one repository owned by a looked-up user.
// Description and Language are empty when the platform does not provide them.
type Repository struct {
	Name            string
	HTMLURL         string
	Description     string
	Language        string
	StargazersCount int
}

// HasLanguage returns true if the platform detected a primary language.
func (r Repository) HasLanguage() bool {
	return r.Language != ""
}

// RepositoryResult is the outcome of fetching a user's repositories.
// It keeps "zero repositories" and "fetch failed" apart even though both hide the list.
type RepositoryResult struct {
	Repositories []Repository // Upstream order, most recently updated first
	Err          *LookupError
}

// RepositoriesOK wraps a successful fetch.
func RepositoriesOK(repos []Repository) RepositoryResult {
	if repos == nil {
		repos = []Repository{}
	}
	return RepositoryResult{Repositories: repos}
}

// RepositoriesFailed wraps a failed fetch.
func RepositoriesFailed(err *LookupError) RepositoryResult {
	return RepositoryResult{Err: err}
}

// OK returns true if the repositories were fetched.
func (r RepositoryResult) OK() bool {
	return r.Err == nil
}

// Empty returns true if the fetch succeeded but the user has no repositories.
func (r RepositoryResult) Empty() bool {
	return r.OK() && len(r.Repositories) == 0
}

// LookupResult summarises one lookup.
// Profile is nil when Err is set; Repositories is only meaningful when Profile is set.
type LookupResult struct {
	Username     string
	Profile      *Profile
	Err          *LookupError
	Repositories RepositoryResult
}
