package domain

// RepositoryPageSize is the number of repositories requested per lookup.
// Only the first page is ever fetched.
const RepositoryPageSize = 100

// RepositorySort is the upstream sort order for repository listings (most recently updated first).
const RepositorySort = "updated"
