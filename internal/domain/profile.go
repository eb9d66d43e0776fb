package domain

// Profile represents a user profile fetched from the hosting platform.
// Name and Bio are empty when the platform does not provide them.
type Profile struct {
	Login       string
	Name        string
	AvatarURL   string
	HTMLURL     string // Link to the profile page on the platform
	Bio         string
	PublicRepos int
	Followers   int
	Following   int
}

// DisplayName returns the name shown as the profile title.
// Falls back to the login when no name is set.
func (p Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Login
}

// HasBio returns true if the profile carries a non-empty bio.
func (p Profile) HasBio() bool {
	return p.Bio != ""
}
