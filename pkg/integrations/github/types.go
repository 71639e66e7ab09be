package github

import "time"

// User represents a GitHub user as returned by GET /users/{login}.
type User struct {
	ID              int64     `json:"id" validate:"gt=0"`
	Login           string    `json:"login" validate:"required"`
	Name            string    `json:"name"`
	AvatarURL       string    `json:"avatar_url"`
	HTMLURL         string    `json:"html_url"`
	Company         *string   `json:"company"`
	Blog            string    `json:"blog"`
	Location        *string   `json:"location"`
	Email           *string   `json:"email"`
	Bio             *string   `json:"bio"`
	TwitterUsername *string   `json:"twitter_username"`
	PublicRepos     int       `json:"public_repos" validate:"gte=0"`
	PublicGists     int       `json:"public_gists" validate:"gte=0"`
	Followers       int       `json:"followers" validate:"gte=0"`
	Following       int       `json:"following" validate:"gte=0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Hireable        *bool     `json:"hireable"`
	Type            string    `json:"type"`
	SiteAdmin       bool      `json:"site_admin"`
}

// Repo represents a GitHub repository as returned by GET /users/{login}/repos.
type Repo struct {
	ID          int64     `json:"id" validate:"gt=0"`
	Name        string    `json:"name" validate:"required"`
	FullName    string    `json:"full_name"`
	HTMLURL     string    `json:"html_url"`
	Description *string   `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
	Language    *string   `json:"language"`
	Stars       int       `json:"stargazers_count" validate:"gte=0"`
	Forks       int       `json:"forks_count" validate:"gte=0"`
	Fork        bool      `json:"fork"`
	Archived    bool      `json:"archived"`
}

// SearchResponse is the body of GET /search/users.
type SearchResponse struct {
	TotalCount        int          `json:"total_count" validate:"gte=0"`
	IncompleteResults bool         `json:"incomplete_results"`
	Items             []SearchItem `json:"items" validate:"dive"`
}

// SearchItem is one matched account in a [SearchResponse].
// The search API omits most profile fields; Name is usually empty.
type SearchItem struct {
	ID        int64   `json:"id" validate:"gt=0"`
	Login     string  `json:"login" validate:"required"`
	Name      string  `json:"name,omitempty"`
	AvatarURL string  `json:"avatar_url"`
	HTMLURL   string  `json:"html_url"`
	Type      string  `json:"type"`
	Score     float64 `json:"score"`
}

// Event is a public activity event as returned by GET /users/{login}/events/public.
type Event struct {
	ID        string    `json:"id" validate:"required"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}
