package models

// User is a photoshare account. GithubLogin is the identity key.
type User struct {
	GithubLogin string `json:"githubLogin"`
	Name        string `json:"name,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

// AuthPayload is returned by the login mutations.
type AuthPayload struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
