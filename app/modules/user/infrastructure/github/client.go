package githubauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const defaultAPIURL = "https://api.github.com"

// ErrAuthorization is returned when GitHub rejects the code or the profile
// cannot be read.
var ErrAuthorization = errors.New("github authorization failed")

// Profile is the subset of the GitHub user we keep.
type Profile struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// Authorizer trades an OAuth code for the caller's GitHub profile.
type Authorizer interface {
	Authorize(ctx context.Context, code string) (*Profile, string, error)
}

// Client talks to GitHub's OAuth and REST endpoints.
type Client struct {
	config *oauth2.Config
	apiURL string
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the OAuth endpoint.
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(c *Client) { c.config.Endpoint = endpoint }
}

// WithAPIURL overrides the REST API base URL.
func WithAPIURL(apiURL string) Option {
	return func(c *Client) { c.apiURL = strings.TrimSuffix(apiURL, "/") }
}

// NewClient creates a GitHub client for the given OAuth app.
func NewClient(clientID, clientSecret string, opts ...Option) *Client {
	c := &Client{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"user"},
		},
		apiURL: defaultAPIURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthCodeURL is where the browser is sent to start the login.
func (c *Client) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}

// Authorize exchanges code for an access token and loads the profile it
// belongs to. The access token is returned alongside the profile.
func (c *Client) Authorize(ctx context.Context, code string) (*Profile, string, error) {
	if code == "" {
		return nil, "", fmt.Errorf("%w: missing code", ErrAuthorization)
	}

	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrAuthorization, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/user", nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build profile request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch github profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: profile request returned %s", ErrAuthorization, resp.Status)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, "", fmt.Errorf("failed to decode github profile: %w", err)
	}
	if profile.Login == "" {
		return nil, "", fmt.Errorf("%w: profile has no login", ErrAuthorization)
	}

	return &profile, token.AccessToken, nil
}

var _ Authorizer = (*Client)(nil)
