package githubauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newFakeGitHub(t *testing.T, profileStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":             "bad_verification_code",
				"error_description": "The code passed is incorrect or expired.",
			})
			return
		}
		assert.Equal(t, "client-id", r.Form.Get("client_id"))
		assert.Equal(t, "client-secret", r.Form.Get("client_secret"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "gho_token",
			"token_type":   "bearer",
		})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gho_token", r.Header.Get("Authorization"))
		if profileStatus != http.StatusOK {
			w.WriteHeader(profileStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"login":      "gPlake",
			"name":       "Glen Plake",
			"avatar_url": "https://avatars.example.com/gPlake",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient("client-id", "client-secret",
		WithEndpoint(oauth2.Endpoint{
			AuthURL:   srv.URL + "/login/oauth/authorize",
			TokenURL:  srv.URL + "/login/oauth/access_token",
			AuthStyle: oauth2.AuthStyleInParams,
		}),
		WithAPIURL(srv.URL),
	)
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name          string
		code          string
		profileStatus int
		wantErr       bool
		wantProfile   *Profile
	}{
		{
			name:          "valid code",
			code:          "good-code",
			profileStatus: http.StatusOK,
			wantProfile: &Profile{
				Login:     "gPlake",
				Name:      "Glen Plake",
				AvatarURL: "https://avatars.example.com/gPlake",
			},
		},
		{
			name:          "rejected code",
			code:          "bad-code",
			profileStatus: http.StatusOK,
			wantErr:       true,
		},
		{
			name:    "missing code",
			wantErr: true,
		},
		{
			name:          "profile request fails",
			code:          "good-code",
			profileStatus: http.StatusUnauthorized,
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(newFakeGitHub(t, tt.profileStatus))

			profile, token, err := client.Authorize(context.Background(), tt.code)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrAuthorization)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProfile, profile)
			assert.Equal(t, "gho_token", token)
		})
	}
}

func TestAuthCodeURL(t *testing.T) {
	client := NewClient("client-id", "client-secret")
	u := client.AuthCodeURL("state-1")
	assert.Contains(t, u, "https://github.com/login/oauth/authorize")
	assert.Contains(t, u, "client_id=client-id")
	assert.Contains(t, u, "state=state-1")
}
