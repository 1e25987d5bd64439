package userservice

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/photoshare/app/eventbus"
	"github.com/Black-And-White-Club/photoshare/app/models"
	githubauth "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/github"
	userjwt "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/jwt"
	userdb "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/photoshare/app/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type testDeps struct {
	repo   *FakeUserRepo
	github *FakeGitHub
	tokens *FakeTokens
	pub    *FakePublisher
}

func newTestService() (*UserService, testDeps) {
	d := testDeps{
		repo:   NewFakeUserRepo(),
		github: &FakeGitHub{},
		tokens: &FakeTokens{},
		pub:    &FakePublisher{},
	}
	svc := NewUserService(d.repo, d.github, d.tokens, d.pub, slog.Default(), shared.NewNoopServiceMetrics(), nil, nil)
	return svc, d
}

func TestGithubAuth(t *testing.T) {
	profile := &githubauth.Profile{Login: "gPlake", Name: "Glen Plake", AvatarURL: "https://a/gPlake"}

	tests := []struct {
		name        string
		setup       func(d testDeps)
		wantErrIs   error
		wantErr     bool
		wantPublish bool
		wantTrace   []string
	}{
		{
			name: "first login publishes new user",
			setup: func(d testDeps) {
				d.github.AuthorizeFunc = func(ctx context.Context, code string) (*githubauth.Profile, string, error) {
					return profile, "gho_x", nil
				}
				d.repo.UpsertFunc = func(ctx context.Context, db bun.IDB, u *userdb.User) (bool, error) {
					assert.Equal(t, "gho_x", u.GithubToken)
					return true, nil
				}
			},
			wantPublish: true,
			wantTrace:   []string{"Upsert"},
		},
		{
			name: "returning user is not announced",
			setup: func(d testDeps) {
				d.github.AuthorizeFunc = func(ctx context.Context, code string) (*githubauth.Profile, string, error) {
					return profile, "gho_x", nil
				}
				d.repo.UpsertFunc = func(ctx context.Context, db bun.IDB, u *userdb.User) (bool, error) {
					return false, nil
				}
			},
			wantTrace: []string{"Upsert"},
		},
		{
			name:      "rejected code",
			wantErrIs: githubauth.ErrAuthorization,
			wantTrace: []string{},
		},
		{
			name: "upsert failure",
			setup: func(d testDeps) {
				d.github.AuthorizeFunc = func(ctx context.Context, code string) (*githubauth.Profile, string, error) {
					return profile, "gho_x", nil
				}
				d.repo.UpsertFunc = func(ctx context.Context, db bun.IDB, u *userdb.User) (bool, error) {
					return false, errors.New("db down")
				}
			},
			wantErr:   true,
			wantTrace: []string{"Upsert"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newTestService()
			if tt.setup != nil {
				tt.setup(d)
			}

			payload, err := svc.GithubAuth(context.Background(), "code")
			assert.Equal(t, tt.wantTrace, d.repo.Trace())

			if tt.wantErrIs != nil || tt.wantErr {
				require.Error(t, err)
				if tt.wantErrIs != nil {
					assert.ErrorIs(t, err, tt.wantErrIs)
				}
				assert.Empty(t, d.pub.Events())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "token-for-gPlake", payload.Token)
			assert.Equal(t, &models.User{GithubLogin: "gPlake", Name: "Glen Plake", Avatar: "https://a/gPlake"}, payload.User)

			events := d.pub.Events()
			if !tt.wantPublish {
				assert.Empty(t, events)
				return
			}
			require.Len(t, events, 1)
			assert.Equal(t, eventbus.UserAdded, events[0].Topic)
			assert.Same(t, payload.User, events[0].Payload)
		})
	}
}

func TestFakeUserAuth(t *testing.T) {
	svc, d := newTestService()
	d.repo.GetByLoginFunc = func(ctx context.Context, db bun.IDB, login string) (*userdb.User, error) {
		if login == "sSchmidt" {
			return &userdb.User{GithubLogin: "sSchmidt", Name: "Scot Schmidt"}, nil
		}
		return nil, userdb.ErrNotFound
	}

	payload, err := svc.FakeUserAuth(context.Background(), "sSchmidt")
	require.NoError(t, err)
	assert.Equal(t, "token-for-sSchmidt", payload.Token)
	assert.Equal(t, "Scot Schmidt", payload.User.Name)

	_, err = svc.FakeUserAuth(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Contains(t, err.Error(), `"nobody"`)
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name      string
		validate  func(token string) (*userjwt.Claims, error)
		wantLogin string
		wantErrIs []error
	}{
		{
			name: "valid session",
			validate: func(string) (*userjwt.Claims, error) {
				return &userjwt.Claims{GithubLogin: "mHattrup"}, nil
			},
			wantLogin: "mHattrup",
		},
		{
			name: "expired session",
			validate: func(string) (*userjwt.Claims, error) {
				return nil, userjwt.ErrExpiredToken
			},
			wantErrIs: []error{ErrUnauthenticated, userjwt.ErrExpiredToken},
		},
		{
			name: "user deleted since login",
			validate: func(string) (*userjwt.Claims, error) {
				return &userjwt.Claims{GithubLogin: "ghost"}, nil
			},
			wantErrIs: []error{ErrUnauthenticated, ErrUserNotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newTestService()
			d.tokens.ValidateTokenFunc = tt.validate
			d.repo.GetByLoginFunc = func(ctx context.Context, db bun.IDB, login string) (*userdb.User, error) {
				if login == "mHattrup" {
					return &userdb.User{GithubLogin: login}, nil
				}
				return nil, userdb.ErrNotFound
			}

			user, err := svc.Authenticate(context.Background(), "tok")
			if tt.wantErrIs != nil {
				for _, target := range tt.wantErrIs {
					assert.ErrorIs(t, err, target)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLogin, user.GithubLogin)
		})
	}
}

func TestAddFakeUsers(t *testing.T) {
	t.Run("creates and announces each user", func(t *testing.T) {
		svc, d := newTestService()

		users, err := svc.AddFakeUsers(context.Background(), 3)
		require.NoError(t, err)
		require.Len(t, users, 3)

		events := d.pub.Events()
		require.Len(t, events, 3)
		for i, e := range events {
			assert.Equal(t, eventbus.UserAdded, e.Topic)
			assert.Same(t, users[i], e.Payload)
			assert.NotEmpty(t, users[i].GithubLogin)
			assert.NotEmpty(t, users[i].Name)
		}
	})

	t.Run("only inserted users are announced", func(t *testing.T) {
		svc, d := newTestService()
		d.repo.InsertManyFunc = func(ctx context.Context, db bun.IDB, users []*userdb.User) ([]*userdb.User, error) {
			return users[:1], nil
		}

		users, err := svc.AddFakeUsers(context.Background(), 2)
		require.NoError(t, err)
		assert.Len(t, users, 1)
		assert.Len(t, d.pub.Events(), 1)
	})

	for _, count := range []int{0, -1, MaxFakeUsers + 1} {
		svc, d := newTestService()
		_, err := svc.AddFakeUsers(context.Background(), count)
		assert.ErrorIs(t, err, ErrInvalidCount, "count %d", count)
		assert.Empty(t, d.repo.Trace())
	}
}

func TestGetUsersKeepsRequestedOrder(t *testing.T) {
	svc, d := newTestService()
	d.repo.GetByLoginsFunc = func(ctx context.Context, db bun.IDB, logins []string) ([]*userdb.User, error) {
		return []*userdb.User{{GithubLogin: "b"}, {GithubLogin: "a"}}, nil
	}

	users, err := svc.GetUsers(context.Background(), []string{"a", "missing", "b"})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a", users[0].GithubLogin)
	assert.Equal(t, "b", users[1].GithubLogin)
}

func TestUserQueries(t *testing.T) {
	svc, d := newTestService()
	d.repo.ListFunc = func(ctx context.Context, db bun.IDB) ([]*userdb.User, error) {
		return []*userdb.User{{GithubLogin: "gPlake"}, {GithubLogin: "sSchmidt"}}, nil
	}
	d.repo.CountFunc = func(ctx context.Context, db bun.IDB) (int, error) { return 2, nil }

	all, err := svc.AllUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	total, err := svc.TotalUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, err = svc.GetUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
