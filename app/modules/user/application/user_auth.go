package userservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/photoshare/app/eventbus"
	"github.com/Black-And-White-Club/photoshare/app/models"
	userdb "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/photoshare/app/shared"
	"github.com/uptrace/bun"
)

type upsertResult struct {
	user    *userdb.User
	created bool
}

// GithubAuth logs a user in with a GitHub OAuth code. First-time logins are
// announced on user-added after the row is committed.
func (s *UserService) GithubAuth(ctx context.Context, code string) (*models.AuthPayload, error) {
	return shared.Run(ctx, s.runner, "GithubAuth", "", func(ctx context.Context) (*models.AuthPayload, error) {
		profile, accessToken, err := s.github.Authorize(ctx, code)
		if err != nil {
			return nil, err
		}

		res, err := shared.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (upsertResult, error) {
			row := &userdb.User{
				GithubLogin: profile.Login,
				Name:        profile.Name,
				Avatar:      profile.AvatarURL,
				GithubToken: accessToken,
			}
			created, err := s.repo.Upsert(ctx, db, row)
			if err != nil {
				return upsertResult{}, err
			}
			return upsertResult{user: row, created: created}, nil
		})
		if err != nil {
			return nil, err
		}

		token, err := s.tokens.GenerateToken(res.user.GithubLogin, 0)
		if err != nil {
			return nil, err
		}

		user := toModel(res.user)
		if res.created {
			s.publishUser(ctx, user)
		}
		return &models.AuthPayload{Token: token, User: user}, nil
	})
}

// FakeUserAuth issues a session for an existing user without GitHub.
func (s *UserService) FakeUserAuth(ctx context.Context, githubLogin string) (*models.AuthPayload, error) {
	return shared.Run(ctx, s.runner, "FakeUserAuth", githubLogin, func(ctx context.Context) (*models.AuthPayload, error) {
		row, err := s.getUser(ctx, nil, githubLogin)
		if errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("cannot find user with githubLogin %q: %w", githubLogin, err)
		}
		if err != nil {
			return nil, err
		}
		token, err := s.tokens.GenerateToken(row.GithubLogin, 0)
		if err != nil {
			return nil, err
		}
		return &models.AuthPayload{Token: token, User: toModel(row)}, nil
	})
}

// Authenticate resolves a session token to its user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	return shared.Run(ctx, s.runner, "Authenticate", "", func(ctx context.Context) (*models.User, error) {
		claims, err := s.tokens.ValidateToken(token)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
		}
		row, err := s.getUser(ctx, nil, claims.GithubLogin)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
			}
			return nil, err
		}
		return toModel(row), nil
	})
}

func (s *UserService) publishUser(ctx context.Context, user *models.User) {
	if err := s.bus.Publish(ctx, eventbus.UserAdded, user); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish new user",
			slog.String("github_login", user.GithubLogin),
			slog.Any("error", err),
		)
	}
}

func (s *UserService) getUser(ctx context.Context, db bun.IDB, githubLogin string) (*userdb.User, error) {
	row, err := s.repo.GetByLogin(ctx, db, githubLogin)
	if err != nil {
		if errors.Is(err, userdb.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return row, nil
}
