package userservice

import (
	"context"
	"strings"

	"github.com/Black-And-White-Club/photoshare/app/models"
	"github.com/Black-And-White-Club/photoshare/app/shared"
)

func (s *UserService) GetUser(ctx context.Context, githubLogin string) (*models.User, error) {
	return shared.Run(ctx, s.runner, "GetUser", githubLogin, func(ctx context.Context) (*models.User, error) {
		row, err := s.getUser(ctx, nil, githubLogin)
		if err != nil {
			return nil, err
		}
		return toModel(row), nil
	})
}

// GetUsers returns the known users among githubLogins in the order given.
// Unknown logins are skipped.
func (s *UserService) GetUsers(ctx context.Context, githubLogins []string) ([]*models.User, error) {
	return shared.Run(ctx, s.runner, "GetUsers", strings.Join(githubLogins, ","), func(ctx context.Context) ([]*models.User, error) {
		rows, err := s.repo.GetByLogins(ctx, nil, githubLogins)
		if err != nil {
			return nil, err
		}
		byLogin := make(map[string]*models.User, len(rows))
		for _, row := range rows {
			byLogin[row.GithubLogin] = toModel(row)
		}
		out := make([]*models.User, 0, len(githubLogins))
		for _, login := range githubLogins {
			if u, ok := byLogin[login]; ok {
				out = append(out, u)
			}
		}
		return out, nil
	})
}

func (s *UserService) AllUsers(ctx context.Context) ([]*models.User, error) {
	return shared.Run(ctx, s.runner, "AllUsers", "", func(ctx context.Context) ([]*models.User, error) {
		rows, err := s.repo.List(ctx, nil)
		if err != nil {
			return nil, err
		}
		return toModels(rows), nil
	})
}

func (s *UserService) TotalUsers(ctx context.Context) (int, error) {
	return shared.Run(ctx, s.runner, "TotalUsers", "", func(ctx context.Context) (int, error) {
		return s.repo.Count(ctx, nil)
	})
}
