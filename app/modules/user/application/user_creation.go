package userservice

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Black-And-White-Club/photoshare/app/models"
	userdb "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/photoshare/app/shared"
	"github.com/uptrace/bun"
)

// AddFakeUsers creates count generated users and announces each one.
func (s *UserService) AddFakeUsers(ctx context.Context, count int) ([]*models.User, error) {
	return shared.Run(ctx, s.runner, "AddFakeUsers", strconv.Itoa(count), func(ctx context.Context) ([]*models.User, error) {
		if count < 1 || count > MaxFakeUsers {
			return nil, ErrInvalidCount
		}

		rows := s.generateUsers(count)
		inserted, err := shared.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) ([]*userdb.User, error) {
			return s.repo.InsertMany(ctx, db, rows)
		})
		if err != nil {
			return nil, err
		}

		users := toModels(inserted)
		for _, u := range users {
			s.publishUser(ctx, u)
		}
		return users, nil
	})
}

func (s *UserService) generateUsers(count int) []*userdb.User {
	s.fakerMu.Lock()
	defer s.fakerMu.Unlock()

	rows := make([]*userdb.User, 0, count)
	for i := 0; i < count; i++ {
		first, last := s.faker.FirstName(), s.faker.LastName()
		login := fmt.Sprintf("%s%s%d", strings.ToLower(first[:1]), last, s.faker.Number(100, 9999))
		rows = append(rows, &userdb.User{
			GithubLogin: login,
			Name:        first + " " + last,
			Avatar:      fmt.Sprintf("https://avatars.githubusercontent.com/u/%d", s.faker.Number(1000, 99999999)),
			GithubToken: s.faker.UUID(),
		})
	}
	return rows
}
