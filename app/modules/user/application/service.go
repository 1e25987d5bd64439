package userservice

import (
	"log/slog"
	"sync"

	"github.com/Black-And-White-Club/photoshare/app/eventbus"
	"github.com/Black-And-White-Club/photoshare/app/models"
	githubauth "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/github"
	userjwt "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/jwt"
	userdb "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/photoshare/app/shared"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// UserService implements the Service interface.
type UserService struct {
	repo   userdb.Repository
	github githubauth.Authorizer
	tokens userjwt.Provider
	bus    eventbus.Publisher
	logger *slog.Logger
	db     *bun.DB
	runner *shared.OperationRunner

	// gofakeit generators are not safe for concurrent use.
	fakerMu sync.Mutex
	faker   *gofakeit.Faker
}

// NewUserService creates a new UserService.
func NewUserService(
	repo userdb.Repository,
	github githubauth.Authorizer,
	tokens userjwt.Provider,
	bus eventbus.Publisher,
	logger *slog.Logger,
	metrics shared.ServiceMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		repo:   repo,
		github: github,
		tokens: tokens,
		bus:    bus,
		logger: logger,
		db:     db,
		runner: &shared.OperationRunner{
			Service:  "UserService",
			Logger:   logger,
			Tracer:   tracer,
			Metrics:  metrics,
			Expected: isExpected,
		},
		faker: gofakeit.New(0),
	}
}

func toModel(u *userdb.User) *models.User {
	return &models.User{
		GithubLogin: u.GithubLogin,
		Name:        u.Name,
		Avatar:      u.Avatar,
	}
}

func toModels(rows []*userdb.User) []*models.User {
	out := make([]*models.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, toModel(row))
	}
	return out
}

var _ Service = (*UserService)(nil)
