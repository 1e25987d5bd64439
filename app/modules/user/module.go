package user

import (
	"context"

	"github.com/Black-And-White-Club/photoshare/app/eventbus"
	userservice "github.com/Black-And-White-Club/photoshare/app/modules/user/application"
	githubauth "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/github"
	userjwt "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/jwt"
	userdb "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/photoshare/app/shared"
	"github.com/Black-And-White-Club/photoshare/config"
	"github.com/uptrace/bun"
)

// Module represents the user module.
type Module struct {
	UserService userservice.Service
	GitHub      *githubauth.Client
	obs         shared.Observability
}

// NewUserModule creates and initializes a new user module.
func NewUserModule(
	ctx context.Context,
	cfg *config.Config,
	obs shared.Observability,
	bus eventbus.Publisher,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Logger.With("module", "user")
	logger.InfoContext(ctx, "user.NewUserModule initializing")

	repo := userdb.NewRepository(db)
	github := githubauth.NewClient(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret)
	tokens := userjwt.NewProvider(cfg.JWT.Secret, cfg.JWT.DefaultTTL)

	service := userservice.NewUserService(repo, github, tokens, bus, logger, obs.Metrics, obs.Tracer, db)

	return &Module{
		UserService: service,
		GitHub:      github,
		obs:         obs,
	}, nil
}

// Close shuts down the user module.
func (m *Module) Close() error {
	m.obs.Logger.Info("User module stopped")
	return nil
}
