package userservice

import (
	"context"

	"github.com/Black-And-White-Club/photoshare/app/models"
)

// Service is the user module's application API.
type Service interface {
	GithubAuth(ctx context.Context, code string) (*models.AuthPayload, error)
	FakeUserAuth(ctx context.Context, githubLogin string) (*models.AuthPayload, error)
	AddFakeUsers(ctx context.Context, count int) ([]*models.User, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	GetUser(ctx context.Context, githubLogin string) (*models.User, error)
	GetUsers(ctx context.Context, githubLogins []string) ([]*models.User, error)
	AllUsers(ctx context.Context) ([]*models.User, error)
	TotalUsers(ctx context.Context) (int, error)
}
