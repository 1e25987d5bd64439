package photoservice

import (
	"context"

	"github.com/Black-And-White-Club/photoshare/app/models"
)

// Service is the photo module's application API.
type Service interface {
	PostPhoto(ctx context.Context, user *models.User, input models.PostPhotoInput) (*models.Photo, error)
	TagPhoto(ctx context.Context, githubLogin, photoID string) (*models.Photo, error)
	GetPhoto(ctx context.Context, id string) (*models.Photo, error)
	AllPhotos(ctx context.Context) ([]*models.Photo, error)
	TotalPhotos(ctx context.Context) (int, error)
	PhotosPostedBy(ctx context.Context, githubLogin string) ([]*models.Photo, error)
	PhotosTagging(ctx context.Context, githubLogin string) ([]*models.Photo, error)
	TaggedLogins(ctx context.Context, photoID string) ([]string, error)
}
