package photoservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Black-And-White-Club/photoshare/app/eventbus"
	"github.com/Black-And-White-Club/photoshare/app/models"
	photodb "github.com/Black-And-White-Club/photoshare/app/modules/photo/infrastructure/repositories"
	photostorage "github.com/Black-And-White-Club/photoshare/app/modules/photo/infrastructure/storage"
	"github.com/Black-And-White-Club/photoshare/app/shared"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// PhotoService implements the Service interface.
type PhotoService struct {
	repo   photodb.Repository
	store  photostorage.Store
	bus    eventbus.Publisher
	logger *slog.Logger
	db     *bun.DB
	runner *shared.OperationRunner
	now    func() time.Time
}

// NewPhotoService creates a new PhotoService.
func NewPhotoService(
	repo photodb.Repository,
	store photostorage.Store,
	bus eventbus.Publisher,
	logger *slog.Logger,
	metrics shared.ServiceMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *PhotoService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PhotoService{
		repo:   repo,
		store:  store,
		bus:    bus,
		logger: logger,
		db:     db,
		runner: &shared.OperationRunner{
			Service:  "PhotoService",
			Logger:   logger,
			Tracer:   tracer,
			Metrics:  metrics,
			Expected: isExpected,
		},
		now: time.Now,
	}
}

// PostPhoto stores a new photo for user and announces it on photo-added once
// the row is committed.
func (s *PhotoService) PostPhoto(ctx context.Context, user *models.User, input models.PostPhotoInput) (*models.Photo, error) {
	return shared.Run(ctx, s.runner, "PostPhoto", input.Name, func(ctx context.Context) (*models.Photo, error) {
		if user == nil {
			return nil, ErrUnauthenticated
		}
		if strings.TrimSpace(input.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		if input.Category == "" {
			input.Category = models.PhotoCategoryPortrait
		}
		if !input.Category.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, input.Category)
		}

		row := &photodb.Photo{
			ID:          uuid.NewString(),
			Name:        input.Name,
			Description: input.Description,
			Category:    string(input.Category),
			GithubUser:  user.GithubLogin,
			Created:     s.now().UTC(),
		}

		_, err := shared.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (struct{}, error) {
			if err := s.repo.Insert(ctx, db, row); err != nil {
				return struct{}{}, err
			}
			if input.File != nil && input.File.File != nil {
				if _, err := s.store.Save(ctx, row.ID, input.File.File); err != nil {
					return struct{}{}, err
				}
			}
			return struct{}{}, nil
		})
		if err != nil {
			if input.File != nil {
				if rmErr := s.store.Remove(ctx, row.ID); rmErr != nil {
					s.logger.WarnContext(ctx, "Failed to clean up photo file", slog.String("photo_id", row.ID), slog.Any("error", rmErr))
				}
			}
			return nil, err
		}

		photo := s.toModel(row)
		if err := s.bus.Publish(ctx, eventbus.PhotoAdded, photo); err != nil {
			// The photo is stored; a failed notification must not fail the post.
			s.logger.WarnContext(ctx, "Failed to publish new photo",
				slog.String("photo_id", photo.ID),
				slog.Any("error", err),
			)
		}
		return photo, nil
	})
}

// TagPhoto tags githubLogin in the photo and returns the photo.
func (s *PhotoService) TagPhoto(ctx context.Context, githubLogin, photoID string) (*models.Photo, error) {
	return shared.Run(ctx, s.runner, "TagPhoto", photoID, func(ctx context.Context) (*models.Photo, error) {
		if githubLogin == "" {
			return nil, fmt.Errorf("%w: githubLogin is required", ErrInvalidInput)
		}
		return shared.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (*models.Photo, error) {
			row, err := s.getPhoto(ctx, db, photoID)
			if err != nil {
				return nil, err
			}
			if err := s.repo.AddTag(ctx, db, photoID, githubLogin); err != nil {
				return nil, err
			}
			return s.toModel(row), nil
		})
	})
}

func (s *PhotoService) GetPhoto(ctx context.Context, id string) (*models.Photo, error) {
	return shared.Run(ctx, s.runner, "GetPhoto", id, func(ctx context.Context) (*models.Photo, error) {
		row, err := s.getPhoto(ctx, nil, id)
		if err != nil {
			return nil, err
		}
		return s.toModel(row), nil
	})
}

func (s *PhotoService) AllPhotos(ctx context.Context) ([]*models.Photo, error) {
	return shared.Run(ctx, s.runner, "AllPhotos", "", func(ctx context.Context) ([]*models.Photo, error) {
		rows, err := s.repo.List(ctx, nil)
		if err != nil {
			return nil, err
		}
		return s.toModels(rows), nil
	})
}

func (s *PhotoService) TotalPhotos(ctx context.Context) (int, error) {
	return shared.Run(ctx, s.runner, "TotalPhotos", "", func(ctx context.Context) (int, error) {
		return s.repo.Count(ctx, nil)
	})
}

func (s *PhotoService) PhotosPostedBy(ctx context.Context, githubLogin string) ([]*models.Photo, error) {
	return shared.Run(ctx, s.runner, "PhotosPostedBy", githubLogin, func(ctx context.Context) ([]*models.Photo, error) {
		rows, err := s.repo.ListPostedBy(ctx, nil, githubLogin)
		if err != nil {
			return nil, err
		}
		return s.toModels(rows), nil
	})
}

func (s *PhotoService) PhotosTagging(ctx context.Context, githubLogin string) ([]*models.Photo, error) {
	return shared.Run(ctx, s.runner, "PhotosTagging", githubLogin, func(ctx context.Context) ([]*models.Photo, error) {
		rows, err := s.repo.ListTagging(ctx, nil, githubLogin)
		if err != nil {
			return nil, err
		}
		return s.toModels(rows), nil
	})
}

func (s *PhotoService) TaggedLogins(ctx context.Context, photoID string) ([]string, error) {
	return shared.Run(ctx, s.runner, "TaggedLogins", photoID, func(ctx context.Context) ([]string, error) {
		return s.repo.TaggedLogins(ctx, nil, photoID)
	})
}

func (s *PhotoService) getPhoto(ctx context.Context, db bun.IDB, id string) (*photodb.Photo, error) {
	row, err := s.repo.GetByID(ctx, db, id)
	if err != nil {
		if errors.Is(err, photodb.ErrNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return row, nil
}

func (s *PhotoService) toModel(row *photodb.Photo) *models.Photo {
	return &models.Photo{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Category:    models.PhotoCategory(row.Category),
		GithubUser:  row.GithubUser,
		URL:         s.store.URL(row.ID),
		Created:     row.Created,
	}
}

func (s *PhotoService) toModels(rows []*photodb.Photo) []*models.Photo {
	out := make([]*models.Photo, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.toModel(row))
	}
	return out
}

var _ Service = (*PhotoService)(nil)
