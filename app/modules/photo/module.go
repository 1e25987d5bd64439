package photo

import (
	"context"
	"fmt"

	"github.com/Black-And-White-Club/photoshare/app/eventbus"
	photoservice "github.com/Black-And-White-Club/photoshare/app/modules/photo/application"
	photodb "github.com/Black-And-White-Club/photoshare/app/modules/photo/infrastructure/repositories"
	photostorage "github.com/Black-And-White-Club/photoshare/app/modules/photo/infrastructure/storage"
	"github.com/Black-And-White-Club/photoshare/app/shared"
	"github.com/uptrace/bun"
)

// Module represents the photo module.
type Module struct {
	PhotoService photoservice.Service
	Store        *photostorage.FileStore
	obs          shared.Observability
}

// NewPhotoModule creates and initializes a new photo module.
func NewPhotoModule(
	ctx context.Context,
	obs shared.Observability,
	bus eventbus.Publisher,
	db *bun.DB,
	photosDir string,
	publicURL string,
) (*Module, error) {
	logger := obs.Logger.With("module", "photo")
	logger.InfoContext(ctx, "photo.NewPhotoModule initializing")

	store, err := photostorage.NewFileStore(photosDir, publicURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize photo store: %w", err)
	}

	repo := photodb.NewRepository(db)
	service := photoservice.NewPhotoService(repo, store, bus, logger, obs.Metrics, obs.Tracer, db)

	return &Module{
		PhotoService: service,
		Store:        store,
		obs:          obs,
	}, nil
}

// Close shuts down the photo module.
func (m *Module) Close() error {
	m.obs.Logger.Info("Photo module stopped")
	return nil
}
