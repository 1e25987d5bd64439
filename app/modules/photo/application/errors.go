package photoservice

import (
	"errors"

	photostorage "github.com/Black-And-White-Club/photoshare/app/modules/photo/infrastructure/storage"
)

var (
	ErrPhotoNotFound   = errors.New("photo not found")
	ErrUnauthenticated = errors.New("only an authorized user can post a photo")
	ErrInvalidInput    = errors.New("invalid photo input")
)

// isExpected reports errors that are caller mistakes rather than faults.
func isExpected(err error) bool {
	return errors.Is(err, ErrPhotoNotFound) ||
		errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, photostorage.ErrUnsupportedMedia)
}
