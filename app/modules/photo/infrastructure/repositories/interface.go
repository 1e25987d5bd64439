package photodb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for photo persistence.
type Repository interface {
	// Insert stores a new photo.
	Insert(ctx context.Context, db bun.IDB, photo *Photo) error

	// GetByID retrieves a photo by its id.
	GetByID(ctx context.Context, db bun.IDB, id string) (*Photo, error)

	// List returns every photo, newest first.
	List(ctx context.Context, db bun.IDB) ([]*Photo, error)

	// Count returns the number of photos.
	Count(ctx context.Context, db bun.IDB) (int, error)

	// ListPostedBy returns the photos posted by a user.
	ListPostedBy(ctx context.Context, db bun.IDB, githubLogin string) ([]*Photo, error)

	// ListTagging returns the photos a user is tagged in.
	ListTagging(ctx context.Context, db bun.IDB, githubLogin string) ([]*Photo, error)

	// AddTag tags a user in a photo. Tagging twice is a no-op.
	AddTag(ctx context.Context, db bun.IDB, photoID, githubLogin string) error

	// TaggedLogins returns the logins tagged in a photo.
	TaggedLogins(ctx context.Context, db bun.IDB, photoID string) ([]string, error)
}
