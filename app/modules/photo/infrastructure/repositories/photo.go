package photodb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new photo repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) Insert(ctx context.Context, db bun.IDB, photo *Photo) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(photo).Returning("created").Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert photo: %w", err)
	}
	return nil
}

func (r *Impl) GetByID(ctx context.Context, db bun.IDB, id string) (*Photo, error) {
	db = r.resolveDB(db)
	photo := new(Photo)
	err := db.NewSelect().
		Model(photo).
		Where("p.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get photo by id: %w", err)
	}
	return photo, nil
}

func (r *Impl) List(ctx context.Context, db bun.IDB) ([]*Photo, error) {
	db = r.resolveDB(db)
	var photos []*Photo
	err := db.NewSelect().
		Model(&photos).
		Order("p.created DESC", "p.id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	return photos, nil
}

func (r *Impl) Count(ctx context.Context, db bun.IDB) (int, error) {
	db = r.resolveDB(db)
	n, err := db.NewSelect().Model((*Photo)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return n, nil
}

func (r *Impl) ListPostedBy(ctx context.Context, db bun.IDB, githubLogin string) ([]*Photo, error) {
	db = r.resolveDB(db)
	var photos []*Photo
	err := db.NewSelect().
		Model(&photos).
		Where("p.github_user = ?", githubLogin).
		Order("p.created DESC", "p.id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos posted by %s: %w", githubLogin, err)
	}
	return photos, nil
}

func (r *Impl) ListTagging(ctx context.Context, db bun.IDB, githubLogin string) ([]*Photo, error) {
	db = r.resolveDB(db)
	var photos []*Photo
	err := db.NewSelect().
		Model(&photos).
		Join("JOIN photo_tags AS t ON t.photo_id = p.id").
		Where("t.user_id = ?", githubLogin).
		Order("p.created DESC", "p.id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos tagging %s: %w", githubLogin, err)
	}
	return photos, nil
}

func (r *Impl) AddTag(ctx context.Context, db bun.IDB, photoID, githubLogin string) error {
	db = r.resolveDB(db)
	tag := &Tag{PhotoID: photoID, UserID: githubLogin}
	_, err := db.NewInsert().
		Model(tag).
		On("CONFLICT (photo_id, user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to tag photo: %w", err)
	}
	return nil
}

func (r *Impl) TaggedLogins(ctx context.Context, db bun.IDB, photoID string) ([]string, error) {
	db = r.resolveDB(db)
	var logins []string
	err := db.NewSelect().
		Model((*Tag)(nil)).
		Column("t.user_id").
		Where("t.photo_id = ?", photoID).
		Order("t.created_at", "t.user_id").
		Scan(ctx, &logins)
	if err != nil {
		return nil, fmt.Errorf("failed to list tagged users: %w", err)
	}
	return logins, nil
}
