package userdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new user repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetByLogin(ctx context.Context, db bun.IDB, githubLogin string) (*User, error) {
	db = r.resolveDB(db)
	user := new(User)
	err := db.NewSelect().
		Model(user).
		Where("u.github_login = ?", githubLogin).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by login: %w", err)
	}
	return user, nil
}

func (r *Impl) GetByLogins(ctx context.Context, db bun.IDB, githubLogins []string) ([]*User, error) {
	if len(githubLogins) == 0 {
		return []*User{}, nil
	}
	db = r.resolveDB(db)
	var users []*User
	err := db.NewSelect().
		Model(&users).
		Where("u.github_login IN (?)", bun.In(githubLogins)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by logins: %w", err)
	}
	return users, nil
}

func (r *Impl) List(ctx context.Context, db bun.IDB) ([]*User, error) {
	db = r.resolveDB(db)
	var users []*User
	err := db.NewSelect().
		Model(&users).
		Order("u.github_login").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *Impl) Count(ctx context.Context, db bun.IDB) (int, error) {
	db = r.resolveDB(db)
	n, err := db.NewSelect().Model((*User)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// Upsert relies on Postgres reporting xmax = 0 for freshly inserted rows to
// tell an insert from an update in a single statement.
func (r *Impl) Upsert(ctx context.Context, db bun.IDB, user *User) (bool, error) {
	db = r.resolveDB(db)
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	var inserted bool
	err := db.NewInsert().
		Model(user).
		On("CONFLICT (github_login) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("avatar = EXCLUDED.avatar").
		Set("github_token = EXCLUDED.github_token").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("(xmax = 0) AS inserted").
		Scan(ctx, &inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert user: %w", err)
	}
	return inserted, nil
}

func (r *Impl) InsertMany(ctx context.Context, db bun.IDB, users []*User) ([]*User, error) {
	if len(users) == 0 {
		return []*User{}, nil
	}
	db = r.resolveDB(db)
	now := time.Now().UTC()
	for _, u := range users {
		u.CreatedAt = now
		u.UpdatedAt = now
	}

	var inserted []*User
	err := db.NewInsert().
		Model(&users).
		On("CONFLICT (github_login) DO NOTHING").
		Returning("*").
		Scan(ctx, &inserted)
	if err != nil {
		return nil, fmt.Errorf("failed to insert users: %w", err)
	}
	return inserted, nil
}
