package userdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for user persistence.
type Repository interface {
	// GetByLogin retrieves a user by GitHub login.
	GetByLogin(ctx context.Context, db bun.IDB, githubLogin string) (*User, error)

	// GetByLogins retrieves the users among logins that exist, in no particular order.
	GetByLogins(ctx context.Context, db bun.IDB, githubLogins []string) ([]*User, error)

	// List returns every user ordered by login.
	List(ctx context.Context, db bun.IDB) ([]*User, error)

	// Count returns the number of users.
	Count(ctx context.Context, db bun.IDB) (int, error)

	// Upsert creates or updates a user. created is true when the row is new.
	Upsert(ctx context.Context, db bun.IDB, user *User) (created bool, err error)

	// InsertMany stores new users, skipping logins that already exist, and
	// returns the rows that were inserted.
	InsertMany(ctx context.Context, db bun.IDB, users []*User) ([]*User, error)
}
