package photodb

import (
	"time"

	"github.com/uptrace/bun"
)

// Photo is the persisted form of a posted photo.
type Photo struct {
	bun.BaseModel `bun:"table:photos,alias:p"`

	ID          string    `bun:"id,pk"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description,nullzero"`
	Category    string    `bun:"category,notnull,default:'PORTRAIT'"`
	GithubUser  string    `bun:"github_user,notnull"`
	Created     time.Time `bun:"created,notnull,default:current_timestamp"`
}

// Tag links a user to a photo they appear in.
type Tag struct {
	bun.BaseModel `bun:"table:photo_tags,alias:t"`

	PhotoID   string    `bun:"photo_id,pk"`
	UserID    string    `bun:"user_id,pk"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
