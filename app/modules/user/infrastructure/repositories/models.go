package userdb

import (
	"time"

	"github.com/uptrace/bun"
)

// User is a photoshare account keyed by GitHub login.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	GithubLogin string    `bun:"github_login,pk" json:"github_login"`
	Name        string    `bun:"name,nullzero" json:"name,omitempty"`
	Avatar      string    `bun:"avatar,nullzero" json:"avatar,omitempty"`
	GithubToken string    `bun:"github_token,nullzero" json:"-"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}
