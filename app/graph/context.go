package graph

import (
	"context"

	"github.com/Black-And-White-Club/photoshare/app/models"
)

type currentUserKey struct{}

// WithUser attaches the authenticated user to ctx.
func WithUser(ctx context.Context, user *models.User) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, currentUserKey{}, user)
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(currentUserKey{}).(*models.User)
	return user
}
