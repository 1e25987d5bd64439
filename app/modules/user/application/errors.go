package userservice

import (
	"errors"

	githubauth "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/github"
	userjwt "github.com/Black-And-White-Club/photoshare/app/modules/user/infrastructure/jwt"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUnauthenticated = errors.New("invalid or expired session")
	ErrInvalidCount    = errors.New("count must be between 1 and 100")
)

// MaxFakeUsers caps a single addFakeUsers call.
const MaxFakeUsers = 100

func isExpected(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrInvalidCount) ||
		errors.Is(err, githubauth.ErrAuthorization) ||
		errors.Is(err, userjwt.ErrInvalidToken) ||
		errors.Is(err, userjwt.ErrExpiredToken) ||
		errors.Is(err, userjwt.ErrInvalidSignature)
}
