package userdb

import "errors"

// ErrNotFound is returned when a user is not found.
var ErrNotFound = errors.New("user not found")
