package photodb

import "errors"

// ErrNotFound is returned when a photo does not exist.
var ErrNotFound = errors.New("photo not found")
