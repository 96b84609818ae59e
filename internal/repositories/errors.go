package repositories

import "errors"

// ErrNotFound is wrapped by every repository when a record does not exist, so
// handlers can map it to a 404 with errors.Is.
var ErrNotFound = errors.New("record not found")
