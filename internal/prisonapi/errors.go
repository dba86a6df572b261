package prisonapi

import "errors"

var (
	// ErrNotFound is returned when the upstream resource does not exist.
	ErrNotFound = errors.New("prisonapi: not found")

	// ErrDuplicate is returned when the upstream rejects a create as a duplicate.
	ErrDuplicate = errors.New("prisonapi: duplicate")
)
