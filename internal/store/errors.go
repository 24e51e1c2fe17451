package store

import "errors"

// Store errors.
var (
	// ErrTagNotFound is returned when a tag lookup matches no row.
	ErrTagNotFound = errors.New("tag not found")

	// ErrSelfLink is returned when a tag would be linked to itself.
	ErrSelfLink = errors.New("a tag cannot be linked to itself")

	// ErrEmptyName is returned when a tag without a name is stored.
	ErrEmptyName = errors.New("tag name is empty")

	// ErrDatabaseNotFound is returned by Open when the database does not
	// exist and creation was not requested.
	ErrDatabaseNotFound = errors.New("database not found")
)
