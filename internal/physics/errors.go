package physics

import "errors"

var (
	// ErrDuplicateEntity is returned by AddEntity when the id is already in use.
	// The existing entity is left untouched.
	ErrDuplicateEntity = errors.New("physics: duplicate entity id")

	// ErrEmptyID is returned by AddEntity for an empty id.
	ErrEmptyID = errors.New("physics: empty entity id")
)
