package models

import "errors"

var (
	// ErrNotFound reports a transcript path or call that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConfiguration reports an unknown provider/backend selection or
	// a missing credential. It is raised at construction time, before
	// any request is attempted.
	ErrConfiguration = errors.New("configuration error")
)
