package storage

import "errors"

// Errors returned for recording blobs. A recording that is already gone is
// reported as ErrNotFound so callers releasing it can treat that as done.
var (
	ErrNotFound   = errors.New("recording not found")
	ErrEmptyKey   = errors.New("recording key is empty")
	ErrInvalidKey = errors.New("recording key escapes its prefix")
)
