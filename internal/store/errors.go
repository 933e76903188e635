package store

import "errors"

var (
	ErrConflict    = errors.New("conflict")
	ErrNotFound    = errors.New("not found")
	ErrStaleStatus = errors.New("status changed since read")
	ErrUnavailable = errors.New("store unavailable")
)
