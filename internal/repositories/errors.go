package repositories

import "errors"

// Sentinel errors shared by the repositories so handlers can map them to the
// right HTTP status without inspecting driver errors.
var (
	ErrNotFound  = errors.New("not found")
	ErrInvalidID = errors.New("invalid id format")
)
