package engine

import "errors"

// Sentinel errors for engine operations.
var (
	ErrNotFound    = errors.New("engine: not found")
	ErrConflict    = errors.New("engine: document already exists")
	ErrBadRequest  = errors.New("engine: bad request")
	ErrUnavailable = errors.New("engine: unavailable")
)

// Op constants name the engine API used, for error context.
const (
	OpInfo          = "info"
	OpSearch        = "search"
	OpIndex         = "index"
	OpGet           = "get"
	OpDelete        = "delete"
	OpDeleteByQuery = "delete_by_query"
	OpCreateIndex   = "indices.create"
	OpDeleteIndex   = "indices.delete"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
