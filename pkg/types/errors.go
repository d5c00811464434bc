package types

import "errors"

// Domain errors shared across the retrieval engine
var (
	ErrMissingQuery = errors.New("query is required")
	ErrMissingTitle = errors.New("document title is required")
	ErrNotFound     = errors.New("not found")
)
