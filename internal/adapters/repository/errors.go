package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("document not found")
	ErrInvalidQuery  = errors.New("invalid query")
	ErrUnknownDriver = errors.New("unknown store driver")
)
