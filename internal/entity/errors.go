package entity

import "errors"

// Storage-level sentinel errors shared by every repository implementation.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyHired  = errors.New("job already has a hired freelancer")
	ErrStateConflict = errors.New("engagement state changed concurrently")
)
