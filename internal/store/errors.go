package store

import "errors"

// Sentinel errors returned by the store and workflow services. Handlers
// translate these to HTTP statuses in one place (internal/api).
var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("duplicate resource")
	ErrInsufficientStock = errors.New("insufficient stock")
)
