// Package errors provides custom error types for inventory operations.
package errors

import "errors"

var (
	// ErrProductNotFound is returned when no product exists with the requested ID.
	ErrProductNotFound = errors.New("product not found")

	// ErrVersionConflict is returned by the optimistic update path when the
	// expected version no longer matches the stored one.
	ErrVersionConflict = errors.New("version conflict")

	// ErrInsufficientStock is returned by the purchase path when the requested
	// quantity exceeds the available stock.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrLockTimeout is returned when the purchase transaction gave up waiting
	// for the row lock. Callers should treat it as a retryable conflict.
	ErrLockTimeout = errors.New("lock wait timeout")

	// ErrInvalidQuantity is returned when a purchase is requested with a
	// non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)
