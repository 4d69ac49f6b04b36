// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product represents a single inventory record.
// Price is stored in minor currency units (cents).
type Product struct {
	ID            uuid.UUID
	Name          string
	Price         int64
	StockQuantity int32
	Version       int32
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations.
//
// Every successful mutation increments the record's version by exactly one.
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll returns all products ordered by creation time, then ID.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// Create adds a new product with version 1.
	Create(ctx context.Context, name string, price int64, stock int32) (*Product, error)

	// Update replaces a product's details if and only if the stored version
	// still equals expectedVersion. Returns ErrProductNotFound if no product
	// exists with the given ID and ErrVersionConflict if the version check
	// fails; the record is left untouched in both cases.
	Update(ctx context.Context, id uuid.UUID, name string, price int64, stock int32, expectedVersion int32) (*Product, error)

	// Purchase decrements a product's stock by quantity under an exclusive
	// row lock held for the whole check-and-decrement. Returns
	// ErrProductNotFound for an unknown ID, ErrInsufficientStock if the stock
	// cannot cover the quantity and ErrLockTimeout if the bounded lock wait
	// expired. Quantity must be positive; the caller validates it.
	Purchase(ctx context.Context, id uuid.UUID, quantity int32) (*Product, error)
}
