// Package service provides the implementation of inventory business logic.
package service

import (
	"context"
	"fmt"
	"time"

	ierrors "github.com/abezpalov/inventory_service/internal/errors"
	"github.com/abezpalov/inventory_service/internal/store"
	"github.com/google/uuid"
)

// InventoryService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type InventoryService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// FindAll returns all products ordered by creation time, then ID.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// Create adds a new product to the system.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update modifies a product's details via the optimistic-locking path.
	// Returns ErrProductNotFound for an unknown ID and ErrVersionConflict
	// when the caller's version is stale.
	Update(ctx context.Context, id uuid.UUID, product ProductUpdateDto) (*ProductDto, error)

	// Purchase decrements a product's stock via the pessimistic-locking path.
	// Returns ErrInvalidQuantity for a non-positive quantity,
	// ErrProductNotFound for an unknown ID, ErrInsufficientStock when stock
	// cannot cover the quantity and ErrLockTimeout on lock contention.
	Purchase(ctx context.Context, id uuid.UUID, quantity int32) (*ProductDto, error)
}

// Service implements InventoryService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
}

// NewService creates a new instance of InventoryService with the provided repository.
func NewService(repo store.ProductStore) *Service {
	return &Service{
		repository: repo,
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Name  string `json:"name"  validate:"required,max=100"`
	Price int64  `json:"price" validate:"gte=0"`
	Stock int32  `json:"stock" validate:"gte=0"`
}

// ProductUpdateDto represents the data transfer object for an optimistic update.
// Version carries the version the caller observed when it read the record.
// Any non-negative value is accepted here; whether it matches the stored
// version is decided by the store, so a stale value surfaces as a conflict
// rather than a validation failure.
type ProductUpdateDto struct {
	Name    string `json:"name"    validate:"required,max=100"`
	Price   int64  `json:"price"   validate:"gte=0"`
	Stock   int32  `json:"stock"   validate:"gte=0"`
	Version int32  `json:"version" validate:"gte=0"`
}

// PurchaseDto represents the data transfer object for a purchase request.
type PurchaseDto struct {
	Quantity int32 `json:"quantity" validate:"required,gt=0"`
}

// ProductDto represents the data transfer object for a product.
// Version is read-only and used for optimistic concurrency control.
type ProductDto struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Stock     int32     `json:"stock"`
	Version   int32     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}

	return toDto(product), nil
}

// FindAll retrieves a list of all products and returns them as ProductDTOs.
// Returns an empty slice if no products exist or error if the retrieval fails.
func (s *Service) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))

	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}

	return productDTOs, nil
}

// Create creates a new product and returns it as a ProductDto.
// Returns an error if the product cannot be created.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	p, err := s.repository.Create(ctx, product.Name, product.Price, product.Stock)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return toDto(p), nil
}

// Update modifies an existing product's details and returns the updated product.
// The store rejects the write with ErrVersionConflict when the caller's
// version is stale; no retry happens here, the caller re-fetches and decides.
func (s *Service) Update(ctx context.Context, id uuid.UUID, product ProductUpdateDto) (*ProductDto, error) {
	updated, err := s.repository.Update(ctx, id, product.Name, product.Price, product.Stock, product.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}

	return toDto(updated), nil
}

// Purchase decrements a product's stock and returns the updated product.
func (s *Service) Purchase(ctx context.Context, id uuid.UUID, quantity int32) (*ProductDto, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("failed to purchase product with ID %s: %w", id, ierrors.ErrInvalidQuantity)
	}
	product, err := s.repository.Purchase(ctx, id, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to purchase product with ID %s: %w", id, err)
	}

	return toDto(product), nil
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:        product.ID.String(),
		Name:      product.Name,
		Price:     product.Price,
		Stock:     product.StockQuantity,
		Version:   product.Version,
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
}
