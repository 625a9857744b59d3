// Package store provides an interface for product storage operations.
package store

import (
	"context"
)

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
//
// Concurrency contract: the store is the sole serialization point. Implementations
// must enforce SKU uniqueness as a hard constraint (Insert returns ErrProductExists
// on violation) and must apply quantity adjustments atomically with the lower-bound
// check, so concurrent consumers can never drive a quantity negative.
type ProductStore interface {
	// FindBySKU retrieves a single product by its SKU.
	// Returns ErrProductNotFound if no product exists with the given SKU.
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindAll returns all products.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// Insert adds a new product to the system.
	// Returns ErrProductExists if the SKU is already taken.
	Insert(ctx context.Context, params InsertParams) (*Product, error)

	// Update applies a partial patch to an existing product.
	// Returns ErrProductNotFound if no product exists with the given SKU.
	Update(ctx context.Context, sku string, patch UpdateParams) (*Product, error)

	// AdjustQuantity atomically adds delta (negative for consumption) to the
	// product's quantity, refusing adjustments that would go below zero.
	// Returns ErrProductNotFound if the SKU is unknown and
	// ErrInsufficientQuantity if the adjustment would underflow.
	AdjustQuantity(ctx context.Context, sku string, delta int64) (*Product, error)

	// SetStatus sets the product's status unconditionally.
	// Returns ErrProductNotFound if no product exists with the given SKU.
	SetStatus(ctx context.Context, sku string, status Status) (*Product, error)

	// DeleteBySKU removes a product permanently.
	// Returns ErrProductNotFound if no product exists with the given SKU.
	DeleteBySKU(ctx context.Context, sku string) error
}
