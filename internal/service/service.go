// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	perrors "github.com/stockit/inventory-service/internal/errors"
	"github.com/stockit/inventory-service/internal/notify"
	"github.com/stockit/inventory-service/internal/store"
	"github.com/stockit/inventory-service/pkg/messaging"
	"github.com/stockit/inventory-service/pkg/messaging/events"
)

// hookTimeout bounds the fire-and-forget notification and event publishing
// triggered after a quantity change. The stock mutation itself is already
// committed when these run.
const hookTimeout = 10 * time.Second

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
// Mutations return acknowledgment-style errors only; the mutated entity is
// never echoed back.
type ProductService interface {
	// Create adds a new product with status defaulted to active.
	// Returns ErrProductExists if a product with the same SKU already exists.
	Create(ctx context.Context, product ProductCreateDto) error

	// FindAll returns all products, unfiltered and unpaginated.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// FindBySKU retrieves a single product by its SKU.
	// Returns ErrProductNotFound if no product exists with the given SKU.
	FindBySKU(ctx context.Context, sku string) (*ProductDto, error)

	// Update applies a partial patch of the mutable fields (name, quantity,
	// price, description, thresholdQuantity) to an existing product.
	// Returns ErrProductNotFound if no product exists with the given SKU.
	Update(ctx context.Context, sku string, patch ProductUpdateDto) error

	// DeleteBySKU removes a product permanently.
	// Returns ErrProductNotFound if no product exists with the given SKU.
	DeleteBySKU(ctx context.Context, sku string) error

	// Consume decrements the product's quantity by amount, bounded at zero.
	// Returns ErrInvalidAmount if amount is not strictly positive,
	// ErrProductNotFound if the SKU is unknown, and ErrInsufficientQuantity if
	// the decrement would drive the quantity negative.
	Consume(ctx context.Context, sku string, amount int64) error

	// Restock increments the product's quantity by amount; no upper bound.
	// Returns ErrInvalidAmount if amount is not strictly positive and
	// ErrProductNotFound if the SKU is unknown.
	Restock(ctx context.Context, sku string, amount int64) error

	// Deactivate sets the product's status to inactive. Deactivating an
	// already-inactive product is a no-op success.
	Deactivate(ctx context.Context, sku string) error

	// Reactivate sets the product's status to active. Reactivating an
	// already-active product is a no-op success.
	Reactivate(ctx context.Context, sku string) error
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
	notifier   notify.Notifier
	publisher  messaging.Publisher
	logger     *slog.Logger
}

// NewService creates a new instance of ProductService with the provided
// repository and collaborators. publisher may be nil, in which case no
// product-state events are emitted.
func NewService(repo store.ProductStore, notifier notify.Notifier, publisher messaging.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repository: repo,
		notifier:   notifier,
		publisher:  publisher,
		logger:     logger.With("component", "service"),
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
// Quantity and Price are pointers so that a provided zero is distinguishable
// from an absent field.
type ProductCreateDto struct {
	Name              string   `json:"name"              validate:"required,max=100"`
	SKU               string   `json:"sku"               validate:"required,max=64"`
	Quantity          *int64   `json:"quantity"          validate:"required,gte=0"`
	Price             *float64 `json:"price"             validate:"required,gte=0"`
	Description       string   `json:"description"       validate:"max=1000"`
	ThresholdQuantity int64    `json:"thresholdQuantity" validate:"gte=0"`
}

// ProductUpdateDto is a partial patch of the mutable product fields. SKU and
// status are not patchable here: the SKU is immutable and status changes go
// through Deactivate/Reactivate only.
type ProductUpdateDto struct {
	Name              *string  `json:"name"              validate:"omitempty,max=100"`
	Quantity          *int64   `json:"quantity"          validate:"omitempty,gte=0"`
	Price             *float64 `json:"price"             validate:"omitempty,gte=0"`
	Description       *string  `json:"description"       validate:"omitempty,max=1000"`
	ThresholdQuantity *int64   `json:"thresholdQuantity" validate:"omitempty,gte=0"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	SKU               string  `json:"sku"`
	Quantity          int64   `json:"quantity"`
	Price             float64 `json:"price"`
	Description       string  `json:"description"`
	ThresholdQuantity int64   `json:"thresholdQuantity"`
	Status            string  `json:"status"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

// Create adds a new product to the system.
// The existence pre-check is advisory; the store's unique index on SKU is the
// authoritative guard, so a conflicting concurrent create still fails cleanly.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) error {
	sku := strings.TrimSpace(product.SKU)
	if _, err := s.repository.FindBySKU(ctx, sku); err == nil {
		return perrors.ErrProductExists
	} else if !errors.Is(err, perrors.ErrProductNotFound) {
		return fmt.Errorf("failed to check product existence for SKU %s: %w", sku, err)
	}

	created, err := s.repository.Insert(ctx, store.InsertParams{
		Name:              strings.TrimSpace(product.Name),
		SKU:               sku,
		Quantity:          *product.Quantity,
		Price:             *product.Price,
		Description:       strings.TrimSpace(product.Description),
		ThresholdQuantity: product.ThresholdQuantity,
	})
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	s.publish(events.ProductCreatedEvent{
		SKU:       created.SKU,
		Name:      created.Name,
		Quantity:  created.Quantity,
		CreatedAt: created.CreatedAt,
	})
	return nil
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

// FindBySKU retrieves a product by its SKU and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given SKU.
func (s *Service) FindBySKU(ctx context.Context, sku string) (*ProductDto, error) {
	product, err := s.repository.FindBySKU(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by SKU %s: %w", sku, err)
	}

	return toDto(product), nil
}

// Update applies a partial patch to an existing product.
// Returns ErrProductNotFound if no product exists with the given SKU.
func (s *Service) Update(ctx context.Context, sku string, patch ProductUpdateDto) error {
	if _, err := s.repository.Update(ctx, sku, store.UpdateParams{
		Name:              trimmed(patch.Name),
		Quantity:          patch.Quantity,
		Price:             patch.Price,
		Description:       trimmed(patch.Description),
		ThresholdQuantity: patch.ThresholdQuantity,
	}); err != nil {
		return fmt.Errorf("failed to update product with SKU %s: %w", sku, err)
	}
	return nil
}

// DeleteBySKU deletes a product permanently. Deleting the same SKU twice
// yields ErrProductNotFound on the second call.
func (s *Service) DeleteBySKU(ctx context.Context, sku string) error {
	if err := s.repository.DeleteBySKU(ctx, sku); err != nil {
		return fmt.Errorf("failed to delete product with SKU %s: %w", sku, err)
	}
	return nil
}

// Consume decrements the product's quantity by amount. The decrement and its
// lower-bound check are a single atomic store operation. On success the
// low-stock notifier and the event publisher run detached from the request;
// their failures are logged and never surfaced.
func (s *Service) Consume(ctx context.Context, sku string, amount int64) error {
	if amount <= 0 {
		return perrors.ErrInvalidAmount
	}
	product, err := s.repository.AdjustQuantity(ctx, sku, -amount)
	if err != nil {
		return fmt.Errorf("failed to consume %d of SKU %s: %w", amount, sku, err)
	}

	s.notifyLowStock(*product)
	s.publish(events.StockAdjustedEvent{
		SKU:        product.SKU,
		Quantity:   product.Quantity,
		Delta:      -amount,
		OccurredAt: product.UpdatedAt,
	})
	return nil
}

// Restock increments the product's quantity by amount; no upper bound.
func (s *Service) Restock(ctx context.Context, sku string, amount int64) error {
	if amount <= 0 {
		return perrors.ErrInvalidAmount
	}
	product, err := s.repository.AdjustQuantity(ctx, sku, amount)
	if err != nil {
		return fmt.Errorf("failed to restock %d of SKU %s: %w", amount, sku, err)
	}

	s.publish(events.StockAdjustedEvent{
		SKU:        product.SKU,
		Quantity:   product.Quantity,
		Delta:      amount,
		OccurredAt: product.UpdatedAt,
	})
	return nil
}

// Deactivate sets the product's status to inactive, unconditionally.
func (s *Service) Deactivate(ctx context.Context, sku string) error {
	if _, err := s.repository.SetStatus(ctx, sku, store.StatusInactive); err != nil {
		return fmt.Errorf("failed to deactivate product with SKU %s: %w", sku, err)
	}
	return nil
}

// Reactivate sets the product's status to active, unconditionally.
func (s *Service) Reactivate(ctx context.Context, sku string) error {
	if _, err := s.repository.SetStatus(ctx, sku, store.StatusActive); err != nil {
		return fmt.Errorf("failed to reactivate product with SKU %s: %w", sku, err)
	}
	return nil
}

// notifyLowStock dispatches the low-stock alert in the background. The stock
// mutation is already persisted, so a failed send must not fail the request.
func (s *Service) notifyLowStock(product store.Product) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
		defer cancel()
		if err := s.notifier.NotifyIfLowStock(ctx, product); err != nil {
			s.logger.Error("low stock notification failed",
				"sku", product.SKU, "quantity", product.Quantity, "error", err)
		}
	}()
}

// publish emits a product-state event in the background when a publisher is
// configured.
func (s *Service) publish(event messaging.Event) {
	if s.publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
		defer cancel()
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish event", "subject", event.Subject(), "error", err)
		}
	}()
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:                product.ID.String(),
		Name:              product.Name,
		SKU:               product.SKU,
		Quantity:          product.Quantity,
		Price:             product.Price,
		Description:       product.Description,
		ThresholdQuantity: product.ThresholdQuantity,
		Status:            string(product.Status),
		CreatedAt:         product.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         product.UpdatedAt.Format(time.RFC3339),
	}
}

// trimmed trims a patch string in place, preserving nil.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
