// Package notify implements the low-stock notification collaborator.
package notify

import (
	"context"

	"github.com/stockit/inventory-service/internal/store"
)

// Notifier decides whether a product's quantity is at or below its threshold
// and dispatches an alert. Implementations must not retry; the caller treats
// the send as fire-and-forget.
type Notifier interface {
	// NotifyIfLowStock sends an alert if the product's quantity is at or below
	// its threshold. Returns the outcome of the send attempt; a product above
	// its threshold is a no-op success.
	NotifyIfLowStock(ctx context.Context, product store.Product) error
}

// Nop is a Notifier that never sends anything. Used when SMTP is disabled.
type Nop struct{}

func (Nop) NotifyIfLowStock(_ context.Context, _ store.Product) error {
	return nil
}

// lowStock reports whether the product's quantity is at or below its threshold.
func lowStock(product store.Product) bool {
	return product.Quantity <= product.ThresholdQuantity
}
