package messaging

import (
	"context"
)

// Subjects for product-state events emitted by the inventory service.
const (
	ProductCreatedSubject = "inventory.product.created"
	StockAdjustedSubject  = "inventory.stock.adjusted"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
