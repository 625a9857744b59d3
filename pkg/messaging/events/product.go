package events

import (
	"encoding/json"
	"time"

	"github.com/stockit/inventory-service/pkg/messaging"
)

// ProductCreatedEvent is published after a product record is inserted.
type ProductCreatedEvent struct {
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Quantity  int64     `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

func (p ProductCreatedEvent) Subject() string {
	return messaging.ProductCreatedSubject
}

func (p ProductCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(p)
}

// StockAdjustedEvent is published after a consume or restock mutation.
// Delta is negative for consumption and positive for restocking.
type StockAdjustedEvent struct {
	SKU        string    `json:"sku"`
	Quantity   int64     `json:"quantity"`
	Delta      int64     `json:"delta"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (s StockAdjustedEvent) Subject() string {
	return messaging.StockAdjustedSubject
}

func (s StockAdjustedEvent) Payload() ([]byte, error) {
	return json.Marshal(s)
}
