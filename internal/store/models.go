package store

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a product. Both states are reachable
// from each other; deactivation is the soft-disable mechanism.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Product is a stored product record, keyed by SKU for all business operations.
type Product struct {
	ID                uuid.UUID
	Name              string
	SKU               string
	Quantity          int64
	Price             float64
	Description       string
	ThresholdQuantity int64
	Status            Status
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// InsertParams holds the fields required to insert a new product.
type InsertParams struct {
	Name              string
	SKU               string
	Quantity          int64
	Price             float64
	Description       string
	ThresholdQuantity int64
}

// UpdateParams is a partial patch for a stored product. Nil fields are left
// unchanged. SKU and status are deliberately absent: the SKU is immutable and
// status changes go through SetStatus only.
type UpdateParams struct {
	Name              *string
	Quantity          *int64
	Price             *float64
	Description       *string
	ThresholdQuantity *int64
}
