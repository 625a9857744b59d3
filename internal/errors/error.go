// Package errors provides custom error types for product-related operations.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")
var ErrProductExists = errors.New("product already exists")

var ErrInsufficientQuantity = errors.New("insufficient quantity")
var ErrInvalidAmount = errors.New("amount must be a positive value")
