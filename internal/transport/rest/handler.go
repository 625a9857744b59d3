// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	producterrors "github.com/stockit/inventory-service/internal/errors"
	"github.com/stockit/inventory-service/internal/service"
	"github.com/stockit/inventory-service/pkg/web"
)

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the product API with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// StockAdjustmentDto carries the amount for consume/restock requests.
// Amount is a pointer so a provided zero is rejected by the gt rule rather
// than mistaken for an absent field.
type StockAdjustmentDto struct {
	Amount *int64 `json:"amount" validate:"required,gt=0"`
}

// RegisterRoutes registers the HTTP routes for the inventory service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Route("/{sku}", func(r chi.Router) {
			r.Get("/", h.FindBySKU)
			r.Patch("/", h.Update)
			r.Delete("/", h.DeleteBySKU)
			r.Patch("/consume", h.Consume)
			r.Patch("/restock", h.Restock)
			r.Patch("/deactivate", h.Deactivate)
			r.Patch("/reactivate", h.Reactivate)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// Create handles the creation of a new product. Responds 201 with an
// acknowledgment; the created entity is not echoed.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var productCreateDto service.ProductCreateDto
	if !h.decodeAndValidate(w, r, mLogger, &productCreateDto) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to create product", "SKU", productCreateDto.SKU)
	if err := h.service.Create(r.Context(), productCreateDto); err != nil {
		if errors.Is(err, producterrors.ErrProductExists) {
			mLogger.WarnContext(r.Context(), "Product already exists", "SKU", productCreateDto.SKU)
			web.RespondError(w, mLogger, http.StatusConflict, "Product already exists")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating product", "SKU", productCreateDto.SKU, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "SKU", productCreateDto.SKU)
	web.RespondAck(w, mLogger, http.StatusCreated, "Product saved successfully")
}

// FindAll retrieves a list of all products.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	mLogger.DebugContext(r.Context(), "Received request to find all products")
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindBySKU retrieves a product by its SKU.
func (h *Handler) FindBySKU(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	sku, ok := web.ParseSKU(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find product by SKU", "SKU", sku)
	found, err := h.service.FindBySKU(r.Context(), sku)
	if err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "SKU", sku)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with SKU %s not found", sku))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "SKU", sku, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with SKU %s", sku))
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product", "SKU", found.SKU, "Name", found.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Update applies a partial patch of the mutable fields to a product.
// SKU and status are not patchable through this endpoint.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	sku, ok := web.ParseSKU(w, r, mLogger)
	if !ok {
		return
	}
	var patch service.ProductUpdateDto
	if !h.decodeAndValidate(w, r, mLogger, &patch) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to update product", "SKU", sku)
	if err := h.service.Update(r.Context(), sku, patch); err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for update", "SKU", sku)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with SKU %s not found", sku))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error updating product", "SKU", sku, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update product with SKU %s", sku))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "SKU", sku)
	web.RespondAck(w, mLogger, http.StatusOK, "Product updated successfully")
}

// DeleteBySKU deletes a product permanently. Responds 204 on success.
func (h *Handler) DeleteBySKU(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	sku, ok := web.ParseSKU(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to delete product", "SKU", sku)
	if err := h.service.DeleteBySKU(r.Context(), sku); err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for deletion", "SKU", sku)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with SKU %s not found", sku))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting product", "SKU", sku, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with SKU %s", sku))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "SKU", sku)
	w.WriteHeader(http.StatusNoContent)
}

// Consume decrements the product's stock quantity.
func (h *Handler) Consume(w http.ResponseWriter, r *http.Request) {
	h.adjustStock(w, r, h.service.Consume, "consume", "Stock consumed successfully")
}

// Restock increments the product's stock quantity.
func (h *Handler) Restock(w http.ResponseWriter, r *http.Request) {
	h.adjustStock(w, r, h.service.Restock, "restock", "Stock replenished successfully")
}

// adjustStock handles the shared consume/restock request shape.
func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, sku string, amount int64) error, name, ack string) {
	mLogger := h.loggerWithReqID(r)
	sku, ok := web.ParseSKU(w, r, mLogger)
	if !ok {
		return
	}
	var adjustment StockAdjustmentDto
	if !h.decodeAndValidate(w, r, mLogger, &adjustment) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received stock adjustment request", "op", name, "SKU", sku, "amount", *adjustment.Amount)
	if err := op(r.Context(), sku, *adjustment.Amount); err != nil {
		switch {
		case errors.Is(err, producterrors.ErrProductNotFound):
			mLogger.WarnContext(r.Context(), "Product not found for stock adjustment", "op", name, "SKU", sku)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with SKU %s not found", sku))
		case errors.Is(err, producterrors.ErrInsufficientQuantity):
			mLogger.WarnContext(r.Context(), "Insufficient quantity", "SKU", sku, "amount", *adjustment.Amount)
			web.RespondError(w, mLogger, http.StatusBadRequest, "Insufficient quantity")
		case errors.Is(err, producterrors.ErrInvalidAmount):
			mLogger.WarnContext(r.Context(), "Invalid adjustment amount", "op", name, "SKU", sku, "amount", *adjustment.Amount)
			web.RespondError(w, mLogger, http.StatusBadRequest, "Amount must be a positive value")
		default:
			mLogger.ErrorContext(r.Context(), "Error adjusting stock", "op", name, "SKU", sku, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to %s stock for product with SKU %s", name, sku))
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Stock adjusted successfully", "op", name, "SKU", sku, "amount", *adjustment.Amount)
	web.RespondAck(w, mLogger, http.StatusOK, ack)
}

// Deactivate sets the product's status to inactive.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.Deactivate, "Product deactivated successfully")
}

// Reactivate sets the product's status to active.
func (h *Handler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.Reactivate, "Product reactivated successfully")
}

// setStatus handles the shared deactivate/reactivate request shape.
func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, sku string) error, ack string) {
	mLogger := h.loggerWithReqID(r)
	sku, ok := web.ParseSKU(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to change product status", "SKU", sku)
	if err := op(r.Context(), sku); err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for status change", "SKU", sku)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with SKU %s not found", sku))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error changing product status", "SKU", sku, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to change status for product with SKU %s", sku))
		return
	}
	mLogger.InfoContext(r.Context(), "Product status changed successfully", "SKU", sku)
	web.RespondAck(w, mLogger, http.StatusOK, ack)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decodeAndValidate decodes the JSON request body into dst and validates it.
// On failure it writes the error response and returns false.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			// If the error is a validation error, we can extract field-specific errors.
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				// fieldErr.Tag() returns "required", "max", etc.
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		// If it's not a validation error, we can return a generic error.
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
