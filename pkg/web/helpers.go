package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"error": message})
}

// RespondAck writes a mutation acknowledgment without echoing the entity.
func RespondAck(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"message": message})
}

// ParseSKU extracts and validates the SKU from the request path. Returns the SKU and a boolean indicating success.
func ParseSKU(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (string, bool) {
	sku := strings.TrimSpace(r.PathValue("sku"))
	if sku == "" {
		RespondError(w, logger, http.StatusBadRequest, "Missing required parameter SKU")
		return "", false
	}
	return sku, true
}
