package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/garageops/toolledger/internal/store"
	"github.com/garageops/toolledger/internal/ticket"
)

// validate checks request bodies before any transaction starts.
var validate = validator.New()

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes and validates a JSON request body.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return err
	}
	return validate.Struct(target)
}

// storeError maps the ledger's failure classes to HTTP status codes. Conflict
// states are distinct from not-found so callers can treat them as
// "already done" instead of retrying.
func storeError(w http.ResponseWriter, err error) {
	var insufficient *store.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		jsonResponse(w, http.StatusConflict, map[string]any{
			"error":     insufficient.Error(),
			"available": insufficient.Available,
		})
	case errors.Is(err, store.ErrToolNotFound),
		errors.Is(err, store.ErrAssignmentNotFound),
		errors.Is(err, ticket.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrAlreadyReturned),
		errors.Is(err, store.ErrDuplicateRequest),
		errors.Is(err, store.ErrToolInUse),
		errors.Is(err, store.ErrDuplicateCode):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInvalidQuantity):
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("storage fault", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
