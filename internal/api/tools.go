package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/garageops/toolledger/internal/metrics"
	"github.com/garageops/toolledger/internal/model"
	"github.com/garageops/toolledger/internal/store"
)

// ToolsHandler handles tool record and stock endpoints.
type ToolsHandler struct {
	DB      *sql.DB
	Metrics *metrics.Metrics
}

type createToolRequest struct {
	Name      string `json:"name" validate:"required"`
	Brand     string `json:"brand"`
	Category  string `json:"category"`
	Quantity  int    `json:"quantity" validate:"min=0"`
	MinStock  int    `json:"minStock" validate:"min=0"`
	Condition string `json:"condition" validate:"omitempty,oneof=good damaged"`
}

type checkInRequest struct {
	ToolID         int64  `json:"toolId" validate:"required,gt=0"`
	Quantity       int    `json:"quantity" validate:"required,gt=0"`
	Condition      string `json:"condition" validate:"omitempty,oneof=good damaged"`
	Notes          string `json:"notes"`
	Actor          string `json:"actor" validate:"required"`
	IdempotencyKey string `json:"idempotencyKey"`
}

type adjustRequest struct {
	Quantity int    `json:"quantity" validate:"min=0"`
	Actor    string `json:"actor"`
}

// List handles GET /tools.
func (h *ToolsHandler) List(w http.ResponseWriter, r *http.Request) {
	tools, err := store.ListTools(r.Context(), h.DB, r.URL.Query().Get("status"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list tools")
		return
	}
	if tools == nil {
		tools = []model.Tool{}
	}
	jsonResponse(w, http.StatusOK, tools)
}

// Stats handles GET /tools/stats.
func (h *ToolsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetStats(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// Create handles POST /tools.
func (h *ToolsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createToolRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tool, err := store.CreateTool(r.Context(), h.DB, store.CreateToolParams{
		Name:      req.Name,
		Brand:     req.Brand,
		Category:  req.Category,
		Quantity:  req.Quantity,
		MinStock:  req.MinStock,
		Condition: req.Condition,
	})
	h.Metrics.ObserveOperation("create_tool", err)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, tool)
}

// CheckIn handles POST /tools/check-in.
func (h *ToolsHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tool, err := store.CheckInTool(r.Context(), h.DB, store.CheckInParams{
		ToolID:         req.ToolID,
		Quantity:       req.Quantity,
		Condition:      req.Condition,
		Notes:          req.Notes,
		Actor:          req.Actor,
		IdempotencyKey: req.IdempotencyKey,
	})
	h.Metrics.ObserveOperation("check_in", err)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, tool)
}

// Adjust handles PUT /tools/{id}.
func (h *ToolsHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid tool id")
		return
	}

	var req adjustRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Actor == "" {
		req.Actor = "admin"
	}

	tool, err := store.AdjustQuantity(r.Context(), h.DB, id, req.Quantity, req.Actor)
	h.Metrics.ObserveOperation("adjust_quantity", err)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"quantity": tool.QuantityAvailable,
		"status":   tool.Status,
	})
}

// Delete handles DELETE /tools/{id}.
func (h *ToolsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid tool id")
		return
	}

	err = store.DeleteTool(r.Context(), h.DB, id)
	h.Metrics.ObserveOperation("delete_tool", err)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "tool deleted"})
}
