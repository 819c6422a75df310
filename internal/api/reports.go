package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/garageops/toolledger/internal/metrics"
	"github.com/garageops/toolledger/internal/model"
	"github.com/garageops/toolledger/internal/notify"
	"github.com/garageops/toolledger/internal/store"
)

// ReportsHandler handles the damage workflow and read-only reports.
type ReportsHandler struct {
	DB       *sql.DB
	Notifier *notify.Notifier
	Metrics  *metrics.Metrics
}

type damageRequest struct {
	ToolID         int64  `json:"toolId" validate:"required,gt=0"`
	Quantity       int    `json:"damagedQuantity" validate:"required,gt=0"`
	Notes          string `json:"damageNotes" validate:"required"`
	ReportedBy     string `json:"reportedBy" validate:"required"`
	IdempotencyKey string `json:"idempotencyKey"`
}

// Damage handles POST /tools/damage.
func (h *ReportsHandler) Damage(w http.ResponseWriter, r *http.Request) {
	var req damageRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tool, events, err := store.ReportDamage(r.Context(), h.DB, store.ReportDamageParams{
		ToolID:         req.ToolID,
		Quantity:       req.Quantity,
		Notes:          req.Notes,
		Actor:          req.ReportedBy,
		IdempotencyKey: req.IdempotencyKey,
	})
	h.Metrics.ObserveOperation("report_damage", err)
	if err != nil {
		storeError(w, err)
		return
	}

	h.Notifier.Publish(r.Context(), events...)

	jsonResponse(w, http.StatusOK, tool)
}

// DamagedTools handles GET /damage-reports.
func (h *ReportsHandler) DamagedTools(w http.ResponseWriter, r *http.Request) {
	damaged, err := store.ListDamagedTools(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list damaged tools")
		return
	}
	if damaged == nil {
		damaged = []store.DamagedTool{}
	}
	jsonResponse(w, http.StatusOK, damaged)
}

// RecentActivity handles GET /tools/recent-activity.
func (h *ReportsHandler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := store.RecentActivity(r.Context(), h.DB, limit)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list activity")
		return
	}
	if entries == nil {
		entries = []model.ActivityEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}
