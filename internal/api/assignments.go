package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/garageops/toolledger/internal/metrics"
	"github.com/garageops/toolledger/internal/model"
	"github.com/garageops/toolledger/internal/notify"
	"github.com/garageops/toolledger/internal/store"
	"github.com/garageops/toolledger/internal/ticket"
)

// AssignmentsHandler handles custody endpoints.
type AssignmentsHandler struct {
	DB       *sql.DB
	Resolver ticket.Resolver
	Notifier *notify.Notifier
	Metrics  *metrics.Metrics
}

type assignRequest struct {
	ToolID       int64  `json:"toolId" validate:"required,gt=0"`
	TicketID     int64  `json:"ticketId" validate:"required_without=TicketNumber"`
	TicketNumber string `json:"ticketNumber"`
	Quantity     int    `json:"quantity" validate:"required,gt=0"`
	AssignedBy   string `json:"assignedBy" validate:"required"`
}

type returnRequest struct {
	AssignmentID int64  `json:"assignmentId" validate:"required,gt=0"`
	ReturnedBy   string `json:"returnedBy"`
	// Quantity is accepted for wire compatibility and ignored: an assignment
	// is the unit of custody and is always returned whole.
	Quantity int `json:"quantity"`
}

// Assign handles POST /tools/assign.
func (h *AssignmentsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assignment, events, err := store.AssignTool(r.Context(), h.DB, h.Resolver,
		req.ToolID, req.TicketID, req.TicketNumber, req.Quantity, req.AssignedBy)
	h.Metrics.ObserveOperation("assign", err)
	if err != nil {
		storeError(w, err)
		return
	}

	// The transaction is committed; events go out now.
	h.Notifier.Publish(r.Context(), events...)

	slog.Info("tool assigned",
		"tool", assignment.ToolCode,
		"ticket", assignment.TicketNumber,
		"quantity", assignment.Quantity,
		"by", assignment.AssignedBy,
	)
	jsonResponse(w, http.StatusOK, map[string]int64{"assignmentId": assignment.ID})
}

// Return handles POST /tools/return.
func (h *AssignmentsHandler) Return(w http.ResponseWriter, r *http.Request) {
	var req returnRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ReturnedBy == "" {
		req.ReturnedBy = "unknown"
	}

	assignment, err := store.ReturnAssignment(r.Context(), h.DB, req.AssignmentID, req.ReturnedBy)
	h.Metrics.ObserveOperation("return", err)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, assignment)
}

// ListAssigned handles GET /tools/assigned.
func (h *AssignmentsHandler) ListAssigned(w http.ResponseWriter, r *http.Request) {
	var ticketID int64
	if v := r.URL.Query().Get("ticketId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid ticketId")
			return
		}
		ticketID = id
	}

	assignments, err := store.ListAssignments(r.Context(), h.DB, model.AssignmentInUse, ticketID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list assignments")
		return
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	jsonResponse(w, http.StatusOK, assignments)
}

// ListReturned handles GET /tools/returned-tools.
func (h *AssignmentsHandler) ListReturned(w http.ResponseWriter, r *http.Request) {
	assignments, err := store.ListAssignments(r.Context(), h.DB, model.AssignmentReturned, 0)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list returned assignments")
		return
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	jsonResponse(w, http.StatusOK, assignments)
}
