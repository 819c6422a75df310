package api

import (
	"database/sql"
	"net/http"

	"github.com/garageops/toolledger/internal/metrics"
	"github.com/garageops/toolledger/internal/notify"
	"github.com/garageops/toolledger/internal/ticket"
)

// NewRouter creates the ledger router with all endpoints registered.
func NewRouter(db *sql.DB, resolver ticket.Resolver, notifier *notify.Notifier, m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()

	toolsHandler := &ToolsHandler{DB: db, Metrics: m}
	assignmentsHandler := &AssignmentsHandler{DB: db, Resolver: resolver, Notifier: notifier, Metrics: m}
	reportsHandler := &ReportsHandler{DB: db, Notifier: notifier, Metrics: m}

	// Tool records and stock.
	mux.HandleFunc("GET /tools", toolsHandler.List)
	mux.HandleFunc("GET /tools/stats", toolsHandler.Stats)
	mux.HandleFunc("POST /tools", toolsHandler.Create)
	mux.HandleFunc("POST /tools/check-in", toolsHandler.CheckIn)
	mux.HandleFunc("PUT /tools/{id}", toolsHandler.Adjust)
	mux.HandleFunc("DELETE /tools/{id}", toolsHandler.Delete)

	// Custody.
	mux.HandleFunc("POST /tools/assign", assignmentsHandler.Assign)
	mux.HandleFunc("POST /tools/return", assignmentsHandler.Return)
	mux.HandleFunc("GET /tools/assigned", assignmentsHandler.ListAssigned)
	mux.HandleFunc("GET /tools/returned-tools", assignmentsHandler.ListReturned)

	// Damage and audit.
	mux.HandleFunc("POST /tools/damage", reportsHandler.Damage)
	mux.HandleFunc("GET /damage-reports", reportsHandler.DamagedTools)
	mux.HandleFunc("GET /tools/recent-activity", reportsHandler.RecentActivity)

	// Operational endpoints.
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			jsonError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return LoggingMiddleware(m, mux)
}
