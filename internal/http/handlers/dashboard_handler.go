package handlers

import (
	"net/http"

	"parkhub/internal/service"
)

// NewDashboardHandler returns GET /api/dashboard handler.
func NewDashboardHandler(svc *service.DashboardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.Report(r.Context(), r.URL.Query().Get("date"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}
