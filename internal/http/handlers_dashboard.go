package http

import (
	"net/http"

	"smartdues/internal/middleware/authn"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.bills.Dashboard(r.Context(), authn.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := dashboardResponse{
		TotalMonthUnpaid:  summary.TotalMonthUnpaid.String(),
		UpcomingNext7Days: toBillResponses(summary.UpcomingNext7Days, s.bills.Today()),
		OverdueCount:      summary.OverdueCount,
	}
	writeJSON(w, http.StatusOK, resp)
}
