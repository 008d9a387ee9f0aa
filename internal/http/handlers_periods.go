package http

import (
	"net/http"

	"fondi/internal/core"
)

func (s *Server) handleListPeriods(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	summaries, err := s.svc.Periods.ByYear(r.Context(), projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]periodJSON, len(summaries))
	for i, summary := range summaries {
		out[i] = toPeriodJSON(summary)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleClosePeriod(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		EndDate string `json:"end_date"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.EndDate == "" {
		writeError(w, r, &core.ValidationError{Field: "end_date", Reason: "end date is required"})
		return
	}
	endDate, err := parseOptionalDate("end_date", req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	next, err := s.svc.Periods.CloseYear(r.Context(), projectID, endDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.alertCache.Delete(alertCacheKey)

	writeJSON(w, http.StatusOK, struct {
		NextPeriodID int64  `json:"next_period_id"`
		StartDate    string `json:"start_date"`
	}{NextPeriodID: next.ID, StartDate: next.StartDate.String()})
}

func (s *Server) handleRenewPeriod(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	renewed, err := s.svc.Periods.CheckAndRenew(r.Context(), projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if renewed {
		s.alertCache.Delete(alertCacheKey)
	}
	writeJSON(w, http.StatusOK, struct {
		Renewed bool `json:"renewed"`
	}{Renewed: renewed})
}
