package http

import (
	"net/http"
	"time"
)

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.svc.Generator.GenerateForMonth(r.Context(), req.Year, req.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.alertCache.Delete(alertCacheKey)

	resp := struct {
		Year      int               `json:"year"`
		Month     int               `json:"month"`
		Generated int               `json:"generated"`
		Errors    []templateErrJSON `json:"errors,omitempty"`
		Items     []transactionJSON `json:"transactions"`
	}{
		Year:      result.Year,
		Month:     result.Month,
		Generated: result.GeneratedCount,
		Items:     toTransactionListJSON(result.Transactions),
	}
	for _, te := range result.Errors {
		resp.Errors = append(resp.Errors, templateErrJSON{
			TemplateID: te.TemplateID,
			Error:      te.Err.Error(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type templateErrJSON struct {
	TemplateID int64  `json:"template_id"`
	Error      string `json:"error"`
}

func (s *Server) handleBackfill(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Backfill.Run(r.Context(), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.alertCache.Delete(alertCacheKey)

	resp := struct {
		MonthsProcessed int               `json:"months_processed"`
		Generated       int               `json:"generated"`
		Errors          []templateErrJSON `json:"errors,omitempty"`
	}{
		MonthsProcessed: result.MonthsProcessed,
		Generated:       result.Generated,
	}
	for _, te := range result.Errors {
		resp.Errors = append(resp.Errors, templateErrJSON{
			TemplateID: te.TemplateID,
			Error:      te.Err.Error(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
