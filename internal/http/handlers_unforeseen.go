package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"fondi/internal/core"
)

type unforeseenLineRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
	DocumentRef string `json:"document_ref"`
}

func (s *Server) handleCreateUnforeseen(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID int64                   `json:"project_id"`
		Income    string                  `json:"income"`
		Date      string                  `json:"date"`
		Expenses  []unforeseenLineRequest `json:"expenses"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	income, err := parseDecimal("income", req.Income)
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lines := make([]core.UnforeseenExpenseLine, len(req.Expenses))
	for i, line := range req.Expenses {
		amount, err := parseDecimal("expenses.amount", line.Amount)
		if err != nil {
			writeError(w, r, err)
			return
		}
		lines[i] = core.UnforeseenExpenseLine{
			Amount:      amount,
			Description: line.Description,
			DocumentRef: line.DocumentRef,
		}
	}

	created, err := s.svc.Unforeseen.Create(r.Context(), core.UnforeseenTransaction{
		ProjectID: req.ProjectID,
		Income:    income,
		Date:      date,
		Expenses:  lines,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUnforeseenJSON(created))
}

func (s *Server) handleListUnforeseen(w http.ResponseWriter, r *http.Request) {
	projectID, err := queryInt64(r, "project_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	bundles, err := s.svc.Unforeseen.List(r.Context(), projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]unforeseenJSON, len(bundles))
	for i, u := range bundles {
		out[i] = toUnforeseenJSON(u)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetUnforeseen(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.svc.Unforeseen.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUnforeseenJSON(u))
}

func (s *Server) handleSubmitUnforeseen(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.svc.Unforeseen.SubmitForApproval(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUnforeseenJSON(u))
}

func (s *Server) handleExecuteUnforeseen(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.svc.Unforeseen.Execute(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.alertCache.Delete(alertCacheKey)
	writeJSON(w, http.StatusOK, toUnforeseenJSON(u))
}

func (s *Server) handleDeleteUnforeseen(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Unforeseen.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.alertCache.Delete(alertCacheKey)
	writeJSON(w, http.StatusNoContent, nil)
}

func parseDecimal(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, &core.ValidationError{Field: field, Reason: "must be a decimal number"}
	}
	return d, nil
}
