package http

import (
	"net/http"

	"fondi/internal/core"
	"fondi/internal/services"
)

type templateRequest struct {
	ProjectID      int64  `json:"project_id"`
	Description    string `json:"description"`
	Type           string `json:"type"`
	AmountCents    int64  `json:"amount_cents"`
	CategoryID     int64  `json:"category_id"`
	SupplierID     int64  `json:"supplier_id"`
	DayOfMonth     int    `json:"day_of_month"`
	StartDate      string `json:"start_date"`
	EndType        string `json:"end_type"`
	EndDate        string `json:"end_date"`
	MaxOccurrences int    `json:"max_occurrences"`
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	start, err := parseOptionalDate("start_date", req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := parseOptionalDate("end_date", req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.svc.Templates.Create(r.Context(), core.RecurringTemplate{
		ProjectID:      req.ProjectID,
		Description:    req.Description,
		Type:           core.TransactionType(req.Type),
		Amount:         core.Money{Cents: req.AmountCents},
		CategoryID:     req.CategoryID,
		SupplierID:     req.SupplierID,
		DayOfMonth:     req.DayOfMonth,
		StartDate:      start,
		EndType:        core.EndType(req.EndType),
		EndDate:        end,
		MaxOccurrences: req.MaxOccurrences,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTemplateJSON(created))
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	projectID, err := queryInt64(r, "project_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	templates, err := s.svc.Templates.List(r.Context(), projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTemplateListJSON(templates))
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tpl, err := s.svc.Templates.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTemplateJSON(tpl))
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Description    *string `json:"description"`
		AmountCents    *int64  `json:"amount_cents"`
		CategoryID     *int64  `json:"category_id"`
		SupplierID     *int64  `json:"supplier_id"`
		DayOfMonth     *int    `json:"day_of_month"`
		StartDate      *string `json:"start_date"`
		EndType        *string `json:"end_type"`
		EndDate        *string `json:"end_date"`
		MaxOccurrences *int    `json:"max_occurrences"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	patch := services.TemplateUpdate{
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		SupplierID:     req.SupplierID,
		DayOfMonth:     req.DayOfMonth,
		MaxOccurrences: req.MaxOccurrences,
	}
	if req.AmountCents != nil {
		patch.Amount = &core.Money{Cents: *req.AmountCents}
	}
	if req.StartDate != nil {
		start, err := parseOptionalDate("start_date", *req.StartDate)
		if err != nil {
			writeError(w, r, err)
			return
		}
		patch.StartDate = &start
	}
	if req.EndType != nil {
		endType := core.EndType(*req.EndType)
		patch.EndType = &endType
	}
	if req.EndDate != nil {
		end, err := parseOptionalDate("end_date", *req.EndDate)
		if err != nil {
			writeError(w, r, err)
			return
		}
		patch.EndDate = &end
	}

	updated, err := s.svc.Templates.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTemplateJSON(updated))
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Templates.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeactivateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Templates.Deactivate(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleReactivateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Templates.Reactivate(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
