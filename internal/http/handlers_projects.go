package http

import (
	"net/http"

	"fondi/internal/core"
)

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string `json:"name"`
		ContractStart string `json:"contract_start"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Name == "" {
		writeError(w, r, &core.ValidationError{Field: "name", Reason: "name is required"})
		return
	}
	start, err := parseOptionalDate("contract_start", req.ContractStart)
	if err != nil {
		writeError(w, r, err)
		return
	}

	project, err := s.svc.Store.CreateProject(r.Context(), core.Project{
		Name:          req.Name,
		ContractStart: start,
		Active:        true,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectJSON(project))
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.Store.ListProjects(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]projectJSON, len(projects))
	for i, p := range projects {
		out[i] = toProjectJSON(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	project, err := s.svc.Store.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectJSON(project))
}

func (s *Server) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Name == "" {
		writeError(w, r, &core.ValidationError{Field: "name", Reason: "name is required"})
		return
	}
	supplier, err := s.svc.Store.CreateSupplier(r.Context(), core.Supplier{Name: req.Name})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, namedJSON{ID: supplier.ID, Name: supplier.Name})
}

func (s *Server) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := s.svc.Store.ListSuppliers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]namedJSON, len(suppliers))
	for i, supplier := range suppliers {
		out[i] = namedJSON{ID: supplier.ID, Name: supplier.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Name == "" {
		writeError(w, r, &core.ValidationError{Field: "name", Reason: "name is required"})
		return
	}
	category, err := s.svc.Store.CreateCategory(r.Context(), core.Category{Name: req.Name})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, namedJSON{ID: category.ID, Name: category.Name})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.svc.Store.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]namedJSON, len(categories))
	for i, category := range categories {
		out[i] = namedJSON{ID: category.ID, Name: category.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID   int64  `json:"project_id"`
		Date        string `json:"date"`
		Type        string `json:"type"`
		AmountCents int64  `json:"amount_cents"`
		CategoryID  int64  `json:"category_id"`
		SupplierID  int64  `json:"supplier_id"`
		Notes       string `json:"notes"`
		ReceiptRef  string `json:"receipt_ref"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx := core.Transaction{
		ProjectID:  req.ProjectID,
		Date:       date,
		Type:       core.TransactionType(req.Type),
		Amount:     core.Money{Cents: req.AmountCents},
		CategoryID: req.CategoryID,
		SupplierID: req.SupplierID,
		Notes:      req.Notes,
		ReceiptRef: req.ReceiptRef,
	}
	if err := tx.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.svc.Store.GetProject(r.Context(), tx.ProjectID); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.svc.Store.CreateTransaction(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.alertCache.Delete(alertCacheKey)
	writeJSON(w, http.StatusCreated, toTransactionJSON(created))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Store.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.alertCache.Delete(alertCacheKey)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSetReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		ReceiptRef string `json:"receipt_ref"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ReceiptRef == "" {
		writeError(w, r, &core.ValidationError{Field: "receipt_ref", Reason: "receipt reference is required"})
		return
	}
	if err := s.svc.Store.SetTransactionReceipt(r.Context(), id, req.ReceiptRef); err != nil {
		writeError(w, r, err)
		return
	}
	s.alertCache.Delete(alertCacheKey)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.svc.Store.GetProject(r.Context(), projectID); err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := s.svc.Store.ListProjectTransactions(r.Context(), projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionListJSON(txs))
}
