package http

import (
	"net/http"

	"fondi/internal/core"
	"fondi/internal/services"
)

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID   int64  `json:"project_id"`
		CategoryID  int64  `json:"category_id"`
		AmountCents int64  `json:"amount_cents"`
		PeriodType  string `json:"period_type"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	budget, err := s.svc.Budgets.Create(r.Context(), core.Budget{
		ProjectID:  req.ProjectID,
		CategoryID: req.CategoryID,
		Amount:     core.Money{Cents: req.AmountCents},
		PeriodType: core.BudgetPeriodType(req.PeriodType),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetJSON(budget))
}

type budgetJSON struct {
	ID          int64  `json:"id"`
	ProjectID   int64  `json:"project_id"`
	CategoryID  int64  `json:"category_id"`
	AmountCents int64  `json:"amount_cents"`
	PeriodType  string `json:"period_type"`
	Active      bool   `json:"active"`
}

func toBudgetJSON(b core.Budget) budgetJSON {
	return budgetJSON{
		ID:          b.ID,
		ProjectID:   b.ProjectID,
		CategoryID:  b.CategoryID,
		AmountCents: b.Amount.Cents,
		PeriodType:  string(b.PeriodType),
		Active:      b.Active,
	}
}

func (s *Server) handleBudgetSpending(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	spendings, err := s.svc.Budgets.SpendingForProject(r.Context(), projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]budgetSpendingJSON, len(spendings))
	for i, spending := range spendings {
		out[i] = toSpendingJSON(spending)
	}
	writeJSON(w, http.StatusOK, out)
}

type categoryAlertJSON struct {
	ProjectID    int64   `json:"project_id"`
	CategoryID   int64   `json:"category_id"`
	SpentPct     float64 `json:"spent_pct"`
	ExpectedPct  float64 `json:"expected_pct"`
	IsOverBudget bool    `json:"is_over_budget"`
}

type alertsJSON struct {
	BudgetOverrun        []int64             `json:"budget_overrun"`
	BudgetWarning        []int64             `json:"budget_warning"`
	MissingProof         []int64             `json:"missing_proof"`
	UnpaidRecurring      []int64             `json:"unpaid_recurring"`
	NegativeFundBalance  []int64             `json:"negative_fund_balance"`
	CategoryBudgetAlerts []categoryAlertJSON `json:"category_budget_alerts"`
}

func toAlertsJSON(set services.AlertSet) alertsJSON {
	out := alertsJSON{
		BudgetOverrun:        set.BudgetOverrun,
		BudgetWarning:        set.BudgetWarning,
		MissingProof:         set.MissingProof,
		UnpaidRecurring:      set.UnpaidRecurring,
		NegativeFundBalance:  set.NegativeFundBalance,
		CategoryBudgetAlerts: make([]categoryAlertJSON, len(set.CategoryBudgetAlerts)),
	}
	for i, a := range set.CategoryBudgetAlerts {
		out.CategoryBudgetAlerts[i] = categoryAlertJSON{
			ProjectID:    a.ProjectID,
			CategoryID:   a.CategoryID,
			SpentPct:     a.SpentPct,
			ExpectedPct:  a.ExpectedPct,
			IsOverBudget: a.IsOverBudget,
		}
	}
	return out
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if set, ok := s.alertCache.Get(alertCacheKey); ok {
		writeJSON(w, http.StatusOK, toAlertsJSON(set))
		return
	}

	set, err := s.svc.Dashboard.Alerts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.alertCache.Set(alertCacheKey, set)
	writeJSON(w, http.StatusOK, toAlertsJSON(set))
}

type dashboardProjectJSON struct {
	Project projectJSON  `json:"project"`
	Periods []periodJSON `json:"periods"`
}

type dashboardJSON struct {
	Alerts   alertsJSON             `json:"alerts"`
	Projects []dashboardProjectJSON `json:"projects"`
}

// handleDashboard serves the single payload the dashboard renders from:
// the alert set plus every project's period totals.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	set, ok := s.alertCache.Get(alertCacheKey)
	if !ok {
		var err error
		set, err = s.svc.Dashboard.Alerts(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.alertCache.Set(alertCacheKey, set)
	}

	projects, err := s.svc.Store.ListProjects(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := dashboardJSON{
		Alerts:   toAlertsJSON(set),
		Projects: make([]dashboardProjectJSON, len(projects)),
	}
	for i, project := range projects {
		summaries, err := s.svc.Periods.ByYear(r.Context(), project.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		periods := make([]periodJSON, len(summaries))
		for j, summary := range summaries {
			periods[j] = toPeriodJSON(summary)
		}
		out.Projects[i] = dashboardProjectJSON{
			Project: toProjectJSON(project),
			Periods: periods,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDismissAlert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID int64  `json:"project_id"`
		Kind      string `json:"kind"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ProjectID <= 0 {
		writeError(w, r, &core.ValidationError{Field: "project_id", Reason: "must be a positive integer"})
		return
	}
	if err := s.svc.Dashboard.Dismiss(r.Context(), req.ProjectID, core.AlertKind(req.Kind)); err != nil {
		writeError(w, r, err)
		return
	}
	s.alertCache.Delete(alertCacheKey)
	writeJSON(w, http.StatusNoContent, nil)
}
