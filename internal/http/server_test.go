package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"fondi/internal/services"
	"fondi/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := memory.New()
	periods := services.NewPeriods(st, nil)
	budgets := services.NewBudgets(st, periods, 10)
	gen := services.NewGenerator(st, nil)
	srv := NewServer(":0", Services{
		Store:      st,
		Templates:  services.NewTemplateService(st),
		Generator:  gen,
		Backfill:   services.NewBackfill(st, gen, 1),
		Periods:    periods,
		Budgets:    budgets,
		Dashboard:  services.NewDashboard(st, budgets, services.AlertEvaluator{GraceDays: 14}),
		Unforeseen: services.NewUnforeseen(st),
	})
	t.Cleanup(func() { srv.rateLimiter.Stop() })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeResp(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func createProject(t *testing.T, srv *Server, name, contractStart string) int64 {
	t.Helper()
	body := map[string]any{"name": name}
	if contractStart != "" {
		body["contract_start"] = contractStart
	}
	rr := doJSON(t, srv, http.MethodPost, "/api/projects", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create project status=%d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		ID int64 `json:"id"`
	}
	decodeResp(t, rr, &resp)
	return resp.ID
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestCreateProjectValidation(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/projects", map[string]any{"name": ""})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank name status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/projects", map[string]any{
		"name":           "Via Roma 12",
		"contract_start": "12/03/2024",
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad date status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/projects/999", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing project status=%d", rr.Code)
	}
}

func TestUnknownJSONFieldRejected(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodPost, "/api/projects", map[string]any{
		"name":  "Via Roma 12",
		"bogus": true,
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown field status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestTemplateLifecycleOverAPI(t *testing.T) {
	srv := newTestServer(t)
	projectID := createProject(t, srv, "Via Roma 12", "2024-01-01")

	rr := doJSON(t, srv, http.MethodPost, "/api/suppliers", map[string]any{"name": "Idraulica SRL"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create supplier status=%d", rr.Code)
	}
	var supplier namedJSON
	decodeResp(t, rr, &supplier)

	rr = doJSON(t, srv, http.MethodPost, "/api/categories", map[string]any{"name": "Manutenzione"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create category status=%d", rr.Code)
	}
	var category namedJSON
	decodeResp(t, rr, &category)

	rr = doJSON(t, srv, http.MethodPost, "/api/templates", map[string]any{
		"project_id":   projectID,
		"description":  "Canone mensile",
		"type":         "income",
		"amount_cents": 80000,
		"day_of_month": 1,
		"start_date":   "2024-01-01",
		"category_id":  category.ID,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create template status=%d body=%s", rr.Code, rr.Body.String())
	}
	var tpl templateJSON
	decodeResp(t, rr, &tpl)
	if !tpl.Active || tpl.EndType != "none" {
		t.Fatalf("unexpected template defaults: %+v", tpl)
	}

	rr = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/templates/%d", tpl.ID), map[string]any{
		"amount_cents": 85000,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("patch template status=%d body=%s", rr.Code, rr.Body.String())
	}
	var patched templateJSON
	decodeResp(t, rr, &patched)
	if patched.AmountCents != 85000 || patched.Description != "Canone mensile" {
		t.Fatalf("patch changed wrong fields: %+v", patched)
	}

	rr = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/templates/%d/deactivate", tpl.ID), nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("deactivate status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/templates?project_id=%d", projectID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list templates status=%d", rr.Code)
	}
	var listed []templateJSON
	decodeResp(t, rr, &listed)
	if len(listed) != 1 || listed[0].Active {
		t.Fatalf("expected one inactive template, got %+v", listed)
	}
}

func TestGenerateEndpointIdempotent(t *testing.T) {
	srv := newTestServer(t)
	projectID := createProject(t, srv, "Via Roma 12", "2024-01-01")

	rr := doJSON(t, srv, http.MethodPost, "/api/templates", map[string]any{
		"project_id":   projectID,
		"description":  "Canone mensile",
		"type":         "income",
		"amount_cents": 80000,
		"day_of_month": 5,
		"start_date":   "2024-01-01",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create template status=%d body=%s", rr.Code, rr.Body.String())
	}

	genBody := map[string]any{"year": 2024, "month": 3}
	rr = doJSON(t, srv, http.MethodPost, "/api/generate", genBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("generate status=%d body=%s", rr.Code, rr.Body.String())
	}
	var first struct {
		Generated int               `json:"generated"`
		Items     []transactionJSON `json:"transactions"`
	}
	decodeResp(t, rr, &first)
	if first.Generated != 1 || len(first.Items) != 1 {
		t.Fatalf("first run generated=%d items=%d", first.Generated, len(first.Items))
	}
	if first.Items[0].Date != "2024-03-05" {
		t.Fatalf("generated date = %s", first.Items[0].Date)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/generate", genBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("second generate status=%d", rr.Code)
	}
	var second struct {
		Generated int `json:"generated"`
	}
	decodeResp(t, rr, &second)
	if second.Generated != 0 {
		t.Fatalf("second run generated=%d, want 0", second.Generated)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/generate", map[string]any{"year": 2024, "month": 13})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("month 13 status=%d", rr.Code)
	}
}

func TestPeriodsAndBudgetEndpoints(t *testing.T) {
	srv := newTestServer(t)
	projectID := createProject(t, srv, "Via Roma 12", "2024-03-15")

	rr := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/projects/%d/periods", projectID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list periods status=%d body=%s", rr.Code, rr.Body.String())
	}
	var periods []periodJSON
	decodeResp(t, rr, &periods)
	if len(periods) != 1 || periods[0].StartDate != "2024-03-15" {
		t.Fatalf("unexpected periods: %+v", periods)
	}

	rr = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/projects/%d/periods/close", projectID), map[string]any{
		"end_date": "2024-12-31",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("close period status=%d body=%s", rr.Code, rr.Body.String())
	}
	var closed struct {
		StartDate string `json:"start_date"`
	}
	decodeResp(t, rr, &closed)
	if closed.StartDate != "2025-01-01" {
		t.Fatalf("next period start = %s", closed.StartDate)
	}

	// Closing before the new period start violates ordering.
	rr = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/projects/%d/periods/close", projectID), map[string]any{
		"end_date": "2024-06-01",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("close before start status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/budgets", map[string]any{
		"project_id":   projectID,
		"amount_cents": 100000,
		"period_type":  "annual",
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("budget without category status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/categories", map[string]any{"name": "Manutenzione"})
	var category namedJSON
	decodeResp(t, rr, &category)

	rr = doJSON(t, srv, http.MethodPost, "/api/budgets", map[string]any{
		"project_id":   projectID,
		"category_id":  category.ID,
		"amount_cents": 100000,
		"period_type":  "annual",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create budget status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/projects/%d/budgets/spending", projectID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("spending status=%d body=%s", rr.Code, rr.Body.String())
	}
	var spendings []budgetSpendingJSON
	decodeResp(t, rr, &spendings)
	if len(spendings) != 1 || spendings[0].SpentCents != 0 {
		t.Fatalf("unexpected spendings: %+v", spendings)
	}
}

func TestAlertsEndpointCachesAndInvalidates(t *testing.T) {
	srv := newTestServer(t)
	projectID := createProject(t, srv, "Via Roma 12", "2024-01-01")

	rr := doJSON(t, srv, http.MethodGet, "/api/alerts", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("alerts status=%d", rr.Code)
	}
	var before alertsJSON
	decodeResp(t, rr, &before)
	if len(before.MissingProof) != 0 {
		t.Fatalf("expected no alerts, got %+v", before)
	}

	// An expense without a receipt raises the missing-proof alert and the
	// write must bust the cached alert set.
	rr = doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]any{
		"project_id":   projectID,
		"date":         "2024-02-10",
		"type":         "expense",
		"amount_cents": 5000,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create transaction status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/alerts", nil)
	var after alertsJSON
	decodeResp(t, rr, &after)
	if len(after.MissingProof) != 1 || after.MissingProof[0] != projectID {
		t.Fatalf("expected missing-proof alert for project %d, got %+v", projectID, after)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/alerts/dismiss", map[string]any{
		"project_id": projectID,
		"kind":       "missing_proof",
	})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("dismiss status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/alerts", nil)
	var dismissed alertsJSON
	decodeResp(t, rr, &dismissed)
	if len(dismissed.MissingProof) != 0 {
		t.Fatalf("dismissed alert still present: %+v", dismissed)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/alerts/dismiss", map[string]any{
		"project_id": projectID,
		"kind":       "nonsense",
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad kind status=%d", rr.Code)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	srv := newTestServer(t)
	projectID := createProject(t, srv, "Via Roma 12", "2024-03-15")

	rr := doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]any{
		"project_id":   projectID,
		"date":         "2024-04-01",
		"type":         "income",
		"amount_cents": 80000,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create transaction status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d body=%s", rr.Code, rr.Body.String())
	}
	var dash dashboardJSON
	decodeResp(t, rr, &dash)
	if len(dash.Projects) != 1 {
		t.Fatalf("expected one project, got %+v", dash.Projects)
	}
	entry := dash.Projects[0]
	if entry.Project.ID != projectID {
		t.Fatalf("project id = %d, want %d", entry.Project.ID, projectID)
	}
	if len(entry.Periods) != 1 || entry.Periods[0].IncomeCents != 80000 {
		t.Fatalf("unexpected periods: %+v", entry.Periods)
	}
}

func TestUnforeseenWorkflowOverAPI(t *testing.T) {
	srv := newTestServer(t)
	projectID := createProject(t, srv, "Via Roma 12", "2024-01-01")

	rr := doJSON(t, srv, http.MethodPost, "/api/unforeseen", map[string]any{
		"project_id": projectID,
		"income":     "250.00",
		"date":       "2024-05-10",
		"expenses": []map[string]any{
			{"amount": "80.50", "description": "Ricambi"},
			{"amount": "20.00", "description": "Trasporto"},
		},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create unforeseen status=%d body=%s", rr.Code, rr.Body.String())
	}
	var created unforeseenJSON
	decodeResp(t, rr, &created)
	if created.Status != "draft" || created.ProfitLoss != "149.5" {
		t.Fatalf("unexpected draft: %+v", created)
	}

	// Executing a draft skips the approval step.
	rr = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/unforeseen/%d/execute", created.ID), nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("execute draft status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/unforeseen/%d/submit", created.ID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("submit status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/unforeseen/%d/execute", created.ID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("execute status=%d body=%s", rr.Code, rr.Body.String())
	}
	var executed unforeseenJSON
	decodeResp(t, rr, &executed)
	if executed.Status != "executed" || executed.TransactionID == 0 {
		t.Fatalf("unexpected executed bundle: %+v", executed)
	}

	rr = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/projects/%d/transactions", projectID), nil)
	var txs []transactionJSON
	decodeResp(t, rr, &txs)
	if len(txs) != 1 || txs[0].Type != "income" || txs[0].AmountCents != 14950 {
		t.Fatalf("unexpected settlement transactions: %+v", txs)
	}

	rr = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/unforeseen/%d", created.ID), nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/projects/%d/transactions", projectID), nil)
	decodeResp(t, rr, &txs)
	if len(txs) != 0 {
		t.Fatalf("settlement transaction not retracted: %+v", txs)
	}
}
