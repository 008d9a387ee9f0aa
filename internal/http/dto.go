package http

import (
	"fondi/internal/core"
	"fondi/internal/services"
)

// JSON shapes of the API. Dates travel as YYYY-MM-DD strings, amounts as
// integer cents except unforeseen bundles, which keep arbitrary decimal
// precision as strings.

type projectJSON struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	ContractStart string `json:"contract_start,omitempty"`
	Active        bool   `json:"active"`
}

func toProjectJSON(p core.Project) projectJSON {
	out := projectJSON{ID: p.ID, Name: p.Name, Active: p.Active}
	if !p.ContractStart.IsZero() {
		out.ContractStart = p.ContractStart.String()
	}
	return out
}

// namedJSON covers suppliers and categories, which are bare id/name pairs.
type namedJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type templateJSON struct {
	ID             int64  `json:"id"`
	ProjectID      int64  `json:"project_id"`
	Description    string `json:"description"`
	Type           string `json:"type"`
	AmountCents    int64  `json:"amount_cents"`
	CategoryID     int64  `json:"category_id,omitempty"`
	SupplierID     int64  `json:"supplier_id,omitempty"`
	DayOfMonth     int    `json:"day_of_month"`
	StartDate      string `json:"start_date"`
	EndType        string `json:"end_type"`
	EndDate        string `json:"end_date,omitempty"`
	MaxOccurrences int    `json:"max_occurrences,omitempty"`
	Active         bool   `json:"active"`
}

func toTemplateJSON(t core.RecurringTemplate) templateJSON {
	out := templateJSON{
		ID:             t.ID,
		ProjectID:      t.ProjectID,
		Description:    t.Description,
		Type:           string(t.Type),
		AmountCents:    t.Amount.Cents,
		CategoryID:     t.CategoryID,
		SupplierID:     t.SupplierID,
		DayOfMonth:     t.DayOfMonth,
		StartDate:      t.StartDate.String(),
		EndType:        string(t.EndType),
		MaxOccurrences: t.MaxOccurrences,
		Active:         t.Active,
	}
	if !t.EndDate.IsZero() {
		out.EndDate = t.EndDate.String()
	}
	return out
}

func toTemplateListJSON(templates []core.RecurringTemplate) []templateJSON {
	out := make([]templateJSON, len(templates))
	for i, t := range templates {
		out[i] = toTemplateJSON(t)
	}
	return out
}

type transactionJSON struct {
	ID          int64  `json:"id"`
	ProjectID   int64  `json:"project_id"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	AmountCents int64  `json:"amount_cents"`
	CategoryID  int64  `json:"category_id,omitempty"`
	SupplierID  int64  `json:"supplier_id,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Generated   bool   `json:"generated"`
	TemplateID  int64  `json:"template_id,omitempty"`
	ReceiptRef  string `json:"receipt_ref,omitempty"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Date:        t.Date.String(),
		Type:        string(t.Type),
		AmountCents: t.Amount.Cents,
		CategoryID:  t.CategoryID,
		SupplierID:  t.SupplierID,
		Notes:       t.Notes,
		Generated:   t.Generated,
		TemplateID:  t.TemplateID,
		ReceiptRef:  t.ReceiptRef,
	}
}

func toTransactionListJSON(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(txs))
	for i, t := range txs {
		out[i] = toTransactionJSON(t)
	}
	return out
}

type periodJSON struct {
	ID           int64  `json:"id"`
	ProjectID    int64  `json:"project_id"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date,omitempty"`
	YearIndex    int    `json:"year_index"`
	Label        string `json:"label"`
	IncomeCents  int64  `json:"income_cents"`
	ExpenseCents int64  `json:"expense_cents"`
	ProfitCents  int64  `json:"profit_cents"`
}

func toPeriodJSON(s services.PeriodSummary) periodJSON {
	out := periodJSON{
		ID:           s.Period.ID,
		ProjectID:    s.Period.ProjectID,
		StartDate:    s.Period.StartDate.String(),
		YearIndex:    s.Period.YearIndex,
		Label:        s.Label,
		IncomeCents:  s.Totals.Income.Cents,
		ExpenseCents: s.Totals.Expense.Cents,
		ProfitCents:  s.Totals.Profit.Cents,
	}
	if !s.Period.EndDate.IsZero() {
		out.EndDate = s.Period.EndDate.String()
	}
	return out
}

type budgetSpendingJSON struct {
	BudgetID       int64   `json:"budget_id"`
	CategoryID     int64   `json:"category_id"`
	AmountCents    int64   `json:"amount_cents"`
	PeriodType     string  `json:"period_type"`
	SpentCents     int64   `json:"spent_cents"`
	SpentPct       float64 `json:"spent_pct"`
	ExpectedPct    float64 `json:"expected_pct"`
	IsOverBudget   bool    `json:"is_over_budget"`
	IsSpendingFast bool    `json:"is_spending_fast"`
}

func toSpendingJSON(s core.BudgetSpending) budgetSpendingJSON {
	return budgetSpendingJSON{
		BudgetID:       s.Budget.ID,
		CategoryID:     s.Budget.CategoryID,
		AmountCents:    s.Budget.Amount.Cents,
		PeriodType:     string(s.Budget.PeriodType),
		SpentCents:     s.SpentAmount.Cents,
		SpentPct:       s.SpentPct,
		ExpectedPct:    s.ExpectedPct,
		IsOverBudget:   s.IsOverBudget,
		IsSpendingFast: s.IsSpendingFast,
	}
}

type unforeseenLineJSON struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
	DocumentRef string `json:"document_ref,omitempty"`
}

type unforeseenJSON struct {
	ID            int64                `json:"id"`
	ProjectID     int64                `json:"project_id"`
	Income        string               `json:"income"`
	Expenses      []unforeseenLineJSON `json:"expenses"`
	Status        string               `json:"status"`
	Date          string               `json:"date"`
	ProfitLoss    string               `json:"profit_loss"`
	TransactionID int64                `json:"transaction_id,omitempty"`
}

func toUnforeseenJSON(u core.UnforeseenTransaction) unforeseenJSON {
	lines := make([]unforeseenLineJSON, len(u.Expenses))
	for i, line := range u.Expenses {
		lines[i] = unforeseenLineJSON{
			Amount:      line.Amount.String(),
			Description: line.Description,
			DocumentRef: line.DocumentRef,
		}
	}
	return unforeseenJSON{
		ID:            u.ID,
		ProjectID:     u.ProjectID,
		Income:        u.Income.String(),
		Expenses:      lines,
		Status:        string(u.Status),
		Date:          u.Date.String(),
		ProfitLoss:    u.ProfitLoss().String(),
		TransactionID: u.TransactionID,
	}
}
