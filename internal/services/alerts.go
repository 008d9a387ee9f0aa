package services

import (
	"context"
	"fmt"
	"time"

	"fondi/internal/core"
	"fondi/internal/store"
)

// AlertEvaluator is a pure aggregation over dashboard-wide project data.
// It holds no state and produces the full alert set on every call;
// dismissal filtering belongs to the caller.
type AlertEvaluator struct {
	// GraceDays is how long a generated transaction may stay without a
	// receipt before the unpaid-recurring alert raises.
	GraceDays int
}

// CategoryBudgetAlert is the per-budget detail behind the project-level
// budget alerts.
type CategoryBudgetAlert struct {
	ProjectID    int64
	CategoryID   int64
	SpentPct     float64
	ExpectedPct  float64
	IsOverBudget bool
}

// AlertSet is what the dashboard consumes: project ids per alert class
// plus the per-category budget details.
type AlertSet struct {
	BudgetOverrun        []int64
	BudgetWarning        []int64
	MissingProof         []int64
	UnpaidRecurring      []int64
	NegativeFundBalance  []int64
	CategoryBudgetAlerts []CategoryBudgetAlert
}

// Evaluate combines per-project budget spendings and transactions into
// the alert set. No side effects; recomputed on each dashboard load.
func (e AlertEvaluator) Evaluate(
	projects []core.Project,
	spendings map[int64][]core.BudgetSpending,
	transactions map[int64][]core.Transaction,
	now time.Time,
) AlertSet {
	var set AlertSet
	grace := time.Duration(e.GraceDays) * 24 * time.Hour

	for _, project := range projects {
		overrun, warning := false, false
		for _, spending := range spendings[project.ID] {
			if spending.IsOverBudget || spending.IsSpendingFast {
				set.CategoryBudgetAlerts = append(set.CategoryBudgetAlerts, CategoryBudgetAlert{
					ProjectID:    project.ID,
					CategoryID:   spending.Budget.CategoryID,
					SpentPct:     spending.SpentPct,
					ExpectedPct:  spending.ExpectedPct,
					IsOverBudget: spending.IsOverBudget,
				})
			}
			overrun = overrun || spending.IsOverBudget
			warning = warning || spending.IsSpendingFast
		}
		if overrun {
			set.BudgetOverrun = append(set.BudgetOverrun, project.ID)
		}
		// Overrun outranks the pacing warning for the same project.
		if warning && !overrun {
			set.BudgetWarning = append(set.BudgetWarning, project.ID)
		}

		missingProof, unpaid := false, false
		var balance int64
		for _, tx := range transactions[project.ID] {
			balance += tx.Signed()
			if tx.Type == core.Expense && !tx.HasReceipt() {
				missingProof = true
			}
			if tx.Generated && !tx.HasReceipt() && now.Sub(tx.Date.Time) > grace {
				unpaid = true
			}
		}
		if missingProof {
			set.MissingProof = append(set.MissingProof, project.ID)
		}
		if unpaid {
			set.UnpaidRecurring = append(set.UnpaidRecurring, project.ID)
		}
		if balance < 0 {
			set.NegativeFundBalance = append(set.NegativeFundBalance, project.ID)
		}
	}

	return set
}

// Dashboard assembles the evaluator inputs from the store, runs the
// evaluation and filters out dismissed alerts.
type Dashboard struct {
	store     store.Store
	budgets   *Budgets
	evaluator AlertEvaluator
	clock     func() time.Time
}

func NewDashboard(st store.Store, budgets *Budgets, evaluator AlertEvaluator) *Dashboard {
	return &Dashboard{store: st, budgets: budgets, evaluator: evaluator, clock: time.Now}
}

// WithClock overrides the time source, used by tests.
func (d *Dashboard) WithClock(clock func() time.Time) *Dashboard {
	d.clock = clock
	return d
}

// Alerts evaluates the current alert set across all projects, with
// caller-side dismissals applied.
func (d *Dashboard) Alerts(ctx context.Context) (AlertSet, error) {
	projects, err := d.store.ListProjects(ctx)
	if err != nil {
		return AlertSet{}, fmt.Errorf("list projects: %w", err)
	}

	spendings := make(map[int64][]core.BudgetSpending, len(projects))
	transactions := make(map[int64][]core.Transaction, len(projects))
	for _, project := range projects {
		spending, err := d.budgets.SpendingForProject(ctx, project.ID)
		if err != nil {
			return AlertSet{}, fmt.Errorf("spending for project %d: %w", project.ID, err)
		}
		spendings[project.ID] = spending

		txs, err := d.store.ListProjectTransactions(ctx, project.ID)
		if err != nil {
			return AlertSet{}, fmt.Errorf("transactions for project %d: %w", project.ID, err)
		}
		transactions[project.ID] = txs
	}

	set := d.evaluator.Evaluate(projects, spendings, transactions, d.clock())

	dismissals, err := d.store.ListDismissals(ctx)
	if err != nil {
		return AlertSet{}, fmt.Errorf("list dismissals: %w", err)
	}
	return applyDismissals(set, dismissals), nil
}

// Dismiss records a caller-side dismissal for one project/alert pair.
func (d *Dashboard) Dismiss(ctx context.Context, projectID int64, kind core.AlertKind) error {
	if !kind.IsValid() {
		return &core.ValidationError{Field: "kind", Reason: "unknown alert kind"}
	}
	return d.store.DismissAlert(ctx, core.AlertDismissal{ProjectID: projectID, Kind: kind})
}

func applyDismissals(set AlertSet, dismissals []core.AlertDismissal) AlertSet {
	dismissed := make(map[core.AlertDismissal]bool, len(dismissals))
	for _, d := range dismissals {
		dismissed[d] = true
	}
	filter := func(ids []int64, kind core.AlertKind) []int64 {
		var out []int64
		for _, id := range ids {
			if !dismissed[core.AlertDismissal{ProjectID: id, Kind: kind}] {
				out = append(out, id)
			}
		}
		return out
	}
	set.BudgetOverrun = filter(set.BudgetOverrun, core.AlertBudgetOverrun)
	set.BudgetWarning = filter(set.BudgetWarning, core.AlertBudgetWarning)
	set.MissingProof = filter(set.MissingProof, core.AlertMissingProof)
	set.UnpaidRecurring = filter(set.UnpaidRecurring, core.AlertUnpaidRecurring)
	set.NegativeFundBalance = filter(set.NegativeFundBalance, core.AlertNegativeBalance)
	return set
}
