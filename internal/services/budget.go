package services

import (
	"context"
	"fmt"
	"time"

	"fondi/internal/core"
	"fondi/internal/store"
)

// BudgetMath computes budget spend aggregates. TolerancePct is the
// configurable margin (in percentage points) the spent percentage may
// run ahead of the time-prorated expectation before the spending-too-fast
// flag raises.
type BudgetMath struct {
	TolerancePct float64
}

// PeriodBounds is the date window a budget's spend is measured over.
type PeriodBounds struct {
	Start core.Date
	End   core.Date
}

// BoundsFor resolves the measurement window for a budget: annual budgets
// use the enclosing contract period, monthly budgets the current
// calendar month intersected with it.
func BoundsFor(budget core.Budget, period core.ContractPeriod, now time.Time) PeriodBounds {
	start, end := period.Bounds(now)
	if period.IsOpen() {
		// Project the open period through the day before its anniversary
		// so pacing is measured against the full contract year.
		end = period.Anniversary().AddDays(-1)
	}
	if budget.PeriodType == core.BudgetMonthly {
		monthStart := core.NewDate(now.Year(), int(now.Month()), 1)
		monthEnd := core.NewDate(now.Year(), int(now.Month()), core.LastDayOfMonth(now.Year(), int(now.Month())))
		if monthStart.After(start) {
			start = monthStart
		}
		if monthEnd.Before(end) {
			end = monthEnd
		}
	}
	return PeriodBounds{Start: start, End: end}
}

// SpendingFor aggregates the expense transactions matching the budget's
// category within bounds and derives the alert flags. Over-budget takes
// precedence over spending-too-fast; the two never raise together.
func (m BudgetMath) SpendingFor(budget core.Budget, bounds PeriodBounds, txs []core.Transaction, now time.Time) core.BudgetSpending {
	spending := core.BudgetSpending{Budget: budget}

	for _, tx := range txs {
		if tx.Type != core.Expense || tx.CategoryID != budget.CategoryID {
			continue
		}
		if tx.Date.Before(bounds.Start) || tx.Date.After(bounds.End) {
			continue
		}
		spending.SpentAmount.Cents += tx.Amount.Cents
	}

	if budget.Amount.Cents > 0 {
		spending.SpentPct = float64(spending.SpentAmount.Cents) / float64(budget.Amount.Cents) * 100
	}
	spending.ExpectedPct = elapsedPct(bounds, now)
	spending.IsOverBudget = spending.SpentPct >= 100
	spending.IsSpendingFast = !spending.IsOverBudget &&
		spending.SpentPct > spending.ExpectedPct+m.TolerancePct

	return spending
}

// elapsedPct returns how far "now" is through the bounds as a
// percentage, clamped to [0, 100].
func elapsedPct(bounds PeriodBounds, now time.Time) float64 {
	totalDays := bounds.End.Sub(bounds.Start.Time).Hours()/24 + 1
	if totalDays <= 0 {
		return 100
	}
	elapsedDays := now.Sub(bounds.Start.Time).Hours()/24 + 1
	pct := elapsedDays / totalDays * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Budgets is the stateful wrapper resolving a project's budgets against
// its current contract period and transactions.
type Budgets struct {
	store   store.Store
	math    BudgetMath
	periods *Periods
	clock   func() time.Time
}

func NewBudgets(st store.Store, periods *Periods, tolerancePct float64) *Budgets {
	return &Budgets{
		store:   st,
		math:    BudgetMath{TolerancePct: tolerancePct},
		periods: periods,
		clock:   time.Now,
	}
}

// WithClock overrides the time source, used by tests.
func (b *Budgets) WithClock(clock func() time.Time) *Budgets {
	b.clock = clock
	return b
}

// Create validates and persists a budget.
func (b *Budgets) Create(ctx context.Context, budget core.Budget) (core.Budget, error) {
	if err := budget.Validate(); err != nil {
		return core.Budget{}, err
	}
	if _, err := b.store.GetProject(ctx, budget.ProjectID); err != nil {
		return core.Budget{}, fmt.Errorf("load project: %w", err)
	}
	budget.Active = true
	created, err := b.store.CreateBudget(ctx, budget)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	return created, nil
}

// SpendingForProject computes the spend aggregate of every active budget
// of a project, scoped to its current contract period.
func (b *Budgets) SpendingForProject(ctx context.Context, projectID int64) ([]core.BudgetSpending, error) {
	period, err := b.periods.Current(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, nil
	}

	budgets, err := b.store.ListActiveBudgets(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	if len(budgets) == 0 {
		return nil, nil
	}

	txs, err := b.store.ListProjectTransactions(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	now := b.clock()
	out := make([]core.BudgetSpending, len(budgets))
	for i, budget := range budgets {
		bounds := BoundsFor(budget, *period, now)
		out[i] = b.math.SpendingFor(budget, bounds, txs, now)
	}
	return out, nil
}
