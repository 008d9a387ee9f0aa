package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fondi/internal/core"
	"fondi/internal/store/memory"
)

func TestBudgetMath_SpendingFor_ExactBudgetIsOverrun(t *testing.T) {
	math := BudgetMath{TolerancePct: 10}
	budget := core.Budget{CategoryID: 5, Amount: core.Money{Cents: 100000}, PeriodType: core.BudgetAnnual}
	bounds := PeriodBounds{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 12, 31)}
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	txs := []core.Transaction{
		{Type: core.Expense, CategoryID: 5, Date: core.NewDate(2024, 2, 1), Amount: core.Money{Cents: 60000}},
		{Type: core.Expense, CategoryID: 5, Date: core.NewDate(2024, 4, 1), Amount: core.Money{Cents: 40000}},
	}

	spending := math.SpendingFor(budget, bounds, txs, now)
	assert.Equal(t, int64(100000), spending.SpentAmount.Cents)
	assert.Equal(t, 100.0, spending.SpentPct)
	assert.True(t, spending.IsOverBudget, "spending the full budget counts as overrun")
	assert.False(t, spending.IsSpendingFast, "overrun suppresses the pacing warning")
}

func TestBudgetMath_SpendingFor_FiltersCategoryTypeAndBounds(t *testing.T) {
	math := BudgetMath{TolerancePct: 10}
	budget := core.Budget{CategoryID: 5, Amount: core.Money{Cents: 100000}, PeriodType: core.BudgetAnnual}
	bounds := PeriodBounds{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 12, 31)}
	now := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	txs := []core.Transaction{
		{Type: core.Expense, CategoryID: 5, Date: core.NewDate(2024, 3, 1), Amount: core.Money{Cents: 10000}},
		{Type: core.Expense, CategoryID: 7, Date: core.NewDate(2024, 3, 1), Amount: core.Money{Cents: 99999}},
		{Type: core.Income, CategoryID: 5, Date: core.NewDate(2024, 3, 1), Amount: core.Money{Cents: 99999}},
		{Type: core.Expense, CategoryID: 5, Date: core.NewDate(2023, 12, 31), Amount: core.Money{Cents: 99999}},
		{Type: core.Expense, CategoryID: 5, Date: core.NewDate(2025, 1, 1), Amount: core.Money{Cents: 99999}},
	}

	spending := math.SpendingFor(budget, bounds, txs, now)
	assert.Equal(t, int64(10000), spending.SpentAmount.Cents)
}

func TestBudgetMath_SpendingFor_Pacing(t *testing.T) {
	math := BudgetMath{TolerancePct: 10}
	budget := core.Budget{CategoryID: 5, Amount: core.Money{Cents: 100000}, PeriodType: core.BudgetAnnual}
	bounds := PeriodBounds{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 12, 31)}
	// A quarter into the year: roughly 25% elapsed.
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

	fast := math.SpendingFor(budget, bounds, []core.Transaction{
		{Type: core.Expense, CategoryID: 5, Date: core.NewDate(2024, 2, 1), Amount: core.Money{Cents: 40000}},
	}, now)
	assert.False(t, fast.IsOverBudget)
	assert.True(t, fast.IsSpendingFast, "40 percent spent at 25 percent elapsed exceeds the 10pt tolerance")

	onPace := math.SpendingFor(budget, bounds, []core.Transaction{
		{Type: core.Expense, CategoryID: 5, Date: core.NewDate(2024, 2, 1), Amount: core.Money{Cents: 30000}},
	}, now)
	assert.False(t, onPace.IsSpendingFast, "30 percent spent at 25 percent elapsed is within tolerance")
}

func TestBoundsFor_MonthlyIntersectsPeriod(t *testing.T) {
	period := core.ContractPeriod{StartDate: core.NewDate(2024, 3, 15)}
	budget := core.Budget{PeriodType: core.BudgetMonthly}

	// Mid-period month: full calendar month.
	june := BoundsFor(budget, period, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-06-01", june.Start.String())
	assert.Equal(t, "2024-06-30", june.End.String())

	// The period's first month starts at the contract start, not the 1st.
	march := BoundsFor(budget, period, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-03-15", march.Start.String())
	assert.Equal(t, "2024-03-31", march.End.String())
}

func TestBoundsFor_AnnualOpenPeriodProjectsFullYear(t *testing.T) {
	period := core.ContractPeriod{StartDate: core.NewDate(2024, 3, 15)}
	budget := core.Budget{PeriodType: core.BudgetAnnual}

	bounds := BoundsFor(budget, period, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-03-15", bounds.Start.String())
	assert.Equal(t, "2025-03-14", bounds.End.String())
}

func TestBudgets_SpendingForProject(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	project := seedProject(t, st, core.NewDate(2024, 1, 1))

	periods := NewPeriods(st, nil).WithClock(fixedClock(2024, 7, 1))
	budgets := NewBudgets(st, periods, 10).WithClock(fixedClock(2024, 7, 1))

	_, err := budgets.Create(ctx, core.Budget{
		ProjectID:  project.ID,
		CategoryID: 5,
		Amount:     core.Money{Cents: 100000},
		PeriodType: core.BudgetAnnual,
	})
	require.NoError(t, err)

	seedTransaction(t, st, core.Transaction{
		ProjectID:  project.ID,
		Date:       core.NewDate(2024, 2, 1),
		Type:       core.Expense,
		Amount:     core.Money{Cents: 100000},
		CategoryID: 5,
	})

	spendings, err := budgets.SpendingForProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, spendings, 1)
	assert.True(t, spendings[0].IsOverBudget)
	assert.Equal(t, 100.0, spendings[0].SpentPct)
}

func TestBudgets_Create_Validates(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	project := seedProject(t, st, core.NewDate(2024, 1, 1))

	periods := NewPeriods(st, nil)
	budgets := NewBudgets(st, periods, 10)

	_, err := budgets.Create(ctx, core.Budget{
		ProjectID:  project.ID,
		CategoryID: 0,
		Amount:     core.Money{Cents: 1000},
		PeriodType: core.BudgetAnnual,
	})
	assert.True(t, core.IsValidation(err))

	_, err = budgets.Create(ctx, core.Budget{
		ProjectID:  99,
		CategoryID: 5,
		Amount:     core.Money{Cents: 1000},
		PeriodType: core.BudgetAnnual,
	})
	assert.True(t, core.IsNotFound(err))
}
