package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fondi/internal/core"
	"fondi/internal/store/memory"
)

func seedProject(t *testing.T, st *memory.Store, contractStart core.Date) core.Project {
	t.Helper()
	project, err := st.CreateProject(context.Background(), core.Project{
		Name:          "Via Roma 12",
		ContractStart: contractStart,
		Active:        true,
	})
	require.NoError(t, err)
	return project
}

func seedTemplate(t *testing.T, st *memory.Store, tpl core.RecurringTemplate) core.RecurringTemplate {
	t.Helper()
	created, err := st.CreateTemplate(context.Background(), tpl)
	require.NoError(t, err)
	return created
}

func TestGenerator_GenerateForMonth_Idempotent(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	project := seedProject(t, st, core.NewDate(2024, 1, 1))
	seedTemplate(t, st, core.RecurringTemplate{
		ProjectID:   project.ID,
		Description: "Cleaning service",
		Type:        core.Expense,
		Amount:      core.Money{Cents: 25000},
		SupplierID:  1,
		CategoryID:  2,
		DayOfMonth:  5,
		StartDate:   core.NewDate(2024, 1, 1),
		EndType:     core.EndNone,
		Active:      true,
	})

	gen := NewGenerator(st, nil)

	first, err := gen.GenerateForMonth(ctx, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, first.GeneratedCount)
	assert.Empty(t, first.Errors)

	second, err := gen.GenerateForMonth(ctx, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, second.GeneratedCount, "re-invocation must not duplicate")

	txs, err := st.ListProjectTransactions(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Generated)
	assert.Equal(t, "2024-03-05", txs[0].Date.String())
}

func TestGenerator_GenerateForMonth_ClampsDayOfMonth(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	project := seedProject(t, st, core.NewDate(2023, 1, 1))
	seedTemplate(t, st, core.RecurringTemplate{
		ProjectID:   project.ID,
		Description: "Insurance premium",
		Type:        core.Expense,
		Amount:      core.Money{Cents: 9900},
		SupplierID:  1,
		DayOfMonth:  31,
		StartDate:   core.NewDate(2023, 1, 1),
		EndType:     core.EndNone,
		Active:      true,
	})

	gen := NewGenerator(st, nil)

	leap, err := gen.GenerateForMonth(ctx, 2024, 2)
	require.NoError(t, err)
	require.Equal(t, 1, leap.GeneratedCount)
	assert.Equal(t, "2024-02-29", leap.Transactions[0].Date.String())

	nonLeap, err := gen.GenerateForMonth(ctx, 2023, 2)
	require.NoError(t, err)
	require.Equal(t, 1, nonLeap.GeneratedCount)
	assert.Equal(t, "2023-02-28", nonLeap.Transactions[0].Date.String())
}

func TestGenerator_GenerateForMonth_AfterOccurrences(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	project := seedProject(t, st, core.NewDate(2024, 1, 1))
	tpl := seedTemplate(t, st, core.RecurringTemplate{
		ProjectID:      project.ID,
		Description:    "Installment",
		Type:           core.Expense,
		Amount:         core.Money{Cents: 50000},
		SupplierID:     3,
		DayOfMonth:     1,
		StartDate:      core.NewDate(2024, 1, 1),
		EndType:        core.EndAfterOccurrences,
		MaxOccurrences: 3,
		Active:         true,
	})

	gen := NewGenerator(st, nil)

	// Any sequence of month calls yields exactly MaxOccurrences instances.
	months := []struct{ year, month int }{
		{2024, 1}, {2024, 2}, {2024, 3}, {2024, 4}, {2024, 7}, {2025, 1},
	}
	total := 0
	for _, m := range months {
		result, err := gen.GenerateForMonth(ctx, m.year, m.month)
		require.NoError(t, err)
		total += result.GeneratedCount
	}
	assert.Equal(t, 3, total)

	count, err := st.CountGenerated(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestGenerator_GenerateForMonth_EndOnDate(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	project := seedProject(t, st, core.NewDate(2024, 1, 1))
	seedTemplate(t, st, core.RecurringTemplate{
		ProjectID:   project.ID,
		Description: "Seasonal contract",
		Type:        core.Income,
		Amount:      core.Money{Cents: 80000},
		DayOfMonth:  10,
		StartDate:   core.NewDate(2024, 1, 1),
		EndType:     core.EndOnDate,
		EndDate:     core.NewDate(2024, 3, 15),
		Active:      true,
	})

	gen := NewGenerator(st, nil)

	inRange, err := gen.GenerateForMonth(ctx, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, inRange.GeneratedCount, "end month itself is included")

	past, err := gen.GenerateForMonth(ctx, 2024, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, past.GeneratedCount, "months past the end date are excluded")
}

func TestGenerator_GenerateForMonth_SkipsInactiveAndFuture(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	project := seedProject(t, st, core.NewDate(2024, 1, 1))
	seedTemplate(t, st, core.RecurringTemplate{
		ProjectID:   project.ID,
		Description: "Dormant",
		Type:        core.Expense,
		Amount:      core.Money{Cents: 100},
		SupplierID:  1,
		DayOfMonth:  1,
		StartDate:   core.NewDate(2024, 1, 1),
		EndType:     core.EndNone,
		Active:      false,
	})
	seedTemplate(t, st, core.RecurringTemplate{
		ProjectID:   project.ID,
		Description: "Starts later",
		Type:        core.Expense,
		Amount:      core.Money{Cents: 200},
		SupplierID:  1,
		DayOfMonth:  1,
		StartDate:   core.NewDate(2024, 6, 1),
		EndType:     core.EndNone,
		Active:      true,
	})

	gen := NewGenerator(st, nil)

	result, err := gen.GenerateForMonth(ctx, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, result.GeneratedCount)
}

func TestGenerator_GenerateForMonth_RejectsBadMonth(t *testing.T) {
	gen := NewGenerator(memory.New(), nil)

	_, err := gen.GenerateForMonth(context.Background(), 2024, 13)
	assert.True(t, core.IsValidation(err))
}
