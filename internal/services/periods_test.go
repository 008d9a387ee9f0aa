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

func fixedClock(year, month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
	}
}

func seedTransaction(t *testing.T, st *memory.Store, tx core.Transaction) core.Transaction {
	t.Helper()
	created, err := st.CreateTransaction(context.Background(), tx)
	require.NoError(t, err)
	return created
}

func TestPeriods_Current_CreatesInitialPeriod(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	project := seedProject(t, st, core.NewDate(2024, 3, 15))

	periods := NewPeriods(st, nil)

	period, err := periods.Current(ctx, project.ID)
	require.NoError(t, err)
	require.NotNil(t, period)
	assert.Equal(t, "2024-03-15", period.StartDate.String())
	assert.True(t, period.IsOpen())

	again, err := periods.Current(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, period.ID, again.ID, "second call reuses the open period")
}

func TestPeriods_Current_NilWithoutStartDate(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	project, err := st.CreateProject(ctx, core.Project{Name: "No start", Active: true})
	require.NoError(t, err)

	period, err := NewPeriods(st, nil).Current(ctx, project.ID)
	require.NoError(t, err)
	assert.Nil(t, period)
}

func TestPeriods_CloseYear_SplitsTotals(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	project := seedProject(t, st, core.NewDate(2024, 1, 1))

	seedTransaction(t, st, core.Transaction{
		ProjectID: project.ID,
		Date:      core.NewDate(2024, 6, 1),
		Type:      core.Income,
		Amount:    core.Money{Cents: 120000},
	})
	seedTransaction(t, st, core.Transaction{
		ProjectID: project.ID,
		Date:      core.NewDate(2024, 8, 10),
		Type:      core.Expense,
		Amount:    core.Money{Cents: 45000},
	})
	seedTransaction(t, st, core.Transaction{
		ProjectID: project.ID,
		Date:      core.NewDate(2025, 1, 5),
		Type:      core.Expense,
		Amount:    core.Money{Cents: 30000},
	})

	periods := NewPeriods(st, nil).WithClock(fixedClock(2025, 2, 1))

	next, err := periods.CloseYear(ctx, project.ID, core.NewDate(2024, 12, 31))
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", next.StartDate.String())

	summaries, err := periods.ByYear(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	first, second := summaries[0], summaries[1]
	assert.Equal(t, "2024", first.Label)
	assert.Equal(t, "2024-12-31", first.Period.EndDate.String())
	assert.Equal(t, int64(120000), first.Totals.Income.Cents)
	assert.Equal(t, int64(45000), first.Totals.Expense.Cents)
	assert.Equal(t, int64(75000), first.Totals.Profit.Cents)

	assert.True(t, second.Period.IsOpen())
	assert.Equal(t, int64(0), second.Totals.Income.Cents)
	assert.Equal(t, int64(30000), second.Totals.Expense.Cents, "january expense belongs to the new period only")
	assert.Equal(t, int64(-30000), second.Totals.Profit.Cents)
}

func TestPeriods_CloseYear_RejectsEndBeforeStart(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	project := seedProject(t, st, core.NewDate(2024, 6, 1))

	_, err := NewPeriods(st, nil).CloseYear(ctx, project.ID, core.NewDate(2024, 5, 1))
	assert.True(t, core.IsConstraint(err))
}

func TestPeriods_CheckAndRenew(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	project := seedProject(t, st, core.NewDate(2024, 3, 15))

	periods := NewPeriods(st, nil).WithClock(fixedClock(2026, 4, 1))

	renewed, err := periods.CheckAndRenew(ctx, project.ID)
	require.NoError(t, err)
	assert.True(t, renewed)

	all, err := st.ListPeriods(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, all, 3, "two elapsed anniversaries roll over one period each")
	assert.Equal(t, "2025-03-14", all[0].EndDate.String())
	assert.Equal(t, "2025-03-15", all[1].StartDate.String())
	assert.Equal(t, "2026-03-14", all[1].EndDate.String())
	assert.Equal(t, "2026-03-15", all[2].StartDate.String())
	assert.True(t, all[2].IsOpen())
}

func TestPeriods_CheckAndRenew_BeforeAnniversary(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	project := seedProject(t, st, core.NewDate(2024, 3, 15))

	periods := NewPeriods(st, nil).WithClock(fixedClock(2025, 3, 14))

	renewed, err := periods.CheckAndRenew(ctx, project.ID)
	require.NoError(t, err)
	assert.False(t, renewed)

	all, err := st.ListPeriods(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
