package export

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fondi/internal/core"
	"fondi/internal/services"
	"fondi/internal/store/memory"
)

func TestReporter_Run_OneRowPerPeriod(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	project, err := st.CreateProject(ctx, core.Project{
		Name:          "Via Roma 12",
		ContractStart: core.NewDate(2024, 3, 15),
		Active:        true,
	})
	require.NoError(t, err)

	// Second project without a contract start contributes no rows.
	_, err = st.CreateProject(ctx, core.Project{Name: "Via Milano 4", Active: true})
	require.NoError(t, err)

	periods := services.NewPeriods(st, nil).WithClock(func() time.Time {
		return time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	})

	_, err = st.CreateTransaction(ctx, core.Transaction{
		ProjectID: project.ID,
		Date:      core.NewDate(2024, 5, 1),
		Type:      core.Income,
		Amount:    core.Money{Cents: 80000},
	})
	require.NoError(t, err)
	_, err = st.CreateTransaction(ctx, core.Transaction{
		ProjectID: project.ID,
		Date:      core.NewDate(2024, 6, 1),
		Type:      core.Expense,
		Amount:    core.Money{Cents: 12550},
	})
	require.NoError(t, err)

	writer := NewMemoryWriter()
	count, err := NewReporter(st, periods, writer).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	rows := writer.LastReport()
	require.Len(t, rows, 1)
	assert.Equal(t, "Via Roma 12", rows[0].ProjectName)
	assert.Equal(t, "2024/2025", rows[0].PeriodLabel)
	assert.Equal(t, "2024-03-15", rows[0].StartDate)
	assert.Empty(t, rows[0].EndDate, "open period has no end date")
	assert.Equal(t, 800.0, rows[0].Income)
	assert.Equal(t, 125.50, rows[0].Expense)
	assert.Equal(t, 674.50, rows[0].Profit)
}

func TestReporter_Run_ClosedAndOpenPeriods(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	project, err := st.CreateProject(ctx, core.Project{
		Name:          "Via Roma 12",
		ContractStart: core.NewDate(2024, 1, 1),
		Active:        true,
	})
	require.NoError(t, err)

	periods := services.NewPeriods(st, nil).WithClock(func() time.Time {
		return time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	})

	_, err = periods.CloseYear(ctx, project.ID, core.NewDate(2024, 12, 31))
	require.NoError(t, err)

	writer := NewMemoryWriter()
	count, err := NewReporter(st, periods, writer).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rows := writer.LastReport()
	require.Len(t, rows, 2)
	assert.Equal(t, "2024", rows[0].PeriodLabel)
	assert.Equal(t, "2024-12-31", rows[0].EndDate)
	assert.Equal(t, "2025/2026", rows[1].PeriodLabel)
	assert.Empty(t, rows[1].EndDate)
}
