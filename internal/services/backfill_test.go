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

func TestBackfill_Run(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	project := seedProject(t, st, core.NewDate(2024, 1, 1))
	seedTemplate(t, st, core.RecurringTemplate{
		ProjectID:   project.ID,
		Description: "Rent",
		Type:        core.Income,
		Amount:      core.Money{Cents: 95000},
		DayOfMonth:  1,
		StartDate:   core.NewDate(2024, 1, 1),
		EndType:     core.EndNone,
		Active:      true,
	})

	gen := NewGenerator(st, nil)
	backfill := NewBackfill(st, gen, 0)

	now := time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)
	result, err := backfill.Run(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 4, result.MonthsProcessed, "january through april")
	assert.Equal(t, 4, result.Generated)
	assert.Empty(t, result.Errors)

	// Re-running produces nothing new.
	again, err := backfill.Run(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 4, again.MonthsProcessed)
	assert.Equal(t, 0, again.Generated)
}

func TestBackfill_Run_LookAhead(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	project := seedProject(t, st, core.NewDate(2024, 1, 1))
	seedTemplate(t, st, core.RecurringTemplate{
		ProjectID:   project.ID,
		Description: "Rent",
		Type:        core.Income,
		Amount:      core.Money{Cents: 95000},
		DayOfMonth:  1,
		StartDate:   core.NewDate(2024, 11, 1),
		EndType:     core.EndNone,
		Active:      true,
	})

	gen := NewGenerator(st, nil)
	backfill := NewBackfill(st, gen, 3)

	// Look-ahead crosses the year boundary: nov, dec, jan, feb.
	now := time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)
	result, err := backfill.Run(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Generated)

	txs, err := st.ListProjectTransactions(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, txs, 4)
	assert.Equal(t, "2025-02-01", txs[3].Date.String())
}

func TestBackfill_Run_NoActiveTemplates(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	backfill := NewBackfill(st, NewGenerator(st, nil), 2)

	result, err := backfill.Run(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, result.MonthsProcessed)
}
