package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fondi/internal/core"
	"fondi/internal/store"
)

// Backfill orchestrates multi-month generation: one GenerateForMonth
// call per elapsed month from the earliest active template start through
// the current month plus a configurable look-ahead. The per-month call
// stays atomic and idempotent, so re-running a backfill is always safe.
type Backfill struct {
	store     store.Store
	generator *Generator
	lookAhead int
}

func NewBackfill(st store.Store, gen *Generator, lookAheadMonths int) *Backfill {
	if lookAheadMonths < 0 {
		lookAheadMonths = 0
	}
	return &Backfill{store: st, generator: gen, lookAhead: lookAheadMonths}
}

// BackfillResult summarizes a backfill run.
type BackfillResult struct {
	MonthsProcessed int
	Generated       int
	Errors          []TemplateError
}

// Run generates every month from the earliest active template start
// month through now plus the look-ahead window.
func (b *Backfill) Run(ctx context.Context, now time.Time) (BackfillResult, error) {
	var result BackfillResult

	templates, err := b.store.ListActiveTemplates(ctx)
	if err != nil {
		return result, fmt.Errorf("list active templates: %w", err)
	}
	if len(templates) == 0 {
		return result, nil
	}

	start := earliestStart(templates)
	year, month := start.Year(), start.Month()
	endYear, endMonth := monthsAhead(now, b.lookAhead)

	slog.InfoContext(ctx, "Backfill started",
		"from", fmt.Sprintf("%04d-%02d", year, month),
		"through", fmt.Sprintf("%04d-%02d", endYear, endMonth),
		"templates", len(templates))

	for !afterMonth(year, month, endYear, endMonth) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		monthResult, err := b.generator.GenerateForMonth(ctx, year, month)
		if err != nil {
			return result, fmt.Errorf("generate %04d-%02d: %w", year, month, err)
		}
		result.MonthsProcessed++
		result.Generated += monthResult.GeneratedCount
		result.Errors = append(result.Errors, monthResult.Errors...)

		year, month = nextMonth(year, month)
	}

	slog.InfoContext(ctx, "Backfill complete",
		"months", result.MonthsProcessed,
		"generated", result.Generated,
		"errors", len(result.Errors))

	return result, nil
}

func earliestStart(templates []core.RecurringTemplate) core.Date {
	earliest := templates[0].StartDate
	for _, tpl := range templates[1:] {
		if tpl.StartDate.Before(earliest) {
			earliest = tpl.StartDate
		}
	}
	return earliest
}

func monthsAhead(now time.Time, months int) (year, month int) {
	year, month = now.Year(), int(now.Month())
	month += months
	for month > 12 {
		month -= 12
		year++
	}
	return year, month
}

func nextMonth(year, month int) (int, int) {
	month++
	if month > 12 {
		return year + 1, 1
	}
	return year, month
}

func afterMonth(year, month, refYear, refMonth int) bool {
	return year > refYear || (year == refYear && month > refMonth)
}
