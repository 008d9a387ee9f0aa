// Package worker runs the periodic background duties: recurring
// transaction backfill, contract period renewal and the optional
// spreadsheet report.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"fondi/internal/export"
	"fondi/internal/services"
	"fondi/internal/store"
)

// renewalConcurrency bounds parallel per-project renewal checks.
const renewalConcurrency = 4

type Worker struct {
	store    store.Store
	backfill *services.Backfill
	periods  *services.Periods
	reporter *export.Reporter
	interval time.Duration
	clock    func() time.Time
}

// New builds a worker. reporter may be nil when no export is configured.
func New(st store.Store, backfill *services.Backfill, periods *services.Periods, reporter *export.Reporter, interval time.Duration) *Worker {
	return &Worker{
		store:    st,
		backfill: backfill,
		periods:  periods,
		reporter: reporter,
		interval: interval,
		clock:    time.Now,
	}
}

// WithClock overrides the time source, used by tests.
func (w *Worker) WithClock(clock func() time.Time) *Worker {
	w.clock = clock
	return w
}

// Run executes one pass immediately, then once per interval until the
// context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.RunOnce(ctx); err != nil {
		slog.ErrorContext(ctx, "Worker pass failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Worker stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "Worker pass failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single pass: renew elapsed contract periods, backfill
// generated transactions, then refresh the period report.
func (w *Worker) RunOnce(ctx context.Context) error {
	start := w.clock()

	renewals, err := w.renewAll(ctx)
	if err != nil {
		return fmt.Errorf("renew periods: %w", err)
	}

	result, err := w.backfill.Run(ctx, w.clock())
	if err != nil {
		return fmt.Errorf("backfill: %w", err)
	}

	exported := 0
	if w.reporter != nil {
		exported, err = w.reporter.Run(ctx)
		if err != nil {
			return fmt.Errorf("export report: %w", err)
		}
	}

	slog.InfoContext(ctx, "Worker pass completed",
		"renewed_projects", renewals,
		"months_processed", result.MonthsProcessed,
		"generated", result.Generated,
		"generation_errors", len(result.Errors),
		"exported_rows", exported,
		"duration", time.Since(start).Round(time.Millisecond))

	return nil
}

// renewAll checks every project for an elapsed contract year, a bounded
// number at a time, and returns how many projects rolled over.
func (w *Worker) renewAll(ctx context.Context) (int, error) {
	projects, err := w.store.ListProjects(ctx)
	if err != nil {
		return 0, fmt.Errorf("list projects: %w", err)
	}

	renewed := make([]bool, len(projects))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(renewalConcurrency)

	for i, project := range projects {
		g.Go(func() error {
			ok, err := w.periods.CheckAndRenew(ctx, project.ID)
			if err != nil {
				return fmt.Errorf("project %d: %w", project.ID, err)
			}
			renewed[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	count := 0
	for _, ok := range renewed {
		if ok {
			count++
		}
	}
	return count, nil
}
