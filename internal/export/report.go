package export

import (
	"context"
	"fmt"

	"fondi/internal/services"
	"fondi/internal/store"
)

// Reporter assembles the period report across all projects and hands it
// to the configured writer.
type Reporter struct {
	store   store.Store
	periods *services.Periods
	writer  PeriodWriter
}

func NewReporter(st store.Store, periods *services.Periods, writer PeriodWriter) *Reporter {
	return &Reporter{store: st, periods: periods, writer: writer}
}

// Run builds one row per contract period of every project and writes the
// report. Projects without a contract start contribute no rows.
func (r *Reporter) Run(ctx context.Context) (int, error) {
	projects, err := r.store.ListProjects(ctx)
	if err != nil {
		return 0, fmt.Errorf("list projects: %w", err)
	}

	var rows []ReportRow
	for _, project := range projects {
		summaries, err := r.periods.ByYear(ctx, project.ID)
		if err != nil {
			return 0, fmt.Errorf("periods for project %d: %w", project.ID, err)
		}
		for _, summary := range summaries {
			row := ReportRow{
				ProjectName: project.Name,
				PeriodLabel: summary.Label,
				StartDate:   summary.Period.StartDate.String(),
				Income:      centsToEuros(summary.Totals.Income.Cents),
				Expense:     centsToEuros(summary.Totals.Expense.Cents),
				Profit:      centsToEuros(summary.Totals.Profit.Cents),
			}
			if !summary.Period.EndDate.IsZero() {
				row.EndDate = summary.Period.EndDate.String()
			}
			rows = append(rows, row)
		}
	}

	if err := r.writer.WritePeriodReport(ctx, rows); err != nil {
		return 0, fmt.Errorf("write period report: %w", err)
	}
	return len(rows), nil
}

func centsToEuros(cents int64) float64 {
	return float64(cents) / 100.0
}
