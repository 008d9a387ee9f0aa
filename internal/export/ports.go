// Package export renders contract-period reports and writes them to an
// external spreadsheet. The writer is an interface so the worker can run
// with an in-memory sink when no spreadsheet is configured.
package export

import "context"

// ReportRow is one contract period of one project, amounts in euros.
type ReportRow struct {
	ProjectName string
	PeriodLabel string
	StartDate   string
	EndDate     string
	Income      float64
	Expense     float64
	Profit      float64
}

// PeriodWriter persists a full period report, replacing any previous one.
type PeriodWriter interface {
	WritePeriodReport(ctx context.Context, rows []ReportRow) error
}
