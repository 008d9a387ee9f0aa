package export

import (
	"context"
	"errors"
	"fmt"
	"os"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fondi/internal/config"
)

// SheetsWriter writes the period report to one sheet of a Google
// spreadsheet, replacing the previous content on every run.
type SheetsWriter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ PeriodWriter = (*SheetsWriter)(nil)

// NewSheetsWriter builds a Sheets client from service-account credentials,
// either inline JSON or a file path.
func NewSheetsWriter(ctx context.Context, cfg *config.Config) (*SheetsWriter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	var credentials []byte
	switch {
	case cfg.GoogleCredentialsJSON != "":
		credentials = []byte(cfg.GoogleCredentialsJSON)
	case cfg.GoogleCredentialsFile != "":
		raw, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentials = raw
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsWriter{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleSheetName,
	}, nil
}

func (w *SheetsWriter) WritePeriodReport(ctx context.Context, rows []ReportRow) error {
	clearRange := fmt.Sprintf("%s!A:G", w.sheetName)
	if _, err := w.svc.Spreadsheets.Values.Clear(w.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	values := make([][]any, 0, len(rows)+1)
	values = append(values, []any{"Project", "Period", "Start", "End", "Income", "Expense", "Profit"})
	for _, row := range rows {
		values = append(values, []any{
			row.ProjectName,
			row.PeriodLabel,
			row.StartDate,
			row.EndDate,
			row.Income,
			row.Expense,
			row.Profit,
		})
	}

	writeRange := fmt.Sprintf("%s!A1:G%d", w.sheetName, len(values))
	vr := &gsheet.ValueRange{Values: values}
	if _, err := w.svc.Spreadsheets.Values.Update(w.spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s: %w", writeRange, err)
	}
	return nil
}
