package export

import (
	"context"
	"sync"
)

// MemoryWriter keeps the last written report in memory. It backs tests
// and worker runs without a configured spreadsheet.
type MemoryWriter struct {
	mu   sync.Mutex
	last []ReportRow
}

var _ PeriodWriter = (*MemoryWriter)(nil)

func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{}
}

func (w *MemoryWriter) WritePeriodReport(_ context.Context, rows []ReportRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = append([]ReportRow(nil), rows...)
	return nil
}

// LastReport returns a copy of the most recently written report.
func (w *MemoryWriter) LastReport() []ReportRow {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]ReportRow(nil), w.last...)
}
