package core

import (
	"fmt"
	"time"
)

// ContractPeriod is one contiguous "year" of a project's financial life.
// Periods never overlap and at most one per project is open (zero end
// date). Closing a period opens the next one the following day.
type ContractPeriod struct {
	ID        int64
	ProjectID int64
	StartDate Date
	EndDate   Date
	YearIndex int
}

// IsOpen reports whether the period is the project's current one.
func (p ContractPeriod) IsOpen() bool {
	return p.EndDate.IsZero()
}

// Label derives the display label from the period bounds, e.g. "2024"
// for a period within one calendar year or "2024/2025" when it spans two.
func (p ContractPeriod) Label() string {
	endYear := p.StartDate.Year() + 1
	if !p.EndDate.IsZero() {
		endYear = p.EndDate.Year()
	}
	if endYear == p.StartDate.Year() {
		return fmt.Sprintf("%d", p.StartDate.Year())
	}
	return fmt.Sprintf("%d/%d", p.StartDate.Year(), endYear)
}

// Bounds returns the effective date range of the period. Open periods
// run through now.
func (p ContractPeriod) Bounds(now time.Time) (Date, Date) {
	end := p.EndDate
	if end.IsZero() {
		end = Date{Time: now.UTC().Truncate(24 * time.Hour)}
	}
	return p.StartDate, end
}

// Contains reports whether the date falls within the period, treating an
// open period as running through now.
func (p ContractPeriod) Contains(d Date, now time.Time) bool {
	start, end := p.Bounds(now)
	return !d.Before(start) && !d.After(end)
}

// Anniversary returns the start of the period shifted by one year, the
// boundary at which automatic renewal closes the period.
func (p ContractPeriod) Anniversary() Date {
	return Date{Time: p.StartDate.AddDate(1, 0, 0)}
}

// PeriodTotals aggregates the transactions dated within a period.
type PeriodTotals struct {
	Income  Money
	Expense Money
	Profit  Money
}

// TotalsFor sums the given transactions over the period bounds.
func (p ContractPeriod) TotalsFor(txs []Transaction, now time.Time) PeriodTotals {
	var totals PeriodTotals
	for _, tx := range txs {
		if !p.Contains(tx.Date, now) {
			continue
		}
		switch tx.Type {
		case Income:
			totals.Income.Cents += tx.Amount.Cents
		case Expense:
			totals.Expense.Cents += tx.Amount.Cents
		}
	}
	totals.Profit.Cents = totals.Income.Cents - totals.Expense.Cents
	return totals
}
