package core

import (
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Project is a managed property (building) with its own contract
	// periods, budgets and fund balance.
	Project struct {
		ID            int64
		Name          string
		ContractStart Date
		Active        bool
	}

	Supplier struct {
		ID   int64
		Name string
	}

	Category struct {
		ID   int64
		Name string
	}

	// Transaction is a single income or expense movement on a project.
	// Amount is always non-negative; the sign is implied by Type.
	// Generated transactions carry the template that produced them and
	// are unique per (template, calendar year, calendar month).
	Transaction struct {
		ID         int64
		ProjectID  int64
		Date       Date
		Type       TransactionType
		Amount     Money
		CategoryID int64
		SupplierID int64
		Notes      string
		Generated  bool
		TemplateID int64
		ReceiptRef string
	}
)

// IsValid reports whether the transaction type is one of the known values.
func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty returns true if the date is zero (optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d falls strictly after other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// AddDays returns the date shifted by the given number of days.
func (d Date) AddDays(days int) Date {
	return Date{Time: d.Time.AddDate(0, 0, days)}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Time.Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// LastDayOfMonth returns the number of days in the given month.
func LastDayOfMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Signed returns the amount in cents with the sign implied by the
// transaction type: positive for income, negative for expense.
func (t Transaction) Signed() int64 {
	if t.Type == Expense {
		return -t.Amount.Cents
	}
	return t.Amount.Cents
}

// HasReceipt reports whether a receipt document is attached.
func (t Transaction) HasReceipt() bool {
	return strings.TrimSpace(t.ReceiptRef) != ""
}

func (t Transaction) Validate() error {
	if t.ProjectID == 0 {
		return &ValidationError{Field: "project_id", Reason: "project is required"}
	}
	if t.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "date is required"}
	}
	if !t.Type.IsValid() {
		return &ValidationError{Field: "type", Reason: "type must be income or expense"}
	}
	if err := t.Amount.Validate(); err != nil {
		return &ValidationError{Field: "amount", Reason: "amount must be positive"}
	}
	return nil
}
