package core

import "strings"

const (
	EndNone             EndType = "none"
	EndAfterOccurrences EndType = "after_occurrences"
	EndOnDate           EndType = "on_date"
)

// EndType selects how a recurring template stops generating.
type EndType string

func (e EndType) IsValid() bool {
	switch e {
	case EndNone, EndAfterOccurrences, EndOnDate:
		return true
	default:
		return false
	}
}

// RecurringTemplate is a blueprint that spawns one generated Transaction
// per eligible calendar month. Edits apply only to transactions generated
// after the edit; already-generated instances keep the values copied at
// generation time.
type RecurringTemplate struct {
	ID             int64
	ProjectID      int64
	Description    string
	Type           TransactionType
	Amount         Money
	CategoryID     int64
	SupplierID     int64
	DayOfMonth     int
	StartDate      Date
	EndType        EndType
	EndDate        Date
	MaxOccurrences int
	Active         bool
}

// Validate checks template input against the owning project's contract
// start date, reporting the first violated rule.
func (t RecurringTemplate) Validate(contractStart Date) error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return &ValidationError{Field: "description", Reason: "description is required"}
	}
	if len(t.Description) > 200 {
		return &ValidationError{Field: "description", Reason: "description too long (max 200 characters)"}
	}
	if !t.Type.IsValid() {
		return &ValidationError{Field: "type", Reason: "type must be income or expense"}
	}
	if t.Amount.Cents <= 0 {
		return &ValidationError{Field: "amount", Reason: "amount must be positive"}
	}
	if t.DayOfMonth < 1 || t.DayOfMonth > 31 {
		return &ValidationError{Field: "day_of_month", Reason: "day of month must be between 1 and 31"}
	}
	if t.Type == Expense && t.SupplierID == 0 {
		return &ValidationError{Field: "supplier_id", Reason: "supplier is required for expense templates"}
	}
	if t.StartDate.IsZero() {
		return &ValidationError{Field: "start_date", Reason: "start date is required"}
	}
	switch t.EndType {
	case EndNone:
	case EndOnDate:
		if t.EndDate.IsZero() {
			return &ValidationError{Field: "end_date", Reason: "end date is required for on_date templates"}
		}
		if t.EndDate.Before(t.StartDate) {
			return &ValidationError{Field: "end_date", Reason: "end date must not precede start date"}
		}
	case EndAfterOccurrences:
		if t.MaxOccurrences < 1 {
			return &ValidationError{Field: "max_occurrences", Reason: "max occurrences must be at least 1"}
		}
	default:
		return &ValidationError{Field: "end_type", Reason: "unknown end condition"}
	}
	if !contractStart.IsZero() && t.StartDate.Before(contractStart) {
		return &ValidationError{Field: "start_date", Reason: "start date must not precede the project contract start"}
	}
	return nil
}

// EligibleForMonth reports whether the template may generate for the
// given calendar month. generatedCount is the number of instances the
// template has produced so far, used for after_occurrences templates.
func (t RecurringTemplate) EligibleForMonth(year, month, generatedCount int) bool {
	if !t.Active {
		return false
	}
	// Started after the month under generation?
	if t.StartDate.Year() > year ||
		(t.StartDate.Year() == year && t.StartDate.Month() > month) {
		return false
	}
	switch t.EndType {
	case EndOnDate:
		if t.EndDate.Year() < year ||
			(t.EndDate.Year() == year && t.EndDate.Month() < month) {
			return false
		}
	case EndAfterOccurrences:
		if generatedCount >= t.MaxOccurrences {
			return false
		}
	}
	return true
}

// TargetDate computes the generation date for the given month, clamping
// the configured day to the month's last valid day (day 31 in February
// yields the 28th, or the 29th in a leap year).
func (t RecurringTemplate) TargetDate(year, month int) Date {
	day := t.DayOfMonth
	if last := LastDayOfMonth(year, month); day > last {
		day = last
	}
	return NewDate(year, month, day)
}

// Materialize builds the transaction a generation run creates for the
// given month, copying amount, category and supplier from the template
// as they stand now.
func (t RecurringTemplate) Materialize(year, month int) Transaction {
	return Transaction{
		ProjectID:  t.ProjectID,
		Date:       t.TargetDate(year, month),
		Type:       t.Type,
		Amount:     t.Amount,
		CategoryID: t.CategoryID,
		SupplierID: t.SupplierID,
		Notes:      t.Description,
		Generated:  true,
		TemplateID: t.ID,
	}
}
