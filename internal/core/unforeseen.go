package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	UnforeseenDraft    UnforeseenStatus = "draft"
	UnforeseenWaiting  UnforeseenStatus = "waiting_for_approval"
	UnforeseenExecuted UnforeseenStatus = "executed"
)

// UnforeseenStatus is the approval state of an ad-hoc transaction bundle.
// Records move draft -> waiting_for_approval -> executed; execution is
// terminal and produces a regular Transaction.
type UnforeseenStatus string

func (s UnforeseenStatus) IsValid() bool {
	switch s {
	case UnforeseenDraft, UnforeseenWaiting, UnforeseenExecuted:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether moving to next is a legal step.
// Skipping approval (draft -> executed) is rejected.
func (s UnforeseenStatus) CanTransitionTo(next UnforeseenStatus) bool {
	switch s {
	case UnforeseenDraft:
		return next == UnforeseenWaiting
	case UnforeseenWaiting:
		return next == UnforeseenExecuted
	default:
		return false
	}
}

// UnforeseenExpenseLine is one expense item inside an unforeseen bundle.
type UnforeseenExpenseLine struct {
	Amount      decimal.Decimal
	Description string
	DocumentRef string
}

// UnforeseenTransaction is an ad-hoc income/expense bundle with its own
// approval workflow, distinct from recurring and regular transactions.
type UnforeseenTransaction struct {
	ID               int64
	ProjectID        int64
	ContractPeriodID int64
	Income           decimal.Decimal
	Expenses         []UnforeseenExpenseLine
	Status           UnforeseenStatus
	Date             Date
	TransactionID    int64
}

// ProfitLoss returns income minus the sum of expense lines, rounded to
// two decimal places half away from zero.
func (u UnforeseenTransaction) ProfitLoss() decimal.Decimal {
	total := u.Income
	for _, line := range u.Expenses {
		total = total.Sub(line.Amount)
	}
	return total.Round(2)
}

func (u UnforeseenTransaction) Validate() error {
	if u.ProjectID == 0 {
		return &ValidationError{Field: "project_id", Reason: "project is required"}
	}
	if u.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "transaction date is required"}
	}
	if u.Income.IsNegative() {
		return &ValidationError{Field: "income", Reason: "income must not be negative"}
	}
	for _, line := range u.Expenses {
		if line.Amount.IsNegative() {
			return &ValidationError{Field: "expenses", Reason: "expense amounts must not be negative"}
		}
		if len(strings.TrimSpace(line.Description)) == 0 {
			return &ValidationError{Field: "expenses", Reason: "expense lines need a description"}
		}
	}
	return nil
}

// ResultTransaction builds the regular Transaction produced when the
// bundle is executed. A positive profit/loss becomes an income movement,
// a negative one an expense; amounts are stored non-negative.
func (u UnforeseenTransaction) ResultTransaction() Transaction {
	pl := u.ProfitLoss()
	txType := Income
	if pl.IsNegative() {
		txType = Expense
	}
	cents := pl.Abs().Shift(2).IntPart()
	return Transaction{
		ProjectID: u.ProjectID,
		Date:      u.Date,
		Type:      txType,
		Amount:    Money{Cents: cents},
		Notes:     "unforeseen settlement",
	}
}
