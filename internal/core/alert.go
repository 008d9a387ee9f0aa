package core

const (
	AlertBudgetOverrun   AlertKind = "budget_overrun"
	AlertBudgetWarning   AlertKind = "budget_warning"
	AlertMissingProof    AlertKind = "missing_proof"
	AlertUnpaidRecurring AlertKind = "unpaid_recurring"
	AlertNegativeBalance AlertKind = "negative_fund_balance"
)

// AlertKind identifies one class of dashboard alert.
type AlertKind string

func (k AlertKind) IsValid() bool {
	switch k {
	case AlertBudgetOverrun, AlertBudgetWarning, AlertMissingProof,
		AlertUnpaidRecurring, AlertNegativeBalance:
		return true
	default:
		return false
	}
}

// AlertDismissal records that a project's alert of a given kind was
// dismissed by the caller. Dismissals are owned by the dashboard layer,
// not by the evaluator, which always recomputes the full alert set.
type AlertDismissal struct {
	ProjectID int64
	Kind      AlertKind
}
