package core

const (
	BudgetAnnual  BudgetPeriodType = "annual"
	BudgetMonthly BudgetPeriodType = "monthly"
)

// BudgetPeriodType selects the window a budget's spend is measured over:
// the enclosing contract period, or the current calendar month within it.
type BudgetPeriodType string

func (b BudgetPeriodType) IsValid() bool {
	return b == BudgetAnnual || b == BudgetMonthly
}

// Budget caps the expense spend of one category on one project. Spend
// aggregation is always scoped to a single contract period.
type Budget struct {
	ID               int64
	ProjectID        int64
	CategoryID       int64
	Amount           Money
	PeriodType       BudgetPeriodType
	StartDate        Date
	EndDate          Date
	Active           bool
	ContractPeriodID int64
}

func (b Budget) Validate() error {
	if b.ProjectID == 0 {
		return &ValidationError{Field: "project_id", Reason: "project is required"}
	}
	if b.CategoryID == 0 {
		return &ValidationError{Field: "category_id", Reason: "category is required"}
	}
	if b.Amount.Cents < 0 {
		return &ValidationError{Field: "amount", Reason: "amount must not be negative"}
	}
	if !b.PeriodType.IsValid() {
		return &ValidationError{Field: "period_type", Reason: "period type must be annual or monthly"}
	}
	return nil
}

// BudgetSpending is the aggregated view of a budget within a period:
// how much was spent, how that compares to the budgeted amount, and how
// it compares to where spending should be at this point in the period.
type BudgetSpending struct {
	Budget         Budget
	SpentAmount    Money
	SpentPct       float64
	ExpectedPct    float64
	IsOverBudget   bool
	IsSpendingFast bool
}
