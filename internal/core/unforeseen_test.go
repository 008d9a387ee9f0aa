package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestUnforeseenTransaction_ProfitLoss(t *testing.T) {
	tests := []struct {
		name     string
		income   string
		expenses []string
		want     string
	}{
		{
			name:     "third decimal rounds half up",
			income:   "100.005",
			expenses: []string{"33.333"},
			want:     "66.67",
		},
		{
			name:     "plain two decimal arithmetic",
			income:   "1500.00",
			expenses: []string{"200.50", "99.50"},
			want:     "1200",
		},
		{
			name:     "loss stays negative",
			income:   "10.00",
			expenses: []string{"25.555"},
			want:     "-15.56",
		},
		{
			name:   "no expenses",
			income: "42.424",
			want:   "42.42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := UnforeseenTransaction{Income: decimal.RequireFromString(tt.income)}
			for _, e := range tt.expenses {
				u.Expenses = append(u.Expenses, UnforeseenExpenseLine{
					Amount:      decimal.RequireFromString(e),
					Description: "line",
				})
			}

			got := u.ProfitLoss()
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ProfitLoss() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUnforeseenStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from UnforeseenStatus
		to   UnforeseenStatus
		want bool
	}{
		{UnforeseenDraft, UnforeseenWaiting, true},
		{UnforeseenWaiting, UnforeseenExecuted, true},
		{UnforeseenDraft, UnforeseenExecuted, false},
		{UnforeseenWaiting, UnforeseenDraft, false},
		{UnforeseenExecuted, UnforeseenDraft, false},
		{UnforeseenExecuted, UnforeseenWaiting, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnforeseenTransaction_ResultTransaction(t *testing.T) {
	t.Run("positive profit becomes income", func(t *testing.T) {
		u := UnforeseenTransaction{
			ProjectID: 5,
			Date:      NewDate(2024, 8, 1),
			Income:    decimal.RequireFromString("100.00"),
			Expenses: []UnforeseenExpenseLine{
				{Amount: decimal.RequireFromString("40.00"), Description: "repair"},
			},
		}

		tx := u.ResultTransaction()
		if tx.Type != Income {
			t.Errorf("type = %s, want income", tx.Type)
		}
		if tx.Amount.Cents != 6000 {
			t.Errorf("amount = %d cents, want 6000", tx.Amount.Cents)
		}
	})

	t.Run("loss becomes expense with positive amount", func(t *testing.T) {
		u := UnforeseenTransaction{
			ProjectID: 5,
			Date:      NewDate(2024, 8, 1),
			Income:    decimal.RequireFromString("10.00"),
			Expenses: []UnforeseenExpenseLine{
				{Amount: decimal.RequireFromString("35.50"), Description: "repair"},
			},
		}

		tx := u.ResultTransaction()
		if tx.Type != Expense {
			t.Errorf("type = %s, want expense", tx.Type)
		}
		if tx.Amount.Cents != 2550 {
			t.Errorf("amount = %d cents, want 2550", tx.Amount.Cents)
		}
	})
}
