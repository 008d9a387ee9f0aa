package core

import (
	"testing"
	"time"
)

func TestContractPeriod_Label(t *testing.T) {
	tests := []struct {
		name   string
		period ContractPeriod
		want   string
	}{
		{
			name: "calendar year period",
			period: ContractPeriod{
				StartDate: NewDate(2024, 1, 1),
				EndDate:   NewDate(2024, 12, 31),
			},
			want: "2024",
		},
		{
			name: "year-spanning period",
			period: ContractPeriod{
				StartDate: NewDate(2024, 7, 1),
				EndDate:   NewDate(2025, 6, 30),
			},
			want: "2024/2025",
		},
		{
			name: "open period assumes one year span",
			period: ContractPeriod{
				StartDate: NewDate(2024, 7, 1),
			},
			want: "2024/2025",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.period.Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContractPeriod_Contains(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	closed := ContractPeriod{
		StartDate: NewDate(2024, 1, 1),
		EndDate:   NewDate(2024, 12, 31),
	}
	open := ContractPeriod{StartDate: NewDate(2025, 1, 1)}

	tests := []struct {
		name   string
		period ContractPeriod
		date   Date
		want   bool
	}{
		{"inside closed period", closed, NewDate(2024, 6, 15), true},
		{"start day inclusive", closed, NewDate(2024, 1, 1), true},
		{"end day inclusive", closed, NewDate(2024, 12, 31), true},
		{"after closed period", closed, NewDate(2025, 1, 5), false},
		{"open period up to now", open, NewDate(2025, 3, 10), true},
		{"open period future date", open, NewDate(2025, 4, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.period.Contains(tt.date, now); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestContractPeriod_TotalsFor(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	period := ContractPeriod{
		StartDate: NewDate(2024, 1, 1),
		EndDate:   NewDate(2024, 12, 31),
	}

	txs := []Transaction{
		{Date: NewDate(2024, 2, 1), Type: Income, Amount: Money{Cents: 100_000}},
		{Date: NewDate(2024, 3, 1), Type: Expense, Amount: Money{Cents: 40_000}},
		{Date: NewDate(2024, 12, 31), Type: Expense, Amount: Money{Cents: 10_000}},
		// January of the following period must not leak into the totals.
		{Date: NewDate(2025, 1, 10), Type: Expense, Amount: Money{Cents: 99_000}},
	}

	totals := period.TotalsFor(txs, now)

	if totals.Income.Cents != 100_000 {
		t.Errorf("income = %d, want 100000", totals.Income.Cents)
	}
	if totals.Expense.Cents != 50_000 {
		t.Errorf("expense = %d, want 50000", totals.Expense.Cents)
	}
	if totals.Profit.Cents != 50_000 {
		t.Errorf("profit = %d, want 50000", totals.Profit.Cents)
	}
}
