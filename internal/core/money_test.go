package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12.345", 1234, false},
		{"12.346", 1235, false},
		{"0.01", 1, false},
		{"7", 700, false},
		{"", 0, true},
		{"-5.00", 0, true},
		{"0", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecimalToCents(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestTransaction_Signed(t *testing.T) {
	income := Transaction{Type: Income, Amount: Money{Cents: 500}}
	expense := Transaction{Type: Expense, Amount: Money{Cents: 500}}

	if income.Signed() != 500 {
		t.Errorf("income Signed() = %d, want 500", income.Signed())
	}
	if expense.Signed() != -500 {
		t.Errorf("expense Signed() = %d, want -500", expense.Signed())
	}
}
