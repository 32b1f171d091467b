package core

import (
	"errors"
	"testing"
)

func ptr(v int64) *int64 { return &v }

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		tx      Transaction
		wantErr bool
	}{
		{
			name: "valid expense",
			tx:   Transaction{Type: TypeExpense, Amount: Cents(1250), Date: "2026-08-12", CategoryID: ptr(1), AccountID: 1, Status: StatusPaid},
		},
		{
			name: "valid transfer",
			tx:   Transaction{Type: TypeTransfer, Amount: Cents(500), Date: "2026-08-12", AccountID: 1, ToAccountID: ptr(2), Status: StatusPaid},
		},
		{
			name: "valid unpaid due",
			tx:   Transaction{Type: TypeDue, Amount: Cents(4000), Date: "2026-08-12", CategoryID: ptr(1), AccountID: 1, Status: StatusUnpaid, DueDate: "2026-09-01"},
		},
		{
			name:    "unknown type",
			tx:      Transaction{Type: "loan", Amount: Cents(100), Date: "2026-08-12", CategoryID: ptr(1), AccountID: 1, Status: StatusPaid},
			wantErr: true,
		},
		{
			name:    "zero amount",
			tx:      Transaction{Type: TypeExpense, Amount: Cents(0), Date: "2026-08-12", CategoryID: ptr(1), AccountID: 1, Status: StatusPaid},
			wantErr: true,
		},
		{
			name:    "bad date",
			tx:      Transaction{Type: TypeExpense, Amount: Cents(100), Date: "12/08/2026", CategoryID: ptr(1), AccountID: 1, Status: StatusPaid},
			wantErr: true,
		},
		{
			name:    "missing account",
			tx:      Transaction{Type: TypeExpense, Amount: Cents(100), Date: "2026-08-12", CategoryID: ptr(1), Status: StatusPaid},
			wantErr: true,
		},
		{
			name:    "transfer without destination",
			tx:      Transaction{Type: TypeTransfer, Amount: Cents(100), Date: "2026-08-12", AccountID: 1, Status: StatusPaid},
			wantErr: true,
		},
		{
			name:    "transfer to itself",
			tx:      Transaction{Type: TypeTransfer, Amount: Cents(100), Date: "2026-08-12", AccountID: 1, ToAccountID: ptr(1), Status: StatusPaid},
			wantErr: true,
		},
		{
			name:    "transfer with category",
			tx:      Transaction{Type: TypeTransfer, Amount: Cents(100), Date: "2026-08-12", AccountID: 1, ToAccountID: ptr(2), CategoryID: ptr(3), Status: StatusPaid},
			wantErr: true,
		},
		{
			name:    "expense without category",
			tx:      Transaction{Type: TypeExpense, Amount: Cents(100), Date: "2026-08-12", AccountID: 1, Status: StatusPaid},
			wantErr: true,
		},
		{
			name:    "expense with to_account",
			tx:      Transaction{Type: TypeExpense, Amount: Cents(100), Date: "2026-08-12", CategoryID: ptr(1), AccountID: 1, ToAccountID: ptr(2), Status: StatusPaid},
			wantErr: true,
		},
		{
			name:    "due_date on a non-due type",
			tx:      Transaction{Type: TypeExpense, Amount: Cents(100), Date: "2026-08-12", CategoryID: ptr(1), AccountID: 1, Status: StatusPaid, DueDate: "2026-09-01"},
			wantErr: true,
		},
		{
			name:    "bad status",
			tx:      Transaction{Type: TypeExpense, Amount: Cents(100), Date: "2026-08-12", CategoryID: ptr(1), AccountID: 1, Status: "pending"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("error should wrap ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNormalizeDefaultsStatus(t *testing.T) {
	tx := Transaction{Type: TypeExpense, Notes: "  coffee  "}
	tx.Normalize()
	if tx.Status != StatusPaid {
		t.Fatalf("status should default to paid, got %q", tx.Status)
	}
	if tx.Notes != "coffee" {
		t.Fatalf("notes should be trimmed, got %q", tx.Notes)
	}
}

func TestCategoryTypeFor(t *testing.T) {
	if ct, ok := CategoryTypeFor(TypeIncome); !ok || ct != CategoryIncome {
		t.Fatalf("income should map to income category, got %q %v", ct, ok)
	}
	for _, typ := range []TransactionType{TypeExpense, TypeDue} {
		if ct, ok := CategoryTypeFor(typ); !ok || ct != CategoryExpense {
			t.Fatalf("%s should map to expense category, got %q %v", typ, ct, ok)
		}
	}
	if _, ok := CategoryTypeFor(TypeTransfer); ok {
		t.Fatal("transfers should not map to a category type")
	}
}

func TestFrequencyNext(t *testing.T) {
	tests := []struct {
		freq Frequency
		from string
		want string
	}{
		{Daily, "2026-08-29", "2026-08-30"},
		{Weekly, "2026-08-29", "2026-09-05"},
		{Monthly, "2026-08-29", "2026-09-29"},
		{Monthly, "2026-01-31", "2026-03-03"}, // AddDate normalization
		{Yearly, "2026-08-29", "2027-08-29"},
	}
	for _, tt := range tests {
		got, err := tt.freq.Next(tt.from)
		if err != nil {
			t.Errorf("%s.Next(%s): %v", tt.freq, tt.from, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s.Next(%s) = %s, want %s", tt.freq, tt.from, got, tt.want)
		}
	}

	if _, err := Frequency("fortnightly").Next("2026-08-29"); err == nil {
		t.Error("unknown frequency should error")
	}
	if _, err := Daily.Next("29/08/2026"); err == nil {
		t.Error("malformed date should error")
	}
}

func TestBudgetStatus(t *testing.T) {
	tests := []struct {
		spent, limit int64
		want         string
	}{
		{0, 10000, "on-track"},
		{7999, 10000, "on-track"},
		{8000, 10000, "warning"},
		{10000, 10000, "warning"},
		{10001, 10000, "over"},
	}
	for _, tt := range tests {
		got := BudgetStatus(Cents(tt.spent), Cents(tt.limit))
		if got != tt.want {
			t.Errorf("BudgetStatus(%d/%d) = %q, want %q", tt.spent, tt.limit, got, tt.want)
		}
	}
}
