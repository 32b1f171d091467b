package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"
	TypeDue      TransactionType = "due"
)

const (
	StatusPaid   TransactionStatus = "paid"
	StatusUnpaid TransactionStatus = "unpaid"
)

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

// DateLayout is the calendar-date format used throughout the ledger,
// both on the wire and in the database.
const DateLayout = "2006-01-02"

type (
	TransactionType   string
	TransactionStatus string
	CategoryType      string

	Account struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Type    string `json:"type"`
		Balance Money  `json:"balance"`
		Icon    string `json:"icon"`
		Color   string `json:"color"`
	}

	Category struct {
		ID       int64        `json:"id"`
		Name     string       `json:"name"`
		ParentID *int64       `json:"parent_id"`
		Type     CategoryType `json:"type"`
		Icon     string       `json:"icon"`
		Color    string       `json:"color"`
	}

	Transaction struct {
		ID          int64             `json:"id"`
		Type        TransactionType   `json:"type"`
		Amount      Money             `json:"amount"`
		Date        string            `json:"date"`
		CategoryID  *int64            `json:"category_id"`
		AccountID   int64             `json:"account_id"`
		ToAccountID *int64            `json:"to_account_id"`
		Notes       string            `json:"notes"`
		Status      TransactionStatus `json:"status"`
		DueDate     string            `json:"due_date,omitempty"`

		// Populated by joined listings only.
		CategoryName string `json:"category_name,omitempty"`
		AccountName  string `json:"account_name,omitempty"`
	}

	Budget struct {
		ID         int64  `json:"id"`
		CategoryID *int64 `json:"category_id"`
		Amount     Money  `json:"amount"`
		Period     string `json:"period"`

		// Derived at read time, never stored.
		CategoryName string `json:"category_name,omitempty"`
		Spent        Money  `json:"spent"`
		Status       string `json:"status,omitempty"`
	}

	RecurringTransaction struct {
		ID         int64           `json:"id"`
		Type       TransactionType `json:"type"`
		Amount     Money           `json:"amount"`
		CategoryID *int64          `json:"category_id"`
		AccountID  int64           `json:"account_id"`
		Frequency  Frequency       `json:"frequency"`
		NextDate   string          `json:"next_date"`
	}

	Frequency string

	Summary struct {
		TotalBalance   Money `json:"totalBalance"`
		MonthlyIncome  Money `json:"monthlyIncome"`
		MonthlyExpense Money `json:"monthlyExpense"`
	}
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// Budget status thresholds, as fractions of the budget limit.
const (
	budgetWarningRatio = 0.8
	budgetOverRatio    = 1.0
)

var (
	// ErrNotFound reports that a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation reports a malformed or incomplete request. Callers wrap
	// it with field detail via fmt.Errorf("%w: ...", ErrValidation).
	ErrValidation = errors.New("validation failed")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// ValidDate reports whether s is a well-formed calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// MonthPrefix returns the "YYYY-MM" prefix for the month containing t,
// the window used by the budget and summary aggregators.
func MonthPrefix(t time.Time) string {
	return t.Format("2006-01")
}

// Normalize fills defaults the wire format leaves optional: status defaults
// to paid, notes are trimmed.
func (t *Transaction) Normalize() {
	if t.Status == "" {
		t.Status = StatusPaid
	}
	t.Notes = strings.TrimSpace(t.Notes)
}

// Validate checks the per-type field requirements of a transaction before it
// reaches the store. Category/account existence is checked by the store.
func (t Transaction) Validate() error {
	switch t.Type {
	case TypeIncome, TypeExpense, TypeTransfer, TypeDue:
	default:
		return validationf("unknown transaction type %q", t.Type)
	}
	if t.Amount.Cents <= 0 {
		return validationf("amount must be positive")
	}
	if !ValidDate(t.Date) {
		return validationf("date must be YYYY-MM-DD")
	}
	if t.AccountID <= 0 {
		return validationf("account_id is required")
	}
	switch t.Status {
	case StatusPaid, StatusUnpaid:
	default:
		return validationf("status must be paid or unpaid")
	}

	if t.Type == TypeTransfer {
		if t.ToAccountID == nil || *t.ToAccountID <= 0 {
			return validationf("transfer requires to_account_id")
		}
		if *t.ToAccountID == t.AccountID {
			return validationf("transfer accounts must differ")
		}
		if t.CategoryID != nil {
			return validationf("transfer transactions do not take a category")
		}
		return nil
	}

	if t.CategoryID == nil || *t.CategoryID <= 0 {
		return validationf("%s requires category_id", t.Type)
	}
	if t.ToAccountID != nil {
		return validationf("to_account_id is only valid for transfers")
	}
	if t.Type == TypeDue {
		if t.DueDate != "" && !ValidDate(t.DueDate) {
			return validationf("due_date must be YYYY-MM-DD")
		}
	} else if t.DueDate != "" {
		return validationf("due_date is only valid for due transactions")
	}
	return nil
}

// CategoryTypeFor returns the category type a transaction of the given kind
// must reference. Transfers take no category.
func CategoryTypeFor(t TransactionType) (CategoryType, bool) {
	switch t {
	case TypeIncome:
		return CategoryIncome, true
	case TypeExpense, TypeDue:
		return CategoryExpense, true
	default:
		return "", false
	}
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return validationf("category name is required")
	}
	if c.Type != CategoryIncome && c.Type != CategoryExpense {
		return validationf("category type must be income or expense")
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return validationf("account name is required")
	}
	return nil
}

func (b Budget) Validate() error {
	if b.Amount.Cents <= 0 {
		return validationf("budget amount must be positive")
	}
	switch b.Period {
	case "", "weekly", "monthly", "yearly":
	default:
		return validationf("period must be weekly, monthly or yearly")
	}
	return nil
}

func (r RecurringTransaction) Validate() error {
	switch r.Type {
	case TypeIncome, TypeExpense:
	default:
		return validationf("recurring transactions must be income or expense")
	}
	if r.Amount.Cents <= 0 {
		return validationf("amount must be positive")
	}
	if r.AccountID <= 0 {
		return validationf("account_id is required")
	}
	if r.CategoryID == nil || *r.CategoryID <= 0 {
		return validationf("category_id is required")
	}
	switch r.Frequency {
	case Daily, Weekly, Monthly, Yearly:
	default:
		return validationf("frequency must be daily, weekly, monthly or yearly")
	}
	if !ValidDate(r.NextDate) {
		return validationf("next_date must be YYYY-MM-DD")
	}
	return nil
}

// Next advances a schedule date by one period. Month and year steps follow
// time.AddDate normalization (Jan 31 + 1 month lands in early March).
func (f Frequency) Next(date string) (string, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", validationf("next_date must be YYYY-MM-DD")
	}
	switch f {
	case Daily:
		d = d.AddDate(0, 0, 1)
	case Weekly:
		d = d.AddDate(0, 0, 7)
	case Monthly:
		d = d.AddDate(0, 1, 0)
	case Yearly:
		d = d.AddDate(1, 0, 0)
	default:
		return "", validationf("unknown frequency %q", f)
	}
	return d.Format(DateLayout), nil
}

// BudgetStatus classifies spending against the limit: on-track below 80%,
// warning between 80% and 100%, over above it.
func BudgetStatus(spent, limit Money) string {
	if limit.Cents <= 0 {
		return "on-track"
	}
	ratio := float64(spent.Cents) / float64(limit.Cents)
	switch {
	case ratio > budgetOverRatio:
		return "over"
	case ratio >= budgetWarningRatio:
		return "warning"
	default:
		return "on-track"
	}
}
