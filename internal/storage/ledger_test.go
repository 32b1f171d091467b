package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/plusemon/FinTrack/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "fintrack.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedAccount(t *testing.T, s *Store, name string, cents int64) int64 {
	t.Helper()
	id, err := s.CreateAccount(context.Background(), &core.Account{Name: name, Type: "cash", Balance: core.Cents(cents)})
	if err != nil {
		t.Fatalf("seed account %s: %v", name, err)
	}
	return id
}

func seedCategory(t *testing.T, s *Store, name string, typ core.CategoryType) int64 {
	t.Helper()
	id, err := s.CreateCategory(context.Background(), &core.Category{Name: name, Type: typ})
	if err != nil {
		t.Fatalf("seed category %s: %v", name, err)
	}
	return id
}

func balance(t *testing.T, s *Store, id int64) int64 {
	t.Helper()
	a, err := s.GetAccount(context.Background(), id)
	if err != nil {
		t.Fatalf("get account %d: %v", id, err)
	}
	return a.Balance.Cents
}

func TestExpenseLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	acct := seedAccount(t, s, "A", 100000)
	cat := seedCategory(t, s, "Food", core.CategoryExpense)

	tx := core.Transaction{Type: core.TypeExpense, Amount: core.Cents(20000), Date: "2026-08-10", CategoryID: &cat, AccountID: acct}
	id, err := s.CreateTransaction(ctx, &tx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := balance(t, s, acct); got != 80000 {
		t.Fatalf("after create: balance = %d, want 80000", got)
	}

	tx.Amount = core.Cents(15000)
	if err := s.UpdateTransaction(ctx, id, &tx); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := balance(t, s, acct); got != 85000 {
		t.Fatalf("after update: balance = %d, want 85000", got)
	}

	if err := s.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := balance(t, s, acct); got != 100000 {
		t.Fatalf("after delete: balance = %d, want 100000", got)
	}
}

func TestTransferLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := seedAccount(t, s, "A", 100000)
	b := seedAccount(t, s, "B", 50000)

	tx := core.Transaction{Type: core.TypeTransfer, Amount: core.Cents(30000), Date: "2026-08-10", AccountID: a, ToAccountID: &b}
	id, err := s.CreateTransaction(ctx, &tx)
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}
	if got := balance(t, s, a); got != 70000 {
		t.Fatalf("source = %d, want 70000", got)
	}
	if got := balance(t, s, b); got != 80000 {
		t.Fatalf("destination = %d, want 80000", got)
	}

	if err := s.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("delete transfer: %v", err)
	}
	if got := balance(t, s, a); got != 100000 {
		t.Fatalf("source after delete = %d, want 100000", got)
	}
	if got := balance(t, s, b); got != 50000 {
		t.Fatalf("destination after delete = %d, want 50000", got)
	}
}

func TestDueStatusGating(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	acct := seedAccount(t, s, "A", 100000)
	cat := seedCategory(t, s, "Credit", core.CategoryExpense)

	tx := core.Transaction{Type: core.TypeDue, Amount: core.Cents(40000), Date: "2026-08-10",
		CategoryID: &cat, AccountID: acct, Status: core.StatusUnpaid, DueDate: "2026-09-01"}
	id, err := s.CreateTransaction(ctx, &tx)
	if err != nil {
		t.Fatalf("create unpaid due: %v", err)
	}
	if got := balance(t, s, acct); got != 100000 {
		t.Fatalf("unpaid due moved balance: %d", got)
	}

	tx.Status = core.StatusPaid
	if err := s.UpdateTransaction(ctx, id, &tx); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if got := balance(t, s, acct); got != 60000 {
		t.Fatalf("after paid: balance = %d, want 60000", got)
	}

	tx.Status = core.StatusUnpaid
	if err := s.UpdateTransaction(ctx, id, &tx); err != nil {
		t.Fatalf("mark unpaid: %v", err)
	}
	if got := balance(t, s, acct); got != 100000 {
		t.Fatalf("after unpaid again: balance = %d, want 100000", got)
	}
}

func TestUpdateCanMoveEveryAccount(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := seedAccount(t, s, "A", 10000)
	b := seedAccount(t, s, "B", 10000)
	c := seedAccount(t, s, "C", 10000)
	d := seedAccount(t, s, "D", 10000)

	tx := core.Transaction{Type: core.TypeTransfer, Amount: core.Cents(5000), Date: "2026-08-10", AccountID: a, ToAccountID: &b}
	id, err := s.CreateTransaction(ctx, &tx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Re-point the transfer at a completely different account pair.
	tx.AccountID = c
	tx.ToAccountID = &d
	tx.Amount = core.Cents(2000)
	if err := s.UpdateTransaction(ctx, id, &tx); err != nil {
		t.Fatalf("update: %v", err)
	}

	want := map[string]struct {
		id  int64
		val int64
	}{
		"A": {a, 10000}, "B": {b, 10000},
		"C": {c, 8000}, "D": {d, 12000},
	}
	for name, w := range want {
		if got := balance(t, s, w.id); got != w.val {
			t.Errorf("account %s = %d, want %d", name, got, w.val)
		}
	}
}

func TestBalanceInvariantAfterMixedSequence(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	const seed = 123400
	a := seedAccount(t, s, "A", seed)
	b := seedAccount(t, s, "B", seed)
	income := seedCategory(t, s, "Salary", core.CategoryIncome)
	expense := seedCategory(t, s, "Food", core.CategoryExpense)

	mk := func(tx core.Transaction) int64 {
		t.Helper()
		id, err := s.CreateTransaction(ctx, &tx)
		if err != nil {
			t.Fatalf("create %s: %v", tx.Type, err)
		}
		return id
	}

	id1 := mk(core.Transaction{Type: core.TypeIncome, Amount: core.Cents(50000), Date: "2026-08-01", CategoryID: &income, AccountID: a})
	mk(core.Transaction{Type: core.TypeExpense, Amount: core.Cents(7000), Date: "2026-08-02", CategoryID: &expense, AccountID: a})
	id3 := mk(core.Transaction{Type: core.TypeTransfer, Amount: core.Cents(20000), Date: "2026-08-03", AccountID: a, ToAccountID: &b})
	mk(core.Transaction{Type: core.TypeDue, Amount: core.Cents(9000), Date: "2026-08-04", CategoryID: &expense, AccountID: b, Status: core.StatusUnpaid})

	upd := core.Transaction{Type: core.TypeIncome, Amount: core.Cents(55000), Date: "2026-08-01", CategoryID: &income, AccountID: a}
	if err := s.UpdateTransaction(ctx, id1, &upd); err != nil {
		t.Fatalf("update income: %v", err)
	}
	if err := s.DeleteTransaction(ctx, id3); err != nil {
		t.Fatalf("delete transfer: %v", err)
	}

	// Recompute expected balances from the surviving paid transactions.
	list, err := s.ListTransactions(ctx, TransactionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	wantA, wantB := int64(seed), int64(seed)
	for _, tx := range list {
		for _, e := range tx.Effects() {
			switch e.AccountID {
			case a:
				wantA += e.Cents
			case b:
				wantB += e.Cents
			}
		}
	}
	if got := balance(t, s, a); got != wantA {
		t.Errorf("account A = %d, want %d", got, wantA)
	}
	if got := balance(t, s, b); got != wantB {
		t.Errorf("account B = %d, want %d", got, wantB)
	}
}

func TestUpdateAndDeleteNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	acct := seedAccount(t, s, "A", 100000)
	cat := seedCategory(t, s, "Food", core.CategoryExpense)

	tx := core.Transaction{Type: core.TypeExpense, Amount: core.Cents(100), Date: "2026-08-10", CategoryID: &cat, AccountID: acct}
	if err := s.UpdateTransaction(ctx, 999, &tx); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("update missing: err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteTransaction(ctx, 999); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("delete missing: err = %v, want ErrNotFound", err)
	}
	// A failed update must not leave a partial reversal behind.
	if got := balance(t, s, acct); got != 100000 {
		t.Fatalf("balance moved on failed update: %d", got)
	}
}

func TestCreateRejectsBadReferences(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	acct := seedAccount(t, s, "A", 100000)
	income := seedCategory(t, s, "Salary", core.CategoryIncome)

	// Category type must match the transaction type.
	tx := core.Transaction{Type: core.TypeExpense, Amount: core.Cents(100), Date: "2026-08-10", CategoryID: &income, AccountID: acct}
	if _, err := s.CreateTransaction(ctx, &tx); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("category type mismatch: err = %v, want ErrValidation", err)
	}

	// Unknown account.
	tx2 := core.Transaction{Type: core.TypeIncome, Amount: core.Cents(100), Date: "2026-08-10", CategoryID: &income, AccountID: 999}
	if _, err := s.CreateTransaction(ctx, &tx2); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unknown account: err = %v, want ErrNotFound", err)
	}

	// Nothing was persisted, nothing moved.
	if got := balance(t, s, acct); got != 100000 {
		t.Fatalf("balance moved on rejected create: %d", got)
	}
	list, err := s.ListTransactions(ctx, TransactionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("rejected creates persisted %d row(s)", len(list))
	}
}

func TestListOrderingAndFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := seedAccount(t, s, "A", 0)
	b := seedAccount(t, s, "B", 0)
	cat := seedCategory(t, s, "Salary", core.CategoryIncome)
	other := seedCategory(t, s, "Bonus", core.CategoryIncome)

	mk := func(date string, acct int64, c *int64) int64 {
		t.Helper()
		id, err := s.CreateTransaction(ctx, &core.Transaction{
			Type: core.TypeIncome, Amount: core.Cents(100), Date: date, CategoryID: c, AccountID: acct})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		return id
	}
	first := mk("2026-08-10", a, &cat)
	second := mk("2026-08-10", a, &other) // same date, created later
	third := mk("2026-08-12", b, &cat)

	list, err := s.ListTransactions(ctx, TransactionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d transactions, want 3", len(list))
	}
	// Newest date first; ties broken by most recent insertion.
	if list[0].ID != third || list[1].ID != second || list[2].ID != first {
		t.Fatalf("order = [%d %d %d], want [%d %d %d]",
			list[0].ID, list[1].ID, list[2].ID, third, second, first)
	}
	if list[0].AccountName != "B" || list[0].CategoryName != "Salary" {
		t.Fatalf("joined names missing: %+v", list[0])
	}

	byAccount, err := s.ListTransactions(ctx, TransactionFilter{AccountID: a})
	if err != nil {
		t.Fatalf("filter by account: %v", err)
	}
	if len(byAccount) != 2 {
		t.Fatalf("account filter: got %d, want 2", len(byAccount))
	}

	byCategory, err := s.ListTransactions(ctx, TransactionFilter{CategoryID: other})
	if err != nil {
		t.Fatalf("filter by category: %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].ID != second {
		t.Fatalf("category filter: %+v", byCategory)
	}

	byRange, err := s.ListTransactions(ctx, TransactionFilter{StartDate: "2026-08-11", EndDate: "2026-08-31"})
	if err != nil {
		t.Fatalf("filter by range: %v", err)
	}
	if len(byRange) != 1 || byRange[0].ID != third {
		t.Fatalf("range filter: %+v", byRange)
	}
}

func TestDeleteReferencedAccountRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	acct := seedAccount(t, s, "A", 100000)
	cat := seedCategory(t, s, "Food", core.CategoryExpense)

	if _, err := s.CreateTransaction(ctx, &core.Transaction{
		Type: core.TypeExpense, Amount: core.Cents(100), Date: "2026-08-10", CategoryID: &cat, AccountID: acct}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.DeleteAccount(ctx, acct); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("delete referenced account: err = %v, want ErrValidation", err)
	}
	if err := s.DeleteCategory(ctx, cat); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("delete referenced category: err = %v, want ErrValidation", err)
	}

	// An unreferenced account deletes fine.
	spare := seedAccount(t, s, "Spare", 0)
	if err := s.DeleteAccount(ctx, spare); err != nil {
		t.Fatalf("delete spare account: %v", err)
	}
}
