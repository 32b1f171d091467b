package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/plusemon/FinTrack/internal/core"
)

// This file is the balance mutation engine. Every transaction write runs in
// a single SQL transaction together with the balance updates it implies, so
// at any quiescent point each account balance equals the sum of effects of
// the paid transactions referencing it.

// CreateTransaction validates and inserts a transaction, applying its
// balance effect when the status is paid. Returns the new row id.
func (s *Store) CreateTransaction(ctx context.Context, t *core.Transaction) (int64, error) {
	t.Normalize()
	if err := t.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkReferences(ctx, tx, t); err != nil {
			return err
		}
		var err error
		id, err = insertTransaction(ctx, tx, t)
		if err != nil {
			return err
		}
		return applyEffects(ctx, tx, t.Effects())
	})
	if err != nil {
		return 0, err
	}

	t.ID = id
	slog.InfoContext(ctx, "Transaction created",
		"id", id, "type", t.Type, "amount_cents", t.Amount.Cents, "status", t.Status)
	return id, nil
}

// UpdateTransaction overwrites the stored row with the new field values,
// keeping balances consistent: the old effect is reversed before the row is
// rewritten, and the new effect applied after. Old and new may reference
// entirely different accounts, so up to four balances can move here.
func (s *Store) UpdateTransaction(ctx context.Context, id int64, t *core.Transaction) error {
	t.Normalize()
	if err := t.Validate(); err != nil {
		return err
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		old, err := getTransactionTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkReferences(ctx, tx, t); err != nil {
			return err
		}
		if err := applyEffects(ctx, tx, old.InverseEffects()); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE transactions
			SET type = ?, amount_cents = ?, date = ?, category_id = ?,
			    account_id = ?, to_account_id = ?, notes = ?, status = ?, due_date = ?
			WHERE id = ?`,
			t.Type, t.Amount.Cents, t.Date, t.CategoryID,
			t.AccountID, t.ToAccountID, t.Notes, t.Status, nullIfEmpty(t.DueDate), id); err != nil {
			return fmt.Errorf("update transaction %d: %w", id, err)
		}
		return applyEffects(ctx, tx, t.Effects())
	})
	if err != nil {
		return err
	}

	t.ID = id
	slog.InfoContext(ctx, "Transaction updated", "id", id, "type", t.Type, "status", t.Status)
	return nil
}

// DeleteTransaction reverses the stored row's effect (if paid) and removes it.
func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		old, err := getTransactionTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := applyEffects(ctx, tx, old.InverseEffects()); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete transaction %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// GetTransaction returns a single transaction row without joined names.
func (s *Store) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	var t core.Transaction
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		t, err = getTransactionTx(ctx, tx, id)
		return err
	})
	return t, err
}

// TransactionFilter narrows ListTransactions. Zero values mean "no filter".
type TransactionFilter struct {
	StartDate  string
	EndDate    string
	CategoryID int64
	AccountID  int64
}

// ListTransactions returns transactions joined with category and account
// names, newest first (date, then insertion order).
func (s *Store) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT t.id, t.type, t.amount_cents, t.date, t.category_id, t.account_id,
		       t.to_account_id, t.notes, t.status, t.due_date, c.name, a.name
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id
		JOIN accounts a ON t.account_id = a.id
		WHERE 1=1`)
	var args []any
	if f.StartDate != "" {
		sb.WriteString(" AND t.date >= ?")
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		sb.WriteString(" AND t.date <= ?")
		args = append(args, f.EndDate)
	}
	if f.CategoryID > 0 {
		sb.WriteString(" AND t.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.AccountID > 0 {
		sb.WriteString(" AND t.account_id = ?")
		args = append(args, f.AccountID)
	}
	sb.WriteString(" ORDER BY t.date DESC, t.id DESC")

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t            core.Transaction
		categoryID   sql.NullInt64
		toAccountID  sql.NullInt64
		dueDate      sql.NullString
		categoryName sql.NullString
	)
	err := row.Scan(&t.ID, &t.Type, &t.Amount.Cents, &t.Date, &categoryID, &t.AccountID,
		&toAccountID, &t.Notes, &t.Status, &dueDate, &categoryName, &t.AccountName)
	if err != nil {
		return t, fmt.Errorf("scan transaction: %w", err)
	}
	if categoryID.Valid {
		t.CategoryID = &categoryID.Int64
	}
	if toAccountID.Valid {
		t.ToAccountID = &toAccountID.Int64
	}
	t.DueDate = dueDate.String
	t.CategoryName = categoryName.String
	return t, nil
}

func getTransactionTx(ctx context.Context, tx *sql.Tx, id int64) (core.Transaction, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT t.id, t.type, t.amount_cents, t.date, t.category_id, t.account_id,
		       t.to_account_id, t.notes, t.status, t.due_date, c.name, a.name
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id
		JOIN accounts a ON t.account_id = a.id
		WHERE t.id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return t, fmt.Errorf("%w: transaction %d", core.ErrNotFound, id)
	}
	return t, err
}

func insertTransaction(ctx context.Context, tx *sql.Tx, t *core.Transaction) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (type, amount_cents, date, category_id, account_id, to_account_id, notes, status, due_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Type, t.Amount.Cents, t.Date, t.CategoryID, t.AccountID, t.ToAccountID,
		t.Notes, t.Status, nullIfEmpty(t.DueDate))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}
	return id, nil
}

// applyEffects folds balance deltas into accounts. The surrounding SQL
// transaction makes the pair of writes for a transfer atomic.
func applyEffects(ctx context.Context, tx *sql.Tx, effects []core.Effect) error {
	for _, e := range effects {
		res, err := tx.ExecContext(ctx,
			"UPDATE accounts SET balance_cents = balance_cents + ? WHERE id = ?",
			e.Cents, e.AccountID)
		if err != nil {
			return fmt.Errorf("apply balance delta to account %d: %w", e.AccountID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("balance delta rows: %w", err)
		}
		if n != 1 {
			return fmt.Errorf("%w: account %d", core.ErrNotFound, e.AccountID)
		}
	}
	return nil
}

// checkReferences verifies the accounts exist and the category exists with a
// type compatible with the transaction type.
func checkReferences(ctx context.Context, tx *sql.Tx, t *core.Transaction) error {
	if err := accountExists(ctx, tx, t.AccountID); err != nil {
		return err
	}
	if t.ToAccountID != nil {
		if err := accountExists(ctx, tx, *t.ToAccountID); err != nil {
			return err
		}
	}
	if t.CategoryID == nil {
		return nil
	}

	var catType core.CategoryType
	err := tx.QueryRowContext(ctx, "SELECT type FROM categories WHERE id = ?", *t.CategoryID).Scan(&catType)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: category %d", core.ErrNotFound, *t.CategoryID)
	}
	if err != nil {
		return fmt.Errorf("category %d: %w", *t.CategoryID, err)
	}
	want, ok := core.CategoryTypeFor(t.Type)
	if ok && catType != want {
		return fmt.Errorf("%w: %s transaction requires an %s category, %d is %s",
			core.ErrValidation, t.Type, want, *t.CategoryID, catType)
	}
	return nil
}

func accountExists(ctx context.Context, tx *sql.Tx, id int64) error {
	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM accounts WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: account %d", core.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("account %d: %w", id, err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
