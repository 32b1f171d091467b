package storage

import (
	"context"
	"fmt"

	"github.com/plusemon/FinTrack/internal/core"
)

func (s *Store) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, type, balance_cents, icon, color FROM accounts ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []core.Account{}
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.Balance.Cents, &a.Icon, &a.Color); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *Store) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	var a core.Account
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, type, balance_cents, icon, color FROM accounts WHERE id = ?", id).
		Scan(&a.ID, &a.Name, &a.Type, &a.Balance.Cents, &a.Icon, &a.Color)
	if err != nil {
		return a, notFoundIfNoRows(err)
	}
	return a, nil
}

func (s *Store) CreateAccount(ctx context.Context, a *core.Account) (int64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO accounts (name, type, balance_cents, icon, color) VALUES (?, ?, ?, ?, ?)",
		a.Name, a.Type, a.Balance.Cents, a.Icon, a.Color)
	if err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("account id: %w", err)
	}
	a.ID = id
	return id, nil
}

// UpdateAccount overwrites every stored field, including the balance. A
// balance edit here is a seed adjustment, not a ledger event: no transaction
// row is written for it.
func (s *Store) UpdateAccount(ctx context.Context, id int64, a *core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE accounts SET name = ?, type = ?, balance_cents = ?, icon = ?, color = ? WHERE id = ?",
		a.Name, a.Type, a.Balance.Cents, a.Icon, a.Color, id)
	if err != nil {
		return fmt.Errorf("update account %d: %w", id, err)
	}
	return requireRow(res, id)
}

// DeleteAccount refuses to remove an account still referenced by
// transactions or recurring rows: deleting it would strand ledger history.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	var refs int
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM transactions WHERE account_id = ?1 OR to_account_id = ?1)
		     + (SELECT COUNT(*) FROM recurring_transactions WHERE account_id = ?1)`, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("count account references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: account %d is referenced by %d transaction(s)", core.ErrValidation, id, refs)
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	return requireRow(res, id)
}
