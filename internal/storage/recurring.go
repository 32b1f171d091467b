package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/plusemon/FinTrack/internal/core"
)

func (s *Store) ListRecurring(ctx context.Context) ([]core.RecurringTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, amount_cents, category_id, account_id, frequency, next_date
		FROM recurring_transactions ORDER BY next_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list recurring: %w", err)
	}
	defer rows.Close()

	recurring := []core.RecurringTransaction{}
	for rows.Next() {
		r, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		recurring = append(recurring, r)
	}
	return recurring, rows.Err()
}

func (s *Store) CreateRecurring(ctx context.Context, r *core.RecurringTransaction) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if err := s.categoryExists(ctx, *r.CategoryID); err != nil {
		return 0, err
	}
	if _, err := s.GetAccount(ctx, r.AccountID); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_transactions (type, amount_cents, category_id, account_id, frequency, next_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.Type, r.Amount.Cents, r.CategoryID, r.AccountID, r.Frequency, r.NextDate)
	if err != nil {
		return 0, fmt.Errorf("create recurring: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("recurring id: %w", err)
	}
	r.ID = id
	return id, nil
}

func (s *Store) DeleteRecurring(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM recurring_transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete recurring %d: %w", id, err)
	}
	return requireRow(res, id)
}

// ProcessRecurring materializes every recurring row whose next_date has
// arrived into a real ledger transaction (with its balance effect) and
// advances next_date by one period. Each row is processed in its own SQL
// transaction so one bad row cannot hold up the rest. Returns the number of
// transactions created.
func (s *Store) ProcessRecurring(ctx context.Context, now time.Time) (int, error) {
	today := now.Format(core.DateLayout)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, amount_cents, category_id, account_id, frequency, next_date
		FROM recurring_transactions WHERE next_date <= ? ORDER BY next_date, id`, today)
	if err != nil {
		return 0, fmt.Errorf("query due recurring: %w", err)
	}
	due := []core.RecurringTransaction{}
	for rows.Next() {
		r, err := scanRecurring(rows)
		if err != nil {
			rows.Close()
			return 0, err
		}
		due = append(due, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	created := 0
	for _, r := range due {
		if err := s.materializeRecurring(ctx, r); err != nil {
			slog.ErrorContext(ctx, "Recurring materialization failed",
				"recurring_id", r.ID, "error", err)
			continue
		}
		created++
	}
	return created, nil
}

func (s *Store) materializeRecurring(ctx context.Context, r core.RecurringTransaction) error {
	next, err := r.Frequency.Next(r.NextDate)
	if err != nil {
		return err
	}

	t := core.Transaction{
		Type:       r.Type,
		Amount:     r.Amount,
		Date:       r.NextDate,
		CategoryID: r.CategoryID,
		AccountID:  r.AccountID,
		Notes:      "recurring",
		Status:     core.StatusPaid,
	}
	if err := t.Validate(); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkReferences(ctx, tx, &t); err != nil {
			return err
		}
		id, err := insertTransaction(ctx, tx, &t)
		if err != nil {
			return err
		}
		if err := applyEffects(ctx, tx, t.Effects()); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE recurring_transactions SET next_date = ? WHERE id = ?", next, r.ID); err != nil {
			return fmt.Errorf("advance recurring %d: %w", r.ID, err)
		}
		slog.InfoContext(ctx, "Recurring transaction materialized",
			"recurring_id", r.ID, "transaction_id", id, "date", t.Date, "next_date", next)
		return nil
	})
}

func scanRecurring(row rowScanner) (core.RecurringTransaction, error) {
	var (
		r          core.RecurringTransaction
		categoryID sql.NullInt64
	)
	err := row.Scan(&r.ID, &r.Type, &r.Amount.Cents, &categoryID, &r.AccountID, &r.Frequency, &r.NextDate)
	if err != nil {
		return r, fmt.Errorf("scan recurring: %w", err)
	}
	if categoryID.Valid {
		r.CategoryID = &categoryID.Int64
	}
	return r, nil
}
