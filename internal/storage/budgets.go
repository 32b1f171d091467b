package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/plusemon/FinTrack/internal/core"
)

// ListBudgets returns budget rows with the derived spent value for the
// month containing now: the sum of paid expense and due transactions dated
// in that month, matching the budget's category. A global budget (NULL
// category) counts any categorized transaction.
func (s *Store) ListBudgets(ctx context.Context, now time.Time) ([]core.Budget, error) {
	prefix := core.MonthPrefix(now)
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.category_id, b.amount_cents, b.period, c.name,
		       COALESCE((
		           SELECT SUM(t.amount_cents) FROM transactions t
		           WHERE t.status = 'paid'
		             AND t.type IN ('expense', 'due')
		             AND t.date LIKE ?1 || '%'
		             AND ((b.category_id IS NOT NULL AND t.category_id = b.category_id)
		               OR (b.category_id IS NULL AND t.category_id IS NOT NULL))
		       ), 0)
		FROM budgets b
		LEFT JOIN categories c ON b.category_id = c.id
		ORDER BY b.id`, prefix)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []core.Budget{}
	for rows.Next() {
		var (
			b            core.Budget
			categoryID   sql.NullInt64
			categoryName sql.NullString
		)
		if err := rows.Scan(&b.ID, &categoryID, &b.Amount.Cents, &b.Period, &categoryName, &b.Spent.Cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		if categoryID.Valid {
			b.CategoryID = &categoryID.Int64
		}
		b.CategoryName = categoryName.String
		b.Status = core.BudgetStatus(b.Spent, b.Amount)
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (s *Store) CreateBudget(ctx context.Context, b *core.Budget) (int64, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	if b.Period == "" {
		b.Period = "monthly"
	}
	if b.CategoryID != nil {
		if err := s.categoryExists(ctx, *b.CategoryID); err != nil {
			return 0, err
		}
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO budgets (category_id, amount_cents, period) VALUES (?, ?, ?)",
		b.CategoryID, b.Amount.Cents, b.Period)
	if err != nil {
		return 0, fmt.Errorf("create budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("budget id: %w", err)
	}
	b.ID = id
	return id, nil
}

func (s *Store) UpdateBudget(ctx context.Context, id int64, b *core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.Period == "" {
		b.Period = "monthly"
	}
	if b.CategoryID != nil {
		if err := s.categoryExists(ctx, *b.CategoryID); err != nil {
			return err
		}
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE budgets SET category_id = ?, amount_cents = ?, period = ? WHERE id = ?",
		b.CategoryID, b.Amount.Cents, b.Period, id)
	if err != nil {
		return fmt.Errorf("update budget %d: %w", id, err)
	}
	return requireRow(res, id)
}

func (s *Store) DeleteBudget(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete budget %d: %w", id, err)
	}
	return requireRow(res, id)
}
