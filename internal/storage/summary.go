package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/plusemon/FinTrack/internal/core"
)

// Summary returns the dashboard aggregates for the month containing now.
//
// monthlyIncome deliberately ignores status (any income transaction counts,
// paid or not) while monthlyExpense gates due transactions on paid. The
// asymmetry is inherited behavior; see DESIGN.md.
func (s *Store) Summary(ctx context.Context, now time.Time) (core.Summary, error) {
	var sum core.Summary
	prefix := core.MonthPrefix(now)

	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(balance_cents), 0) FROM accounts").Scan(&sum.TotalBalance.Cents)
	if err != nil {
		return sum, fmt.Errorf("total balance: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
		WHERE type = 'income' AND date LIKE ? || '%'`, prefix).Scan(&sum.MonthlyIncome.Cents)
	if err != nil {
		return sum, fmt.Errorf("monthly income: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
		WHERE (type = 'expense' OR (type = 'due' AND status = 'paid'))
		  AND date LIKE ? || '%'`, prefix).Scan(&sum.MonthlyExpense.Cents)
	if err != nil {
		return sum, fmt.Errorf("monthly expense: %w", err)
	}

	return sum, nil
}
