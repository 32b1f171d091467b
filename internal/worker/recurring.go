// Package worker runs the recurring transaction processor: a ticker loop
// that materializes scheduled rows into real ledger transactions.
package worker

import (
	"context"
	"log/slog"
	"time"
)

// RecurringStore is the slice of the ledger store the worker needs.
type RecurringStore interface {
	ProcessRecurring(ctx context.Context, now time.Time) (int, error)
}

type Recurring struct {
	store    RecurringStore
	interval time.Duration
}

func NewRecurring(store RecurringStore, interval time.Duration) *Recurring {
	return &Recurring{store: store, interval: interval}
}

// Run processes due rows immediately, then on every tick until the context
// is cancelled. It always returns ctx.Err().
func (w *Recurring) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Recurring worker started", "interval", w.interval)

	w.process(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Recurring worker stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			w.process(ctx)
		}
	}
}

func (w *Recurring) process(ctx context.Context) {
	created, err := w.store.ProcessRecurring(ctx, time.Now())
	if err != nil {
		slog.ErrorContext(ctx, "Recurring processing failed", "error", err)
		return
	}
	if created > 0 {
		slog.InfoContext(ctx, "Recurring transactions materialized", "count", created)
	}
}
