// Package storage is the ledger store: SQLite persistence for accounts,
// categories, transactions, budgets, settings and recurring rows, plus the
// balance mutation engine that keeps account balances consistent with the
// paid transactions referencing them.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/plusemon/FinTrack/internal/core"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// One connection serializes all balance-affecting writes; SQLite has a
	// single writer anyway and this avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// inTx runs fn inside a SQL transaction, committing on success and rolling
// back on any error so multi-row writes are all-or-nothing.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// requireRow turns a zero-row write into a NotFound error.
func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", core.ErrNotFound, id)
	}
	return nil
}

// notFoundIfNoRows converts the driver's no-rows sentinel into the domain's.
func notFoundIfNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}

// SeedIfEmpty inserts the default demo accounts and categories when the
// store has no accounts yet.
func (s *Store) SeedIfEmpty(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&count); err != nil {
		return fmt.Errorf("count accounts: %w", err)
	}
	if count > 0 {
		return nil
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		accounts := []struct {
			name, typ, icon, color string
			balance                int64
		}{
			{"Main Wallet", "cash", "Wallet", "#10b981", 100000},
			{"Savings", "bank", "Landmark", "#3b82f6", 500000},
		}
		for _, a := range accounts {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO accounts (name, type, balance_cents, icon, color) VALUES (?, ?, ?, ?, ?)",
				a.name, a.typ, a.balance, a.icon, a.color); err != nil {
				return fmt.Errorf("seed account %s: %w", a.name, err)
			}
		}

		categories := []struct {
			name, typ, icon, color string
		}{
			{"Food & Drinks", "expense", "Utensils", "#ef4444"},
			{"Salary", "income", "Banknote", "#10b981"},
			{"Rent", "expense", "Home", "#f59e0b"},
		}
		for _, c := range categories {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO categories (name, type, icon, color) VALUES (?, ?, ?, ?)",
				c.name, c.typ, c.icon, c.color); err != nil {
				return fmt.Errorf("seed category %s: %w", c.name, err)
			}
		}

		slog.InfoContext(ctx, "Seeded demo accounts and categories")
		return nil
	})
}
