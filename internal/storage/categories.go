package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/plusemon/FinTrack/internal/core"
)

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, parent_id, type, icon, color FROM categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		var (
			c        core.Category
			parentID sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.Name, &parentID, &c.Type, &c.Icon, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if parentID.Valid {
			c.ParentID = &parentID.Int64
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) CreateCategory(ctx context.Context, c *core.Category) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if c.ParentID != nil {
		if err := s.categoryExists(ctx, *c.ParentID); err != nil {
			return 0, err
		}
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (name, parent_id, type, icon, color) VALUES (?, ?, ?, ?, ?)",
		c.Name, c.ParentID, c.Type, c.Icon, c.Color)
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("category id: %w", err)
	}
	c.ID = id
	return id, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id int64, c *core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ParentID != nil {
		if *c.ParentID == id {
			return fmt.Errorf("%w: category cannot be its own parent", core.ErrValidation)
		}
		if err := s.categoryExists(ctx, *c.ParentID); err != nil {
			return err
		}
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, parent_id = ?, type = ?, icon = ?, color = ? WHERE id = ?",
		c.Name, c.ParentID, c.Type, c.Icon, c.Color, id)
	if err != nil {
		return fmt.Errorf("update category %d: %w", id, err)
	}
	return requireRow(res, id)
}

// DeleteCategory refuses to remove a category referenced by transactions,
// budgets, recurring rows, or child categories.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	var refs int
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM transactions WHERE category_id = ?1)
		     + (SELECT COUNT(*) FROM budgets WHERE category_id = ?1)
		     + (SELECT COUNT(*) FROM recurring_transactions WHERE category_id = ?1)
		     + (SELECT COUNT(*) FROM categories WHERE parent_id = ?1)`, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("count category references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: category %d is still referenced", core.ErrValidation, id)
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return requireRow(res, id)
}

func (s *Store) categoryExists(ctx context.Context, id int64) error {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM categories WHERE id = ?", id).Scan(&one)
	if err != nil {
		return notFoundIfNoRows(err)
	}
	return nil
}
