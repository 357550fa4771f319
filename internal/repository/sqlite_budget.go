package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/csrdash/internal/db"
	"github.com/alexanderramin/csrdash/internal/domain"
)

// SQLiteBudgetCategoryRepo implements BudgetCategoryRepo using a SQLite
// database. available_amount is derived on read, never stored.
type SQLiteBudgetCategoryRepo struct {
	db db.DBTX
}

func NewSQLiteBudgetCategoryRepo(conn db.DBTX) *SQLiteBudgetCategoryRepo {
	return &SQLiteBudgetCategoryRepo{db: conn}
}

const budgetSelect = `SELECT id, project_id, parent_id, name, allocated_amount, utilized_amount, pending_amount,
	allocated_amount - utilized_amount - pending_amount AS available_amount,
	order_index, created_at, updated_at FROM budget_categories`

func (r *SQLiteBudgetCategoryRepo) Create(ctx context.Context, c *domain.BudgetCategory) error {
	query := `INSERT INTO budget_categories (id, project_id, parent_id, name, allocated_amount, utilized_amount,
		pending_amount, order_index, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.ProjectID, nullableString(c.ParentID), c.Name,
		c.AllocatedAmount, c.UtilizedAmount, c.PendingAmount, c.OrderIndex,
		c.CreatedAt.Format(time.RFC3339), c.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting budget category: %w", err)
	}
	return nil
}

func (r *SQLiteBudgetCategoryRepo) GetByID(ctx context.Context, id string) (*domain.BudgetCategory, error) {
	row := r.db.QueryRowContext(ctx, budgetSelect+` WHERE id = ?`, id)
	c, err := scanBudgetCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("budget category %w", ErrNotFound)
	}
	return c, err
}

func (r *SQLiteBudgetCategoryRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.BudgetCategory, error) {
	rows, err := r.db.QueryContext(ctx, budgetSelect+` WHERE project_id = ? ORDER BY order_index, created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing budget categories: %w", err)
	}
	defer rows.Close()

	var cats []*domain.BudgetCategory
	for rows.Next() {
		c, err := scanBudgetCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budget categories: %w", err)
	}
	return cats, nil
}

func (r *SQLiteBudgetCategoryRepo) UpdateAmounts(ctx context.Context, c *domain.BudgetCategory) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE budget_categories SET utilized_amount = ?, pending_amount = ?, updated_at = ? WHERE id = ?`,
		c.UtilizedAmount, c.PendingAmount, c.UpdatedAt.Format(time.RFC3339), c.ID)
	if err != nil {
		return fmt.Errorf("updating budget category amounts: %w", err)
	}
	return nil
}

func (r *SQLiteBudgetCategoryRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM budget_categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting budget category: %w", err)
	}
	return nil
}

func (r *SQLiteBudgetCategoryRepo) DeleteByProject(ctx context.Context, projectID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM budget_categories WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("deleting project budget: %w", err)
	}
	return nil
}

func scanBudgetCategory(s rowScanner) (*domain.BudgetCategory, error) {
	var c domain.BudgetCategory
	var parentID sql.NullString
	var createdAtStr, updatedAtStr string
	err := s.Scan(
		&c.ID, &c.ProjectID, &parentID, &c.Name,
		&c.AllocatedAmount, &c.UtilizedAmount, &c.PendingAmount, &c.AvailableAmount,
		&c.OrderIndex, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning budget category: %w", err)
	}
	c.ParentID = parseNullableString(parentID)
	if err := parseTimestamps(createdAtStr, updatedAtStr, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("parsing budget category timestamps: %w", err)
	}
	return &c, nil
}
