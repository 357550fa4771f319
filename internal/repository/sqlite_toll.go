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

// SQLiteTollRepo implements TollRepo using a SQLite database.
type SQLiteTollRepo struct {
	db db.DBTX
}

func NewSQLiteTollRepo(conn db.DBTX) *SQLiteTollRepo {
	return &SQLiteTollRepo{db: conn}
}

const tollColumns = `id, csr_partner_id, toll_name, poc_name, city, state, location, budget_allocation, is_active, created_at, updated_at`

func (r *SQLiteTollRepo) Create(ctx context.Context, t *domain.Toll) error {
	query := `INSERT INTO tolls (` + tollColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.CSRPartnerID, t.TollName, t.POCName, t.City, t.State, t.Location,
		t.BudgetAllocation, boolToInt(t.IsActive),
		t.CreatedAt.Format(time.RFC3339), t.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting toll: %w", err)
	}
	return nil
}

func (r *SQLiteTollRepo) GetByID(ctx context.Context, id string) (*domain.Toll, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tollColumns+` FROM tolls WHERE id = ?`, id)
	t, err := scanToll(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("toll %w", ErrNotFound)
	}
	return t, err
}

func (r *SQLiteTollRepo) ListByPartner(ctx context.Context, partnerID string, includeInactive bool) ([]*domain.Toll, error) {
	query := `SELECT ` + tollColumns + ` FROM tolls WHERE csr_partner_id = ? AND is_active = 1 ORDER BY toll_name, poc_name`
	if includeInactive {
		query = `SELECT ` + tollColumns + ` FROM tolls WHERE csr_partner_id = ? ORDER BY toll_name, poc_name`
	}
	rows, err := r.db.QueryContext(ctx, query, partnerID)
	if err != nil {
		return nil, fmt.Errorf("listing tolls: %w", err)
	}
	defer rows.Close()

	var tolls []*domain.Toll
	for rows.Next() {
		t, err := scanToll(rows)
		if err != nil {
			return nil, err
		}
		tolls = append(tolls, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tolls: %w", err)
	}
	return tolls, nil
}

func (r *SQLiteTollRepo) Update(ctx context.Context, t *domain.Toll) error {
	query := `UPDATE tolls SET toll_name = ?, poc_name = ?, city = ?, state = ?, location = ?,
		budget_allocation = ?, is_active = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		t.TollName, t.POCName, t.City, t.State, t.Location,
		t.BudgetAllocation, boolToInt(t.IsActive), t.UpdatedAt.Format(time.RFC3339), t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating toll: %w", err)
	}
	return nil
}

func (r *SQLiteTollRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tolls WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting toll: %w", err)
	}
	return nil
}

func (r *SQLiteTollRepo) DeleteByPartner(ctx context.Context, partnerID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tolls WHERE csr_partner_id = ?`, partnerID); err != nil {
		return fmt.Errorf("deleting partner tolls: %w", err)
	}
	return nil
}

func scanToll(s rowScanner) (*domain.Toll, error) {
	var t domain.Toll
	var isActive int
	var createdAtStr, updatedAtStr string
	err := s.Scan(
		&t.ID, &t.CSRPartnerID, &t.TollName, &t.POCName, &t.City, &t.State, &t.Location,
		&t.BudgetAllocation, &isActive, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning toll: %w", err)
	}
	t.IsActive = intToBool(isActive)
	if err := parseTimestamps(createdAtStr, updatedAtStr, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, fmt.Errorf("parsing toll timestamps: %w", err)
	}
	return &t, nil
}
