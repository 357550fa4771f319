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

// SQLitePartnerRepo implements PartnerRepo using a SQLite database.
type SQLitePartnerRepo struct {
	db db.DBTX
}

func NewSQLitePartnerRepo(conn db.DBTX) *SQLitePartnerRepo {
	return &SQLitePartnerRepo{db: conn}
}

const partnerColumns = `id, name, company_name, contact_person, email, phone, has_toll, is_active, created_at, updated_at`

func (r *SQLitePartnerRepo) Create(ctx context.Context, p *domain.CSRPartner) error {
	query := `INSERT INTO csr_partners (` + partnerColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.CompanyName, p.ContactPerson, p.Email, p.Phone,
		boolToInt(p.HasToll), boolToInt(p.IsActive),
		p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting partner: %w", err)
	}
	return nil
}

func (r *SQLitePartnerRepo) GetByID(ctx context.Context, id string) (*domain.CSRPartner, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+partnerColumns+` FROM csr_partners WHERE id = ?`, id)
	p, err := scanPartner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("partner %w", ErrNotFound)
	}
	return p, err
}

func (r *SQLitePartnerRepo) List(ctx context.Context, includeInactive bool) ([]*domain.CSRPartner, error) {
	query := `SELECT ` + partnerColumns + ` FROM csr_partners WHERE is_active = 1 ORDER BY name`
	if includeInactive {
		query = `SELECT ` + partnerColumns + ` FROM csr_partners ORDER BY name`
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing partners: %w", err)
	}
	defer rows.Close()

	var partners []*domain.CSRPartner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating partners: %w", err)
	}
	return partners, nil
}

func (r *SQLitePartnerRepo) Update(ctx context.Context, p *domain.CSRPartner) error {
	query := `UPDATE csr_partners SET name = ?, company_name = ?, contact_person = ?, email = ?, phone = ?,
		has_toll = ?, is_active = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		p.Name, p.CompanyName, p.ContactPerson, p.Email, p.Phone,
		boolToInt(p.HasToll), boolToInt(p.IsActive), p.UpdatedAt.Format(time.RFC3339), p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating partner: %w", err)
	}
	return nil
}

func (r *SQLitePartnerRepo) Deactivate(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE csr_partners SET is_active = 0, updated_at = ? WHERE id = ?`, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("deactivating partner: %w", err)
	}
	return nil
}

func (r *SQLitePartnerRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM csr_partners WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting partner: %w", err)
	}
	return nil
}

func scanPartner(s rowScanner) (*domain.CSRPartner, error) {
	var p domain.CSRPartner
	var hasToll, isActive int
	var createdAtStr, updatedAtStr string
	err := s.Scan(
		&p.ID, &p.Name, &p.CompanyName, &p.ContactPerson, &p.Email, &p.Phone,
		&hasToll, &isActive, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning partner: %w", err)
	}
	p.HasToll = intToBool(hasToll)
	p.IsActive = intToBool(isActive)
	if err := parseTimestamps(createdAtStr, updatedAtStr, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("parsing partner timestamps: %w", err)
	}
	return &p, nil
}
