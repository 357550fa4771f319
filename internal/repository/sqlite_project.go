package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/csrdash/internal/db"
	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/impact"
)

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

const projectColumns = `id, project_code, name, description, csr_partner_id, toll_id, status,
	total_budget, utilized_budget, direct_beneficiaries, indirect_beneficiaries,
	beneficiary_type, beneficiary_name, impact_metrics,
	parent_project_id, is_beneficiary_project, beneficiary_number,
	uc_link, location, state, work, start_date, end_date, is_active, created_at, updated_at`

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	metrics, err := impact.Encode(p.ImpactMetrics)
	if err != nil {
		return err
	}
	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.ProjectCode, p.Name, p.Description, p.CSRPartnerID, nullableString(p.TollID), string(p.Status),
		p.TotalBudget, p.UtilizedBudget, p.DirectBeneficiaries, p.IndirectBeneficiaries,
		p.BeneficiaryType, p.BeneficiaryName, metrics,
		nullableString(p.ParentProjectID), boolToInt(p.IsBeneficiaryProject), p.BeneficiaryNumber,
		p.UCLink, p.Location, p.State, p.Work,
		nullableTimeToString(p.StartDate, dateLayout), nullableTimeToString(p.EndDate, dateLayout),
		boolToInt(p.IsActive), p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return r.getOne(row)
}

func (r *SQLiteProjectRepo) GetByCode(ctx context.Context, code string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE UPPER(project_code) = UPPER(?)`, code)
	return r.getOne(row)
}

func (r *SQLiteProjectRepo) getOne(row *sql.Row) (*domain.Project, error) {
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %w", ErrNotFound)
	}
	return p, err
}

func (r *SQLiteProjectRepo) ListTopLevel(ctx context.Context) ([]*domain.Project, error) {
	return r.list(ctx, `SELECT `+projectColumns+` FROM projects
		WHERE parent_project_id IS NULL AND is_active = 1 ORDER BY project_code`)
}

func (r *SQLiteProjectRepo) ListByParent(ctx context.Context, parentID string) ([]*domain.Project, error) {
	return r.list(ctx, `SELECT `+projectColumns+` FROM projects
		WHERE parent_project_id = ? ORDER BY beneficiary_number, project_code`, parentID)
}

func (r *SQLiteProjectRepo) ListByPartner(ctx context.Context, partnerID string) ([]*domain.Project, error) {
	return r.list(ctx, `SELECT `+projectColumns+` FROM projects
		WHERE csr_partner_id = ? AND parent_project_id IS NULL ORDER BY project_code`, partnerID)
}

func (r *SQLiteProjectRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func (r *SQLiteProjectRepo) MaxBeneficiaryNumber(ctx context.Context, parentID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(beneficiary_number), 0) FROM projects WHERE parent_project_id = ?`, parentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("reading beneficiary numbers: %w", err)
	}
	return n, nil
}

func (r *SQLiteProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	metrics, err := impact.Encode(p.ImpactMetrics)
	if err != nil {
		return err
	}
	query := `UPDATE projects SET project_code = ?, name = ?, description = ?, toll_id = ?, status = ?,
		total_budget = ?, utilized_budget = ?, direct_beneficiaries = ?, indirect_beneficiaries = ?,
		beneficiary_type = ?, beneficiary_name = ?, impact_metrics = ?,
		uc_link = ?, location = ?, state = ?, work = ?, start_date = ?, end_date = ?, is_active = ?, updated_at = ?
		WHERE id = ?`
	_, err = r.db.ExecContext(ctx, query,
		p.ProjectCode, p.Name, p.Description, nullableString(p.TollID), string(p.Status),
		p.TotalBudget, p.UtilizedBudget, p.DirectBeneficiaries, p.IndirectBeneficiaries,
		p.BeneficiaryType, p.BeneficiaryName, metrics,
		p.UCLink, p.Location, p.State, p.Work,
		nullableTimeToString(p.StartDate, dateLayout), nullableTimeToString(p.EndDate, dateLayout),
		boolToInt(p.IsActive), p.UpdatedAt.Format(time.RFC3339), p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) UpdateImpactMetrics(ctx context.Context, p *domain.Project) error {
	metrics, err := impact.Encode(p.ImpactMetrics)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `UPDATE projects SET impact_metrics = ?, updated_at = ? WHERE id = ?`,
		metrics, p.UpdatedAt.Format(time.RFC3339), p.ID)
	if err != nil {
		return fmt.Errorf("updating impact metrics: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) DeleteByToll(ctx context.Context, tollID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE toll_id = ?`, tollID); err != nil {
		return fmt.Errorf("deleting toll projects: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) DeleteByPartner(ctx context.Context, partnerID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE csr_partner_id = ?`, partnerID); err != nil {
		return fmt.Errorf("deleting partner projects: %w", err)
	}
	return nil
}

func scanProject(s rowScanner) (*domain.Project, error) {
	var p domain.Project
	var tollID, parentID, startDateStr, endDateStr sql.NullString
	var statusStr, metricsStr, createdAtStr, updatedAtStr string
	var isBeneficiary, isActive int

	err := s.Scan(
		&p.ID, &p.ProjectCode, &p.Name, &p.Description, &p.CSRPartnerID, &tollID, &statusStr,
		&p.TotalBudget, &p.UtilizedBudget, &p.DirectBeneficiaries, &p.IndirectBeneficiaries,
		&p.BeneficiaryType, &p.BeneficiaryName, &metricsStr,
		&parentID, &isBeneficiary, &p.BeneficiaryNumber,
		&p.UCLink, &p.Location, &p.State, &p.Work, &startDateStr, &endDateStr,
		&isActive, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	p.Status = domain.ProjectStatus(statusStr)
	p.TollID = parseNullableString(tollID)
	p.ParentProjectID = parseNullableString(parentID)
	p.IsBeneficiaryProject = intToBool(isBeneficiary)
	p.IsActive = intToBool(isActive)
	p.StartDate = parseNullableTime(startDateStr, dateLayout)
	p.EndDate = parseNullableTime(endDateStr, dateLayout)

	if p.ImpactMetrics, err = impact.Decode(metricsStr); err != nil {
		return nil, fmt.Errorf("project %s: %w", p.ID, err)
	}
	if err := parseTimestamps(createdAtStr, updatedAtStr, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("parsing project timestamps: %w", err)
	}
	return &p, nil
}
