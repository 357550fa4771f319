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

// SQLiteTeamMemberRepo implements TeamMemberRepo using a SQLite database.
type SQLiteTeamMemberRepo struct {
	db db.DBTX
}

func NewSQLiteTeamMemberRepo(conn db.DBTX) *SQLiteTeamMemberRepo {
	return &SQLiteTeamMemberRepo{db: conn}
}

const teamColumns = `id, project_id, user_id, role, is_lead, access_level, is_active, created_at`

func (r *SQLiteTeamMemberRepo) Create(ctx context.Context, m *domain.TeamMember) error {
	query := `INSERT INTO project_team_members (` + teamColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.ProjectID, m.UserID, string(m.Role), boolToInt(m.IsLead), string(m.AccessLevel),
		boolToInt(m.IsActive), m.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting team member: %w", err)
	}
	return nil
}

func (r *SQLiteTeamMemberRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.TeamMember, error) {
	return r.list(ctx, `SELECT `+teamColumns+` FROM project_team_members
		WHERE project_id = ? AND is_active = 1 ORDER BY is_lead DESC, created_at`, projectID)
}

func (r *SQLiteTeamMemberRepo) ListByUser(ctx context.Context, userID string) ([]*domain.TeamMember, error) {
	return r.list(ctx, `SELECT `+teamColumns+` FROM project_team_members
		WHERE user_id = ? AND is_active = 1 ORDER BY created_at`, userID)
}

func (r *SQLiteTeamMemberRepo) GetByProjectAndUser(ctx context.Context, projectID, userID string) (*domain.TeamMember, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM project_team_members
		WHERE project_id = ? AND user_id = ? AND is_active = 1`, projectID, userID)
	m, err := scanTeamMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("team member %w", ErrNotFound)
	}
	return m, err
}

func (r *SQLiteTeamMemberRepo) DeleteByProject(ctx context.Context, projectID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM project_team_members WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("deleting team members: %w", err)
	}
	return nil
}

func (r *SQLiteTeamMemberRepo) list(ctx context.Context, query string, args ...any) ([]*domain.TeamMember, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing team members: %w", err)
	}
	defer rows.Close()

	var members []*domain.TeamMember
	for rows.Next() {
		m, err := scanTeamMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team members: %w", err)
	}
	return members, nil
}

func scanTeamMember(s rowScanner) (*domain.TeamMember, error) {
	var m domain.TeamMember
	var roleStr, accessStr, createdAtStr string
	var isLead, isActive int
	err := s.Scan(&m.ID, &m.ProjectID, &m.UserID, &roleStr, &isLead, &accessStr, &isActive, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning team member: %w", err)
	}
	m.Role = domain.TeamRole(roleStr)
	m.AccessLevel = domain.AccessLevel(accessStr)
	m.IsLead = intToBool(isLead)
	m.IsActive = intToBool(isActive)
	if err := parseTimestamps(createdAtStr, "", &m.CreatedAt, nil); err != nil {
		return nil, fmt.Errorf("parsing team member created_at: %w", err)
	}
	return &m, nil
}
