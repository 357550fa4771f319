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

// SQLiteActivityRepo implements ActivityRepo using a SQLite database.
// Activities are returned with their checklist items attached.
type SQLiteActivityRepo struct {
	db db.DBTX
}

func NewSQLiteActivityRepo(conn db.DBTX) *SQLiteActivityRepo {
	return &SQLiteActivityRepo{db: conn}
}

const activityColumns = `id, project_id, title, description, status, priority, start_date, end_date,
	responsible_person, created_at, updated_at`

const itemColumns = `id, activity_id, title, is_completed, order_index, completed_at`

func (r *SQLiteActivityRepo) Create(ctx context.Context, a *domain.Activity) error {
	query := `INSERT INTO project_activities (` + activityColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.ProjectID, a.Title, a.Description, string(a.Status), string(a.Priority),
		nullableTimeToString(a.StartDate, dateLayout), nullableTimeToString(a.EndDate, dateLayout),
		a.ResponsiblePerson, a.CreatedAt.Format(time.RFC3339), a.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	for i := range a.Items {
		a.Items[i].ActivityID = a.ID
		if err := r.CreateItem(ctx, &a.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteActivityRepo) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM project_activities WHERE id = ?`, id)
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("activity %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	byActivity, err := r.itemsFor(ctx, `WHERE activity_id = ?`, id)
	if err != nil {
		return nil, err
	}
	a.Items = byActivity[a.ID]
	return a, nil
}

func (r *SQLiteActivityRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Activity, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+activityColumns+` FROM project_activities
		WHERE project_id = ? ORDER BY start_date IS NULL, start_date, created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	var activities []*domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	rows.Close()

	byActivity, err := r.itemsFor(ctx, `WHERE activity_id IN (SELECT id FROM project_activities WHERE project_id = ?)`, projectID)
	if err != nil {
		return nil, err
	}
	for _, a := range activities {
		a.Items = byActivity[a.ID]
	}
	return activities, nil
}

// itemsFor loads checklist items matching where, grouped by activity.
func (r *SQLiteActivityRepo) itemsFor(ctx context.Context, where string, args ...any) (map[string][]domain.ActivityItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM activity_items `+where+` ORDER BY order_index`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing activity items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.ActivityItem)
	for rows.Next() {
		it, err := scanActivityItem(rows)
		if err != nil {
			return nil, err
		}
		out[it.ActivityID] = append(out[it.ActivityID], *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity items: %w", err)
	}
	return out, nil
}

func (r *SQLiteActivityRepo) Update(ctx context.Context, a *domain.Activity) error {
	query := `UPDATE project_activities SET title = ?, description = ?, status = ?, priority = ?,
		start_date = ?, end_date = ?, responsible_person = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		a.Title, a.Description, string(a.Status), string(a.Priority),
		nullableTimeToString(a.StartDate, dateLayout), nullableTimeToString(a.EndDate, dateLayout),
		a.ResponsiblePerson, a.UpdatedAt.Format(time.RFC3339), a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating activity: %w", err)
	}
	return nil
}

func (r *SQLiteActivityRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM project_activities WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}
	return nil
}

func (r *SQLiteActivityRepo) CreateItem(ctx context.Context, it *domain.ActivityItem) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO activity_items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		it.ID, it.ActivityID, it.Title, boolToInt(it.IsCompleted), it.OrderIndex,
		nullableTimeToString(it.CompletedAt, time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting activity item: %w", err)
	}
	return nil
}

func (r *SQLiteActivityRepo) GetItem(ctx context.Context, id string) (*domain.ActivityItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM activity_items WHERE id = ?`, id)
	it, err := scanActivityItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("activity item %w", ErrNotFound)
	}
	return it, err
}

func (r *SQLiteActivityRepo) UpdateItem(ctx context.Context, it *domain.ActivityItem) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE activity_items SET title = ?, is_completed = ?, order_index = ?, completed_at = ? WHERE id = ?`,
		it.Title, boolToInt(it.IsCompleted), it.OrderIndex, nullableTimeToString(it.CompletedAt, time.RFC3339), it.ID)
	if err != nil {
		return fmt.Errorf("updating activity item: %w", err)
	}
	return nil
}

func (r *SQLiteActivityRepo) DeleteItem(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM activity_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting activity item: %w", err)
	}
	return nil
}

func scanActivity(s rowScanner) (*domain.Activity, error) {
	var a domain.Activity
	var statusStr, priorityStr, createdAtStr, updatedAtStr string
	var startStr, endStr sql.NullString
	err := s.Scan(
		&a.ID, &a.ProjectID, &a.Title, &a.Description, &statusStr, &priorityStr,
		&startStr, &endStr, &a.ResponsiblePerson, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning activity: %w", err)
	}
	a.Status = domain.ActivityStatus(statusStr)
	a.Priority = domain.Priority(priorityStr)
	a.StartDate = parseNullableTime(startStr, dateLayout)
	a.EndDate = parseNullableTime(endStr, dateLayout)
	if err := parseTimestamps(createdAtStr, updatedAtStr, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, fmt.Errorf("parsing activity timestamps: %w", err)
	}
	return &a, nil
}

func scanActivityItem(s rowScanner) (*domain.ActivityItem, error) {
	var it domain.ActivityItem
	var done int
	var completedStr sql.NullString
	if err := s.Scan(&it.ID, &it.ActivityID, &it.Title, &done, &it.OrderIndex, &completedStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning activity item: %w", err)
	}
	it.IsCompleted = intToBool(done)
	it.CompletedAt = parseNullableTime(completedStr, time.RFC3339)
	return &it, nil
}
