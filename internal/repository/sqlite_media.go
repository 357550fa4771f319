package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/csrdash/internal/db"
	"github.com/alexanderramin/csrdash/internal/domain"
)

// SQLiteMediaRepo implements MediaRepo using a SQLite database.
type SQLiteMediaRepo struct {
	db db.DBTX
}

func NewSQLiteMediaRepo(conn db.DBTX) *SQLiteMediaRepo {
	return &SQLiteMediaRepo{db: conn}
}

func (r *SQLiteMediaRepo) Create(ctx context.Context, m *domain.MediaArticle) error {
	query := `INSERT INTO media_articles (id, project_id, title, media_type, url, description, published_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.ProjectID, m.Title, string(m.MediaType), m.URL, m.Description,
		nullableTimeToString(m.PublishedAt, dateLayout), m.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting media article: %w", err)
	}
	return nil
}

func (r *SQLiteMediaRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.MediaArticle, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, project_id, title, media_type, url, description, published_at, created_at
		FROM media_articles WHERE project_id = ? ORDER BY published_at DESC, created_at DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing media articles: %w", err)
	}
	defer rows.Close()

	var articles []*domain.MediaArticle
	for rows.Next() {
		var m domain.MediaArticle
		var typeStr, createdAtStr string
		var publishedStr sql.NullString
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Title, &typeStr, &m.URL, &m.Description, &publishedStr, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning media article: %w", err)
		}
		m.MediaType = domain.MediaType(typeStr)
		m.PublishedAt = parseNullableTime(publishedStr, dateLayout)
		if m.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("parsing media created_at: %w", err)
		}
		articles = append(articles, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating media articles: %w", err)
	}
	return articles, nil
}

func (r *SQLiteMediaRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM media_articles WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting media article: %w", err)
	}
	return nil
}
