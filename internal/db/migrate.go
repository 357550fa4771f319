package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillBeneficiaryNumbers(db); err != nil {
		return fmt.Errorf("backfilling beneficiary numbers: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS csr_partners (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		company_name   TEXT NOT NULL DEFAULT '',
		contact_person TEXT NOT NULL DEFAULT '',
		email          TEXT NOT NULL DEFAULT '',
		phone          TEXT NOT NULL DEFAULT '',
		has_toll       INTEGER NOT NULL DEFAULT 0,
		is_active      INTEGER NOT NULL DEFAULT 1,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_csr_partners_active ON csr_partners(is_active)`,

	`CREATE TABLE IF NOT EXISTS tolls (
		id                TEXT PRIMARY KEY,
		csr_partner_id    TEXT NOT NULL REFERENCES csr_partners(id) ON DELETE CASCADE,
		toll_name         TEXT NOT NULL DEFAULT '',
		poc_name          TEXT NOT NULL DEFAULT '',
		city              TEXT NOT NULL DEFAULT '',
		state             TEXT NOT NULL DEFAULT '',
		location          TEXT NOT NULL DEFAULT '',
		budget_allocation REAL NOT NULL DEFAULT 0 CHECK(budget_allocation >= 0),
		is_active         INTEGER NOT NULL DEFAULT 1,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tolls_partner ON tolls(csr_partner_id)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id                     TEXT PRIMARY KEY,
		project_code           TEXT NOT NULL UNIQUE,
		name                   TEXT NOT NULL,
		description            TEXT NOT NULL DEFAULT '',
		csr_partner_id         TEXT NOT NULL REFERENCES csr_partners(id) ON DELETE CASCADE,
		toll_id                TEXT REFERENCES tolls(id) ON DELETE CASCADE,
		status                 TEXT NOT NULL DEFAULT 'planning'
		                       CHECK(status IN ('planning','active','on_hold','completed','cancelled','archived')),
		total_budget           REAL NOT NULL DEFAULT 0,
		utilized_budget        REAL NOT NULL DEFAULT 0,
		direct_beneficiaries   INTEGER NOT NULL DEFAULT 0,
		indirect_beneficiaries INTEGER NOT NULL DEFAULT 0,
		beneficiary_type       TEXT NOT NULL DEFAULT '',
		beneficiary_name       TEXT NOT NULL DEFAULT '',
		impact_metrics         TEXT NOT NULL DEFAULT '[]',
		parent_project_id      TEXT REFERENCES projects(id) ON DELETE CASCADE,
		is_beneficiary_project INTEGER NOT NULL DEFAULT 0,
		uc_link                TEXT NOT NULL DEFAULT '',
		location               TEXT NOT NULL DEFAULT '',
		state                  TEXT NOT NULL DEFAULT '',
		work                   TEXT NOT NULL DEFAULT '',
		start_date             TEXT,
		end_date               TEXT,
		is_active              INTEGER NOT NULL DEFAULT 1,
		created_at             TEXT NOT NULL,
		updated_at             TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_projects_partner ON projects(csr_partner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_toll ON projects(toll_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_parent ON projects(parent_project_id)`,

	`CREATE TABLE IF NOT EXISTS project_team_members (
		id           TEXT PRIMARY KEY,
		project_id   TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		user_id      TEXT NOT NULL,
		role         TEXT NOT NULL
		             CHECK(role IN ('project_manager','accountant','team_member')),
		is_lead      INTEGER NOT NULL DEFAULT 0,
		access_level TEXT NOT NULL DEFAULT 'standard'
		             CHECK(access_level IN ('full','standard')),
		is_active    INTEGER NOT NULL DEFAULT 1,
		created_at   TEXT NOT NULL,
		UNIQUE(project_id, user_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_team_members_user ON project_team_members(user_id)`,

	`CREATE TABLE IF NOT EXISTS budget_categories (
		id               TEXT PRIMARY KEY,
		project_id       TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		parent_id        TEXT REFERENCES budget_categories(id) ON DELETE CASCADE,
		name             TEXT NOT NULL,
		allocated_amount REAL NOT NULL DEFAULT 0 CHECK(allocated_amount >= 0),
		utilized_amount  REAL NOT NULL DEFAULT 0,
		pending_amount   REAL NOT NULL DEFAULT 0,
		order_index      INTEGER NOT NULL DEFAULT 0,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_budget_categories_project ON budget_categories(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_budget_categories_parent ON budget_categories(parent_id)`,

	`CREATE TABLE IF NOT EXISTS project_activities (
		id                 TEXT PRIMARY KEY,
		project_id         TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title              TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		status             TEXT NOT NULL DEFAULT 'not_started'
		                   CHECK(status IN ('not_started','in_progress','completed','on_hold','cancelled')),
		priority           TEXT NOT NULL DEFAULT 'medium'
		                   CHECK(priority IN ('low','medium','high','urgent')),
		start_date         TEXT,
		end_date           TEXT,
		responsible_person TEXT NOT NULL DEFAULT '',
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_activities_project ON project_activities(project_id)`,

	`CREATE TABLE IF NOT EXISTS activity_items (
		id           TEXT PRIMARY KEY,
		activity_id  TEXT NOT NULL REFERENCES project_activities(id) ON DELETE CASCADE,
		title        TEXT NOT NULL,
		is_completed INTEGER NOT NULL DEFAULT 0,
		order_index  INTEGER NOT NULL DEFAULT 0,
		completed_at TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_activity_items_activity ON activity_items(activity_id)`,

	`CREATE TABLE IF NOT EXISTS media_articles (
		id           TEXT PRIMARY KEY,
		project_id   TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title        TEXT NOT NULL,
		media_type   TEXT NOT NULL DEFAULT 'photo'
		             CHECK(media_type IN ('photo','video','news','document')),
		url          TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		published_at TEXT,
		created_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_media_project ON media_articles(project_id)`,

	// Sub-project numbering, added after the first beneficiary imports.
	`ALTER TABLE projects ADD COLUMN beneficiary_number INTEGER NOT NULL DEFAULT 0`,
}

// migrateBackfillBeneficiaryNumbers numbers beneficiary sub-projects that
// predate the beneficiary_number column, in project_code order per parent.
// Idempotent: only rows still at 0 are touched.
func migrateBackfillBeneficiaryNumbers(db *sql.DB) error {
	ctx := context.Background()

	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects WHERE parent_project_id IS NOT NULL AND beneficiary_number = 0`).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking beneficiary numbers: %w", err)
	}
	if count == 0 {
		return nil
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, parent_project_id FROM projects
		 WHERE parent_project_id IS NOT NULL
		 ORDER BY parent_project_id, project_code`)
	if err != nil {
		return fmt.Errorf("listing sub-projects: %w", err)
	}
	type row struct{ id, parent string }
	var subs []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.parent); err != nil {
			rows.Close()
			return fmt.Errorf("scanning sub-project: %w", err)
		}
		subs = append(subs, r)
	}
	rows.Close()

	n, parent := 0, ""
	for _, r := range subs {
		if r.parent != parent {
			parent, n = r.parent, 0
		}
		n++
		if _, err := db.ExecContext(ctx,
			`UPDATE projects SET beneficiary_number = ? WHERE id = ? AND beneficiary_number = 0`, n, r.id); err != nil {
			return fmt.Errorf("updating beneficiary number: %w", err)
		}
	}
	return nil
}
