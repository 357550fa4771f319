package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/impact"
	"github.com/alexanderramin/csrdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedPartner inserts a partner with the given tolls.
func seedPartner(t *testing.T, conn *sql.DB, name string, tollNames ...string) (*domain.CSRPartner, []*domain.Toll) {
	t.Helper()
	ctx := context.Background()
	partner := testutil.NewTestPartner(name)
	require.NoError(t, NewSQLitePartnerRepo(conn).Create(ctx, partner))
	var tolls []*domain.Toll
	for _, tn := range tollNames {
		tl := testutil.NewTestToll(partner.ID, tn)
		require.NoError(t, NewSQLiteTollRepo(conn).Create(ctx, tl))
		tolls = append(tolls, tl)
	}
	return partner, tolls
}

func TestProjectRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()
	partner, tolls := seedPartner(t, db, "Shell", "T1")

	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	proj := testutil.NewTestProject(partner.ID, "Sanitation Drive",
		testutil.WithToll(tolls[0].ID),
		testutil.WithBudget(50000, 12000),
		testutil.WithMetrics(
			impact.Entry{Key: impact.KeyToiletsBuilt, Value: 4},
			impact.Entry{Key: impact.KeyCustom, Value: 2, CustomLabel: "Wells"},
		),
	)
	proj.EndDate = &end
	proj.UCLink = "https://example.org/uc.pdf"
	require.NoError(t, repo.Create(ctx, proj))

	fetched, err := repo.GetByID(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, proj.ProjectCode, fetched.ProjectCode)
	assert.Equal(t, "Sanitation Drive", fetched.Name)
	assert.Equal(t, domain.ProjectActive, fetched.Status)
	require.NotNil(t, fetched.TollID)
	assert.Equal(t, tolls[0].ID, *fetched.TollID)
	assert.Nil(t, fetched.ParentProjectID)
	assert.Equal(t, 50000.0, fetched.TotalBudget)
	assert.Equal(t, proj.ImpactMetrics, fetched.ImpactMetrics)
	require.NotNil(t, fetched.EndDate)
	assert.Equal(t, "2025-12-31", fetched.EndDate.Format("2006-01-02"))
	assert.Equal(t, proj.CreatedAt, fetched.CreatedAt)
}

func TestProjectRepo_GetByCode_CaseInsensitive(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()
	partner, _ := seedPartner(t, db, "Shell")

	proj := testutil.NewTestProject(partner.ID, "Library", testutil.WithProjectCode("SHN-LIB-01"))
	require.NoError(t, repo.Create(ctx, proj))

	fetched, err := repo.GetByCode(ctx, "shn-lib-01")
	require.NoError(t, err)
	assert.Equal(t, proj.ID, fetched.ID)
}

func TestProjectRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)

	_, err := repo.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "project not found")
}

func TestProjectRepo_ListTopLevel_ExcludesSubProjectsAndInactive(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()
	partner, _ := seedPartner(t, db, "Shell")

	parent := testutil.NewTestProject(partner.ID, "Parent", testutil.WithProjectCode("AAA-001"))
	other := testutil.NewTestProject(partner.ID, "Other", testutil.WithProjectCode("AAA-000"))
	inactive := testutil.NewTestProject(partner.ID, "Inactive")
	inactive.IsActive = false
	require.NoError(t, repo.Create(ctx, parent))
	require.NoError(t, repo.Create(ctx, other))
	require.NoError(t, repo.Create(ctx, inactive))
	sub := domain.NewBeneficiarySubProject(parent, 1, "sub-1", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, repo.Create(ctx, sub))

	list, err := repo.ListTopLevel(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "AAA-000", list[0].ProjectCode, "ordered by code")
	assert.Equal(t, "AAA-001", list[1].ProjectCode)

	subs, err := repo.ListByParent(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "AAA-001-B001", subs[0].ProjectCode)
	assert.True(t, subs[0].IsBeneficiaryProject)
	assert.Equal(t, 1, subs[0].DirectBeneficiaries)

	maxN, err := repo.MaxBeneficiaryNumber(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, maxN)
}

func TestProjectRepo_UpdateImpactMetrics(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()
	partner, _ := seedPartner(t, db, "Shell")

	proj := testutil.NewTestProject(partner.ID, "Meals")
	require.NoError(t, repo.Create(ctx, proj))

	proj.ImpactMetrics = impact.Upsert(proj.ImpactMetrics, impact.KeyMealsServed, 1200, "")
	require.NoError(t, repo.UpdateImpactMetrics(ctx, proj))

	fetched, err := repo.GetByID(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, impact.ValueOf(fetched.ImpactMetrics, string(impact.KeyMealsServed)))
}

func TestProjectRepo_Update(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()
	partner, _ := seedPartner(t, db, "Shell")

	proj := testutil.NewTestProject(partner.ID, "School")
	require.NoError(t, repo.Create(ctx, proj))

	proj.Status = domain.ProjectCompleted
	proj.UtilizedBudget = 900
	proj.TollID = nil
	require.NoError(t, repo.Update(ctx, proj))

	fetched, err := repo.GetByID(ctx, proj.ID)
	require.NoError(t, err)
	assert.True(t, fetched.IsCompleted())
	assert.Equal(t, 900.0, fetched.UtilizedBudget)
}

func TestProjectRepo_DuplicateCodeRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()
	partner, _ := seedPartner(t, db, "Shell")

	require.NoError(t, repo.Create(ctx, testutil.NewTestProject(partner.ID, "A", testutil.WithProjectCode("DUP-001"))))
	err := repo.Create(ctx, testutil.NewTestProject(partner.ID, "B", testutil.WithProjectCode("DUP-001")))
	assert.Error(t, err)
}
