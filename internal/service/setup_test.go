package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/csrdash/internal/db"
	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/repository"
	"github.com/alexanderramin/csrdash/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db       *sql.DB
	partners PartnerService
	tolls    TollService
	projects ProjectService
	team     TeamService
	budget   BudgetService
	activity ActivityService
	media    MediaService
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	return setupServicesWithUoW(t, database, testutil.NewTestUoW(database))
}

func setupServicesWithUoW(t *testing.T, database *sql.DB, uow db.UnitOfWork) *testEnv {
	t.Helper()
	partnerRepo := repository.NewSQLitePartnerRepo(database)
	tollRepo := repository.NewSQLiteTollRepo(database)
	projectRepo := repository.NewSQLiteProjectRepo(database)
	return &testEnv{
		db:       database,
		partners: NewPartnerService(partnerRepo, uow),
		tolls:    NewTollService(tollRepo, partnerRepo, uow),
		projects: NewProjectService(projectRepo, partnerRepo, tollRepo, uow),
		team:     NewTeamService(repository.NewSQLiteTeamMemberRepo(database), projectRepo, uow),
		budget:   NewBudgetService(repository.NewSQLiteBudgetCategoryRepo(database), projectRepo, uow),
		activity: NewActivityService(repository.NewSQLiteActivityRepo(database), projectRepo, uow),
		media:    NewMediaService(repository.NewSQLiteMediaRepo(database), projectRepo),
	}
}

// seedPartnerWithToll creates an active partner and one toll under it.
func (e *testEnv) seedPartnerWithToll(t *testing.T, name string) (*domain.CSRPartner, *domain.Toll) {
	t.Helper()
	ctx := context.Background()
	partner := &domain.CSRPartner{Name: name, CompanyName: name + " Ltd", HasToll: true}
	require.NoError(t, e.partners.Create(ctx, partner))
	toll := testutil.NewTestToll(partner.ID, name+" Plaza")
	toll.ID = ""
	require.NoError(t, e.tolls.Create(ctx, toll))
	return partner, toll
}

func (e *testEnv) seedProject(t *testing.T, partnerID, name string, beneficiaries int, opts ...testutil.ProjectOption) *domain.Project {
	t.Helper()
	p := testutil.NewTestProject(partnerID, name, opts...)
	require.NoError(t, e.projects.Create(context.Background(), p, beneficiaries))
	return p
}
