package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/repository"
	"github.com/alexanderramin/csrdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartnerService_Create_TrimsAndDefaults(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	p := &domain.CSRPartner{Name: "  Tata Trusts  ", Email: "csr@tata.example"}
	require.NoError(t, env.partners.Create(ctx, p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Tata Trusts", p.Name)
	assert.True(t, p.IsActive)

	fetched, err := env.partners.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tata Trusts", fetched.Name)
}

func TestPartnerService_Create_Validation(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		partner *domain.CSRPartner
	}{
		{"blank name", &domain.CSRPartner{Name: "   "}},
		{"bad email", &domain.CSRPartner{Name: "Infosys", Email: "not-an-email"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := env.partners.Create(ctx, tc.partner)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	all, err := env.partners.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, all, "invalid partners must not be stored")
}

func TestPartnerService_Deactivate_HidesFromActiveList(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	keep, _ := env.seedPartnerWithToll(t, "Keep")
	gone, _ := env.seedPartnerWithToll(t, "Gone")

	require.NoError(t, env.partners.Deactivate(ctx, gone.ID))

	active, err := env.partners.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, keep.ID, active[0].ID)

	all, err := env.partners.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	err = env.partners.Deactivate(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPartnerService_Delete_CascadesEverything(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	partner, toll := env.seedPartnerWithToll(t, "Cascade")
	parent := env.seedProject(t, partner.ID, "School Kits", 3, testutil.WithToll(toll.ID))
	_, err := env.team.ReplaceAll(ctx, parent.ID, []TeamAssignment{{UserID: "asha", Role: domain.TeamProjectManager}})
	require.NoError(t, err)
	require.Equal(t, 4, testutil.CountRows(t, env.db, "projects"))

	require.NoError(t, env.partners.Delete(ctx, partner.ID))

	for _, table := range []string{"csr_partners", "tolls", "projects", "project_team_members"} {
		assert.Zero(t, testutil.CountRows(t, env.db, table), table)
	}

	_, err = env.partners.GetByID(ctx, partner.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = env.tolls.GetByID(ctx, toll.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = env.projects.GetByID(ctx, parent.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	subs, err := env.projects.ListSubProjects(ctx, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestPartnerService_Delete_RollsBackOnFailure(t *testing.T) {
	database := testutil.NewTestDB(t)

	// Seed through a healthy env, then delete through one sharing the same
	// database whose partner-row delete fails after the children are gone.
	healthy := setupServicesWithUoW(t, database, testutil.NewTestUoW(database))
	partner, toll := healthy.seedPartnerWithToll(t, "Rollback")
	project := healthy.seedProject(t, partner.ID, "Clean Water", 2, testutil.WithToll(toll.ID))

	failing := setupServicesWithUoW(t, database, &testutil.FailingUoW{
		DB:     database,
		Match:  "DELETE FROM csr_partners",
		FailOn: 1,
		Err:    errors.New("injected partner delete failure"),
	})
	err := failing.partners.Delete(context.Background(), partner.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected partner delete failure")

	ctx := context.Background()
	_, err = healthy.partners.GetByID(ctx, partner.ID)
	assert.NoError(t, err, "partner must survive the failed delete")
	_, err = healthy.tolls.GetByID(ctx, toll.ID)
	assert.NoError(t, err, "toll must survive the failed delete")
	subs, err := healthy.projects.ListSubProjects(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 2, "projects must survive the failed delete")
}

func TestTollService_CreateRequiresPartnerAndName(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	partner, _ := env.seedPartnerWithToll(t, "Reliance")

	err := env.tolls.Create(ctx, &domain.Toll{CSRPartnerID: partner.ID})
	assert.ErrorIs(t, err, ErrValidation, "toll needs a name or a point of contact")

	err = env.tolls.Create(ctx, &domain.Toll{CSRPartnerID: "missing", TollName: "Ghost"})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	poc := &domain.Toll{CSRPartnerID: partner.ID, POCName: "R. Sharma"}
	require.NoError(t, env.tolls.Create(ctx, poc))
	assert.Equal(t, "R. Sharma", poc.DisplayName())

	tolls, err := env.tolls.ListByPartner(ctx, partner.ID)
	require.NoError(t, err)
	assert.Len(t, tolls, 2)
}

func TestTollService_Delete_RemovesTollProjectsOnly(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	partner, toll := env.seedPartnerWithToll(t, "Adani")
	viaToll := env.seedProject(t, partner.ID, "Toll Project", 1, testutil.WithToll(toll.ID))
	direct := env.seedProject(t, partner.ID, "Direct Project", 0)

	require.NoError(t, env.tolls.Delete(ctx, toll.ID))

	_, err := env.projects.GetByID(ctx, viaToll.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = env.projects.GetByID(ctx, direct.ID)
	assert.NoError(t, err)
	_, err = env.partners.GetByID(ctx, partner.ID)
	assert.NoError(t, err)
}
