package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/impact"
	"github.com/alexanderramin/csrdash/internal/repository"
	"github.com/alexanderramin/csrdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectService_Create_WithBeneficiaries(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	partner, toll := env.seedPartnerWithToll(t, "HDFC")

	parent := testutil.NewTestProject(partner.ID, "Sanitary Pads", testutil.WithToll(toll.ID), testutil.WithProjectCode("pads-01"))
	parent.Status = ""
	parent.Location = "Nagpur"
	require.NoError(t, env.projects.Create(ctx, parent, 3))

	assert.Equal(t, "PADS-01", parent.ProjectCode, "codes are normalised to upper case")
	assert.Equal(t, domain.ProjectPlanning, parent.Status)

	subs, err := env.projects.ListSubProjects(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, subs, 3)
	for i, sub := range subs {
		assert.Equal(t, i+1, sub.BeneficiaryNumber)
		assert.True(t, sub.IsSubProject())
		assert.Equal(t, partner.ID, sub.CSRPartnerID)
		assert.Equal(t, toll.ID, domain.StrVal(sub.TollID))
		assert.Equal(t, "Nagpur", sub.Location)
	}
	assert.Equal(t, "PADS-01-B001", subs[0].ProjectCode)

	top, err := env.projects.ListTopLevel(ctx)
	require.NoError(t, err)
	require.Len(t, top, 1, "sub-projects are not top level")
	assert.Equal(t, parent.ID, top[0].ID)
}

func TestProjectService_Create_Rejects(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	partner, _ := env.seedPartnerWithToll(t, "Wipro")
	_, otherToll := env.seedPartnerWithToll(t, "Other")

	tests := []struct {
		name    string
		project *domain.Project
		n       int
		wantErr error
	}{
		{"blank name", testutil.NewTestProject(partner.ID, "  "), 0, ErrValidation},
		{"bad code", testutil.NewTestProject(partner.ID, "X", testutil.WithProjectCode("a")), 0, ErrValidation},
		{"negative budget", testutil.NewTestProject(partner.ID, "X", testutil.WithBudget(-1, 0)), 0, ErrValidation},
		{"unknown partner", testutil.NewTestProject("missing", "X"), 0, repository.ErrNotFound},
		{"foreign toll", testutil.NewTestProject(partner.ID, "X", testutil.WithToll(otherToll.ID)), 0, ErrValidation},
		{"too many beneficiaries", testutil.NewTestProject(partner.ID, "X"), MaxBeneficiaries + 1, ErrValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := env.projects.Create(ctx, tc.project, tc.n)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestProjectService_Create_DuplicateCode(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	partner, _ := env.seedPartnerWithToll(t, "ITC")
	env.seedProject(t, partner.ID, "First", 0, testutil.WithProjectCode("DUP-001"))

	err := env.projects.Create(ctx, testutil.NewTestProject(partner.ID, "Second", testutil.WithProjectCode("DUP-001")), 0)
	assert.Error(t, err)
}

func TestProjectService_Create_RollsBackSubProjects(t *testing.T) {
	database := testutil.NewTestDB(t)
	healthy := setupServicesWithUoW(t, database, testutil.NewTestUoW(database))
	partner, _ := healthy.seedPartnerWithToll(t, "Mahindra")

	failing := setupServicesWithUoW(t, database, &testutil.FailingUoW{
		DB:     database,
		Match:  "INSERT INTO projects",
		FailOn: 4,
		Err:    errors.New("injected sub-project failure"),
	})
	parent := testutil.NewTestProject(partner.ID, "Trees")
	err := failing.projects.Create(context.Background(), parent, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating beneficiary 3")

	_, err = healthy.projects.GetByID(context.Background(), parent.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound, "parent insert must roll back")
}

func TestProjectService_AddBeneficiaries_ContinuesNumbering(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	partner, _ := env.seedPartnerWithToll(t, "Bajaj")
	parent := env.seedProject(t, partner.ID, "Meals", 2)

	added, err := env.projects.AddBeneficiaries(ctx, parent.ID, 2)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, 3, added[0].BeneficiaryNumber)
	assert.Equal(t, 4, added[1].BeneficiaryNumber)

	_, err = env.projects.AddBeneficiaries(ctx, added[0].ID, 1)
	assert.ErrorIs(t, err, ErrValidation, "sub-projects cannot have beneficiaries")

	_, err = env.projects.AddBeneficiaries(ctx, parent.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProjectService_Update_PropagatesToSubProjects(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	partner, toll := env.seedPartnerWithToll(t, "L&T")
	parent := env.seedProject(t, partner.ID, "Schools", 2)

	parent.TollID = &toll.ID
	parent.Location = "Thane"
	parent.State = "Maharashtra"
	parent.Work = "Renovation"
	parent.Status = domain.ProjectOnHold
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	parent.StartDate = &start
	parent.EndDate = &end
	require.NoError(t, env.projects.Update(ctx, parent))

	subs, err := env.projects.ListSubProjects(ctx, parent.ID)
	require.NoError(t, err)
	for _, sub := range subs {
		assert.Equal(t, toll.ID, domain.StrVal(sub.TollID))
		assert.Equal(t, "Thane", sub.Location)
		assert.Equal(t, "Maharashtra", sub.State)
		assert.Equal(t, "Renovation", sub.Work)
		assert.Equal(t, domain.ProjectOnHold, sub.Status)
		require.NotNil(t, sub.StartDate)
		require.NotNil(t, sub.EndDate)
		assert.True(t, start.Equal(*sub.StartDate))
		assert.True(t, end.Equal(*sub.EndDate))
	}
}

func TestProjectService_Resolve_ByIDOrCode(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	partner, _ := env.seedPartnerWithToll(t, "Resolve")
	p := env.seedProject(t, partner.ID, "Lookup", 0, testutil.WithProjectCode("LOOK-1"))

	byID, err := env.projects.Resolve(ctx, p.ID)
	require.NoError(t, err)
	byCode, err := env.projects.Resolve(ctx, "LOOK-1")
	require.NoError(t, err)
	assert.Equal(t, byID.ID, byCode.ID)

	_, err = env.projects.Resolve(ctx, "NOPE-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectService_ImpactMetrics(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	partner, _ := env.seedPartnerWithToll(t, "Impact")
	parent := env.seedProject(t, partner.ID, "Nutrition", 2)
	subs, err := env.projects.ListSubProjects(ctx, parent.ID)
	require.NoError(t, err)

	_, err = env.projects.SetImpactMetric(ctx, parent.ID, impact.KeyMealsServed, 100, "")
	require.NoError(t, err)
	_, err = env.projects.SetImpactMetric(ctx, subs[0].ID, impact.KeyMealsServed, 40, "")
	require.NoError(t, err)
	_, err = env.projects.SetImpactMetric(ctx, subs[1].ID, impact.KeyCustom, 7, "Kitchens Built")
	require.NoError(t, err)

	p, err := env.projects.SetImpactMetric(ctx, parent.ID, impact.KeyMealsServed, 120, "")
	require.NoError(t, err)
	require.Len(t, p.ImpactMetrics, 1, "setting an existing key replaces its value")

	summary, err := env.projects.ImpactSummary(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.SubProjects)
	assert.InDelta(t, 160, impact.ValueOf(summary.Entries, string(impact.KeyMealsServed)), 1e-9)
	assert.Equal(t, map[string]float64{"Kitchens Built": 7}, summary.Custom)

	_, err = env.projects.SetImpactMetric(ctx, parent.ID, impact.KeyCustom, 1, "  ")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.projects.SetImpactMetric(ctx, parent.ID, impact.Key("bogus"), 1, "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.projects.SetImpactMetric(ctx, parent.ID, impact.KeyTreesPlanted, -5, "")
	assert.ErrorIs(t, err, ErrValidation)

	p, err = env.projects.RemoveImpactMetric(ctx, parent.ID, impact.KeyMealsServed, "")
	require.NoError(t, err)
	assert.Empty(t, p.ImpactMetrics)

	stored, err := env.projects.GetByID(ctx, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ImpactMetrics)
}
