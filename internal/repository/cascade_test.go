package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCascadeDelete_PartnerRemovesEverything verifies partner -> tolls ->
// projects -> sub-projects -> team/budget/activities/media.
func TestCascadeDelete_PartnerRemovesEverything(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	partners := NewSQLitePartnerRepo(db)
	tollRepo := NewSQLiteTollRepo(db)
	projects := NewSQLiteProjectRepo(db)
	team := NewSQLiteTeamMemberRepo(db)
	budget := NewSQLiteBudgetCategoryRepo(db)
	activities := NewSQLiteActivityRepo(db)
	media := NewSQLiteMediaRepo(db)

	partner, tolls := seedPartner(t, db, "Shell", "T1")
	proj := testutil.NewTestProject(partner.ID, "Parent", testutil.WithToll(tolls[0].ID))
	require.NoError(t, projects.Create(ctx, proj))
	sub := domain.NewBeneficiarySubProject(proj, 1, "sub-1", now)
	require.NoError(t, projects.Create(ctx, sub))
	require.NoError(t, team.Create(ctx, domain.NewTeamMember("m1", proj.ID, "u1", domain.TeamAccountant, now)))
	cat := testutil.NewTestCategory(proj.ID, "Civil", 100, nil)
	require.NoError(t, budget.Create(ctx, cat))
	act := testutil.NewTestActivity(proj.ID, "Survey", "Visit site")
	require.NoError(t, activities.Create(ctx, act))
	require.NoError(t, media.Create(ctx, &domain.MediaArticle{
		ID: "a1", ProjectID: proj.ID, Title: "Launch", MediaType: domain.MediaNews,
		URL: "https://news.example.org/launch", CreatedAt: now,
	}))

	require.NoError(t, partners.Delete(ctx, partner.ID))

	_, err := tollRepo.GetByID(ctx, tolls[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = projects.GetByID(ctx, proj.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = projects.GetByID(ctx, sub.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	members, err := team.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
	_, err = budget.GetByID(ctx, cat.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = activities.GetItem(ctx, act.Items[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
	articles, err := media.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

// TestCascadeDelete_TollRemovesItsProjects verifies toll -> projects while
// leaving the partner's other projects in place.
func TestCascadeDelete_TollRemovesItsProjects(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	tollRepo := NewSQLiteTollRepo(db)
	projects := NewSQLiteProjectRepo(db)

	partner, tolls := seedPartner(t, db, "Shell", "T1", "T2")
	onT1 := testutil.NewTestProject(partner.ID, "On T1", testutil.WithToll(tolls[0].ID))
	onT2 := testutil.NewTestProject(partner.ID, "On T2", testutil.WithToll(tolls[1].ID))
	direct := testutil.NewTestProject(partner.ID, "Direct")
	for _, p := range []*domain.Project{onT1, onT2, direct} {
		require.NoError(t, projects.Create(ctx, p))
	}

	require.NoError(t, tollRepo.Delete(ctx, tolls[0].ID))

	remaining, err := projects.ListByPartner(ctx, partner.ID)
	require.NoError(t, err)
	ids := make([]string, 0, len(remaining))
	for _, p := range remaining {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{onT2.ID, direct.ID}, ids)
}

// TestCascadeDelete_ProjectRemovesSubProjects verifies the parent -> sub
// self-reference.
func TestCascadeDelete_ProjectRemovesSubProjects(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	projects := NewSQLiteProjectRepo(db)

	partner, _ := seedPartner(t, db, "Shell")
	parent := testutil.NewTestProject(partner.ID, "Parent")
	require.NoError(t, projects.Create(ctx, parent))
	now := time.Now().UTC().Truncate(time.Second)
	for i := 1; i <= 3; i++ {
		require.NoError(t, projects.Create(ctx, domain.NewBeneficiarySubProject(parent, i, "sub-"+string(rune('0'+i)), now)))
	}

	require.NoError(t, projects.Delete(ctx, parent.ID))

	subs, err := projects.ListByParent(ctx, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}
