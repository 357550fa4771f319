package rollup

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/impact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proj(id, name string, status domain.ProjectStatus, budget float64, beneficiaries int) *domain.Project {
	return &domain.Project{
		ID: id, ProjectCode: "C-" + id, Name: name, CSRPartnerID: "A",
		Status: status, TotalBudget: budget, DirectBeneficiaries: beneficiaries,
	}
}

func TestGroupByDisplayName_Scenario(t *testing.T) {
	projects := []*domain.Project{
		proj("1", "Shoonya", domain.ProjectActive, 100, 10),
		proj("2", "Shoonya", domain.ProjectCompleted, 50, 5),
		proj("3", "Lajja", domain.ProjectActive, 70, 7),
	}

	groups := GroupByDisplayName(projects)
	require.Len(t, groups, 2)

	assert.Equal(t, "Shoonya", groups[0].Name)
	assert.Len(t, groups[0].Projects, 2)
	assert.Equal(t, 150.0, groups[0].TotalBudget)
	assert.Equal(t, 15, groups[0].TotalBeneficiaries)
	assert.Equal(t, 1, groups[0].ActiveCount)
	assert.Equal(t, 1, groups[0].CompletedCount)

	assert.Equal(t, "Lajja", groups[1].Name)
	assert.Len(t, groups[1].Projects, 1)
}

func TestGroupByDisplayName_TrimsAndUntitled(t *testing.T) {
	groups := GroupByDisplayName([]*domain.Project{
		proj("1", "  Lajja ", domain.ProjectPlanning, 0, 0),
		proj("2", "Lajja", domain.ProjectOnHold, 0, 0),
		proj("3", "   ", domain.ProjectActive, 0, 0),
	})
	require.Len(t, groups, 2)
	assert.Equal(t, "Lajja", groups[0].Name)
	assert.Equal(t, 2, groups[0].ActiveCount, "planning and on_hold count as active")
	assert.Equal(t, UntitledProject, groups[1].Name)
}

func TestGroupByDisplayName_TieBrokenByName(t *testing.T) {
	groups := GroupByDisplayName([]*domain.Project{
		proj("1", "Zeta", domain.ProjectActive, 0, 0),
		proj("2", "Alpha", domain.ProjectActive, 0, 0),
	})
	require.Len(t, groups, 2)
	assert.Equal(t, "Alpha", groups[0].Name)
	assert.Equal(t, "Zeta", groups[1].Name)
}

// TestGroupByDisplayName_PermutationInvariant checks that every shuffle of
// the same input yields the same groups, members and totals.
func TestGroupByDisplayName_PermutationInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	names := []string{"Shoonya", "Lajja", "Jal", "Vidya", ""}
	statuses := []domain.ProjectStatus{domain.ProjectActive, domain.ProjectCompleted, domain.ProjectOnHold}

	var projects []*domain.Project
	for i := 0; i < 40; i++ {
		projects = append(projects, proj(fmt.Sprintf("%02d", i),
			names[rng.Intn(len(names))], statuses[rng.Intn(len(statuses))],
			float64(rng.Intn(100000))/100+0.1, rng.Intn(50)))
	}
	want := GroupByDisplayName(projects)

	for trial := 0; trial < 50; trial++ {
		shuffled := append([]*domain.Project(nil), projects...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := GroupByDisplayName(shuffled)
		require.Len(t, got, len(want), "trial %d", trial)
		for i := range want {
			assert.Equal(t, want[i].Name, got[i].Name, "trial %d group %d", trial, i)
			assert.Equal(t, want[i].TotalBudget, got[i].TotalBudget, "trial %d", trial)
			assert.Equal(t, want[i].TotalBeneficiaries, got[i].TotalBeneficiaries, "trial %d", trial)
			assert.Equal(t, want[i].ActiveCount, got[i].ActiveCount, "trial %d", trial)
			assert.Equal(t, want[i].CompletedCount, got[i].CompletedCount, "trial %d", trial)
			require.Len(t, got[i].Projects, len(want[i].Projects))
			for j := range want[i].Projects {
				assert.Equal(t, want[i].Projects[j].ID, got[i].Projects[j].ID, "trial %d", trial)
			}
		}
	}
}

func TestGroupByDisplayName_FractionalBudgetsIndependentOfOrder(t *testing.T) {
	a := proj("a", "Jal", domain.ProjectActive, 0.1, 0)
	b := proj("b", "Jal", domain.ProjectActive, 0.2, 0)
	c := proj("c", "Jal", domain.ProjectActive, 0.3, 0)

	forward := GroupByDisplayName([]*domain.Project{a, b, c})
	backward := GroupByDisplayName([]*domain.Project{c, b, a})

	require.Len(t, forward, 1)
	require.Len(t, backward, 1)
	assert.Equal(t, forward[0].TotalBudget, backward[0].TotalBudget)
}

func TestAggregateImpactMetrics_ParentAndSubs(t *testing.T) {
	parent := []impact.Entry{{Key: impact.KeyTreesPlanted, Value: 10}}
	subs := [][]impact.Entry{
		{{Key: impact.KeyTreesPlanted, Value: 1}},
		{{Key: impact.KeyTreesPlanted, Value: 1}},
	}

	got := AggregateImpactMetrics(parent, subs)
	require.Len(t, got, 1)
	assert.Equal(t, 12.0, impact.ValueOf(got, "trees_planted"))
	assert.Equal(t, 10.0, parent[0].Value, "parent list untouched")
}

func TestAggregateImpactMetrics_DropsNonPositive(t *testing.T) {
	parent := []impact.Entry{
		{Key: impact.KeyMealsServed, Value: 0},
		{Key: impact.KeyCustom, CustomLabel: "Wells", Value: 2},
	}
	got := AggregateImpactMetrics(parent, [][]impact.Entry{{{Key: impact.KeyMealsServed, Value: 0}}})
	require.Len(t, got, 1)
	assert.Equal(t, "Wells", got[0].CustomLabel)
}

func TestAggregatedCustomMetrics(t *testing.T) {
	parent := []impact.Entry{
		{Key: impact.KeyCustom, CustomLabel: "Wells", Value: 2},
		{Key: impact.KeyCustom, CustomLabel: "Bikes", Value: 0},
		{Key: impact.KeyTreesPlanted, Value: 5},
	}
	subs := [][]impact.Entry{{{Key: impact.KeyCustom, CustomLabel: "Wells", Value: 3}}}

	got := AggregatedCustomMetrics(parent, subs)
	assert.Equal(t, map[string]float64{"Wells": 5}, got)
}

func TestSummarizeImpact(t *testing.T) {
	parent := &domain.Project{ImpactMetrics: []impact.Entry{{Key: impact.KeyTreesPlanted, Value: 10}}}
	subs := []*domain.Project{
		{ImpactMetrics: []impact.Entry{{Key: impact.KeyTreesPlanted, Value: 1}}},
		{ImpactMetrics: []impact.Entry{{Key: impact.KeyCustom, CustomLabel: "Kits", Value: 4}}},
	}
	s := SummarizeImpact(parent, subs)
	assert.Equal(t, 2, s.SubProjects)
	assert.Equal(t, 11.0, impact.ValueOf(s.Entries, "trees_planted"))
	assert.Equal(t, 4.0, s.Custom["Kits"])
}

func TestSummarizePortfolio(t *testing.T) {
	a := proj("1", "A", domain.ProjectActive, 1000, 10)
	a.UtilizedBudget = 250
	b := proj("2", "B", domain.ProjectCompleted, 1000, 5)
	b.UtilizedBudget = 750
	b.IndirectBeneficiaries = 20

	pf := SummarizePortfolio([]*domain.Project{a, b})
	assert.Equal(t, 2, pf.Projects)
	assert.Equal(t, 2000.0, pf.TotalBudget)
	assert.Equal(t, 50.0, pf.UtilizationPct())
	assert.Equal(t, 15, pf.DirectBeneficiaries)
	assert.Equal(t, 20, pf.IndirectBeneficiaries)
	assert.Equal(t, 1, pf.ByStatus[domain.ProjectCompleted])

	assert.Equal(t, 0.0, SummarizePortfolio(nil).UtilizationPct())
}
