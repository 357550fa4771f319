package rollup

import (
	"sort"
	"strings"

	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/impact"
)

// UntitledProject is the group name for projects with a blank name.
const UntitledProject = "Untitled Project"

// Group collects sibling projects that share a display name.
type Group struct {
	Name               string
	Projects           []*domain.Project
	TotalBudget        float64
	TotalBeneficiaries int
	ActiveCount        int
	CompletedCount     int
}

// DisplayName is the grouping key for a project.
func DisplayName(p *domain.Project) string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return UntitledProject
}

// GroupByDisplayName buckets projects by trimmed name. Groups are ordered by
// member count descending, then name ascending; members by code then id.
// Any status other than completed counts as active.
func GroupByDisplayName(projects []*domain.Project) []Group {
	byName := make(map[string]*Group)
	for _, p := range projects {
		name := DisplayName(p)
		g, ok := byName[name]
		if !ok {
			g = &Group{Name: name}
			byName[name] = g
		}
		g.Projects = append(g.Projects, p)
	}

	groups := make([]Group, 0, len(byName))
	for _, g := range byName {
		sort.SliceStable(g.Projects, func(i, j int) bool {
			a, b := g.Projects[i], g.Projects[j]
			if a.ProjectCode != b.ProjectCode {
				return a.ProjectCode < b.ProjectCode
			}
			return a.ID < b.ID
		})
		// Summed in member order: totals must not depend on input order.
		for _, p := range g.Projects {
			g.TotalBudget += p.TotalBudget
			g.TotalBeneficiaries += p.DirectBeneficiaries
			if p.IsCompleted() {
				g.CompletedCount++
			} else {
				g.ActiveCount++
			}
		}
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].Projects) != len(groups[j].Projects) {
			return len(groups[i].Projects) > len(groups[j].Projects)
		}
		return groups[i].Name < groups[j].Name
	})
	return groups
}

// AggregateImpactMetrics merges a parent's metrics with those of all its
// beneficiary sub-projects and drops entries whose total is <= 0.
func AggregateImpactMetrics(parent []impact.Entry, subs [][]impact.Entry) []impact.Entry {
	merged := impact.MergeSum(nil, parent)
	for _, s := range subs {
		merged = impact.MergeSum(merged, s)
	}
	return impact.Positive(merged)
}

// AggregatedCustomMetrics returns label -> total for custom metrics with a
// non-empty label and a positive total.
func AggregatedCustomMetrics(parent []impact.Entry, subs [][]impact.Entry) map[string]float64 {
	out := make(map[string]float64)
	for _, e := range AggregateImpactMetrics(parent, subs) {
		if e.Key != impact.KeyCustom {
			continue
		}
		label := strings.TrimSpace(e.CustomLabel)
		if label == "" {
			continue
		}
		out[label] = e.Value
	}
	return out
}

// ImpactSummary is the aggregated impact view of a parent project.
type ImpactSummary struct {
	Entries     []impact.Entry
	Custom      map[string]float64
	SubProjects int
}

// SummarizeImpact aggregates a parent project with its sub-projects.
func SummarizeImpact(parent *domain.Project, subs []*domain.Project) ImpactSummary {
	lists := make([][]impact.Entry, 0, len(subs))
	for _, s := range subs {
		lists = append(lists, s.ImpactMetrics)
	}
	return ImpactSummary{
		Entries:     AggregateImpactMetrics(parent.ImpactMetrics, lists),
		Custom:      AggregatedCustomMetrics(parent.ImpactMetrics, lists),
		SubProjects: len(subs),
	}
}

// Portfolio holds headline totals for a set of projects.
type Portfolio struct {
	Projects              int
	TotalBudget           float64
	UtilizedBudget        float64
	DirectBeneficiaries   int
	IndirectBeneficiaries int
	ByStatus              map[domain.ProjectStatus]int
}

// UtilizationPct is utilized over total budget, 0 when there is no budget.
func (p Portfolio) UtilizationPct() float64 {
	if p.TotalBudget <= 0 {
		return 0
	}
	return p.UtilizedBudget / p.TotalBudget * 100
}

// SummarizePortfolio totals budgets, beneficiaries and status counts.
func SummarizePortfolio(projects []*domain.Project) Portfolio {
	pf := Portfolio{ByStatus: make(map[domain.ProjectStatus]int)}
	for _, p := range projects {
		pf.Projects++
		pf.TotalBudget += p.TotalBudget
		pf.UtilizedBudget += p.UtilizedBudget
		pf.DirectBeneficiaries += p.DirectBeneficiaries
		pf.IndirectBeneficiaries += p.IndirectBeneficiaries
		pf.ByStatus[p.Status]++
	}
	return pf
}
