package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/impact"
	"github.com/alexanderramin/csrdash/internal/rollup"
	"github.com/charmbracelet/lipgloss"
)

// ProjectDetailData holds everything the project detail card shows.
type ProjectDetailData struct {
	Project     *domain.Project
	PartnerName string
	TollName    string
	SubProjects []*domain.Project
	Impact      *rollup.ImpactSummary
	Team        []*domain.TeamMember
}

// FormatProjectList renders top-level projects in a bordered table.
func FormatProjectList(projects []*domain.Project) string {
	if len(projects) == 0 {
		return RenderBox("Projects", Dim("No projects match the current filters."))
	}
	headers := []string{"CODE", "NAME", "STATUS", "BUDGET", "UTILIZED", "BENEFICIARIES"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.DisplayID(),
			Bold(p.Name),
			StatusPill(p.Status),
			FormatINR(p.TotalBudget),
			RenderUtilization(p.UtilizedBudget, p.TotalBudget, 10),
			fmt.Sprintf("%d", p.DirectBeneficiaries),
		})
	}
	return RenderBox("Projects", RenderTableAligned(headers, rows, []int{3, 5}))
}

// FormatProjectDetail renders a side-by-side card: metadata on the left,
// impact and team on the right, beneficiary sub-projects below.
func FormatProjectDetail(data ProjectDetailData) string {
	p := data.Project
	left := metadataPanel(p, data.PartnerName, data.TollName)

	var right strings.Builder
	right.WriteString(Header("Impact") + "\n")
	if data.Impact != nil {
		right.WriteString(FormatImpact(data.Impact.Entries))
	} else {
		right.WriteString(FormatImpact(p.ImpactMetrics))
	}
	right.WriteString("\n" + Header("Team") + "\n")
	right.WriteString(FormatTeam(data.Team))

	out := lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right.String())
	if len(data.SubProjects) > 0 {
		out += "\n\n" + Header(fmt.Sprintf("Beneficiaries (%d)", len(data.SubProjects))) + "\n"
		items := make([]TreeItem, 0, len(data.SubProjects))
		for i, sub := range data.SubProjects {
			items = append(items, TreeItem{
				Title:  fmt.Sprintf("#%d %s", sub.BeneficiaryNumber, sub.Name),
				Level:  1,
				IsLast: i == len(data.SubProjects)-1,
				Muted:  sub.IsCompleted(),
				Detail: sub.DisplayID(),
			})
		}
		out += RenderTree(items)
	}
	return RenderBox("", out)
}

func metadataPanel(p *domain.Project, partnerName, tollName string) string {
	var b strings.Builder
	b.WriteString(StyleBold.Render(p.Name) + "\n")
	b.WriteString(StylePurple.Render(p.DisplayID()) + "\n\n")

	field := func(label, value string) {
		b.WriteString(fmt.Sprintf("%s  %s\n", StyleDim.Render(fmt.Sprintf("%-9s", label)), value))
	}
	field("STATUS", StatusPill(p.Status))
	field("PARTNER", OrDash(partnerName))
	field("TOLL", OrDash(tollName))
	field("LOCATION", OrDash(strings.Trim(strings.Join([]string{p.Location, p.State}, ", "), ", ")))
	field("WORK", OrDash(p.Work))
	field("DATES", DateRange(p.StartDate, p.EndDate))
	field("BUDGET", FormatINR(p.TotalBudget))
	field("UTILIZED", RenderUtilization(p.UtilizedBudget, p.TotalBudget, 12))
	field("REMAINING", FormatINR(p.RemainingBudget()))
	field("REACH", fmt.Sprintf("%d direct, %d indirect", p.DirectBeneficiaries, p.IndirectBeneficiaries))
	if p.UCLink != "" {
		field("UC", p.UCLink)
	}
	return b.String()
}

// FormatImpact lists metrics in display order: primary keys, secondary keys,
// then custom labels alphabetically.
func FormatImpact(entries []impact.Entry) string {
	if len(entries) == 0 {
		return Dim("No impact recorded.") + "\n"
	}
	rank := make(map[impact.Key]int)
	for i, k := range impact.Primary {
		rank[k] = i
	}
	for i, k := range impact.Secondary {
		rank[k] = len(impact.Primary) + i
	}
	sorted := append([]impact.Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, iok := rank[sorted[i].Key]
		rj, jok := rank[sorted[j].Key]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return sorted[i].Label() < sorted[j].Label()
		}
	})

	rows := make([][]string, 0, len(sorted))
	for _, e := range sorted {
		label := e.Label()
		if e.Key == impact.KeyCustom {
			label = StylePurple.Render(label)
		}
		rows = append(rows, []string{label, FormatCount(e.Value)})
	}
	return RenderTableAligned([]string{"METRIC", "VALUE"}, rows, []int{1})
}

// FormatGroups renders projects bucketed by display name.
func FormatGroups(groups []rollup.Group) string {
	if len(groups) == 0 {
		return RenderBox("Groups", Dim("No projects."))
	}
	var items []TreeItem
	for _, g := range groups {
		items = append(items, TreeItem{
			Title:  g.Name,
			Detail: fmt.Sprintf("%d projects · %s · %d active", len(g.Projects), FormatINR(g.TotalBudget), g.ActiveCount),
		})
		for i, p := range g.Projects {
			items = append(items, TreeItem{
				Title:  p.DisplayID(),
				Level:  1,
				IsLast: i == len(g.Projects)-1,
				Muted:  p.IsCompleted(),
				Detail: FormatINR(p.TotalBudget),
			})
		}
	}
	return RenderBox("Groups", RenderTree(items))
}

// FormatPortfolio renders headline totals for the filtered projects.
func FormatPortfolio(pf rollup.Portfolio) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %d\n", Dim("PROJECTS     "), pf.Projects))
	b.WriteString(fmt.Sprintf("%s  %s\n", Dim("BUDGET       "), FormatINR(pf.TotalBudget)))
	b.WriteString(fmt.Sprintf("%s  %s\n", Dim("UTILIZED     "), RenderUtilization(pf.UtilizedBudget, pf.TotalBudget, 16)))
	b.WriteString(fmt.Sprintf("%s  %s direct, %s indirect\n", Dim("BENEFICIARIES"),
		FormatCount(float64(pf.DirectBeneficiaries)), FormatCount(float64(pf.IndirectBeneficiaries))))

	statuses := make([]string, 0, len(pf.ByStatus))
	for st := range pf.ByStatus {
		statuses = append(statuses, string(st))
	}
	sort.Strings(statuses)
	for _, st := range statuses {
		b.WriteString(fmt.Sprintf("  %s %d\n", StatusPill(domain.ProjectStatus(st)), pf.ByStatus[domain.ProjectStatus(st)]))
	}
	return b.String()
}
