package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/csrdash/internal/budget"
	"github.com/alexanderramin/csrdash/internal/domain"
)

func FormatPartnerList(partners []*domain.CSRPartner) string {
	if len(partners) == 0 {
		return RenderBox("Partners", Dim("No partners yet."))
	}
	rows := make([][]string, 0, len(partners))
	for _, p := range partners {
		state := StyleGreen.Render("active")
		if !p.IsActive {
			state = Dim("inactive")
		}
		toll := Dim("no")
		if p.HasToll {
			toll = "yes"
		}
		rows = append(rows, []string{TruncID(p.ID), Bold(p.DisplayName()), OrDash(p.CompanyName), OrDash(p.ContactPerson), toll, state})
	}
	return RenderBox("Partners", RenderTable([]string{"ID", "NAME", "COMPANY", "CONTACT", "TOLLS", "STATE"}, rows))
}

func FormatTollList(partnerName string, tolls []*domain.Toll) string {
	title := "Tolls · " + partnerName
	if len(tolls) == 0 {
		return RenderBox(title, Dim("No tolls for this partner."))
	}
	rows := make([][]string, 0, len(tolls))
	for _, t := range tolls {
		where := strings.Trim(strings.Join([]string{t.City, t.State}, ", "), ", ")
		rows = append(rows, []string{TruncID(t.ID), Bold(t.DisplayName()), OrDash(t.POCName), OrDash(where), FormatINR(t.BudgetAllocation)})
	}
	return RenderBox(title, RenderTableAligned([]string{"ID", "TOLL", "POC", "LOCATION", "ALLOCATION"}, rows, []int{4}))
}

// FormatBudget renders the category tree with allocated, utilized and
// available amounts per category.
func FormatBudget(project *domain.Project, tree *budget.Tree, cats []*domain.BudgetCategory) string {
	title := "Budget · " + project.DisplayID()
	if tree == nil || tree.Len() == 0 {
		return RenderBox(title, Dim("No budget categories."))
	}
	byID := make(map[string]*domain.BudgetCategory, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}

	var items []TreeItem
	_ = tree.Walk(func(n budget.Node, depth int) error {
		siblings := tree.Children(n.ParentKey)
		detail := FormatINR(n.Allocated)
		if c, ok := byID[n.Key]; ok {
			detail = fmt.Sprintf("%s  used %s  avail %s", FormatINR(c.AllocatedAmount), FormatINR(c.UtilizedAmount), FormatINR(c.AvailableAmount))
		}
		items = append(items, TreeItem{
			Title:  n.Name,
			Level:  depth,
			IsLast: siblings[len(siblings)-1].Key == n.Key,
			Detail: detail,
		})
		return nil
	})

	summary := fmt.Sprintf("%s %s of %s allocated\n\n", Dim("TOTAL"), FormatINR(tree.RootTotal()), FormatINR(project.TotalBudget))
	return RenderBox(title, summary+RenderTree(items))
}

func FormatTeam(team []*domain.TeamMember) string {
	if len(team) == 0 {
		return Dim("No team assigned.") + "\n"
	}
	rows := make([][]string, 0, len(team))
	for _, m := range team {
		user := m.UserID
		if m.IsLead {
			user = StyleYellowBold.Render("★ ") + Bold(user)
		}
		rows = append(rows, []string{user, string(m.Role), Dim(string(m.AccessLevel))})
	}
	return RenderTable([]string{"USER", "ROLE", "ACCESS"}, rows)
}

// FormatActivities renders each activity with its checklist as a tree.
func FormatActivities(activities []*domain.Activity) string {
	if len(activities) == 0 {
		return RenderBox("Timeline", Dim("No activities."))
	}
	var items []TreeItem
	for _, a := range activities {
		items = append(items, TreeItem{
			Title:  fmt.Sprintf("%s  %s  %s", a.Title, ActivityPill(a.Status), PriorityBadge(a.Priority)),
			Muted:  a.Status == domain.ActivityCancelled,
			Detail: fmt.Sprintf("%d%%  %s", a.CompletionPct(), StripANSI(DateRange(a.StartDate, a.EndDate))),
		})
		for i, it := range a.Items {
			mark := "☐ "
			if it.IsCompleted {
				mark = StyleGreen.Render("☑ ")
			}
			items = append(items, TreeItem{
				Title:  mark + it.Title,
				Level:  1,
				IsLast: i == len(a.Items)-1,
				Muted:  it.IsCompleted,
				Detail: TruncID(it.ID),
			})
		}
	}
	return RenderBox("Timeline", RenderTree(items))
}

func FormatMedia(media []*domain.MediaArticle) string {
	if len(media) == 0 {
		return RenderBox("Media", Dim("No media."))
	}
	rows := make([][]string, 0, len(media))
	for _, m := range media {
		rows = append(rows, []string{TruncID(m.ID), StylePurple.Render(string(m.MediaType)), Bold(m.Title), HumanDate(m.PublishedAt), Dim(m.URL)})
	}
	return RenderBox("Media", RenderTable([]string{"ID", "TYPE", "TITLE", "PUBLISHED", "URL"}, rows))
}
