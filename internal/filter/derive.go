package filter

import "github.com/alexanderramin/csrdash/internal/domain"

// Selection is the partner -> toll -> project filter. Empty fields do not
// filter.
type Selection struct {
	PartnerID string
	TollID    string
	ProjectID string
}

// Derive applies the selection to projects as an AND of partner, toll and
// project, each only when set. The same cascade serves every role; role
// visibility is applied to the base list beforehand by VisibleTo.
func Derive(projects []*domain.Project, sel Selection) []*domain.Project {
	out := make([]*domain.Project, 0, len(projects))
	for _, p := range projects {
		if sel.PartnerID != "" && p.CSRPartnerID != sel.PartnerID {
			continue
		}
		if sel.TollID != "" && domain.StrVal(p.TollID) != sel.TollID {
			continue
		}
		if sel.ProjectID != "" && p.ID != sel.ProjectID {
			continue
		}
		out = append(out, p)
	}
	return out
}

// VisibleTo restricts projects to those assigned to the user, except for
// roles that see every project.
func VisibleTo(projects []*domain.Project, role domain.UserRole, assignedIDs []string) []*domain.Project {
	if role.SeesAllProjects() {
		return projects
	}
	assigned := make(map[string]bool, len(assignedIDs))
	for _, id := range assignedIDs {
		assigned[id] = true
	}
	out := make([]*domain.Project, 0, len(assignedIDs))
	for _, p := range projects {
		if assigned[p.ID] {
			out = append(out, p)
		}
	}
	return out
}
