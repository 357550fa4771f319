package service

import (
	"context"

	"github.com/alexanderramin/csrdash/internal/budget"
	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/impact"
	"github.com/alexanderramin/csrdash/internal/rollup"
)

type PartnerService interface {
	Create(ctx context.Context, p *domain.CSRPartner) error
	GetByID(ctx context.Context, id string) (*domain.CSRPartner, error)
	List(ctx context.Context, includeInactive bool) ([]*domain.CSRPartner, error)
	Update(ctx context.Context, p *domain.CSRPartner) error
	Deactivate(ctx context.Context, id string) error
	// Delete removes the partner with its tolls, projects and everything
	// hanging off those projects in one transaction.
	Delete(ctx context.Context, id string) error
}

type TollService interface {
	Create(ctx context.Context, t *domain.Toll) error
	GetByID(ctx context.Context, id string) (*domain.Toll, error)
	ListByPartner(ctx context.Context, partnerID string) ([]*domain.Toll, error)
	Update(ctx context.Context, t *domain.Toll) error
	// Delete removes the toll and its projects in one transaction.
	Delete(ctx context.Context, id string) error
}

type ProjectService interface {
	// Create inserts p and, when beneficiaries > 0, that many beneficiary
	// sub-projects, atomically.
	Create(ctx context.Context, p *domain.Project, beneficiaries int) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// Resolve accepts a project ID or a project code.
	Resolve(ctx context.Context, idOrCode string) (*domain.Project, error)
	ListTopLevel(ctx context.Context) ([]*domain.Project, error)
	ListSubProjects(ctx context.Context, parentID string) ([]*domain.Project, error)
	AddBeneficiaries(ctx context.Context, parentID string, n int) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error

	SetImpactMetric(ctx context.Context, projectID string, key impact.Key, value float64, customLabel string) (*domain.Project, error)
	RemoveImpactMetric(ctx context.Context, projectID string, key impact.Key, customLabel string) (*domain.Project, error)
	ImpactSummary(ctx context.Context, projectID string) (*rollup.ImpactSummary, error)
}

// TeamAssignment is one row of a project's desired team.
type TeamAssignment struct {
	UserID string
	Role   domain.TeamRole
}

type TeamService interface {
	ListByProject(ctx context.Context, projectID string) ([]*domain.TeamMember, error)
	// ReplaceAll swaps the project's team for assignments atomically.
	ReplaceAll(ctx context.Context, projectID string, assignments []TeamAssignment) ([]*domain.TeamMember, error)
	AssignedProjectIDs(ctx context.Context, userID string) ([]string, error)
	// EffectiveRole returns the user's role on the project, or ErrNotAssigned.
	EffectiveRole(ctx context.Context, projectID, userID string) (domain.TeamRole, error)
}

type BudgetService interface {
	List(ctx context.Context, projectID string) ([]*domain.BudgetCategory, error)
	Tree(ctx context.Context, projectID string) (*budget.Tree, error)
	// Save validates tree against the project's total budget and replaces
	// the stored categories with it.
	Save(ctx context.Context, projectID string, tree *budget.Tree) ([]*domain.BudgetCategory, error)
	ReportUtilization(ctx context.Context, categoryID string, utilized, pending float64) (*domain.BudgetCategory, error)
	Delete(ctx context.Context, categoryID string) error
}

type ActivityService interface {
	Create(ctx context.Context, a *domain.Activity) error
	GetByID(ctx context.Context, id string) (*domain.Activity, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Activity, error)
	Update(ctx context.Context, a *domain.Activity) error
	Delete(ctx context.Context, id string) error
	AddItem(ctx context.Context, activityID, title string) (*domain.ActivityItem, error)
	ToggleItem(ctx context.Context, itemID string) (*domain.ActivityItem, error)
	RemoveItem(ctx context.Context, itemID string) error
}

type MediaService interface {
	Create(ctx context.Context, m *domain.MediaArticle) error
	ListByProject(ctx context.Context, projectID string) ([]*domain.MediaArticle, error)
	Delete(ctx context.Context, id string) error
}
