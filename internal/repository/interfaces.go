package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/csrdash/internal/domain"
)

// ErrNotFound is returned by Get-style lookups that match no row.
var ErrNotFound = errors.New("not found")

type PartnerRepo interface {
	Create(ctx context.Context, p *domain.CSRPartner) error
	GetByID(ctx context.Context, id string) (*domain.CSRPartner, error)
	List(ctx context.Context, includeInactive bool) ([]*domain.CSRPartner, error)
	Update(ctx context.Context, p *domain.CSRPartner) error
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type TollRepo interface {
	Create(ctx context.Context, t *domain.Toll) error
	GetByID(ctx context.Context, id string) (*domain.Toll, error)
	ListByPartner(ctx context.Context, partnerID string, includeInactive bool) ([]*domain.Toll, error)
	Update(ctx context.Context, t *domain.Toll) error
	Delete(ctx context.Context, id string) error
	DeleteByPartner(ctx context.Context, partnerID string) error
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByCode(ctx context.Context, code string) (*domain.Project, error)
	// ListTopLevel returns active projects without a parent, ordered by code.
	ListTopLevel(ctx context.Context) ([]*domain.Project, error)
	ListByParent(ctx context.Context, parentID string) ([]*domain.Project, error)
	ListByPartner(ctx context.Context, partnerID string) ([]*domain.Project, error)
	MaxBeneficiaryNumber(ctx context.Context, parentID string) (int, error)
	Update(ctx context.Context, p *domain.Project) error
	UpdateImpactMetrics(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
	DeleteByToll(ctx context.Context, tollID string) error
	DeleteByPartner(ctx context.Context, partnerID string) error
}

type TeamMemberRepo interface {
	Create(ctx context.Context, m *domain.TeamMember) error
	ListByProject(ctx context.Context, projectID string) ([]*domain.TeamMember, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.TeamMember, error)
	GetByProjectAndUser(ctx context.Context, projectID, userID string) (*domain.TeamMember, error)
	DeleteByProject(ctx context.Context, projectID string) error
}

type BudgetCategoryRepo interface {
	Create(ctx context.Context, c *domain.BudgetCategory) error
	GetByID(ctx context.Context, id string) (*domain.BudgetCategory, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.BudgetCategory, error)
	UpdateAmounts(ctx context.Context, c *domain.BudgetCategory) error
	Delete(ctx context.Context, id string) error
	DeleteByProject(ctx context.Context, projectID string) error
}

type ActivityRepo interface {
	Create(ctx context.Context, a *domain.Activity) error
	GetByID(ctx context.Context, id string) (*domain.Activity, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Activity, error)
	Update(ctx context.Context, a *domain.Activity) error
	Delete(ctx context.Context, id string) error

	CreateItem(ctx context.Context, it *domain.ActivityItem) error
	GetItem(ctx context.Context, id string) (*domain.ActivityItem, error)
	UpdateItem(ctx context.Context, it *domain.ActivityItem) error
	DeleteItem(ctx context.Context, id string) error
}

type MediaRepo interface {
	Create(ctx context.Context, m *domain.MediaArticle) error
	ListByProject(ctx context.Context, projectID string) ([]*domain.MediaArticle, error)
	Delete(ctx context.Context, id string) error
}
