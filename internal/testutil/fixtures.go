package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/impact"
	"github.com/google/uuid"
)

var testCodeCounter atomic.Int64

func NewTestPartner(name string) *domain.CSRPartner {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.CSRPartner{
		ID:          uuid.New().String(),
		Name:        name,
		CompanyName: name + " Ltd",
		HasToll:     true,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Toll options
type TollOption func(*domain.Toll)

func WithTollBudget(amount float64) TollOption {
	return func(t *domain.Toll) {
		t.BudgetAllocation = amount
	}
}

func WithPOCName(name string) TollOption {
	return func(t *domain.Toll) {
		t.POCName = name
	}
}

func NewTestToll(partnerID, name string, opts ...TollOption) *domain.Toll {
	now := time.Now().UTC().Truncate(time.Second)
	t := &domain.Toll{
		ID:           uuid.New().String(),
		CSRPartnerID: partnerID,
		TollName:     name,
		City:         "Pune",
		State:        "Maharashtra",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Project options
type ProjectOption func(*domain.Project)

func WithToll(tollID string) ProjectOption {
	return func(p *domain.Project) {
		p.TollID = &tollID
	}
}

func WithProjectStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func WithProjectCode(code string) ProjectOption {
	return func(p *domain.Project) {
		p.ProjectCode = code
	}
}

func WithBudget(total, utilized float64) ProjectOption {
	return func(p *domain.Project) {
		p.TotalBudget = total
		p.UtilizedBudget = utilized
	}
}

func WithBeneficiaries(direct int) ProjectOption {
	return func(p *domain.Project) {
		p.DirectBeneficiaries = direct
	}
}

func WithMetrics(entries ...impact.Entry) ProjectOption {
	return func(p *domain.Project) {
		p.ImpactMetrics = entries
	}
}

func WithParent(parentID string) ProjectOption {
	return func(p *domain.Project) {
		p.ParentProjectID = &parentID
		p.IsBeneficiaryProject = true
	}
}

func NewTestProject(partnerID, name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC().Truncate(time.Second)
	start := now.AddDate(0, -1, 0).Truncate(24 * time.Hour)
	p := &domain.Project{
		ID:            uuid.New().String(),
		ProjectCode:   fmt.Sprintf("TST-%04d", testCodeCounter.Add(1)),
		Name:          name,
		CSRPartnerID:  partnerID,
		Status:        domain.ProjectActive,
		ImpactMetrics: []impact.Entry{},
		StartDate:     &start,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func NewTestCategory(projectID, name string, allocated float64, parentID *string) *domain.BudgetCategory {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.BudgetCategory{
		ID:              uuid.New().String(),
		ProjectID:       projectID,
		ParentID:        parentID,
		Name:            name,
		AllocatedAmount: allocated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func NewTestActivity(projectID, title string, itemTitles ...string) *domain.Activity {
	now := time.Now().UTC().Truncate(time.Second)
	a := &domain.Activity{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Title:     title,
		Status:    domain.ActivityNotStarted,
		Priority:  domain.PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, title := range itemTitles {
		a.Items = append(a.Items, domain.ActivityItem{
			ID:         uuid.New().String(),
			ActivityID: a.ID,
			Title:      title,
			OrderIndex: i,
		})
	}
	return a
}
