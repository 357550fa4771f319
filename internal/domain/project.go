package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/alexanderramin/csrdash/internal/impact"
)

var projectCodePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{2,31}$`)

type Project struct {
	ID                    string
	ProjectCode           string
	Name                  string `validate:"notblank"`
	Description           string
	CSRPartnerID          string `validate:"required"`
	TollID                *string
	Status                ProjectStatus
	TotalBudget           float64 `validate:"gte=0"`
	UtilizedBudget        float64 `validate:"gte=0"`
	DirectBeneficiaries   int     `validate:"gte=0"`
	IndirectBeneficiaries int     `validate:"gte=0"`
	BeneficiaryType       string
	BeneficiaryName       string
	ImpactMetrics         []impact.Entry

	// Beneficiary sub-projects reference their parent.
	ParentProjectID      *string
	IsBeneficiaryProject bool
	BeneficiaryNumber    int

	UCLink    string `validate:"omitempty,url"`
	Location  string
	State     string
	Work      string
	StartDate *time.Time
	EndDate   *time.Time
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateCode checks that ProjectCode is non-empty and matches the required
// format: 3-32 uppercase letters, digits or dashes (e.g. SHN-2024-01).
func (p *Project) ValidateCode() error {
	if p.ProjectCode == "" {
		return fmt.Errorf("project code is required (use --code flag)")
	}
	if !projectCodePattern.MatchString(p.ProjectCode) {
		return fmt.Errorf("project code %q must be 3-32 uppercase letters, digits or dashes (e.g. SHN-2024-01)", p.ProjectCode)
	}
	return nil
}

// DisplayID returns the best short identifier for display.
// It prefers ProjectCode; if empty it truncates ID to 8 characters.
func (p *Project) DisplayID() string {
	if p.ProjectCode != "" {
		return p.ProjectCode
	}
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}

// IsSubProject reports whether p is a generated beneficiary sub-project.
func (p *Project) IsSubProject() bool {
	return p.ParentProjectID != nil && *p.ParentProjectID != ""
}

// IsCompleted is the binary rollup status: everything else counts as active.
func (p *Project) IsCompleted() bool {
	return p.Status == ProjectCompleted
}

// RemainingBudget is total minus utilized, never negative.
func (p *Project) RemainingBudget() float64 {
	if r := p.TotalBudget - p.UtilizedBudget; r > 0 {
		return r
	}
	return 0
}

// NewBeneficiarySubProject derives the n-th (1-based) beneficiary
// sub-project of parent. Partner, toll and location fields are inherited.
func NewBeneficiarySubProject(parent *Project, n int, id string, now time.Time) *Project {
	parentID := parent.ID
	sub := &Project{
		ID:                   id,
		ProjectCode:          fmt.Sprintf("%s-B%03d", parent.ProjectCode, n),
		Name:                 fmt.Sprintf("%s - Beneficiary %d", parent.Name, n),
		CSRPartnerID:         parent.CSRPartnerID,
		TollID:               parent.TollID,
		Status:               parent.Status,
		DirectBeneficiaries:  1,
		BeneficiaryType:      parent.BeneficiaryType,
		ImpactMetrics:        []impact.Entry{},
		ParentProjectID:      &parentID,
		IsBeneficiaryProject: true,
		BeneficiaryNumber:    n,
		Location:             parent.Location,
		State:                parent.State,
		Work:                 parent.Work,
		StartDate:            parent.StartDate,
		EndDate:              parent.EndDate,
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	return sub
}
