package domain

import "time"

// CSRPartner is a funding organisation. Partners with HasToll delegate
// projects through Toll sub-offices.
type CSRPartner struct {
	ID            string
	Name          string `validate:"notblank"`
	CompanyName   string
	ContactPerson string
	Email         string `validate:"omitempty,email"`
	Phone         string
	HasToll       bool
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DisplayName prefers the short name and falls back to the company name.
func (p *CSRPartner) DisplayName() string {
	return CoalesceStr(p.Name, p.CompanyName, p.ID)
}

// Toll is an optional intermediary office owned by a partner.
type Toll struct {
	ID               string
	CSRPartnerID     string `validate:"required"`
	TollName         string `validate:"required_without=POCName"`
	POCName          string `validate:"required_without=TollName"`
	City             string
	State            string
	Location         string
	BudgetAllocation float64 `validate:"gte=0"`
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (t *Toll) DisplayName() string {
	return CoalesceStr(t.TollName, t.POCName, t.ID)
}
