package domain

import "time"

// BudgetCategory is one node of a project's budget breakdown. Roots have a
// nil ParentID. AvailableAmount is reported by the store.
type BudgetCategory struct {
	ID              string
	ProjectID       string
	ParentID        *string
	Name            string
	AllocatedAmount float64
	UtilizedAmount  float64
	PendingAmount   float64
	AvailableAmount float64
	OrderIndex      int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
