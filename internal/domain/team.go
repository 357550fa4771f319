package domain

import "time"

// TeamMember assigns a user to a project. IsLead and AccessLevel are derived
// from Role; construct with NewTeamMember.
type TeamMember struct {
	ID          string
	ProjectID   string
	UserID      string
	Role        TeamRole
	IsLead      bool
	AccessLevel AccessLevel
	IsActive    bool
	CreatedAt   time.Time
}

// NewTeamMember builds an active member with lead/access derived from role.
func NewTeamMember(id, projectID, userID string, role TeamRole, now time.Time) *TeamMember {
	m := &TeamMember{
		ID:        id,
		ProjectID: projectID,
		UserID:    userID,
		IsActive:  true,
		CreatedAt: now,
	}
	m.SetRole(role)
	return m
}

// SetRole updates the role and re-derives IsLead and AccessLevel.
func (m *TeamMember) SetRole(role TeamRole) {
	m.Role = role
	m.IsLead = role == TeamProjectManager
	if m.IsLead {
		m.AccessLevel = AccessFull
	} else {
		m.AccessLevel = AccessStandard
	}
}
