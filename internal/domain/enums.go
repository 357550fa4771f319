package domain

import "fmt"

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
	ProjectArchived  ProjectStatus = "archived"
)

// ValidProjectStatuses is the canonical set of accepted project statuses.
var ValidProjectStatuses = map[ProjectStatus]bool{
	ProjectPlanning: true, ProjectActive: true, ProjectOnHold: true,
	ProjectCompleted: true, ProjectCancelled: true, ProjectArchived: true,
}

// ParseProjectStatus validates a status string.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	st := ProjectStatus(s)
	if !ValidProjectStatuses[st] {
		return "", fmt.Errorf("invalid project status %q", s)
	}
	return st, nil
}

// UserRole is the application-wide role resolved for the current user.
type UserRole string

const (
	RoleAdmin          UserRole = "admin"
	RoleProjectManager UserRole = "project_manager"
	RoleAccountant     UserRole = "accountant"
	RoleTeamMember     UserRole = "team_member"
)

// ParseUserRole validates a role string.
func ParseUserRole(s string) (UserRole, error) {
	switch r := UserRole(s); r {
	case RoleAdmin, RoleProjectManager, RoleAccountant, RoleTeamMember:
		return r, nil
	}
	return "", fmt.Errorf("invalid role %q (admin, project_manager, accountant, team_member)", s)
}

// SeesAllProjects reports whether the role bypasses team-assignment visibility.
func (r UserRole) SeesAllProjects() bool {
	return r == RoleAdmin || r == RoleAccountant
}

// TeamRole is a user's role on a single project.
type TeamRole string

const (
	TeamProjectManager TeamRole = "project_manager"
	TeamAccountant     TeamRole = "accountant"
	TeamMemberRole     TeamRole = "team_member"
)

// ParseTeamRole validates a team role string.
func ParseTeamRole(s string) (TeamRole, error) {
	switch r := TeamRole(s); r {
	case TeamProjectManager, TeamAccountant, TeamMemberRole:
		return r, nil
	}
	return "", fmt.Errorf("invalid team role %q", s)
}

type AccessLevel string

const (
	AccessFull     AccessLevel = "full"
	AccessStandard AccessLevel = "standard"
)

type ActivityStatus string

const (
	ActivityNotStarted ActivityStatus = "not_started"
	ActivityInProgress ActivityStatus = "in_progress"
	ActivityCompleted  ActivityStatus = "completed"
	ActivityOnHold     ActivityStatus = "on_hold"
	ActivityCancelled  ActivityStatus = "cancelled"
)

// ParseActivityStatus validates an activity status string.
func ParseActivityStatus(s string) (ActivityStatus, error) {
	switch st := ActivityStatus(s); st {
	case ActivityNotStarted, ActivityInProgress, ActivityCompleted, ActivityOnHold, ActivityCancelled:
		return st, nil
	}
	return "", fmt.Errorf("invalid activity status %q", s)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority validates a priority string.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, nil
	}
	return "", fmt.Errorf("invalid priority %q", s)
}

type MediaType string

const (
	MediaPhoto    MediaType = "photo"
	MediaVideo    MediaType = "video"
	MediaNews     MediaType = "news"
	MediaDocument MediaType = "document"
)

// ParseMediaType validates a media type string.
func ParseMediaType(s string) (MediaType, error) {
	switch m := MediaType(s); m {
	case MediaPhoto, MediaVideo, MediaNews, MediaDocument:
		return m, nil
	}
	return "", fmt.Errorf("invalid media type %q", s)
}
