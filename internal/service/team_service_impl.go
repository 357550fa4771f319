package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/csrdash/internal/db"
	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/repository"
	"github.com/google/uuid"
)

// ErrNotAssigned is returned when a user has no team row on a project.
var ErrNotAssigned = errors.New("user is not assigned to project")

type teamService struct {
	members  repository.TeamMemberRepo
	projects repository.ProjectRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewTeamService(members repository.TeamMemberRepo, projects repository.ProjectRepo, uow db.UnitOfWork, observers ...UseCaseObserver) TeamService {
	return &teamService{members: members, projects: projects, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *teamService) ListByProject(ctx context.Context, projectID string) ([]*domain.TeamMember, error) {
	return s.members.ListByProject(ctx, projectID)
}

func (s *teamService) ReplaceAll(ctx context.Context, projectID string, assignments []TeamAssignment) (team []*domain.TeamMember, err error) {
	fields := map[string]any{"project_id": projectID, "members": len(assignments)}
	defer observe(ctx, s.observer, "replace-team", time.Now().UTC(), fields, &err)

	seen := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		userID := strings.TrimSpace(a.UserID)
		if userID == "" {
			return nil, fmt.Errorf("%w: team member needs a user id", ErrValidation)
		}
		if seen[userID] {
			return nil, fmt.Errorf("%w: user %s assigned twice", ErrValidation, userID)
		}
		seen[userID] = true
		if _, err = domain.ParseTeamRole(string(a.Role)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	now := time.Now().UTC()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := repository.NewSQLiteProjectRepo(tx).GetByID(ctx, projectID); err != nil {
			return err
		}
		txMembers := repository.NewSQLiteTeamMemberRepo(tx)
		if err := txMembers.DeleteByProject(ctx, projectID); err != nil {
			return err
		}
		for _, a := range assignments {
			m := domain.NewTeamMember(uuid.New().String(), projectID, strings.TrimSpace(a.UserID), a.Role, now)
			if err := txMembers.Create(ctx, m); err != nil {
				return err
			}
			team = append(team, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) AssignedProjectIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.members.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, m := range rows {
		if m.IsActive {
			ids = append(ids, m.ProjectID)
		}
	}
	return ids, nil
}

func (s *teamService) EffectiveRole(ctx context.Context, projectID, userID string) (domain.TeamRole, error) {
	m, err := s.members.GetByProjectAndUser(ctx, projectID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("%s on %s: %w", userID, projectID, ErrNotAssigned)
	}
	if err != nil {
		return "", err
	}
	if !m.IsActive {
		return "", fmt.Errorf("%s on %s: %w", userID, projectID, ErrNotAssigned)
	}
	return m.Role, nil
}
