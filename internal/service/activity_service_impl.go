package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/csrdash/internal/db"
	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/repository"
	"github.com/google/uuid"
)

type activityService struct {
	activities repository.ActivityRepo
	projects   repository.ProjectRepo
	uow        db.UnitOfWork
	observer   UseCaseObserver
}

func NewActivityService(activities repository.ActivityRepo, projects repository.ProjectRepo, uow db.UnitOfWork, observers ...UseCaseObserver) ActivityService {
	return &activityService{activities: activities, projects: projects, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *activityService) Create(ctx context.Context, a *domain.Activity) (err error) {
	defer observe(ctx, s.observer, "create-activity", time.Now().UTC(), map[string]any{"project_id": a.ProjectID}, &err)

	a.Title = strings.TrimSpace(a.Title)
	if a.Status == "" {
		a.Status = domain.ActivityNotStarted
	}
	if a.Priority == "" {
		a.Priority = domain.PriorityMedium
	}
	if err = s.validate(a); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	for i := range a.Items {
		if a.Items[i].ID == "" {
			a.Items[i].ID = uuid.New().String()
		}
		a.Items[i].OrderIndex = i
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := repository.NewSQLiteProjectRepo(tx).GetByID(ctx, a.ProjectID); err != nil {
			return err
		}
		return repository.NewSQLiteActivityRepo(tx).Create(ctx, a)
	})
}

func (s *activityService) validate(a *domain.Activity) error {
	if err := validateStruct(a); err != nil {
		return err
	}
	if _, err := domain.ParseActivityStatus(string(a.Status)); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, err := domain.ParsePriority(string(a.Priority)); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := a.ValidateDates(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func (s *activityService) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	return s.activities.GetByID(ctx, id)
}

func (s *activityService) ListByProject(ctx context.Context, projectID string) ([]*domain.Activity, error) {
	return s.activities.ListByProject(ctx, projectID)
}

func (s *activityService) Update(ctx context.Context, a *domain.Activity) (err error) {
	defer observe(ctx, s.observer, "update-activity", time.Now().UTC(), map[string]any{"activity_id": a.ID}, &err)

	a.Title = strings.TrimSpace(a.Title)
	if err = s.validate(a); err != nil {
		return err
	}
	a.UpdatedAt = time.Now().UTC()
	return s.activities.Update(ctx, a)
}

func (s *activityService) Delete(ctx context.Context, id string) (err error) {
	defer observe(ctx, s.observer, "delete-activity", time.Now().UTC(), map[string]any{"activity_id": id}, &err)

	if _, err = s.activities.GetByID(ctx, id); err != nil {
		return err
	}
	return s.activities.Delete(ctx, id)
}

func (s *activityService) AddItem(ctx context.Context, activityID, title string) (it *domain.ActivityItem, err error) {
	defer observe(ctx, s.observer, "add-activity-item", time.Now().UTC(), map[string]any{"activity_id": activityID}, &err)

	title = strings.TrimSpace(title)
	if err = validateVar("title", title, "notblank"); err != nil {
		return nil, err
	}
	a, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	it = &domain.ActivityItem{
		ID:         uuid.New().String(),
		ActivityID: activityID,
		Title:      title,
		OrderIndex: len(a.Items),
	}
	if err = s.activities.CreateItem(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *activityService) ToggleItem(ctx context.Context, itemID string) (it *domain.ActivityItem, err error) {
	defer observe(ctx, s.observer, "toggle-activity-item", time.Now().UTC(), map[string]any{"item_id": itemID}, &err)

	it, err = s.activities.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	it.Toggle(time.Now().UTC())
	if err = s.activities.UpdateItem(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *activityService) RemoveItem(ctx context.Context, itemID string) (err error) {
	defer observe(ctx, s.observer, "remove-activity-item", time.Now().UTC(), map[string]any{"item_id": itemID}, &err)

	if _, err = s.activities.GetItem(ctx, itemID); err != nil {
		return err
	}
	return s.activities.DeleteItem(ctx, itemID)
}
