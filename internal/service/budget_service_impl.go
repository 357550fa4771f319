package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/csrdash/internal/budget"
	"github.com/alexanderramin/csrdash/internal/db"
	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/repository"
	"github.com/google/uuid"
)

type budgetService struct {
	categories repository.BudgetCategoryRepo
	projects   repository.ProjectRepo
	uow        db.UnitOfWork
	observer   UseCaseObserver
}

func NewBudgetService(categories repository.BudgetCategoryRepo, projects repository.ProjectRepo, uow db.UnitOfWork, observers ...UseCaseObserver) BudgetService {
	return &budgetService{categories: categories, projects: projects, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *budgetService) List(ctx context.Context, projectID string) ([]*domain.BudgetCategory, error) {
	return s.categories.ListByProject(ctx, projectID)
}

func (s *budgetService) Tree(ctx context.Context, projectID string) (*budget.Tree, error) {
	cats, err := s.categories.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return budget.FromCategories(cats)
}

func (s *budgetService) Save(ctx context.Context, projectID string, tree *budget.Tree) (saved []*domain.BudgetCategory, err error) {
	fields := map[string]any{"project_id": projectID, "categories": tree.Len()}
	defer observe(ctx, s.observer, "save-budget", time.Now().UTC(), fields, &err)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		project, err := repository.NewSQLiteProjectRepo(tx).GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if err := tree.Validate(project.TotalBudget); err != nil {
			return err
		}

		txCats := repository.NewSQLiteBudgetCategoryRepo(tx)
		if err := txCats.DeleteByProject(ctx, projectID); err != nil {
			return err
		}
		now := time.Now().UTC()
		ids := make(map[string]string, tree.Len())
		order := make(map[string]int)
		return tree.Walk(func(n budget.Node, _ int) error {
			c := &domain.BudgetCategory{
				ID:              uuid.New().String(),
				ProjectID:       projectID,
				Name:            n.Name,
				AllocatedAmount: n.Allocated,
				AvailableAmount: n.Allocated,
				OrderIndex:      order[n.ParentKey],
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			order[n.ParentKey]++
			if n.ParentKey != "" {
				c.ParentID = domain.StrPtr(ids[n.ParentKey])
			}
			if err := txCats.Create(ctx, c); err != nil {
				return fmt.Errorf("category %q: %w", n.Name, err)
			}
			ids[n.Key] = c.ID
			saved = append(saved, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *budgetService) ReportUtilization(ctx context.Context, categoryID string, utilized, pending float64) (c *domain.BudgetCategory, err error) {
	defer observe(ctx, s.observer, "report-utilization", time.Now().UTC(), map[string]any{"category_id": categoryID}, &err)

	if utilized < 0 || pending < 0 {
		return nil, fmt.Errorf("%w: utilized and pending amounts must not be negative", ErrValidation)
	}
	c, err = s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	c.UtilizedAmount = utilized
	c.PendingAmount = pending
	c.AvailableAmount = c.AllocatedAmount - utilized - pending
	c.UpdatedAt = time.Now().UTC()
	if err = s.categories.UpdateAmounts(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *budgetService) Delete(ctx context.Context, categoryID string) (err error) {
	defer observe(ctx, s.observer, "delete-budget-category", time.Now().UTC(), map[string]any{"category_id": categoryID}, &err)

	if _, err = s.categories.GetByID(ctx, categoryID); err != nil {
		return err
	}
	return s.categories.Delete(ctx, categoryID)
}
