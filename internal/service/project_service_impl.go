package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/csrdash/internal/db"
	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/impact"
	"github.com/alexanderramin/csrdash/internal/repository"
	"github.com/alexanderramin/csrdash/internal/rollup"
	"github.com/google/uuid"
)

// MaxBeneficiaries bounds a single bulk sub-project creation.
const MaxBeneficiaries = 500

type projectService struct {
	projects repository.ProjectRepo
	partners repository.PartnerRepo
	tolls    repository.TollRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewProjectService(
	projects repository.ProjectRepo,
	partners repository.PartnerRepo,
	tolls repository.TollRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) ProjectService {
	return &projectService{
		projects: projects,
		partners: partners,
		tolls:    tolls,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *projectService) Create(ctx context.Context, p *domain.Project, beneficiaries int) (err error) {
	fields := map[string]any{"code": p.ProjectCode, "beneficiaries": beneficiaries}
	defer observe(ctx, s.observer, "create-project", time.Now().UTC(), fields, &err)

	p.ProjectCode = strings.ToUpper(strings.TrimSpace(p.ProjectCode))
	if err = s.validate(ctx, p); err != nil {
		return err
	}
	if beneficiaries < 0 || beneficiaries > MaxBeneficiaries {
		return fmt.Errorf("%w: beneficiaries must be between 0 and %d", ErrValidation, MaxBeneficiaries)
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.IsActive = true
	if p.Status == "" {
		p.Status = domain.ProjectPlanning
	}
	if p.ImpactMetrics == nil {
		p.ImpactMetrics = []impact.Entry{}
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txProjects := repository.NewSQLiteProjectRepo(tx)
		if err := txProjects.Create(ctx, p); err != nil {
			return err
		}
		for n := 1; n <= beneficiaries; n++ {
			sub := domain.NewBeneficiarySubProject(p, n, uuid.New().String(), now)
			if err := txProjects.Create(ctx, sub); err != nil {
				return fmt.Errorf("creating beneficiary %d: %w", n, err)
			}
		}
		return nil
	})
}

// validate checks struct tags, the project code and that the partner and
// toll exist and belong together.
func (s *projectService) validate(ctx context.Context, p *domain.Project) error {
	if err := validateStruct(p); err != nil {
		return err
	}
	if err := p.ValidateCode(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if p.Status != "" && !domain.ValidProjectStatuses[p.Status] {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, p.Status)
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return fmt.Errorf("%w: end date is before start date", ErrValidation)
	}
	if _, err := s.partners.GetByID(ctx, p.CSRPartnerID); err != nil {
		return err
	}
	if tollID := domain.StrVal(p.TollID); tollID != "" {
		toll, err := s.tolls.GetByID(ctx, tollID)
		if err != nil {
			return err
		}
		if toll.CSRPartnerID != p.CSRPartnerID {
			return fmt.Errorf("%w: toll %s belongs to another partner", ErrValidation, toll.DisplayName())
		}
	}
	return nil
}

func (s *projectService) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *projectService) Resolve(ctx context.Context, idOrCode string) (*domain.Project, error) {
	p, err := s.projects.GetByID(ctx, idOrCode)
	if errors.Is(err, repository.ErrNotFound) {
		return s.projects.GetByCode(ctx, idOrCode)
	}
	return p, err
}

func (s *projectService) ListTopLevel(ctx context.Context) ([]*domain.Project, error) {
	return s.projects.ListTopLevel(ctx)
}

func (s *projectService) ListSubProjects(ctx context.Context, parentID string) ([]*domain.Project, error) {
	return s.projects.ListByParent(ctx, parentID)
}

func (s *projectService) AddBeneficiaries(ctx context.Context, parentID string, n int) (subs []*domain.Project, err error) {
	defer observe(ctx, s.observer, "add-beneficiaries", time.Now().UTC(), map[string]any{"project_id": parentID, "count": n}, &err)

	if n < 1 || n > MaxBeneficiaries {
		return nil, fmt.Errorf("%w: beneficiaries must be between 1 and %d", ErrValidation, MaxBeneficiaries)
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txProjects := repository.NewSQLiteProjectRepo(tx)
		parent, err := txProjects.GetByID(ctx, parentID)
		if err != nil {
			return err
		}
		if parent.IsSubProject() {
			return fmt.Errorf("%w: %s is itself a beneficiary project", ErrValidation, parent.DisplayID())
		}
		last, err := txProjects.MaxBeneficiaryNumber(ctx, parentID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for i := 1; i <= n; i++ {
			sub := domain.NewBeneficiarySubProject(parent, last+i, uuid.New().String(), now)
			if err := txProjects.Create(ctx, sub); err != nil {
				return fmt.Errorf("creating beneficiary %d: %w", last+i, err)
			}
			subs = append(subs, sub)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// Update saves p and pushes the inherited fields down to its beneficiary
// sub-projects.
func (s *projectService) Update(ctx context.Context, p *domain.Project) (err error) {
	defer observe(ctx, s.observer, "update-project", time.Now().UTC(), map[string]any{"project_id": p.ID}, &err)

	p.ProjectCode = strings.ToUpper(strings.TrimSpace(p.ProjectCode))
	if err = s.validate(ctx, p); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txProjects := repository.NewSQLiteProjectRepo(tx)
		if err := txProjects.Update(ctx, p); err != nil {
			return err
		}
		if p.IsSubProject() {
			return nil
		}
		subs, err := txProjects.ListByParent(ctx, p.ID)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			sub.TollID = p.TollID
			sub.Location = p.Location
			sub.State = p.State
			sub.Work = p.Work
			sub.Status = p.Status
			sub.StartDate = p.StartDate
			sub.EndDate = p.EndDate
			sub.UpdatedAt = p.UpdatedAt
			if err := txProjects.Update(ctx, sub); err != nil {
				return fmt.Errorf("updating %s: %w", sub.DisplayID(), err)
			}
		}
		return nil
	})
}

func (s *projectService) Delete(ctx context.Context, id string) (err error) {
	defer observe(ctx, s.observer, "delete-project", time.Now().UTC(), map[string]any{"project_id": id}, &err)

	if _, err = s.projects.GetByID(ctx, id); err != nil {
		return err
	}
	return s.projects.Delete(ctx, id)
}

func (s *projectService) SetImpactMetric(ctx context.Context, projectID string, key impact.Key, value float64, customLabel string) (p *domain.Project, err error) {
	fields := map[string]any{"project_id": projectID, "metric": string(key)}
	defer observe(ctx, s.observer, "set-impact-metric", time.Now().UTC(), fields, &err)

	if key == impact.KeyCustom && strings.TrimSpace(customLabel) == "" {
		return nil, fmt.Errorf("%w: custom metrics need a label", ErrValidation)
	}
	if key != impact.KeyCustom && !impact.PredefinedKeys[key] {
		return nil, fmt.Errorf("%w: unknown impact metric %q", ErrValidation, key)
	}
	if err = validateVar("value", value, "gte=0"); err != nil {
		return nil, err
	}
	return s.mutateMetrics(ctx, projectID, func(list []impact.Entry) []impact.Entry {
		return impact.Upsert(list, key, value, customLabel)
	})
}

func (s *projectService) RemoveImpactMetric(ctx context.Context, projectID string, key impact.Key, customLabel string) (p *domain.Project, err error) {
	fields := map[string]any{"project_id": projectID, "metric": string(key)}
	defer observe(ctx, s.observer, "remove-impact-metric", time.Now().UTC(), fields, &err)

	return s.mutateMetrics(ctx, projectID, func(list []impact.Entry) []impact.Entry {
		return impact.Remove(list, key, customLabel)
	})
}

func (s *projectService) mutateMetrics(ctx context.Context, projectID string, fn func([]impact.Entry) []impact.Entry) (*domain.Project, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	p.ImpactMetrics = fn(p.ImpactMetrics)
	p.UpdatedAt = time.Now().UTC()
	if err := s.projects.UpdateImpactMetrics(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectService) ImpactSummary(ctx context.Context, projectID string) (*rollup.ImpactSummary, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	subs, err := s.projects.ListByParent(ctx, projectID)
	if err != nil {
		return nil, err
	}
	summary := rollup.SummarizeImpact(p, subs)
	return &summary, nil
}
