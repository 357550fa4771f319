package service

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/csrdash/internal/db"
	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/repository"
	"github.com/google/uuid"
)

type partnerService struct {
	partners repository.PartnerRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewPartnerService(partners repository.PartnerRepo, uow db.UnitOfWork, observers ...UseCaseObserver) PartnerService {
	return &partnerService{partners: partners, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *partnerService) Create(ctx context.Context, p *domain.CSRPartner) (err error) {
	defer observe(ctx, s.observer, "create-partner", time.Now().UTC(), map[string]any{"name": p.Name}, &err)

	p.Name = strings.TrimSpace(p.Name)
	if err = validateStruct(p); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.IsActive = true
	return s.partners.Create(ctx, p)
}

func (s *partnerService) GetByID(ctx context.Context, id string) (*domain.CSRPartner, error) {
	return s.partners.GetByID(ctx, id)
}

func (s *partnerService) List(ctx context.Context, includeInactive bool) ([]*domain.CSRPartner, error) {
	return s.partners.List(ctx, includeInactive)
}

func (s *partnerService) Update(ctx context.Context, p *domain.CSRPartner) (err error) {
	defer observe(ctx, s.observer, "update-partner", time.Now().UTC(), map[string]any{"partner_id": p.ID}, &err)

	if err = validateStruct(p); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	return s.partners.Update(ctx, p)
}

func (s *partnerService) Deactivate(ctx context.Context, id string) (err error) {
	defer observe(ctx, s.observer, "deactivate-partner", time.Now().UTC(), map[string]any{"partner_id": id}, &err)

	if _, err = s.partners.GetByID(ctx, id); err != nil {
		return err
	}
	return s.partners.Deactivate(ctx, id)
}

func (s *partnerService) Delete(ctx context.Context, id string) (err error) {
	defer observe(ctx, s.observer, "delete-partner", time.Now().UTC(), map[string]any{"partner_id": id}, &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txPartners := repository.NewSQLitePartnerRepo(tx)
		if _, err := txPartners.GetByID(ctx, id); err != nil {
			return err
		}
		if err := repository.NewSQLiteProjectRepo(tx).DeleteByPartner(ctx, id); err != nil {
			return err
		}
		if err := repository.NewSQLiteTollRepo(tx).DeleteByPartner(ctx, id); err != nil {
			return err
		}
		return txPartners.Delete(ctx, id)
	})
}
