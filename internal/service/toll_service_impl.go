package service

import (
	"context"
	"time"

	"github.com/alexanderramin/csrdash/internal/db"
	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/repository"
	"github.com/google/uuid"
)

type tollService struct {
	tolls    repository.TollRepo
	partners repository.PartnerRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewTollService(tolls repository.TollRepo, partners repository.PartnerRepo, uow db.UnitOfWork, observers ...UseCaseObserver) TollService {
	return &tollService{tolls: tolls, partners: partners, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *tollService) Create(ctx context.Context, t *domain.Toll) (err error) {
	defer observe(ctx, s.observer, "create-toll", time.Now().UTC(), map[string]any{"partner_id": t.CSRPartnerID}, &err)

	if err = validateStruct(t); err != nil {
		return err
	}
	if _, err = s.partners.GetByID(ctx, t.CSRPartnerID); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.IsActive = true
	return s.tolls.Create(ctx, t)
}

func (s *tollService) GetByID(ctx context.Context, id string) (*domain.Toll, error) {
	return s.tolls.GetByID(ctx, id)
}

func (s *tollService) ListByPartner(ctx context.Context, partnerID string) ([]*domain.Toll, error) {
	return s.tolls.ListByPartner(ctx, partnerID, false)
}

func (s *tollService) Update(ctx context.Context, t *domain.Toll) (err error) {
	defer observe(ctx, s.observer, "update-toll", time.Now().UTC(), map[string]any{"toll_id": t.ID}, &err)

	if err = validateStruct(t); err != nil {
		return err
	}
	t.UpdatedAt = time.Now().UTC()
	return s.tolls.Update(ctx, t)
}

func (s *tollService) Delete(ctx context.Context, id string) (err error) {
	defer observe(ctx, s.observer, "delete-toll", time.Now().UTC(), map[string]any{"toll_id": id}, &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTolls := repository.NewSQLiteTollRepo(tx)
		if _, err := txTolls.GetByID(ctx, id); err != nil {
			return err
		}
		if err := repository.NewSQLiteProjectRepo(tx).DeleteByToll(ctx, id); err != nil {
			return err
		}
		return txTolls.Delete(ctx, id)
	})
}
