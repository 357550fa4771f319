package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/repository"
	"github.com/google/uuid"
)

type mediaService struct {
	media    repository.MediaRepo
	projects repository.ProjectRepo
	observer UseCaseObserver
}

func NewMediaService(media repository.MediaRepo, projects repository.ProjectRepo, observers ...UseCaseObserver) MediaService {
	return &mediaService{media: media, projects: projects, observer: useCaseObserverOrNoop(observers)}
}

func (s *mediaService) Create(ctx context.Context, m *domain.MediaArticle) (err error) {
	defer observe(ctx, s.observer, "create-media", time.Now().UTC(), map[string]any{"project_id": m.ProjectID}, &err)

	m.Title = strings.TrimSpace(m.Title)
	if m.MediaType == "" {
		m.MediaType = domain.MediaNews
	}
	if err = validateStruct(m); err != nil {
		return err
	}
	if _, err = domain.ParseMediaType(string(m.MediaType)); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, err = s.projects.GetByID(ctx, m.ProjectID); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = time.Now().UTC()
	return s.media.Create(ctx, m)
}

func (s *mediaService) ListByProject(ctx context.Context, projectID string) ([]*domain.MediaArticle, error) {
	return s.media.ListByProject(ctx, projectID)
}

func (s *mediaService) Delete(ctx context.Context, id string) (err error) {
	defer observe(ctx, s.observer, "delete-media", time.Now().UTC(), map[string]any{"media_id": id}, &err)

	return s.media.Delete(ctx, id)
}
