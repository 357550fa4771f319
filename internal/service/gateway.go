package service

import (
	"context"

	"github.com/alexanderramin/csrdash/internal/domain"
)

// FilterGateway exposes the services as the read side of filter.Store.
type FilterGateway struct {
	Partners PartnerService
	Tolls    TollService
	Projects ProjectService
	Team     TeamService
}

func (g FilterGateway) ListActivePartners(ctx context.Context) ([]*domain.CSRPartner, error) {
	return g.Partners.List(ctx, false)
}

func (g FilterGateway) ListTopLevelProjects(ctx context.Context) ([]*domain.Project, error) {
	return g.Projects.ListTopLevel(ctx)
}

func (g FilterGateway) ListTollsByPartner(ctx context.Context, partnerID string) ([]*domain.Toll, error) {
	return g.Tolls.ListByPartner(ctx, partnerID)
}

func (g FilterGateway) AssignedProjectIDs(ctx context.Context, userID string) ([]string, error) {
	return g.Team.AssignedProjectIDs(ctx, userID)
}
