package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/csrdash/internal/cli/formatter"
	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/filter"
	"github.com/alexanderramin/csrdash/internal/service"
	"github.com/spf13/cobra"
)

// projectRoleFor resolves the current user's role on p. Admins and
// accountants who are not on the team get a role from their global role;
// everyone else must be assigned.
func projectRoleFor(ctx context.Context, app *App, p *domain.Project) (domain.TeamRole, error) {
	role, err := app.Team.EffectiveRole(ctx, p.ID, app.Identity.UserID)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, service.ErrNotAssigned) {
		return "", err
	}
	switch app.Identity.Role {
	case domain.RoleAdmin:
		return domain.TeamProjectManager, nil
	case domain.RoleAccountant:
		return domain.TeamAccountant, nil
	}
	return "", fmt.Errorf("access denied to %s: %w", p.DisplayID(), err)
}

func newOpenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open PROJECT",
		Short: "Open the dashboard pinned to one project",
		Long: `Record PROJECT as the project context, pin the partner, toll and project
filters to it and open the dashboard. Filters unlock when the dashboard closes.
Beneficiary sub-projects open their parent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			if p.IsSubProject() {
				if p, err = app.Projects.GetByID(ctx, domain.StrVal(p.ParentProjectID)); err != nil {
					return err
				}
			}

			role, err := projectRoleFor(ctx, app, p)
			if err != nil {
				return err
			}
			pc := filter.ProjectContext{
				ProjectID:   p.ID,
				PartnerID:   p.CSRPartnerID,
				TollID:      domain.StrVal(p.TollID),
				ProjectRole: role,
			}
			if err := filter.SaveProjectContext(app.Persist, pc); err != nil {
				return fmt.Errorf("saving project context: %w", err)
			}

			_, release, err := app.Filters.Pin(ctx)
			if err != nil {
				return fmt.Errorf("pinning project: %w", err)
			}
			defer release()

			if !app.interactive() {
				data, err := loadProjectDetail(ctx, app, p)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, formatFilterBar(app.Filters.State()))
				fmt.Fprintf(out, "%s %s\n", formatter.Dim("YOUR ROLE"), role)
				fmt.Fprintln(out, formatter.FormatProjectDetail(data))
				return nil
			}
			return runDashboard(cmd, app)
		},
	}
}
