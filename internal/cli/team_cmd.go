package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/csrdash/internal/cli/formatter"
	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/filter"
	"github.com/alexanderramin/csrdash/internal/service"
	"github.com/spf13/cobra"
)

func newTeamCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Manage project team assignments",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show [PROJECT]",
			Short: "Show a project's team",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				p, err := resolveProject(ctx, app, argOrEmpty(args))
				if err != nil {
					return err
				}
				team, err := app.Team.ListByProject(ctx, p.ID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, formatter.Header("Team · "+p.DisplayID()))
				fmt.Fprint(out, formatter.FormatTeam(team))
				return nil
			},
		},
		newTeamSetCmd(app),
		&cobra.Command{
			Use:   "role PROJECT [USER]",
			Short: "Show a user's role on a project (defaults to you)",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				p, err := resolveProject(ctx, app, args[0])
				if err != nil {
					return err
				}
				user := app.Identity.UserID
				if len(args) == 2 {
					user = args[1]
				}
				role, err := app.Team.EffectiveRole(ctx, p.ID, user)
				if errors.Is(err, service.ErrNotAssigned) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is not assigned to %s\n", user, p.DisplayID())
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is %s on %s\n", user, role, p.DisplayID())
				return nil
			},
		},
		&cobra.Command{
			Use:   "mine",
			Short: "List the projects you are assigned to",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				ids, err := app.Team.AssignedProjectIDs(ctx, app.Identity.UserID)
				if err != nil {
					return err
				}
				projects := make([]*domain.Project, 0, len(ids))
				for _, id := range ids {
					p, err := app.Projects.GetByID(ctx, id)
					if err != nil {
						return err
					}
					projects = append(projects, p)
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectList(projects))
				return nil
			},
		},
	)

	return cmd
}

// parseAssignments reads USER:ROLE pairs; a bare USER joins as team_member.
func parseAssignments(args []string) ([]service.TeamAssignment, error) {
	out := make([]service.TeamAssignment, 0, len(args))
	for _, arg := range args {
		user, roleStr, found := strings.Cut(arg, ":")
		role := domain.TeamMemberRole
		if found {
			r, err := domain.ParseTeamRole(roleStr)
			if err != nil {
				return nil, err
			}
			role = r
		}
		out = append(out, service.TeamAssignment{UserID: user, Role: role})
	}
	return out, nil
}

func newTeamSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set PROJECT USER[:ROLE]...",
		Short: "Replace a project's team",
		Long: `Replace the whole team of a project. Roles are project_manager,
accountant and team_member (the default). Passing no users clears the team.

  csrdash team set SHN-2024-01 asha:project_manager ravi:accountant meena`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			assignments, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}

			var team []*domain.TeamMember
			err = app.Filters.Dispatch(ctx, filter.NewCommand("replacing team",
				func(ctx context.Context) error {
					var err error
					team, err = app.Team.ReplaceAll(ctx, p.ID, assignments)
					return err
				}, nil))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTeam(team))
			return nil
		},
	}
}
