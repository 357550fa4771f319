package cli

import (
	"fmt"
	"log/slog"

	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/filter"
	"github.com/alexanderramin/csrdash/internal/service"
	"github.com/alexanderramin/csrdash/internal/undo"
	"github.com/spf13/cobra"
)

// App holds references to all services and shared state used by commands.
type App struct {
	Partners   service.PartnerService
	Tolls      service.TollService
	Projects   service.ProjectService
	Team       service.TeamService
	Budget     service.BudgetService
	Activities service.ActivityService
	Media      service.MediaService

	Filters  *filter.Store
	Persist  filter.Persistence
	Undo     *undo.Scheduler
	Identity filter.Identity
	Logger   *slog.Logger

	// IsInteractive reports whether stdin is a terminal. Nil means false.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "csrdash" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var user, role string

	root := &cobra.Command{
		Use:           "csrdash",
		Short:         "CSR project portfolio dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("user") {
				app.Identity.UserID = user
			}
			if cmd.Flags().Changed("role") {
				r, err := domain.ParseUserRole(role)
				if err != nil {
					return err
				}
				app.Identity.Role = r
			}
			if app.Identity.UserID == "" {
				return fmt.Errorf("no user configured (use --user or CSRDASH_USER)")
			}
			app.Filters.Init(cmd.Context(), app.Identity)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&user, "user", "", "Act as this user id")
	root.PersistentFlags().StringVar(&role, "role", "", "Act with this role (admin, project_manager, accountant, team_member)")

	root.AddCommand(
		newPartnerCmd(app),
		newTollCmd(app),
		newProjectCmd(app),
		newBudgetCmd(app),
		newTeamCmd(app),
		newActivityCmd(app),
		newMediaCmd(app),
		newFilterCmd(app),
		newGroupCmd(app),
		newOpenCmd(app),
		newDashboardCmd(app),
	)

	return root
}
