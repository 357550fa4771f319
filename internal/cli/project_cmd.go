package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alexanderramin/csrdash/internal/cli/formatter"
	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/filter"
	"github.com/alexanderramin/csrdash/internal/impact"
	"github.com/alexanderramin/csrdash/internal/rollup"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage projects",
	}

	cmd.AddCommand(
		newProjectAddCmd(app),
		newProjectListCmd(app),
		newProjectShowCmd(app),
		newProjectUpdateCmd(app),
		newProjectRemoveCmd(app),
		newBeneficiariesCmd(app),
		newImpactCmd(app),
	)

	return cmd
}

// projectFlags are the editable project fields shared by add and update.
type projectFlags struct {
	code, name, description, status, toll string
	budget, utilized                      float64
	direct, indirect                      int
	beneficiaryType, beneficiaryName      string
	location, state, work, start, end, uc string
}

func (f *projectFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.code, "code", "", "Project code (e.g. SHN-2024-01)")
	fs.StringVar(&f.name, "name", "", "Project name")
	fs.StringVar(&f.description, "description", "", "Description")
	fs.StringVar(&f.status, "status", "", "Status (planning, active, on_hold, completed, cancelled, archived)")
	fs.StringVar(&f.toll, "toll", "", "Toll (id or name)")
	fs.Float64Var(&f.budget, "budget", 0, "Total budget (INR)")
	fs.Float64Var(&f.utilized, "utilized", 0, "Utilized budget (INR)")
	fs.IntVar(&f.direct, "direct", 0, "Direct beneficiaries")
	fs.IntVar(&f.indirect, "indirect", 0, "Indirect beneficiaries")
	fs.StringVar(&f.beneficiaryType, "beneficiary-type", "", "Beneficiary type (e.g. students)")
	fs.StringVar(&f.beneficiaryName, "beneficiary-name", "", "Named beneficiary")
	fs.StringVar(&f.location, "location", "", "Location")
	fs.StringVar(&f.state, "state", "", "State")
	fs.StringVar(&f.work, "work", "", "Nature of work")
	fs.StringVar(&f.start, "start", "", "Start date (YYYY-MM-DD)")
	fs.StringVar(&f.end, "end", "", "End date (YYYY-MM-DD)")
	fs.StringVar(&f.uc, "uc", "", "Utilisation certificate link")
}

// apply copies every flag the user set onto p.
func (f *projectFlags) apply(ctx context.Context, app *App, cmd *cobra.Command, p *domain.Project) error {
	fs := cmd.Flags()
	set := func(name string, fn func()) {
		if fs.Changed(name) {
			fn()
		}
	}
	set("code", func() { p.ProjectCode = f.code })
	set("name", func() { p.Name = f.name })
	set("description", func() { p.Description = f.description })
	set("budget", func() { p.TotalBudget = f.budget })
	set("utilized", func() { p.UtilizedBudget = f.utilized })
	set("direct", func() { p.DirectBeneficiaries = f.direct })
	set("indirect", func() { p.IndirectBeneficiaries = f.indirect })
	set("beneficiary-type", func() { p.BeneficiaryType = f.beneficiaryType })
	set("beneficiary-name", func() { p.BeneficiaryName = f.beneficiaryName })
	set("location", func() { p.Location = f.location })
	set("state", func() { p.State = f.state })
	set("work", func() { p.Work = f.work })
	set("uc", func() { p.UCLink = f.uc })

	if fs.Changed("status") {
		st, err := domain.ParseProjectStatus(f.status)
		if err != nil {
			return err
		}
		p.Status = st
	}
	if fs.Changed("toll") {
		if f.toll == "" {
			p.TollID = nil
		} else {
			id, err := resolveTollID(ctx, app, p.CSRPartnerID, f.toll)
			if err != nil {
				return err
			}
			p.TollID = &id
		}
	}
	if fs.Changed("start") {
		d, err := parseOptionalDate(f.start)
		if err != nil {
			return err
		}
		p.StartDate = d
	}
	if fs.Changed("end") {
		d, err := parseOptionalDate(f.end)
		if err != nil {
			return err
		}
		p.EndDate = d
	}
	return nil
}

func newProjectAddCmd(app *App) *cobra.Command {
	var f projectFlags
	var partner string
	var beneficiaries int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a project, optionally with beneficiary sub-projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st := app.Filters.State()
			if partner == "" {
				partner = st.SelectedPartner
			}
			partnerID, err := resolvePartnerID(ctx, app, partner)
			if err != nil {
				return err
			}

			p := &domain.Project{CSRPartnerID: partnerID}
			if !cmd.Flags().Changed("toll") && st.SelectedToll != "" && st.SelectedPartner == partnerID {
				tollID := st.SelectedToll
				p.TollID = &tollID
			}
			if (f.code == "" || f.name == "") && app.interactive() {
				if err := runProjectWizard(cmd, &f, &beneficiaries); err != nil {
					return err
				}
			}
			if err := f.apply(ctx, app, cmd, p); err != nil {
				return err
			}

			err = app.Filters.Dispatch(ctx, filter.NewCommand("creating project",
				func(ctx context.Context) error { return app.Projects.Create(ctx, p, beneficiaries) },
				filter.AppendProject(p),
			))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created project %s [%s]\n", p.Name, p.ProjectCode)
			if beneficiaries > 0 {
				fmt.Fprintf(out, "  with %d beneficiary sub-projects\n", beneficiaries)
			}
			return nil
		},
	}

	f.register(cmd.Flags())
	cmd.Flags().StringVar(&partner, "partner", "", "Partner (defaults to the selected partner)")
	cmd.Flags().IntVar(&beneficiaries, "beneficiaries", 0, "Number of beneficiary sub-projects to generate")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	var portfolio bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects visible under the current filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := app.Filters.State()
			out := cmd.OutOrStdout()
			if st.Err != "" {
				fmt.Fprintln(out, formatter.StyleRed.Render(st.Err))
			}
			fmt.Fprintln(out, formatFilterBar(st))
			fmt.Fprintln(out, formatter.FormatProjectList(st.FilteredProjects))
			if portfolio {
				fmt.Fprintln(out, formatter.FormatPortfolio(rollup.SummarizePortfolio(st.FilteredProjects)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&portfolio, "portfolio", false, "Show portfolio totals")

	return cmd
}

// loadProjectDetail gathers everything the project card shows.
func loadProjectDetail(ctx context.Context, app *App, p *domain.Project) (formatter.ProjectDetailData, error) {
	data := formatter.ProjectDetailData{Project: p}

	partner, err := app.Partners.GetByID(ctx, p.CSRPartnerID)
	if err != nil {
		return data, fmt.Errorf("loading partner: %w", err)
	}
	data.PartnerName = partner.DisplayName()
	if tollID := domain.StrVal(p.TollID); tollID != "" {
		if toll, err := app.Tolls.GetByID(ctx, tollID); err == nil {
			data.TollName = toll.DisplayName()
		}
	}

	if data.SubProjects, err = app.Projects.ListSubProjects(ctx, p.ID); err != nil {
		return data, fmt.Errorf("loading beneficiaries: %w", err)
	}
	if data.Impact, err = app.Projects.ImpactSummary(ctx, p.ID); err != nil {
		return data, fmt.Errorf("summarizing impact: %w", err)
	}
	if data.Team, err = app.Team.ListByProject(ctx, p.ID); err != nil {
		return data, fmt.Errorf("loading team: %w", err)
	}
	return data, nil
}

func newProjectShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [PROJECT]",
		Short: "Show project details",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, argOrEmpty(args))
			if err != nil {
				return err
			}
			data, err := loadProjectDetail(ctx, app, p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectDetail(data))
			return nil
		},
	}
}

func newProjectUpdateCmd(app *App) *cobra.Command {
	var f projectFlags

	cmd := &cobra.Command{
		Use:   "update PROJECT",
		Short: "Update project fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := f.apply(ctx, app, cmd, p); err != nil {
				return err
			}
			err = app.Filters.Dispatch(ctx, filter.NewCommand("updating project",
				func(ctx context.Context) error { return app.Projects.Update(ctx, p) }, nil))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated project %s\n", p.DisplayID())
			return nil
		},
	}

	f.register(cmd.Flags())

	return cmd
}

func newProjectRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove PROJECT",
		Short: "Delete a project with its beneficiaries, budget and team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			err = app.Filters.Dispatch(ctx, filter.NewCommand("deleting project",
				func(ctx context.Context) error { return app.Projects.Delete(ctx, p.ID) },
				filter.RemoveProject(p.ID),
			))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", p.DisplayID())
			return nil
		},
	}
}

func newBeneficiariesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "beneficiaries",
		Aliases: []string{"ben"},
		Short:   "Manage beneficiary sub-projects",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list [PROJECT]",
			Short: "List beneficiary sub-projects",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				p, err := resolveProject(ctx, app, argOrEmpty(args))
				if err != nil {
					return err
				}
				subs, err := app.Projects.ListSubProjects(ctx, p.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectList(subs))
				return nil
			},
		},
		&cobra.Command{
			Use:   "add PROJECT COUNT",
			Short: "Generate more beneficiary sub-projects",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				n, err := strconv.Atoi(args[1])
				if err != nil || n <= 0 {
					return fmt.Errorf("count must be a positive number, got %q", args[1])
				}
				p, err := resolveProject(ctx, app, args[0])
				if err != nil {
					return err
				}
				created, err := app.Projects.AddBeneficiaries(ctx, p.ID, n)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, sub := range created {
					fmt.Fprintf(out, "Created %s\n", sub.ProjectCode)
				}
				return nil
			},
		},
	)

	return cmd
}

func newImpactCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "impact",
		Short: "Record and summarize impact metrics",
	}

	var setLabel string
	setCmd := &cobra.Command{
		Use:   "set PROJECT KEY VALUE",
		Short: "Set a metric value (KEY may be 'custom' with --label)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key, err := impact.ParseKey(args[1])
			if err != nil {
				return err
			}
			value, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[2], err)
			}
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			p, err = app.Projects.SetImpactMetric(ctx, p.ID, key, value, setLabel)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatImpact(p.ImpactMetrics))
			return nil
		},
	}
	setCmd.Flags().StringVar(&setLabel, "label", "", "Label for a custom metric")

	var removeLabel string
	removeCmd := &cobra.Command{
		Use:   "remove PROJECT KEY",
		Short: "Remove a metric",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key, err := impact.ParseKey(args[1])
			if err != nil {
				return err
			}
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			p, err = app.Projects.RemoveImpactMetric(ctx, p.ID, key, removeLabel)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatImpact(p.ImpactMetrics))
			return nil
		},
	}
	removeCmd.Flags().StringVar(&removeLabel, "label", "", "Label of the custom metric")

	summaryCmd := &cobra.Command{
		Use:   "summary [PROJECT]",
		Short: "Show impact aggregated over the project and its beneficiaries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, argOrEmpty(args))
			if err != nil {
				return err
			}
			summary, err := app.Projects.ImpactSummary(ctx, p.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Header("Impact · "+p.DisplayID()))
			fmt.Fprint(out, formatter.FormatImpact(summary.Entries))
			return nil
		},
	}

	cmd.AddCommand(setCmd, removeCmd, summaryCmd)
	return cmd
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
