package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/csrdash/internal/cli/formatter"
	"github.com/alexanderramin/csrdash/internal/filter"
	"github.com/alexanderramin/csrdash/internal/rollup"
	"github.com/spf13/cobra"
)

// formatFilterBar renders the current selection on one line.
func formatFilterBar(st filter.State) string {
	label := func(name, value string) string {
		if value == "" {
			value = formatter.Dim("all")
		} else {
			value = formatter.Bold(value)
		}
		return formatter.Dim(name+" ") + value
	}

	partner, toll, project := "", "", ""
	if p := st.Partner(); p != nil {
		partner = p.DisplayName()
	} else if st.SelectedPartner != "" {
		partner = st.SelectedPartner
	}
	if t := st.Toll(); t != nil {
		toll = t.DisplayName()
	} else if st.SelectedToll != "" {
		toll = st.SelectedToll
	}
	if p := st.Project(); p != nil {
		project = p.DisplayID()
	} else if st.SelectedProject != "" {
		project = st.SelectedProject
	}

	parts := []string{label("PARTNER", partner), label("TOLL", toll), label("PROJECT", project)}
	line := strings.Join(parts, formatter.Dim("  ·  "))
	line += formatter.Dim(fmt.Sprintf("   %d of %d projects", len(st.FilteredProjects), len(st.Projects)))
	if st.FiltersLocked {
		line += "  " + formatter.StyleYellowBold.Render("PINNED")
	}
	return line
}

func newFilterCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Show or change the partner / toll / project selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), formatFilterBar(app.Filters.State()))
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "partner [PARTNER]",
			Short: "Select a partner (no argument clears it)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				id := ""
				if len(args) == 1 {
					var err error
					if id, err = resolvePartnerID(ctx, app, args[0]); err != nil {
						return err
					}
				}
				if err := app.Filters.SelectPartner(ctx, id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatFilterBar(app.Filters.State()))
				return nil
			},
		},
		&cobra.Command{
			Use:   "toll [TOLL]",
			Short: "Select a toll of the selected partner (no argument clears it)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				st := app.Filters.State()
				id := ""
				if len(args) == 1 {
					if st.SelectedPartner == "" {
						return fmt.Errorf("select a partner first")
					}
					var err error
					if id, err = resolveTollID(cmd.Context(), app, st.SelectedPartner, args[0]); err != nil {
						return err
					}
				}
				if err := app.Filters.SelectToll(id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatFilterBar(app.Filters.State()))
				return nil
			},
		},
		&cobra.Command{
			Use:   "project [PROJECT]",
			Short: "Select a project (no argument clears it)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id := ""
				if len(args) == 1 {
					p, err := resolveProject(cmd.Context(), app, args[0])
					if err != nil {
						return err
					}
					id = p.ID
				}
				if err := app.Filters.SelectProject(id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatFilterBar(app.Filters.State()))
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Clear partner, toll and project",
			RunE: func(cmd *cobra.Command, args []string) error {
				app.Filters.ResetFilters()
				fmt.Fprintln(cmd.OutOrStdout(), formatFilterBar(app.Filters.State()))
				return nil
			},
		},
		&cobra.Command{
			Use:   "pick",
			Short: "Pick partner, toll and project interactively",
			RunE: func(cmd *cobra.Command, args []string) error {
				if !app.interactive() {
					return fmt.Errorf("filter pick needs an interactive terminal")
				}
				if err := runFilterPicker(cmd, app); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatFilterBar(app.Filters.State()))
				return nil
			},
		},
	)

	return cmd
}

func newGroupCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "group",
		Aliases: []string{"groups"},
		Short:   "Group visible projects by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := app.Filters.State()
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatGroups(rollup.GroupByDisplayName(st.FilteredProjects)))
			return nil
		},
	}
}
