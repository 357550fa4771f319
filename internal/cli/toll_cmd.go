package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/csrdash/internal/cli/formatter"
	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/filter"
	"github.com/alexanderramin/csrdash/internal/undo"
	"github.com/spf13/cobra"
)

func newTollCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "toll",
		Aliases: []string{"tolls"},
		Short:   "Manage partner tolls",
	}

	cmd.AddCommand(
		newTollAddCmd(app),
		newTollListCmd(app),
		newTollUpdateCmd(app),
		newTollRemoveCmd(app),
	)

	return cmd
}

func newTollAddCmd(app *App) *cobra.Command {
	var t domain.Toll
	var partner string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a toll under a partner",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolvePartnerID(ctx, app, partner)
			if err != nil {
				return err
			}
			t.CSRPartnerID = id
			err = app.Filters.Dispatch(ctx, filter.NewCommand("creating toll",
				func(ctx context.Context) error { return app.Tolls.Create(ctx, &t) },
				filter.AppendToll(&t),
			))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created toll %s [%s]\n", t.DisplayName(), t.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&partner, "partner", "", "Owning partner (id or name)")
	cmd.Flags().StringVar(&t.TollName, "name", "", "Toll name")
	cmd.Flags().StringVar(&t.POCName, "poc", "", "Point of contact")
	cmd.Flags().StringVar(&t.City, "city", "", "City")
	cmd.Flags().StringVar(&t.State, "state", "", "State")
	cmd.Flags().StringVar(&t.Location, "location", "", "Address or landmark")
	cmd.Flags().Float64Var(&t.BudgetAllocation, "allocation", 0, "Budget allocated to this toll (INR)")
	_ = cmd.MarkFlagRequired("partner")

	return cmd
}

func newTollListCmd(app *App) *cobra.Command {
	var partner string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a partner's tolls",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if partner == "" {
				partner = app.Filters.State().SelectedPartner
			}
			id, err := resolvePartnerID(ctx, app, partner)
			if err != nil {
				return err
			}
			p, err := app.Partners.GetByID(ctx, id)
			if err != nil {
				return err
			}
			tolls, err := app.Tolls.ListByPartner(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTollList(p.DisplayName(), tolls))
			return nil
		},
	}

	cmd.Flags().StringVar(&partner, "partner", "", "Partner (defaults to the selected partner)")

	return cmd
}

func newTollUpdateCmd(app *App) *cobra.Command {
	var name, poc, city, state, location string
	var allocation float64

	cmd := &cobra.Command{
		Use:   "update TOLL",
		Short: "Update toll fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTollID(ctx, app, "", args[0])
			if err != nil {
				return err
			}
			t, err := app.Tolls.GetByID(ctx, id)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				t.TollName = name
			}
			if flags.Changed("poc") {
				t.POCName = poc
			}
			if flags.Changed("city") {
				t.City = city
			}
			if flags.Changed("state") {
				t.State = state
			}
			if flags.Changed("location") {
				t.Location = location
			}
			if flags.Changed("allocation") {
				t.BudgetAllocation = allocation
			}

			err = app.Filters.Dispatch(ctx, filter.NewCommand("updating toll",
				func(ctx context.Context) error { return app.Tolls.Update(ctx, t) }, nil))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated toll %s\n", t.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Toll name")
	cmd.Flags().StringVar(&poc, "poc", "", "Point of contact")
	cmd.Flags().StringVar(&city, "city", "", "City")
	cmd.Flags().StringVar(&state, "state", "", "State")
	cmd.Flags().StringVar(&location, "location", "", "Address or landmark")
	cmd.Flags().Float64Var(&allocation, "allocation", 0, "Budget allocated to this toll (INR)")

	return cmd
}

func newTollRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove TOLL",
		Short: "Delete a toll and its projects (undoable)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTollID(ctx, app, "", args[0])
			if err != nil {
				return err
			}
			t, err := app.Tolls.GetByID(ctx, id)
			if err != nil {
				return err
			}
			key := undo.Key{EntityType: entityToll, EntityID: id}
			return runUndoableDeletion(cmd, app, key, "toll "+t.DisplayName(),
				func(ctx context.Context) error { return app.Tolls.Delete(ctx, id) },
				filter.RemoveToll(id))
		},
	}
}
