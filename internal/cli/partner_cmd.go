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

func newPartnerCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "partner",
		Aliases: []string{"partners"},
		Short:   "Manage CSR partners",
	}

	cmd.AddCommand(
		newPartnerAddCmd(app),
		newPartnerListCmd(app),
		newPartnerUpdateCmd(app),
		newPartnerDeactivateCmd(app),
		newPartnerRemoveCmd(app),
	)

	return cmd
}

func newPartnerAddCmd(app *App) *cobra.Command {
	var p domain.CSRPartner
	var noToll bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a partner",
		RunE: func(cmd *cobra.Command, args []string) error {
			p.HasToll = !noToll
			err := app.Filters.Dispatch(cmd.Context(), filter.NewCommand("creating partner",
				func(ctx context.Context) error { return app.Partners.Create(ctx, &p) },
				filter.AppendPartner(&p),
			))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created partner %s [%s]\n", p.DisplayName(), p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&p.Name, "name", "", "Partner name")
	cmd.Flags().StringVar(&p.CompanyName, "company", "", "Registered company name")
	cmd.Flags().StringVar(&p.ContactPerson, "contact", "", "Contact person")
	cmd.Flags().StringVar(&p.Email, "email", "", "Contact email")
	cmd.Flags().StringVar(&p.Phone, "phone", "", "Contact phone")
	cmd.Flags().BoolVar(&noToll, "no-toll", false, "Partner funds projects directly, without tolls")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPartnerListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List partners",
		RunE: func(cmd *cobra.Command, args []string) error {
			partners, err := app.Partners.List(cmd.Context(), all)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPartnerList(partners))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include inactive partners")

	return cmd
}

func newPartnerUpdateCmd(app *App) *cobra.Command {
	var name, company, contact, email, phone string
	var hasToll bool

	cmd := &cobra.Command{
		Use:   "update PARTNER",
		Short: "Update partner fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolvePartnerID(ctx, app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Partners.GetByID(ctx, id)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				p.Name = name
			}
			if flags.Changed("company") {
				p.CompanyName = company
			}
			if flags.Changed("contact") {
				p.ContactPerson = contact
			}
			if flags.Changed("email") {
				p.Email = email
			}
			if flags.Changed("phone") {
				p.Phone = phone
			}
			if flags.Changed("has-toll") {
				p.HasToll = hasToll
			}

			err = app.Filters.Dispatch(ctx, filter.NewCommand("updating partner",
				func(ctx context.Context) error { return app.Partners.Update(ctx, p) }, nil))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated partner %s\n", p.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Partner name")
	cmd.Flags().StringVar(&company, "company", "", "Registered company name")
	cmd.Flags().StringVar(&contact, "contact", "", "Contact person")
	cmd.Flags().StringVar(&email, "email", "", "Contact email")
	cmd.Flags().StringVar(&phone, "phone", "", "Contact phone")
	cmd.Flags().BoolVar(&hasToll, "has-toll", true, "Partner works through tolls")

	return cmd
}

func newPartnerDeactivateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate PARTNER",
		Short: "Hide a partner without deleting its projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolvePartnerID(ctx, app, args[0])
			if err != nil {
				return err
			}
			err = app.Filters.Dispatch(ctx, filter.NewCommand("deactivating partner",
				func(ctx context.Context) error { return app.Partners.Deactivate(ctx, id) }, nil))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Partner deactivated.")
			return nil
		},
	}
}

func newPartnerRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove PARTNER",
		Short: "Delete a partner with its tolls and projects (undoable)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolvePartnerID(ctx, app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Partners.GetByID(ctx, id)
			if err != nil {
				return err
			}
			key := undo.Key{EntityType: entityPartner, EntityID: id}
			return runUndoableDeletion(cmd, app, key, "partner "+p.DisplayName(),
				func(ctx context.Context) error { return app.Partners.Delete(ctx, id) },
				filter.RemovePartner(id))
		},
	}
}
