package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/csrdash/internal/budget"
	"github.com/alexanderramin/csrdash/internal/cli/formatter"
	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/spf13/cobra"
)

func newBudgetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage a project's budget categories",
	}

	cmd.AddCommand(
		newBudgetShowCmd(app),
		newBudgetSaveCmd(app),
		newBudgetReportCmd(app),
		newBudgetRemoveCmd(app),
	)

	return cmd
}

func printBudget(cmd *cobra.Command, app *App, p *domain.Project) error {
	ctx := cmd.Context()
	cats, err := app.Budget.List(ctx, p.ID)
	if err != nil {
		return err
	}
	tree, err := budget.FromCategories(cats)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatBudget(p, tree, cats))
	return nil
}

func newBudgetShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [PROJECT]",
		Short: "Show the budget breakdown",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProject(cmd.Context(), app, argOrEmpty(args))
			if err != nil {
				return err
			}
			return printBudget(cmd, app, p)
		},
	}
}

func newBudgetSaveCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "save PROJECT",
		Short: "Replace the budget breakdown from a YAML file",
		Long: `Replace the project's budget categories with a nested YAML breakdown:

  - name: Admin
    allocated: 40000
    children:
      - name: Travel
        allocated: 15000
  - name: Programme
    allocated: 50000

Root allocations may not exceed the project budget and children may not
exceed their parent. Nothing is written when validation fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			tree, err := budget.LoadYAML(file)
			if err != nil {
				return err
			}
			if _, err := app.Budget.Save(ctx, p.ID, tree); err != nil {
				return err
			}
			return printBudget(cmd, app, p)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Breakdown YAML file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// resolveCategory matches a category by name (case-insensitive) or ID prefix.
func resolveCategory(ctx context.Context, app *App, projectID, input string) (*domain.BudgetCategory, error) {
	cats, err := app.Budget.List(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var matches []*domain.BudgetCategory
	for _, c := range cats {
		if strings.EqualFold(c.Name, input) || strings.HasPrefix(c.ID, input) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("budget category not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("budget category %q is ambiguous (%d matches)", input, len(matches))
	}
}

func newBudgetReportCmd(app *App) *cobra.Command {
	var utilized, pending float64

	cmd := &cobra.Command{
		Use:   "report PROJECT CATEGORY",
		Short: "Report utilized and pending amounts for a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			c, err := resolveCategory(ctx, app, p.ID, args[1])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("utilized") {
				utilized = c.UtilizedAmount
			}
			if !cmd.Flags().Changed("pending") {
				pending = c.PendingAmount
			}
			c, err = app.Budget.ReportUtilization(ctx, c.ID, utilized, pending)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: utilized %s, pending %s, available %s\n",
				c.Name, formatter.FormatINR(c.UtilizedAmount), formatter.FormatINR(c.PendingAmount), formatter.FormatINR(c.AvailableAmount))
			return nil
		},
	}

	cmd.Flags().Float64Var(&utilized, "utilized", 0, "Amount spent (INR)")
	cmd.Flags().Float64Var(&pending, "pending", 0, "Amount committed but not yet spent (INR)")

	return cmd
}

func newBudgetRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove PROJECT CATEGORY",
		Short: "Delete a category and its sub-categories",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			c, err := resolveCategory(ctx, app, p.ID, args[1])
			if err != nil {
				return err
			}
			if err := app.Budget.Delete(ctx, c.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted budget category %s\n", c.Name)
			return nil
		},
	}
}
