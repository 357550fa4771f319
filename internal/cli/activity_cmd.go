package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/csrdash/internal/cli/formatter"
	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/alexanderramin/csrdash/internal/repository"
	"github.com/spf13/cobra"
)

func newActivityCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "activity",
		Aliases: []string{"activities", "timeline"},
		Short:   "Manage a project's activity timeline",
	}

	cmd.AddCommand(
		newActivityListCmd(app),
		newActivityAddCmd(app),
		newActivityUpdateCmd(app),
		newActivityRemoveCmd(app),
		newActivityItemCmd(app),
	)

	return cmd
}

// resolveActivity accepts a full activity ID or an ID prefix among the
// activities of the selected project.
func resolveActivity(ctx context.Context, app *App, input string) (*domain.Activity, error) {
	a, err := app.Activities.GetByID(ctx, input)
	if err == nil || !errors.Is(err, repository.ErrNotFound) {
		return a, err
	}
	activities, err := selectedProjectActivities(ctx, app)
	if err != nil {
		return nil, err
	}
	var matches []*domain.Activity
	for _, a := range activities {
		if strings.HasPrefix(a.ID, input) {
			matches = append(matches, a)
		}
	}
	if len(matches) != 1 {
		return nil, fmt.Errorf("activity %q: %d matches in the selected project", input, len(matches))
	}
	return matches[0], nil
}

// resolveItemID matches a checklist item ID prefix within the selected
// project's activities. Full IDs pass through.
func resolveItemID(ctx context.Context, app *App, input string) (string, error) {
	activities, err := selectedProjectActivities(ctx, app)
	if err != nil {
		// Without a selected project only full IDs work.
		return input, nil
	}
	var matches []string
	for _, a := range activities {
		for _, it := range a.Items {
			if it.ID == input {
				return it.ID, nil
			}
			if strings.HasPrefix(it.ID, input) {
				matches = append(matches, it.ID)
			}
		}
	}
	if len(matches) == 0 {
		return input, nil
	}
	return pickOne("checklist item", input, matches)
}

func selectedProjectActivities(ctx context.Context, app *App) ([]*domain.Activity, error) {
	projectID := app.Filters.State().SelectedProject
	if projectID == "" {
		return nil, fmt.Errorf("no project selected")
	}
	return app.Activities.ListByProject(ctx, projectID)
}

func newActivityListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list [PROJECT]",
		Short: "Show the activity timeline with checklists",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, argOrEmpty(args))
			if err != nil {
				return err
			}
			activities, err := app.Activities.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatActivities(activities))
			return nil
		},
	}
}

// activityFlags holds the editable activity fields.
type activityFlags struct {
	title, description, status, priority, start, end, responsible string
}

func (f *activityFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.title, "title", "", "Title")
	fs.StringVar(&f.description, "description", "", "Description")
	fs.StringVar(&f.status, "status", "", "Status (not_started, in_progress, completed, on_hold, cancelled)")
	fs.StringVar(&f.priority, "priority", "", "Priority (low, medium, high, urgent)")
	fs.StringVar(&f.start, "start", "", "Start date (YYYY-MM-DD)")
	fs.StringVar(&f.end, "end", "", "End date (YYYY-MM-DD)")
	fs.StringVar(&f.responsible, "responsible", "", "Responsible person")
}

func (f *activityFlags) apply(cmd *cobra.Command, a *domain.Activity) error {
	fs := cmd.Flags()
	if fs.Changed("title") {
		a.Title = f.title
	}
	if fs.Changed("description") {
		a.Description = f.description
	}
	if fs.Changed("responsible") {
		a.ResponsiblePerson = f.responsible
	}
	if fs.Changed("status") {
		st, err := domain.ParseActivityStatus(f.status)
		if err != nil {
			return err
		}
		a.Status = st
	}
	if fs.Changed("priority") {
		pr, err := domain.ParsePriority(f.priority)
		if err != nil {
			return err
		}
		a.Priority = pr
	}
	var err error
	if fs.Changed("start") {
		if a.StartDate, err = parseOptionalDate(f.start); err != nil {
			return err
		}
	}
	if fs.Changed("end") {
		if a.EndDate, err = parseOptionalDate(f.end); err != nil {
			return err
		}
	}
	return nil
}

func newActivityAddCmd(app *App) *cobra.Command {
	var f activityFlags
	var items []string

	cmd := &cobra.Command{
		Use:   "add [PROJECT]",
		Short: "Add an activity to the timeline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, argOrEmpty(args))
			if err != nil {
				return err
			}
			a := &domain.Activity{ProjectID: p.ID}
			if err := f.apply(cmd, a); err != nil {
				return err
			}
			for _, title := range items {
				a.Items = append(a.Items, domain.ActivityItem{Title: title})
			}
			if err := app.Activities.Create(ctx, a); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added activity %q to %s [%s]\n", a.Title, p.DisplayID(), a.ID)
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().StringArrayVar(&items, "item", nil, "Checklist item (repeatable)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newActivityUpdateCmd(app *App) *cobra.Command {
	var f activityFlags

	cmd := &cobra.Command{
		Use:   "update ACTIVITY",
		Short: "Update an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := resolveActivity(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := f.apply(cmd, a); err != nil {
				return err
			}
			if err := app.Activities.Update(ctx, a); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %q\n", a.Title)
			return nil
		},
	}

	f.register(cmd)

	return cmd
}

func newActivityRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ACTIVITY",
		Short: "Delete an activity and its checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := resolveActivity(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Activities.Delete(ctx, a.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted activity %q\n", a.Title)
			return nil
		},
	}
}

func newActivityItemCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage checklist items",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add ACTIVITY TITLE",
			Short: "Append a checklist item",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				a, err := resolveActivity(ctx, app, args[0])
				if err != nil {
					return err
				}
				it, err := app.Activities.AddItem(ctx, a.ID, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %q [%s]\n", it.Title, it.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "toggle ITEM",
			Short: "Check or uncheck an item",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				id, err := resolveItemID(ctx, app, args[0])
				if err != nil {
					return err
				}
				it, err := app.Activities.ToggleItem(ctx, id)
				if err != nil {
					return err
				}
				mark := "☐"
				if it.IsCompleted {
					mark = "☑"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, it.Title)
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove ITEM",
			Short: "Delete a checklist item",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				id, err := resolveItemID(ctx, app, args[0])
				if err != nil {
					return err
				}
				if err := app.Activities.RemoveItem(ctx, id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Checklist item removed.")
				return nil
			},
		},
	)

	return cmd
}
