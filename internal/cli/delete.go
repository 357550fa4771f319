package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alexanderramin/csrdash/internal/filter"
	"github.com/alexanderramin/csrdash/internal/undo"
	"github.com/spf13/cobra"
)

const (
	entityPartner = "partner"
	entityToll    = "toll"
)

// scheduleDeletion arms an undoable deletion that dispatches del through the
// filter store once the delay expires.
func scheduleDeletion(app *App, key undo.Key, label string, del func(ctx context.Context) error, patch filter.Patch) (*undo.Pending, bool) {
	return app.Undo.Schedule(key, label, func(ctx context.Context) error {
		return app.Filters.Dispatch(ctx, filter.NewCommand("deleting "+key.EntityType, del, patch))
	})
}

// runUndoableDeletion schedules a deletion and blocks until it commits.
// Interrupting during the window undoes it.
func runUndoableDeletion(cmd *cobra.Command, app *App, key undo.Key, label string, del func(ctx context.Context) error, patch filter.Patch) error {
	out := cmd.OutOrStdout()
	pending, scheduled := scheduleDeletion(app, key, label, del, patch)
	if !scheduled {
		fmt.Fprintf(out, "Deletion of %s is already pending.\n", label)
	} else {
		fmt.Fprintf(out, "Deleting %s in %s. Press Ctrl-C to undo.\n", label, app.Undo.Delay())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	select {
	case <-pending.Done():
	case <-ctx.Done():
		if app.Undo.Undo(key) {
			fmt.Fprintf(out, "Undone: %s was not deleted.\n", label)
			return nil
		}
		// Already committing.
		<-pending.Done()
	}

	if err := pending.Err(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted %s.\n", label)
	return nil
}

// waitForPendingDeletions lets deletions armed in the dashboard commit
// before the process exits.
func waitForPendingDeletions(cmd *cobra.Command, app *App) {
	pending := app.Undo.List()
	if len(pending) == 0 {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Finishing %d pending deletion(s)...\n", len(pending))
	for _, p := range pending {
		<-p.Done()
		if err := p.Err(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Deleting %s failed: %v\n", p.Label, err)
		}
	}
}
