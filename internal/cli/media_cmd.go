package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/csrdash/internal/cli/formatter"
	"github.com/alexanderramin/csrdash/internal/domain"
	"github.com/spf13/cobra"
)

func newMediaCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Manage photos, videos, news and documents for a project",
	}

	var m domain.MediaArticle
	var mediaType, published string
	addCmd := &cobra.Command{
		Use:   "add [PROJECT]",
		Short: "Link a media article",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, argOrEmpty(args))
			if err != nil {
				return err
			}
			m.ProjectID = p.ID
			if mediaType != "" {
				if m.MediaType, err = domain.ParseMediaType(mediaType); err != nil {
					return err
				}
			}
			if m.PublishedAt, err = parseOptionalDate(published); err != nil {
				return err
			}
			if err := app.Media.Create(ctx, &m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Linked %s %q to %s\n", m.MediaType, m.Title, p.DisplayID())
			return nil
		},
	}
	addCmd.Flags().StringVar(&m.Title, "title", "", "Title")
	addCmd.Flags().StringVar(&m.URL, "url", "", "Link")
	addCmd.Flags().StringVar(&m.Description, "description", "", "Description")
	addCmd.Flags().StringVar(&mediaType, "type", "", "photo, video, news (default) or document")
	addCmd.Flags().StringVar(&published, "published", "", "Publication date (YYYY-MM-DD)")
	_ = addCmd.MarkFlagRequired("title")
	_ = addCmd.MarkFlagRequired("url")

	listCmd := &cobra.Command{
		Use:   "list [PROJECT]",
		Short: "List media, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, argOrEmpty(args))
			if err != nil {
				return err
			}
			media, err := app.Media.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatMedia(media))
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove PROJECT MEDIA",
		Short: "Unlink a media article",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, args[0])
			if err != nil {
				return err
			}
			media, err := app.Media.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			var ids []string
			for _, m := range media {
				if strings.HasPrefix(m.ID, args[1]) {
					ids = append(ids, m.ID)
				}
			}
			id, err := pickOne("media", args[1], ids)
			if err != nil {
				return err
			}
			if err := app.Media.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Media removed.")
			return nil
		},
	}

	cmd.AddCommand(addCmd, listCmd, removeCmd)
	return cmd
}
