package main

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/spf13/cobra"
)

func newInboxCmd(opts *rootOptions) *cobra.Command {
	var (
		user       string
		unreadOnly bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List a user's notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := uuid.Parse(user)
			if err != nil || userID == uuid.Nil {
				return fmt.Errorf("invalid --user %q: must be a non-nil UUID", user)
			}

			cfg, log, err := opts.load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			app, err := openApplication(ctx, cfg, log, false)
			if err != nil {
				return err
			}
			defer app.cleanup()

			items, err := app.inboxService.List(ctx, userID, unreadOnly)
			if err != nil {
				return fmt.Errorf("failed to load inbox: %w", err)
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), items)
			}
			printInbox(cmd.OutOrStdout(), items)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user ID whose inbox to list")
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "only unread notifications")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print notifications as JSON")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func printInbox(out io.Writer, items []domain.Notification) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.AppendHeader(table.Row{"ID", "Type", "Entity", "Created", "Read"})
	for _, n := range items {
		read := ""
		if n.ReadAt != nil {
			read = n.ReadAt.UTC().Format(time.RFC3339)
		}
		tw.AppendRow(table.Row{
			n.ID.String(),
			string(n.Type),
			fmt.Sprintf("%s/%s", n.EntityType, n.EntityID),
			n.CreatedAt.UTC().Format(time.RFC3339),
			read,
		})
	}
	tw.Render()
}
