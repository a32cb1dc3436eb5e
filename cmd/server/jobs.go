package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/phrazzld/taskflow-api/internal/jobs"
	"github.com/phrazzld/taskflow-api/internal/service/notify"
	"github.com/spf13/cobra"
)

func newJobsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Run background jobs on demand",
	}
	cmd.AddCommand(newDueNotificationsCmd(opts))
	return cmd
}

func newDueNotificationsCmd(opts *rootOptions) *cobra.Command {
	var (
		nowFlag string
		window  time.Duration
		asJSON  bool
		migrate bool
	)

	cmd := &cobra.Command{
		Use:   "due-notifications",
		Short: "Generate due soon and overdue notifications once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var now *time.Time
			if nowFlag != "" {
				at, err := time.Parse(time.RFC3339, nowFlag)
				if err != nil {
					return fmt.Errorf("invalid --now %q: %w", nowFlag, err)
				}
				now = &at
			}
			if window < 0 {
				return fmt.Errorf("invalid --window %s: must not be negative", window)
			}

			cfg, log, err := opts.load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			app, err := openApplication(ctx, cfg, log, migrate)
			if err != nil {
				return err
			}
			defer app.cleanup()

			job := jobs.NewDueNotificationJob(app.scheduler, app.clock, now, window)
			raw, err := app.runner.RunNow(ctx, job)
			if err != nil {
				return fmt.Errorf("due notification job failed: %w", err)
			}

			var summary notify.Summary
			if err := json.Unmarshal(raw, &summary); err != nil {
				return fmt.Errorf("invalid job result: %w", err)
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), summary)
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&nowFlag, "now", "", "scan as of this RFC3339 instant instead of the current time")
	cmd.Flags().DurationVar(&window, "window", 0, "due soon window (default scheduler.due_soon_window_hours)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations first")
	return cmd
}

func printSummary(out io.Writer, s notify.Summary) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.AppendHeader(table.Row{"Scanned", "Candidates", "Created", "Skipped"})
	tw.AppendRow(table.Row{s.Scanned, s.Candidates, s.Created, s.Skipped})
	tw.Render()
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
