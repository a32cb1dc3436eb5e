package main

import (
	"fmt"
	"slices"

	"github.com/phrazzld/taskflow-api/internal/platform/database"
	"github.com/spf13/cobra"
)

var migrateCommands = []string{"up", "down", "status", "version", "reset"}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version|reset]",
		Short:     "Run database migrations (default up)",
		ValidArgs: migrateCommands,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return err
			}
			if len(args) == 1 && !slices.Contains(migrateCommands, args[0]) {
				return fmt.Errorf("unknown migration command %q (expected one of %v)", args[0], migrateCommands)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}

			cfg, log, err := opts.load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := database.Open(ctx, cfg.Database, log)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := database.Migrate(ctx, db.DB, cfg.Database.Driver, command, log); err != nil {
				return fmt.Errorf("migration %s failed: %w", command, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: ok\n", command)
			return nil
		},
	}
}
