package main

import (
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled due notification scan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			if err := app.startBackground(ctx); err != nil {
				return err
			}
			return app.runServer(ctx)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}
