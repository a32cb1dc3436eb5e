package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	v          *viper.Viper
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "taskflow",
		Short:         "Task tracker notification and recurrence service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file (default ./config.yaml if present)")
	flags.String("log-level", "", "override server.log_level (debug|info|warn|error)")
	flags.String("database-url", "", "override database.url")
	flags.String("database-driver", "", "override database.driver (pgx|sqlite)")
	_ = opts.v.BindPFlag("server.log_level", flags.Lookup("log-level"))
	_ = opts.v.BindPFlag("database.url", flags.Lookup("database-url"))
	_ = opts.v.BindPFlag("database.driver", flags.Lookup("database-driver"))

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newJobsCmd(opts),
		newHashTokenCmd(),
		newTokenCmd(opts),
		newInboxCmd(opts),
	)
	return cmd
}

// load resolves configuration and installs the configured logger as the
// slog default.
func (o *rootOptions) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFrom(o.v, o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Debug("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("job_token_configured", cfg.Jobs.RunnerToken != "" || cfg.Jobs.RunnerTokenHash != ""),
		slog.Int("scheduler_interval_minutes", cfg.Scheduler.IntervalMinutes))
	return cfg, log, nil
}
