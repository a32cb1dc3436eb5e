package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func newHashTokenCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-token <token>",
		Short: "Print a bcrypt hash for jobs.runner_token_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashJobToken(args[0], cost)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := uuid.Parse(user)
			if err != nil || userID == uuid.Nil {
				return fmt.Errorf("invalid --user %q: must be a non-nil UUID", user)
			}

			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			jwtService, err := auth.NewJWTService(cfg.Auth)
			if err != nil {
				return fmt.Errorf("failed to initialize JWT service: %w", err)
			}
			token, err := jwtService.GenerateToken(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user ID to issue the token for")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
