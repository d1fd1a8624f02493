package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"paceline.app/community/internal/config"
	"paceline.app/community/internal/middleware"
)

type tokenOptions struct {
	UserID string
	TTL    time.Duration
}

// NewTokenCommand creates the token command.
func NewTokenCommand() *cobra.Command {
	opts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token for a user (development and smoke tests)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(opts.UserID)
			if err != nil {
				return fmt.Errorf("invalid --user %q: %w", opts.UserID, err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			token, err := middleware.IssueToken(cfg.JWTSecret, userID, opts.TTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.UserID, "user", "", "user id (uuid)")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
