package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"paceline.app/community/internal/entity"
	"paceline.app/community/internal/server"
)

type generateOptions struct {
	At string
}

// NewGenerateChallengesCommand creates the generate-challenges command.
func NewGenerateChallengesCommand() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate-challenges",
		Short: "Create the system challenges for the current (or given) date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			at := time.Now().UTC()
			if opts.At != "" {
				parsed, err := time.Parse(entity.DateLayout, opts.At)
				if err != nil {
					return fmt.Errorf("invalid --at %q: want YYYY-MM-DD", opts.At)
				}
				at = parsed
			}

			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			services := server.NewServices(cfg, db, server.Deps{})

			created, err := services.Challenges.Generate(cmd.Context(), at)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %d challenges created\n", created)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.At, "at", "", "reference date (YYYY-MM-DD), defaults to today")
	return cmd
}

type reconcileOptions struct {
	Lookback time.Duration
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand() *cobra.Command {
	opts := &reconcileOptions{}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Re-evaluate achievements for recently active athletes",
		Long: `Re-evaluates achievements for every athlete with runs stored within
the lookback window. Unlocks are insert-if-absent, so it is safe to rerun.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			lookback := cfg.ReconcileLookback
			if cmd.Flags().Changed("lookback") {
				lookback = opts.Lookback
			}
			if lookback <= 0 {
				return fmt.Errorf("lookback must be positive")
			}

			services := server.NewServices(cfg, db, server.Deps{})
			report, err := services.Achievements.Reconcile(cmd.Context(), time.Now().UTC().Add(-lookback))
			if report != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "checked %d athletes, unlocked %d achievements\n", report.UsersChecked, report.Unlocked)
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&opts.Lookback, "lookback", 0, "window of run activity to re-check (default RECONCILE_LOOKBACK)")
	return cmd
}
