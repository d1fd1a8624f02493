// Package cli implements the paceline operator commands.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for the paceline CLI.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paceline",
		Short: "Paceline community backend operations",
		Long: `Operator commands for the Paceline community backend.

Every command reads the same environment (and .env file) as the server.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewSeedCommand())
	cmd.AddCommand(NewGenerateChallengesCommand())
	cmd.AddCommand(NewReconcileCommand())
	cmd.AddCommand(NewTokenCommand())

	return cmd
}
