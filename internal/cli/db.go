package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"paceline.app/community/internal/bootstrap"
	"paceline.app/community/internal/config"
	"paceline.app/community/pkg/database"
)

// connect is swapped out by tests.
var connect = func(cfg *config.Config) (*gorm.DB, error) {
	return database.Connect(cfg), nil
}

func openDB() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			if err := bootstrap.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✅ schema is up to date")
			return nil
		},
	}
}

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load distance categories and achievement definitions",
		Long: `Upserts the embedded reference catalog. Running it again updates
titles, thresholds and ordering in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			if err := bootstrap.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			if err := bootstrap.SeedCatalog(db); err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✅ catalog seeded")
			return nil
		},
	}
}
