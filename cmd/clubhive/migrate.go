package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alecgard/clubhive/internal/config"
	"github.com/alecgard/clubhive/internal/db/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(migrate.Up)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Rollback all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(migrate.Down)
	},
}

func init() {
	migrateCmd.AddCommand(migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(direction string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if err := migrate.Run(cfg.DatabaseURLForMigrate(), direction); err != nil {
		return err
	}

	slog.Info("migrations complete", "direction", direction)
	return nil
}
