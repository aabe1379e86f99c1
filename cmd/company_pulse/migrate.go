package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/company-pulse/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the PostgreSQL schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		databaseURL, err := requireDatabaseURL()
		if err != nil {
			return err
		}
		version, dirty, err := db.Migrate(databaseURL)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Database at version %d (dirty=%v)\n", version, dirty)
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert every migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		databaseURL, err := requireDatabaseURL()
		if err != nil {
			return err
		}
		if err := db.MigrateDown(databaseURL); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "All migrations reverted")
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

func requireDatabaseURL() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.DatabaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL environment variable or database_url config is required")
	}
	return cfg.DatabaseURL, nil
}
