package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mediashelf/mediashelf/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDatabase(cmd, func(db *database.DB) error {
			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			return printVersion(cmd, db)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDatabase(cmd, func(db *database.DB) error {
			if err := db.MigrateDown(cmd.Context()); err != nil {
				return err
			}
			return printVersion(cmd, db)
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDatabase(cmd, func(db *database.DB) error {
			return db.MigrationStatus(cmd.Context())
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
}

func withDatabase(cmd *cobra.Command, fn func(db *database.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return fn(db)
}

func printVersion(cmd *cobra.Command, db *database.DB) error {
	version, err := db.Version(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
	return nil
}
