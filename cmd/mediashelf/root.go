package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mediashelf/mediashelf/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "mediashelf",
	Short: "Track the movies, series, books and games you follow",
	Long: `mediashelf - personal media tracking server

Search TMDB, Google Books and IGDB, keep a library with statuses,
ratings and notes, and share curated lists.

Running without a subcommand starts the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.Version = config.Version
	rootCmd.SetVersionTemplate("mediashelf {{.Version}}\n")
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(serveCmd, migrateCmd, configCmd)
}

// loadConfig reads .env, then the config file and environment, and
// validates the result.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Check(configPath); err != nil {
		return nil, err
	}
	return cfg, nil
}
