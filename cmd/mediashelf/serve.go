package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mediashelf/mediashelf/internal/api"
	"github.com/mediashelf/mediashelf/internal/config"
	"github.com/mediashelf/mediashelf/internal/database"
	"github.com/mediashelf/mediashelf/internal/logger"
	"github.com/mediashelf/mediashelf/internal/metadata"
	"github.com/mediashelf/mediashelf/internal/metadata/googlebooks"
	"github.com/mediashelf/mediashelf/internal/metadata/igdb"
	"github.com/mediashelf/mediashelf/internal/metadata/mock"
	"github.com/mediashelf/mediashelf/internal/metadata/tmdb"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().Str("version", config.Version).Msg("starting mediashelf")
	for _, warning := range cfg.Warnings() {
		log.Warn().Msg(warning)
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info().Str("path", cfg.Database.Path).Msg("database ready")

	server, err := api.NewServer(db, catalogSources(cfg, log), cfg, log.Logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Server.Address())
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info().Msg("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
		return err
	}

	log.Info().Msg("server stopped")
	return nil
}

// catalogSources builds one client per upstream, or the fixture catalog
// when running offline.
func catalogSources(cfg *config.Config, log *logger.Logger) []metadata.Source {
	if cfg.Metadata.Offline {
		return []metadata.Source{mock.NewSource()}
	}
	return []metadata.Source{
		tmdb.NewClient(cfg.Metadata.TMDB, log.WithComponent("tmdb")),
		googlebooks.NewClient(cfg.Metadata.GoogleBooks, log.WithComponent("googlebooks")),
		igdb.NewClient(cfg.Metadata.IGDB, log.WithComponent("igdb")),
	}
}
