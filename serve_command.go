package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"talk-explorer/handlers"
	"talk-explorer/services"
	"talk-explorer/utils"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var port, catalogFile, mediaDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the explorer page, its API and the static catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				if cfg.CatalogBaseURL == "http://localhost:"+cfg.Port {
					cfg.CatalogBaseURL = ""
				}
				cfg.Port = port
			}
			if cmd.Flags().Changed("catalog") {
				cfg.CatalogFile = catalogFile
			}
			if cmd.Flags().Changed("media") {
				cfg.MediaDir = mediaDir
			}
			if err := cfg.Normalize(); err != nil {
				return err
			}

			logger := newLogger(os.Stderr, cfg.Level())
			slog.SetDefault(logger)

			if !utils.FileExists(cfg.CatalogFile) {
				logger.Warn("catalog file not found; sessions will fail to load", "path", cfg.CatalogFile)
			}
			if !utils.DirExists(cfg.MediaDir) {
				logger.Warn("media directory not found", "path", cfg.MediaDir)
			}

			loader, err := services.NewCatalogLoader(cfg.CatalogBaseURL, cfg.LoadTimeoutDuration(), logger)
			if err != nil {
				return err
			}
			sessions := services.NewSessionService(loader, cfg.SessionTTLDuration(), logger)
			defer sessions.Close()

			router := handlers.NewRouter(handlers.Dependencies{
				Sessions:    sessions,
				CatalogFile: cfg.CatalogFile,
				MediaDir:    cfg.MediaDir,
				Logger:      logger,
			})

			addr := ":" + cfg.Port
			srv := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadTimeout:       10 * time.Second,
				ReadHeaderTimeout: 5 * time.Second,
				WriteTimeout:      30 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening", "addr", addr, "catalog", loader.Endpoint(), "media", cfg.MediaDir)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case <-sigCtx.Done():
				logger.Info("shutdown signal received")
			case err := <-errCh:
				return fmt.Errorf("listen: %w", err)
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown failed", "err", err)
				_ = srv.Close()
			}
			logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT)")
	cmd.Flags().StringVar(&catalogFile, "catalog", "", "Catalog JSON file served at "+services.CatalogPath)
	cmd.Flags().StringVar(&mediaDir, "media", "", "Directory media URLs are served from")
	return cmd
}
