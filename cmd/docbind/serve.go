package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docbind/internal/api"
	"github.com/dgallion1/docbind/internal/pipeline"
	"github.com/dgallion1/docbind/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the docbind HTTP server",
	Long: `Start the docbind HTTP server.

Endpoints:
  POST /merge            - bind documents and return a download URL
  POST /preview          - return the exhibit list without storing output
  GET  /files/{name}     - download a stored binder
  GET  /api/runs/{id}    - status of a recent merge
  GET  /api/stats/fetch  - rolling fetch latency statistics
  GET  /health           - health check

Examples:
  docbind serve                  # listen on DOCBIND_PORT (default 8090)
  docbind serve --port 3000
  docbind serve --host 0.0.0.0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}

		files, err := storage.NewLocal(cfg.StorageDir, cfg.ExternalScheme, cfg.ExternalHost, cfg.URLPrefix)
		if err != nil {
			return err
		}
		fetcher := newFetcher(cfg, log)
		merger := pipeline.New(fetcher, files, log, mergerOptions(cfg))
		srv := api.NewServer(merger, files, fetcher.Stats(), log, cfg)

		httpServer := &http.Server{
			Addr:         cfg.Addr(),
			Handler:      srv,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 10 * time.Minute,
			IdleTimeout:  60 * time.Second,
		}

		ctx := cmd.Context()
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					merger.Runs().Cleanup()
				}
			}
		}()

		// Graceful shutdown.
		go func() {
			<-ctx.Done()
			log.Info("shutting down...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpServer.Shutdown(shutdownCtx)
		}()

		log.Info("starting docbind",
			"addr", httpServer.Addr,
			"storage_dir", cfg.StorageDir,
			"external_host", cfg.ExternalHost,
			"version", gitRelease,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("host", "", "interface to bind (overrides DOCBIND_HOST)")
	serveCmd.Flags().String("port", "", "port to listen on (overrides DOCBIND_PORT)")
	serveCmd.Flags().String("storage-dir", "", "directory for stored binders (overrides DOCBIND_STORAGE_DIR)")
	serveCmd.Flags().String("sort-by", "", "default sort mode: order or label (overrides DOCBIND_SORT_MODE)")
}
