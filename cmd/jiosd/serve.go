package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jios-backend/pkg/database"
	"jios-backend/pkg/router"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Example: `  jiosd serve
  jiosd serve --port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			if cfg.PostgresDSN != "" {
				logrus.WithField("dsn", database.MaskDSN(cfg.PostgresDSN)).Info("🔗 Connecting to database")
			}
			db, err := database.NewDatabase(router.DatabaseConfig(cfg))
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			mux, err := router.NewRouter(cfg, db)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logrus.WithFields(logrus.Fields{
					"port":        cfg.Port,
					"environment": cfg.Environment,
					"database":    db.Driver(),
				}).Info("🚀 Jios API listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logrus.Info("🛑 Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}
