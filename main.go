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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"milk-delivery-api/config"
	"milk-delivery-api/handlers"
	"milk-delivery-api/middleware"
	"milk-delivery-api/routes"
	"milk-delivery-api/services"
)

func main() {
	root := &cobra.Command{
		Use:           "milk-delivery-api",
		Short:         "Milk subscription delivery management API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads config, builds the logger and opens a migrated database.
func bootstrap() (config.Config, *slog.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, nil, err
	}
	logger := config.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := config.OpenDB(cfg)
	if err != nil {
		return cfg, logger, nil, err
	}
	if err := config.Migrate(db); err != nil {
		return cfg, logger, nil, err
	}
	logger.Info("database connected and migrated", "driver", cfg.DBDriver)
	return cfg, logger, db, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			if cfg.IsDevelopment() && os.Getenv("JWT_SECRET") == "" {
				logger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
			}
			gin.SetMode(cfg.GinMode)

			jwt := middleware.NewJWT(cfg.JWTSecret, cfg.TokenTTL)
			h := handlers.New(db, jwt, handlers.Options{
				AdminEmail:    cfg.AdminEmail,
				AdminPassword: cfg.AdminPassword,
			})
			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           routes.NewRouter(logger, h, jwt),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening", "addr", "http://localhost:"+cfg.Port, "env", cfg.Env)
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
			logger.Info("shutdown signal received")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			logger.Info("server stopped gracefully")
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and exit",
		RunE: func(*cobra.Command, []string) error {
			_, _, _, err := bootstrap()
			return err
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default admin and milk varieties and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			res, err := services.NewSeedService(db, cfg.AdminEmail, cfg.AdminPassword).Init(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info("seed completed", "admin_created", res.AdminCreated, "varieties_created", res.VarietiesCreated)
			return nil
		},
	}
}
