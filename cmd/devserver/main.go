package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/pdv-commerce/storefront/internal/devserver"
	"github.com/pdv-commerce/storefront/pkg/config"
	"github.com/pdv-commerce/storefront/pkg/db"
	"github.com/pdv-commerce/storefront/pkg/logger"
)

// devserver runs a local stand-in for the production marketplace API so
// the storefront CLI can be exercised without network access. Point
// STOREFRONT_API_BASE_URL at it.
func main() {
	logg := logger.New(logger.Options{ServiceName: "devserver"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "devserver",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	repo, err := devserver.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create repository", err)
		os.Exit(1)
	}
	if err := repo.Migrate(); err != nil {
		logg.Error(context.Background(), "failed to migrate schema", err)
		os.Exit(1)
	}
	if err := repo.Seed(context.Background(), cfg.Password); err != nil {
		logg.Error(context.Background(), "failed to seed database", err)
		os.Exit(1)
	}

	server, err := devserver.NewServer(repo, cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create server", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting devserver")

	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Handler(),
	}

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "devserver stopped unexpectedly", err)
		os.Exit(1)
	}
}
