// Command seed migrates the schema and loads the default catalog and admin
// account. It is safe to run repeatedly.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/SAP-F-2025/training-service/internal/config"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/SAP-F-2025/training-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := utils.NewBaseLogger(os.Stdout, cfg.IsProduction())

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := pkg.AutoMigrate(db); err != nil {
		logger.Error("failed to migrate", "error", err)
		os.Exit(1)
	}

	opts := pkg.SeedOptions{
		AdminEmail:    envOr("SEED_ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: envOr("SEED_ADMIN_PASSWORD", "admin123"),
	}
	if err := pkg.Seed(context.Background(), db, opts, logger); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Database ready", "admin", opts.AdminEmail)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
