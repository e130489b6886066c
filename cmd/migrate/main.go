package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/gabrielmoneiro/mariadoce/pkg/config"
	"github.com/gabrielmoneiro/mariadoce/pkg/db"
	"github.com/gabrielmoneiro/mariadoce/pkg/logger"
	"github.com/gabrielmoneiro/mariadoce/pkg/migrate"
)

// Applies the schema to the configured database and exits. Deploys that do
// not enable auto-migration on boot run this once per release instead.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	// Force the run regardless of the boot-time flag.
	cfg.FeatureFlags.AutoMigrate = true

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(ctx, "failed to connect to database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "migration failed", err)
		os.Exit(1)
	}
}
