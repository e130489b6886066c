package migrate

import (
	"context"
	"fmt"

	"github.com/gabrielmoneiro/mariadoce/pkg/config"
	"github.com/gabrielmoneiro/mariadoce/pkg/db"
	"github.com/gabrielmoneiro/mariadoce/pkg/db/models"
	"github.com/gabrielmoneiro/mariadoce/pkg/logger"
)

// allModels is the full schema, in dependency order.
var allModels = []any{
	&models.Category{},
	&models.Product{},
	&models.Order{},
	&models.OrderLineItem{},
	&models.StoreSettings{},
	&models.WebhookEndpoint{},
	&models.InboundMessage{},
	&models.AdminUser{},
}

// MaybeRun applies the schema automatically when the feature flag is enabled.
// SQLite instances always migrate, since there is no external migration path
// for an embedded file database.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate && !cfg.FeatureFlags.UseSQLite {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "sqlite": cfg.FeatureFlags.UseSQLite})
	logg.Info(ctx, "running schema auto-migration")

	if err := client.DB().WithContext(ctx).AutoMigrate(allModels...); err != nil {
		return fmt.Errorf("auto-migrating schema: %w", err)
	}

	logg.Info(ctx, "schema auto-migration completed")
	return nil
}
