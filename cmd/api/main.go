package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/gabrielmoneiro/mariadoce/api/controllers"
	"github.com/gabrielmoneiro/mariadoce/api/routes"
	addresssvc "github.com/gabrielmoneiro/mariadoce/internal/address"
	authsvc "github.com/gabrielmoneiro/mariadoce/internal/auth"
	catalogsvc "github.com/gabrielmoneiro/mariadoce/internal/catalog"
	deliverysvc "github.com/gabrielmoneiro/mariadoce/internal/delivery"
	orderssvc "github.com/gabrielmoneiro/mariadoce/internal/orders"
	settingssvc "github.com/gabrielmoneiro/mariadoce/internal/settings"
	webhooksvc "github.com/gabrielmoneiro/mariadoce/internal/webhooks"
	"github.com/gabrielmoneiro/mariadoce/pkg/config"
	"github.com/gabrielmoneiro/mariadoce/pkg/db"
	"github.com/gabrielmoneiro/mariadoce/pkg/db/models"
	"github.com/gabrielmoneiro/mariadoce/pkg/enums"
	"github.com/gabrielmoneiro/mariadoce/pkg/logger"
	"github.com/gabrielmoneiro/mariadoce/pkg/maps"
	"github.com/gabrielmoneiro/mariadoce/pkg/metrics"
	"github.com/gabrielmoneiro/mariadoce/pkg/migrate"
	"github.com/gabrielmoneiro/mariadoce/pkg/postal"
	pkgredis "github.com/gabrielmoneiro/mariadoce/pkg/redis"
	"github.com/gabrielmoneiro/mariadoce/pkg/types"
	"github.com/shopspring/decimal"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run auto-migration", err)
		os.Exit(1)
	}

	// Redis is a soft dependency: without it the settings cache degrades to
	// TTL-only and idempotency replay protection is disabled.
	var (
		versioner settingssvc.Versioner
		idemStore pkgredis.IdempotencyStore
		cacheP    controllers.Pinger
	)
	redisClient, err := pkgredis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Warn(ctx, "redis unavailable, continuing without cache coordination")
	} else {
		versioner = redisClient
		idemStore = redisClient
		cacheP = redisClient
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orderMetrics := metrics.NewOrderMetrics(registry)

	var geoClient *maps.Client
	if cfg.Mapbox.APIKey != "" {
		geoClient, err = maps.NewClient(cfg.Mapbox.APIKey,
			maps.WithProfile(cfg.Mapbox.Profile),
			maps.WithHTTPClient(&http.Client{Timeout: cfg.Mapbox.Timeout}),
		)
		if err != nil {
			logg.Error(ctx, "failed to build maps client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "mapbox api key missing, address suggestions and delivery quotes disabled")
	}
	postalClient := postal.NewClient(
		postal.WithBaseURL(cfg.Postal.BaseURL),
		postal.WithHTTPClient(&http.Client{Timeout: cfg.Postal.Timeout}),
	)

	settingsService, err := settingssvc.NewService(settingssvc.NewRepository(dbClient.DB()), versioner, cfg.Delivery.SettingsCacheTTL)
	if err != nil {
		logg.Error(ctx, "failed to create settings service", err)
		os.Exit(1)
	}
	if err := settingsService.EnsureSeed(ctx, defaultSettings(cfg)); err != nil {
		logg.Error(ctx, "failed to seed store settings", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(authsvc.NewRepository(dbClient.DB()), cfg.JWT, cfg.Password, logg)
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}
	if err := authService.EnsureAdmin(ctx, cfg.Admin.BootstrapEmail, cfg.Admin.BootstrapPassword); err != nil {
		logg.Error(ctx, "failed to seed bootstrap admin", err)
		os.Exit(1)
	}

	catalogService, err := catalogsvc.NewService(catalogsvc.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}

	// A nil *maps.Client must stay an untyped nil inside the services so
	// their dependency guards fire instead of a nil-pointer call.
	addressService := addresssvc.NewService(nil, postalClient, cfg.Mapbox.Country)
	var deliveryService deliverysvc.Service
	if geoClient != nil {
		addressService = addresssvc.NewService(geoClient, postalClient, cfg.Mapbox.Country)
		deliveryService, err = deliverysvc.NewService(geoClient, settingsService)
		if err != nil {
			logg.Error(ctx, "failed to create delivery service", err)
			os.Exit(1)
		}
	}

	webhookRepo := webhooksvc.NewRepository(dbClient.DB())
	dispatcher, err := webhooksvc.NewDispatcher(cfg.Webhook, webhookRepo, logg, orderMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create webhook dispatcher", err)
		os.Exit(1)
	}

	ordersService, err := orderssvc.NewService(
		orderssvc.NewRepository(dbClient.DB()),
		catalogService,
		settingsService,
		dbClient,
		dispatcher,
		logg,
		orderMetrics,
	)
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}

	webhookService, err := webhooksvc.NewService(webhookRepo, ordersService, logg)
	if err != nil {
		logg.Error(ctx, "failed to create webhook service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, dbClient, cacheP, idemStore, registry, orderMetrics,
			authService, catalogService, addressService, deliveryService,
			settingsService, ordersService, webhookService, dispatcher,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(startCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(startCtx, "shutdown signal received, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(startCtx, "graceful shutdown failed", err)
		}
	}
}

// defaultSettings builds the bootstrap configuration row from the deploy
// environment. It only matters on the very first boot.
func defaultSettings(cfg *config.Config) models.StoreSettings {
	rounding, err := enums.ParseRoundingPolicy(cfg.Delivery.RoundingPolicy)
	if err != nil {
		rounding = enums.RoundingHalfReal
	}
	return models.StoreSettings{
		Delivery: types.DeliverySettings{
			OriginLat:        cfg.Store.Lat,
			OriginLng:        cfg.Store.Lng,
			FeePerKm:         decimal.NewFromFloat(cfg.Delivery.FeePerKm),
			FreeRadiusMeters: cfg.Delivery.FreeRadiusMeters,
			MaxRadiusKm:      cfg.Delivery.MaxRadiusKm,
			Rounding:         rounding,
		},
		Schedule: types.DefaultScheduleConfig(),
	}
}
