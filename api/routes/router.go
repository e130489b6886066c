package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gabrielmoneiro/mariadoce/api/controllers"
	"github.com/gabrielmoneiro/mariadoce/api/middleware"
	addresssvc "github.com/gabrielmoneiro/mariadoce/internal/address"
	authsvc "github.com/gabrielmoneiro/mariadoce/internal/auth"
	catalogsvc "github.com/gabrielmoneiro/mariadoce/internal/catalog"
	deliverysvc "github.com/gabrielmoneiro/mariadoce/internal/delivery"
	orderssvc "github.com/gabrielmoneiro/mariadoce/internal/orders"
	settingssvc "github.com/gabrielmoneiro/mariadoce/internal/settings"
	webhooksvc "github.com/gabrielmoneiro/mariadoce/internal/webhooks"
	"github.com/gabrielmoneiro/mariadoce/pkg/config"
	"github.com/gabrielmoneiro/mariadoce/pkg/logger"
	"github.com/gabrielmoneiro/mariadoce/pkg/metrics"
	pkgredis "github.com/gabrielmoneiro/mariadoce/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	cacheP controllers.Pinger,
	idemStore pkgredis.IdempotencyStore,
	registry *prometheus.Registry,
	orderMetrics *metrics.OrderMetrics,
	authService authsvc.Service,
	catalogService catalogsvc.Service,
	addressService addresssvc.Service,
	deliveryService deliverysvc.Service,
	settingsService settingssvc.Service,
	ordersService orderssvc.Service,
	webhookService webhooksvc.Service,
	dispatcher *webhooksvc.Dispatcher,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cacheP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/menu", func(r chi.Router) {
			r.Get("/categories", controllers.MenuCategories(catalogService, logg))
			r.Get("/products", controllers.MenuProducts(catalogService, logg))
			r.Get("/products/{productId}", controllers.MenuProductDetail(catalogService, logg))
		})

		r.Route("/address", func(r chi.Router) {
			r.Get("/suggest", controllers.AddressSuggest(addressService, logg))
			r.Get("/reverse", controllers.AddressReverse(addressService, logg))
			r.Get("/postal-code/{code}", controllers.AddressPostalLookup(addressService, logg))
		})

		r.Get("/delivery/quote", controllers.DeliveryQuote(deliveryService, logg, orderMetrics))
		r.Get("/schedule/availability", controllers.ScheduleAvailability(settingsService, logg, time.Now))

		r.With(middleware.Idempotency(idemStore, logg)).
			Post("/orders", controllers.SubmitOrder(ordersService, logg, cfg.Store.WhatsAppNumber))

		r.With(middleware.WebhookAuth(cfg.Webhook.InboundSecret, logg)).
			Post("/webhook", controllers.WebhookInbound(webhookService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Post("/auth/login", controllers.AdminLogin(authService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(idemStore, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminListProducts(catalogService, logg))
				r.Post("/", controllers.AdminCreateProduct(catalogService, logg))
				r.Patch("/{productId}", controllers.AdminUpdateProduct(catalogService, logg))
				r.Delete("/{productId}", controllers.AdminDeleteProduct(catalogService, logg))
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", controllers.AdminListCategories(catalogService, logg))
				r.Post("/", controllers.AdminCreateCategory(catalogService, logg))
				r.Put("/{categoryId}", controllers.AdminUpdateCategory(catalogService, logg))
				r.Delete("/{categoryId}", controllers.AdminDeleteCategory(catalogService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(ordersService, logg))
				r.Post("/", controllers.AdminCreateOrder(ordersService, logg))
				r.Get("/{orderId}", controllers.AdminGetOrder(ordersService, logg))
				r.Post("/{orderId}/status", controllers.AdminTransitionOrder(ordersService, logg))
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", controllers.AdminGetSettings(settingsService, logg))
				r.Put("/delivery", controllers.AdminUpdateDeliverySettings(settingsService, logg))
				r.Put("/schedule", controllers.AdminUpdateScheduleSettings(settingsService, logg))
			})

			r.Route("/webhooks", func(r chi.Router) {
				r.Get("/", controllers.AdminListWebhooks(webhookService, logg))
				r.Post("/", controllers.AdminCreateWebhook(webhookService, logg))
				r.Post("/test", controllers.AdminTestWebhook(dispatcher, logg))
				r.Patch("/{webhookId}", controllers.AdminUpdateWebhook(webhookService, logg))
				r.Delete("/{webhookId}", controllers.AdminDeleteWebhook(webhookService, logg))
			})

			r.Route("/inbox", func(r chi.Router) {
				r.Get("/", controllers.AdminListInbox(webhookService, logg))
				r.Post("/{messageId}/processed", controllers.AdminMarkInboxProcessed(webhookService, logg))
			})
		})
	})

	return r
}
