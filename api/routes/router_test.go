package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	addresssvc "github.com/gabrielmoneiro/mariadoce/internal/address"
	authsvc "github.com/gabrielmoneiro/mariadoce/internal/auth"
	catalogsvc "github.com/gabrielmoneiro/mariadoce/internal/catalog"
	orderssvc "github.com/gabrielmoneiro/mariadoce/internal/orders"
	webhooksvc "github.com/gabrielmoneiro/mariadoce/internal/webhooks"
	pkgauth "github.com/gabrielmoneiro/mariadoce/pkg/auth"
	"github.com/gabrielmoneiro/mariadoce/pkg/config"
	"github.com/gabrielmoneiro/mariadoce/pkg/db/models"
	"github.com/gabrielmoneiro/mariadoce/pkg/logger"
	"github.com/gabrielmoneiro/mariadoce/pkg/metrics"
	"github.com/gabrielmoneiro/mariadoce/pkg/postal"
	"github.com/gabrielmoneiro/mariadoce/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	return nil
}

type stubCatalogService struct{}

func (stubCatalogService) ListProducts(ctx context.Context, filter catalogsvc.ProductFilter) ([]models.Product, error) {
	return []models.Product{}, nil
}

func (stubCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	panic("unimplemented")
}

func (stubCatalogService) CreateProduct(ctx context.Context, input catalogsvc.CreateProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input catalogsvc.UpdateProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubCatalogService) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	return []models.Category{}, nil
}

func (stubCatalogService) CreateCategory(ctx context.Context, input catalogsvc.CategoryInput) (*models.Category, error) {
	panic("unimplemented")
}

func (stubCatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, input catalogsvc.CategoryInput) (*models.Category, error) {
	panic("unimplemented")
}

func (stubCatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubCatalogService) UnitPrice(ctx context.Context, productID uuid.UUID, sizeName string) (decimal.Decimal, string, error) {
	panic("unimplemented")
}

func (stubCatalogService) QuoteItem(ctx context.Context, productID uuid.UUID, sizeName string) (*catalogsvc.PriceQuote, error) {
	panic("unimplemented")
}

type stubSettingsService struct{}

func (stubSettingsService) Delivery(ctx context.Context) (types.DeliverySettings, error) {
	return types.DeliverySettings{}, nil
}

func (stubSettingsService) Schedule(ctx context.Context) (types.ScheduleConfig, error) {
	return types.DefaultScheduleConfig(), nil
}

func (stubSettingsService) Snapshot(ctx context.Context) (*models.StoreSettings, error) {
	return &models.StoreSettings{
		ID:       models.SettingsRowID,
		Schedule: types.DefaultScheduleConfig(),
	}, nil
}

func (stubSettingsService) UpdateDelivery(ctx context.Context, cfg types.DeliverySettings, actor string) error {
	panic("unimplemented")
}

func (stubSettingsService) UpdateSchedule(ctx context.Context, cfg types.ScheduleConfig, actor string) error {
	panic("unimplemented")
}

func (stubSettingsService) Refresh(ctx context.Context) error {
	return nil
}

func (stubSettingsService) EnsureSeed(ctx context.Context, defaults models.StoreSettings) error {
	return nil
}

type stubOrdersService struct{}

func (stubOrdersService) Submit(ctx context.Context, input orderssvc.SubmitInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) List(ctx context.Context, filter orderssvc.ListFilter) ([]models.Order, error) {
	return []models.Order{}, nil
}

func (stubOrdersService) Transition(ctx context.Context, input orderssvc.TransitionInput) (*models.Order, error) {
	panic("unimplemented")
}

type stubWebhookService struct{}

func (stubWebhookService) CreateEndpoint(ctx context.Context, input webhooksvc.EndpointInput) (*models.WebhookEndpoint, error) {
	panic("unimplemented")
}

func (stubWebhookService) UpdateEndpoint(ctx context.Context, id uuid.UUID, input webhooksvc.EndpointUpdateInput) (*models.WebhookEndpoint, error) {
	panic("unimplemented")
}

func (stubWebhookService) DeleteEndpoint(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubWebhookService) GetEndpoint(ctx context.Context, id uuid.UUID) (*models.WebhookEndpoint, error) {
	panic("unimplemented")
}

func (stubWebhookService) ListEndpoints(ctx context.Context) ([]models.WebhookEndpoint, error) {
	return []models.WebhookEndpoint{}, nil
}

func (stubWebhookService) ProcessInbound(ctx context.Context, payload webhooksvc.InboundPayload) (*webhooksvc.InboundResult, error) {
	return &webhooksvc.InboundResult{Processed: "message"}, nil
}

func (stubWebhookService) ListInbox(ctx context.Context, unprocessedOnly bool) ([]models.InboundMessage, error) {
	return []models.InboundMessage{}, nil
}

func (stubWebhookService) MarkMessageProcessed(ctx context.Context, id uuid.UUID) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
		Webhook: config.WebhookConfig{InboundSecret: "inbound-secret"},
		Store:   config.StoreConfig{WhatsAppNumber: "+55 11 98888-7777"},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	registry := prometheus.NewRegistry()
	return NewRouter(
		cfg,
		logg,
		stubPinger{}, // db
		stubPinger{}, // cache
		nil,          // idempotency store
		registry,
		metrics.NewOrderMetrics(registry),
		stubAuthService{},
		stubCatalogService{},
		addresssvc.NewService(nil, postal.NewClient(), "br"),
		nil, // delivery quoting disabled in tests
		stubSettingsService{},
		stubOrdersService{},
		stubWebhookService{},
		nil, // dispatcher
	)
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		AdminID: uuid.New(),
		Email:   "maria@mariadoce.com.br",
		JTI:     uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if env := resp.Header().Get("X-MariaDoce-Env"); env != "test" {
		t.Fatalf("expected env header got %q", env)
	}
}

func TestMenuRoutesArePublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/menu/categories", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAdminGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAdminGroupAcceptsValidJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestInboundWebhookRequiresSecret(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	body := strings.NewReader(`{"phone":"11988887777","message":"oi"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook", body)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without secret got %d", resp.Code)
	}

	body = strings.NewReader(`{"phone":"11988887777","message":"oi"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/webhook", body)
	req.Header.Set("X-Webhook-Secret", "inbound-secret")
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with secret got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestInboundWebhookDisabledWithoutConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Webhook.InboundSecret = ""
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook", strings.NewReader(`{}`))
	req.Header.Set("X-Webhook-Secret", "anything")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when inbound webhook unconfigured got %d", resp.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestDeliveryQuoteUnavailableWithoutGeocoder(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/delivery/quote?lat=-23.5&lng=-46.6", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
