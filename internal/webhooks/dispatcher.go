package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/gabrielmoneiro/mariadoce/pkg/config"
	"github.com/gabrielmoneiro/mariadoce/pkg/db/models"
	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
	"github.com/gabrielmoneiro/mariadoce/pkg/logger"
	"github.com/gabrielmoneiro/mariadoce/pkg/metrics"
)

const (
	EventOrderCreated = "order.created"
	EventTest         = "webhook.test"

	secretHeader = "X-Webhook-Secret"
)

// Event is the envelope posted to every outbound target.
type Event struct {
	Event     string        `json:"event"`
	Timestamp time.Time     `json:"timestamp"`
	Order     *OrderPayload `json:"order,omitempty"`
}

// OrderPayload is the order summary carried by order.created events.
type OrderPayload struct {
	ID            uuid.UUID       `json:"id"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	Address       string          `json:"address"`
	Status        string          `json:"status"`
	Origin        string          `json:"origin"`
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
	ScheduleDate  *string         `json:"schedule_date,omitempty"`
	ScheduleWin   *string         `json:"schedule_window,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// DispatchResult is the downstream response surfaced by a test dispatch.
type DispatchResult struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
}

// Dispatcher fans order events out to the configured URL and every active
// registered endpoint. Delivery is best-effort: failures are logged and
// counted, never propagated to the checkout flow.
type Dispatcher struct {
	client  *http.Client
	cfg     config.WebhookConfig
	repo    Repository
	logg    *logger.Logger
	metrics *metrics.OrderMetrics
	now     func() time.Time
}

// DispatcherOption customizes the dispatcher.
type DispatcherOption func(*Dispatcher)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) DispatcherOption {
	return func(d *Dispatcher) {
		if client != nil {
			d.client = client
		}
	}
}

// NewDispatcher builds the outbound webhook dispatcher. Metrics are optional.
func NewDispatcher(cfg config.WebhookConfig, repo Repository, logg *logger.Logger, orderMetrics *metrics.OrderMetrics, opts ...DispatcherOption) (*Dispatcher, error) {
	if repo == nil {
		return nil, fmt.Errorf("webhook repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	timeout := cfg.DispatchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dispatcher := &Dispatcher{
		client:  &http.Client{Timeout: timeout},
		cfg:     cfg,
		repo:    repo,
		logg:    logg,
		metrics: orderMetrics,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(dispatcher)
	}
	return dispatcher, nil
}

// OrderCreated notifies every target about a freshly persisted order. It
// satisfies the order service's notifier contract.
func (d *Dispatcher) OrderCreated(ctx context.Context, order *models.Order) {
	if order == nil {
		return
	}
	event := Event{
		Event:     EventOrderCreated,
		Timestamp: d.now().UTC(),
		Order:     orderPayload(order),
	}

	var errs error
	delivered := 0

	if d.cfg.OrderCreatedURL != "" {
		if err := d.deliver(ctx, d.cfg.OrderCreatedURL, nil, event); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("configured url: %w", err))
			d.metrics.IncWebhookFailure(EventOrderCreated)
		} else {
			delivered++
			d.metrics.IncWebhookSuccess(EventOrderCreated)
		}
	}

	endpoints, err := d.repo.ListEndpoints(ctx, true)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("list endpoints: %w", err))
	}
	for _, endpoint := range endpoints {
		if !subscribed(endpoint, EventOrderCreated) {
			continue
		}
		if err := d.deliver(ctx, endpoint.URL, endpoint.Secret, event); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("endpoint %s: %w", endpoint.Name, err))
			d.metrics.IncWebhookFailure(EventOrderCreated)
			continue
		}
		delivered++
		d.metrics.IncWebhookSuccess(EventOrderCreated)
	}

	ctx = d.logg.WithOrderID(ctx, order.ID.String())
	if errs != nil {
		d.logg.Error(ctx, fmt.Sprintf("webhook dispatch delivered %d target(s) with failures", delivered), errs)
		return
	}
	if delivered > 0 {
		d.logg.Info(ctx, fmt.Sprintf("webhook dispatch delivered %d target(s)", delivered))
	}
}

// TestDispatch sends a synthetic event to a registered endpoint or an ad-hoc
// URL and returns whatever the downstream answered.
func (d *Dispatcher) TestDispatch(ctx context.Context, input TestDispatchInput) (*DispatchResult, error) {
	targetURL := input.URL
	secret := input.Secret

	if input.WebhookID != uuid.Nil {
		endpoint, err := d.repo.FindEndpointByID(ctx, input.WebhookID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "webhook endpoint not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load webhook endpoint")
		}
		if targetURL == "" {
			targetURL = endpoint.URL
		}
		if secret == nil {
			secret = endpoint.Secret
		}
	}
	if targetURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a webhook id or url is required")
	}

	event := Event{Event: EventTest, Timestamp: d.now().UTC()}
	status, body, err := d.send(ctx, targetURL, secret, event)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "test dispatch")
	}
	return &DispatchResult{StatusCode: status, Body: body}, nil
}

// TestDispatchInput identifies the test target. URL and Secret override the
// endpoint's stored values when both are given.
type TestDispatchInput struct {
	WebhookID uuid.UUID
	URL       string
	Secret    *string
}

func (d *Dispatcher) deliver(ctx context.Context, url string, secret *string, event Event) error {
	status, _, err := d.send(ctx, url, secret, event)
	if err != nil {
		return err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("target answered %d", status)
	}
	return nil
}

func (d *Dispatcher) send(ctx context.Context, url string, secret *string, event Event) (int, string, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return 0, "", fmt.Errorf("encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if secret != nil && *secret != "" {
		req.Header.Set(secretHeader, *secret)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, string(body), nil
}

func subscribed(endpoint models.WebhookEndpoint, event string) bool {
	if len(endpoint.Events) == 0 {
		return true
	}
	for _, candidate := range endpoint.Events {
		if candidate == event {
			return true
		}
	}
	return false
}

func orderPayload(order *models.Order) *OrderPayload {
	return &OrderPayload{
		ID:            order.ID,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		Address:       order.Address.Display(),
		Status:        string(order.Status),
		Origin:        string(order.Origin),
		PaymentMethod: string(order.PaymentMethod),
		Total:         order.Totals.Total,
		ItemCount:     len(order.Items),
		ScheduleDate:  order.ScheduleDate,
		ScheduleWin:   order.ScheduleWindow,
		CreatedAt:     order.CreatedAt,
	}
}
