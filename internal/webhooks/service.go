package webhooks

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gabrielmoneiro/mariadoce/internal/orders"
	"github.com/gabrielmoneiro/mariadoce/pkg/db/models"
	"github.com/gabrielmoneiro/mariadoce/pkg/enums"
	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
	"github.com/gabrielmoneiro/mariadoce/pkg/logger"
)

const inboundActor = "webhook"

// Service owns endpoint registration and inbound webhook processing.
type Service interface {
	CreateEndpoint(ctx context.Context, input EndpointInput) (*models.WebhookEndpoint, error)
	UpdateEndpoint(ctx context.Context, id uuid.UUID, input EndpointUpdateInput) (*models.WebhookEndpoint, error)
	DeleteEndpoint(ctx context.Context, id uuid.UUID) error
	GetEndpoint(ctx context.Context, id uuid.UUID) (*models.WebhookEndpoint, error)
	ListEndpoints(ctx context.Context) ([]models.WebhookEndpoint, error)

	ProcessInbound(ctx context.Context, payload InboundPayload) (*InboundResult, error)
	ListInbox(ctx context.Context, unprocessedOnly bool) ([]models.InboundMessage, error)
	MarkMessageProcessed(ctx context.Context, id uuid.UUID) error
}

// EndpointInput creates a new outbound target. Events defaults to every
// event when empty.
type EndpointInput struct {
	Name     string
	URL      string
	Secret   *string
	Events   []string
	IsActive *bool
}

// EndpointUpdateInput carries a partial endpoint update; nil fields keep the
// stored value.
type EndpointUpdateInput struct {
	Name     *string
	URL      *string
	Secret   *string
	Events   *[]string
	IsActive *bool
}

// InboundPayload is the shared-secret webhook body: either an order status
// update or a raw WhatsApp message for the admin inbox.
type InboundPayload struct {
	OrderID   string `json:"orderId"`
	NewStatus string `json:"newStatus"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
}

// InboundResult echoes what the inbound webhook processed.
type InboundResult struct {
	Processed string     `json:"processed"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
	Status    string     `json:"status,omitempty"`
	MessageID *uuid.UUID `json:"message_id,omitempty"`
}

type orderTransitioner interface {
	Transition(ctx context.Context, input orders.TransitionInput) (*models.Order, error)
}

type service struct {
	repo   Repository
	orders orderTransitioner
	logg   *logger.Logger
}

// NewService wires the webhook service.
func NewService(repo Repository, orderSvc orderTransitioner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("webhook repository required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("order service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, orders: orderSvc, logg: logg}, nil
}

func (s *service) CreateEndpoint(ctx context.Context, input EndpointInput) (*models.WebhookEndpoint, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "endpoint name is required")
	}
	if err := validateTargetURL(input.URL); err != nil {
		return nil, err
	}

	endpoint := &models.WebhookEndpoint{
		ID:       uuid.New(),
		Name:     name,
		URL:      input.URL,
		Secret:   input.Secret,
		Events:   input.Events,
		IsActive: true,
	}
	if input.IsActive != nil {
		endpoint.IsActive = *input.IsActive
	}
	if err := s.repo.CreateEndpoint(ctx, endpoint); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create webhook endpoint")
	}
	return endpoint, nil
}

func (s *service) UpdateEndpoint(ctx context.Context, id uuid.UUID, input EndpointUpdateInput) (*models.WebhookEndpoint, error) {
	if _, err := s.GetEndpoint(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "endpoint name cannot be blank")
		}
		updates["name"] = name
	}
	if input.URL != nil {
		if err := validateTargetURL(*input.URL); err != nil {
			return nil, err
		}
		updates["url"] = *input.URL
	}
	if input.Secret != nil {
		updates["secret"] = *input.Secret
	}
	if input.Events != nil {
		updates["events"] = *input.Events
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return s.GetEndpoint(ctx, id)
	}

	if err := s.repo.UpdateEndpoint(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update webhook endpoint")
	}
	return s.GetEndpoint(ctx, id)
}

func (s *service) DeleteEndpoint(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetEndpoint(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteEndpoint(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete webhook endpoint")
	}
	return nil
}

func (s *service) GetEndpoint(ctx context.Context, id uuid.UUID) (*models.WebhookEndpoint, error) {
	endpoint, err := s.repo.FindEndpointByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "webhook endpoint not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load webhook endpoint")
	}
	return endpoint, nil
}

func (s *service) ListEndpoints(ctx context.Context) ([]models.WebhookEndpoint, error) {
	endpoints, err := s.repo.ListEndpoints(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list webhook endpoints")
	}
	return endpoints, nil
}

// ProcessInbound routes one inbound webhook body: a status update moves the
// order through the regular transition machine with the webhook actor, a
// message lands in the admin inbox.
func (s *service) ProcessInbound(ctx context.Context, payload InboundPayload) (*InboundResult, error) {
	if payload.OrderID != "" || payload.NewStatus != "" {
		return s.processStatusUpdate(ctx, payload)
	}
	if payload.Phone != "" && payload.Message != "" {
		return s.processMessage(ctx, payload)
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation,
		"payload must carry orderId/newStatus or phone/message")
}

func (s *service) processStatusUpdate(ctx context.Context, payload InboundPayload) (*InboundResult, error) {
	orderID, err := uuid.Parse(payload.OrderID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orderId must be a UUID")
	}
	status, err := enums.ParseOrderStatus(payload.NewStatus)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown status %q", payload.NewStatus))
	}

	order, err := s.orders.Transition(ctx, orders.TransitionInput{
		OrderID:   orderID,
		NewStatus: status,
		Actor:     inboundActor,
	})
	if err != nil {
		return nil, err
	}

	return &InboundResult{
		Processed: "status_update",
		OrderID:   &order.ID,
		Status:    string(order.Status),
	}, nil
}

func (s *service) processMessage(ctx context.Context, payload InboundPayload) (*InboundResult, error) {
	message := &models.InboundMessage{
		ID:    uuid.New(),
		Phone: strings.TrimSpace(payload.Phone),
		Body:  payload.Message,
	}
	if err := s.repo.CreateInboundMessage(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store inbound message")
	}

	s.logg.Info(ctx, fmt.Sprintf("inbound message stored from %s", message.Phone))
	return &InboundResult{Processed: "message", MessageID: &message.ID}, nil
}

func (s *service) ListInbox(ctx context.Context, unprocessedOnly bool) ([]models.InboundMessage, error) {
	messages, err := s.repo.ListInboundMessages(ctx, unprocessedOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inbound messages")
	}
	return messages, nil
}

func (s *service) MarkMessageProcessed(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkMessageProcessed(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark message processed")
	}
	return nil
}

func validateTargetURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return pkgerrors.New(pkgerrors.CodeValidation, "endpoint url must be an absolute http(s) url")
	}
	return nil
}
