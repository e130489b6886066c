package webhooks

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/gabrielmoneiro/mariadoce/internal/orders"
	"github.com/gabrielmoneiro/mariadoce/pkg/db/models"
	"github.com/gabrielmoneiro/mariadoce/pkg/enums"
	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
)

type stubTransitioner struct {
	last   orders.TransitionInput
	result *models.Order
	err    error
}

func (s *stubTransitioner) Transition(_ context.Context, input orders.TransitionInput) (*models.Order, error) {
	s.last = input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestWebhookService(repo Repository, trans orderTransitioner) *service {
	return &service{repo: repo, orders: trans, logg: testWebhookLogger()}
}

func TestCreateEndpointValidation(t *testing.T) {
	svc := newTestWebhookService(newStubWebhookRepo(), &stubTransitioner{})

	_, err := svc.CreateEndpoint(context.Background(), EndpointInput{Name: " ", URL: "https://example.com/hook"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("blank name must be rejected, got %v", err)
	}

	_, err = svc.CreateEndpoint(context.Background(), EndpointInput{Name: "n8n", URL: "not-a-url"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("bad url must be rejected, got %v", err)
	}

	endpoint, err := svc.CreateEndpoint(context.Background(), EndpointInput{
		Name: "n8n", URL: "https://example.com/hook", Events: []string{EventOrderCreated},
	})
	if err != nil {
		t.Fatalf("create endpoint: %v", err)
	}
	if !endpoint.IsActive {
		t.Fatalf("endpoints default to active")
	}
}

func TestUpdateEndpointPartial(t *testing.T) {
	repo := newStubWebhookRepo()
	svc := newTestWebhookService(repo, &stubTransitioner{})

	endpoint, err := svc.CreateEndpoint(context.Background(), EndpointInput{Name: "n8n", URL: "https://example.com/hook"})
	if err != nil {
		t.Fatalf("create endpoint: %v", err)
	}

	inactive := false
	updated, err := svc.UpdateEndpoint(context.Background(), endpoint.ID, EndpointUpdateInput{IsActive: &inactive})
	if err != nil {
		t.Fatalf("update endpoint: %v", err)
	}
	if updated.IsActive {
		t.Fatalf("endpoint must be deactivated")
	}
	if updated.Name != "n8n" {
		t.Fatalf("untouched fields must survive, got %q", updated.Name)
	}

	_, err = svc.UpdateEndpoint(context.Background(), uuid.New(), EndpointUpdateInput{IsActive: &inactive})
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unknown endpoint must be not found, got %v", err)
	}
}

func TestProcessInboundStatusUpdate(t *testing.T) {
	orderID := uuid.New()
	trans := &stubTransitioner{result: &models.Order{ID: orderID, Status: enums.OrderStatusPreparing}}
	svc := newTestWebhookService(newStubWebhookRepo(), trans)

	result, err := svc.ProcessInbound(context.Background(), InboundPayload{
		OrderID:   orderID.String(),
		NewStatus: "preparing",
	})
	if err != nil {
		t.Fatalf("process inbound: %v", err)
	}
	if result.Processed != "status_update" || result.Status != "preparing" {
		t.Fatalf("unexpected result %+v", result)
	}
	if trans.last.Actor != inboundActor {
		t.Fatalf("transitions must be attributed to the webhook actor, got %q", trans.last.Actor)
	}
	if trans.last.NewStatus != enums.OrderStatusPreparing {
		t.Fatalf("unexpected status %q", trans.last.NewStatus)
	}
}

func TestProcessInboundRejectsBadStatus(t *testing.T) {
	svc := newTestWebhookService(newStubWebhookRepo(), &stubTransitioner{})

	_, err := svc.ProcessInbound(context.Background(), InboundPayload{
		OrderID:   uuid.New().String(),
		NewStatus: "vanished",
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("unknown status must be rejected, got %v", err)
	}

	_, err = svc.ProcessInbound(context.Background(), InboundPayload{
		OrderID:   "not-a-uuid",
		NewStatus: "preparing",
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("malformed order id must be rejected, got %v", err)
	}
}

func TestProcessInboundMessage(t *testing.T) {
	repo := newStubWebhookRepo()
	svc := newTestWebhookService(repo, &stubTransitioner{})

	result, err := svc.ProcessInbound(context.Background(), InboundPayload{
		Phone:   "+55 11 98888-7777",
		Message: "Oi, meu pedido chegou?",
	})
	if err != nil {
		t.Fatalf("process inbound: %v", err)
	}
	if result.Processed != "message" || result.MessageID == nil {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(repo.messages) != 1 {
		t.Fatalf("message must be persisted, got %d", len(repo.messages))
	}

	inbox, err := svc.ListInbox(context.Background(), true)
	if err != nil || len(inbox) != 1 {
		t.Fatalf("inbox must list the new message: %v %v", inbox, err)
	}

	if err := svc.MarkMessageProcessed(context.Background(), *result.MessageID); err != nil {
		t.Fatalf("mark processed: %v", err)
	}
	inbox, _ = svc.ListInbox(context.Background(), true)
	if len(inbox) != 0 {
		t.Fatalf("processed messages must drop out of the unread inbox")
	}
}

func TestProcessInboundEmptyPayload(t *testing.T) {
	svc := newTestWebhookService(newStubWebhookRepo(), &stubTransitioner{})

	_, err := svc.ProcessInbound(context.Background(), InboundPayload{})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("empty payload must be rejected, got %v", err)
	}
}
