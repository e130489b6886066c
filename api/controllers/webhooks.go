package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gabrielmoneiro/mariadoce/api/responses"
	"github.com/gabrielmoneiro/mariadoce/api/validators"
	webhooksvc "github.com/gabrielmoneiro/mariadoce/internal/webhooks"
	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
	"github.com/gabrielmoneiro/mariadoce/pkg/logger"
)

type endpointRequest struct {
	Name     string   `json:"name" validate:"required"`
	URL      string   `json:"url" validate:"required,url"`
	Secret   *string  `json:"secret,omitempty"`
	Events   []string `json:"events,omitempty"`
	IsActive *bool    `json:"is_active,omitempty"`
}

type endpointUpdateRequest struct {
	Name     *string   `json:"name,omitempty"`
	URL      *string   `json:"url,omitempty" validate:"omitempty,url"`
	Secret   *string   `json:"secret,omitempty"`
	Events   *[]string `json:"events,omitempty"`
	IsActive *bool     `json:"is_active,omitempty"`
}

type testDispatchRequest struct {
	WebhookID string  `json:"webhook_id,omitempty"`
	URL       string  `json:"url,omitempty"`
	Secret    *string `json:"secret,omitempty"`
}

// WebhookInbound receives shared-secret callbacks: order status updates or
// WhatsApp messages destined for the admin inbox.
func WebhookInbound(svc webhooksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload webhooksvc.InboundPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ProcessInbound(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminListWebhooks lists every registered outbound endpoint.
func AdminListWebhooks(svc webhooksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		endpoints, err := svc.ListEndpoints(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, endpoints)
	}
}

// AdminCreateWebhook registers a new outbound endpoint.
func AdminCreateWebhook(svc webhooksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload endpointRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		endpoint, err := svc.CreateEndpoint(r.Context(), webhooksvc.EndpointInput{
			Name:     payload.Name,
			URL:      payload.URL,
			Secret:   payload.Secret,
			Events:   payload.Events,
			IsActive: payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, endpoint)
	}
}

// AdminUpdateWebhook applies a partial endpoint update.
func AdminUpdateWebhook(svc webhooksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		webhookID, err := parsePathUUID(r, "webhookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload endpointUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		endpoint, err := svc.UpdateEndpoint(r.Context(), webhookID, webhooksvc.EndpointUpdateInput{
			Name:     payload.Name,
			URL:      payload.URL,
			Secret:   payload.Secret,
			Events:   payload.Events,
			IsActive: payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, endpoint)
	}
}

// AdminDeleteWebhook removes an outbound endpoint.
func AdminDeleteWebhook(svc webhooksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		webhookID, err := parsePathUUID(r, "webhookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteEndpoint(r.Context(), webhookID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// AdminTestWebhook fires a synthetic event at a stored endpoint or an ad-hoc
// URL and relays the downstream response verbatim.
func AdminTestWebhook(dispatcher *webhooksvc.Dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dispatcher == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook dispatcher unavailable"))
			return
		}

		var payload testDispatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := webhooksvc.TestDispatchInput{URL: payload.URL, Secret: payload.Secret}
		if payload.WebhookID != "" {
			webhookID, err := uuid.Parse(payload.WebhookID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "webhook_id must be a UUID"))
				return
			}
			input.WebhookID = webhookID
		}

		result, err := dispatcher.TestDispatch(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminListInbox lists inbound WhatsApp messages for the back office.
func AdminListInbox(svc webhooksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		unprocessedOnly := validators.ParseQueryBool(r, "unprocessed", false)
		messages, err := svc.ListInbox(r.Context(), unprocessedOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, messages)
	}
}

// AdminMarkInboxProcessed marks one inbox message as handled.
func AdminMarkInboxProcessed(svc webhooksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messageID, err := parsePathUUID(r, "messageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.MarkMessageProcessed(r.Context(), messageID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"processed": true})
	}
}
