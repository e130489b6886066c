package controllers

import (
	"net/http"
	"strings"

	"github.com/gabrielmoneiro/mariadoce/api/middleware"
	"github.com/gabrielmoneiro/mariadoce/api/responses"
	"github.com/gabrielmoneiro/mariadoce/api/validators"
	orderssvc "github.com/gabrielmoneiro/mariadoce/internal/orders"
	"github.com/gabrielmoneiro/mariadoce/pkg/enums"
	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
	"github.com/gabrielmoneiro/mariadoce/pkg/logger"
)

type transitionRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminListOrders pages through orders, optionally filtered by status.
func AdminListOrders(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := orderssvc.ListFilter{Limit: limit, Offset: offset}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
				return
			}
			filter.Status = &status
		}

		orders, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// AdminGetOrder returns one order with its line items.
func AdminGetOrder(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parsePathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminTransitionOrder moves an order along the status machine. The acting
// admin is recorded on the order for the audit trail.
func AdminTransitionOrder(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parsePathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transitionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
			return
		}

		order, err := svc.Transition(r.Context(), orderssvc.TransitionInput{
			OrderID:   orderID,
			NewStatus: status,
			Actor:     adminActor(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminCreateOrder registers a phone or walk-in order on behalf of a
// customer. It runs the same pricing and scheduling pipeline as checkout.
func AdminCreateOrder(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload submitOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(enums.OrderOriginAdmin)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Submit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// adminActor prefers the authenticated admin's email for the audit trail,
// falling back to the raw id when the token carried no email claim.
func adminActor(r *http.Request) string {
	if email := middleware.AdminEmailFromContext(r.Context()); email != "" {
		return email
	}
	if id := middleware.AdminIDFromContext(r.Context()); id != "" {
		return id
	}
	return "admin"
}
