package controllers

import (
	"net/http"

	"github.com/gabrielmoneiro/mariadoce/api/responses"
	"github.com/gabrielmoneiro/mariadoce/api/validators"
	deliverysvc "github.com/gabrielmoneiro/mariadoce/internal/delivery"
	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
	"github.com/gabrielmoneiro/mariadoce/pkg/logger"
	"github.com/gabrielmoneiro/mariadoce/pkg/metrics"
)

// DeliveryQuote prices a delivery to the given coordinates.
func DeliveryQuote(svc deliverysvc.Service, logg *logger.Logger, orderMetrics *metrics.OrderMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "delivery quoting unavailable"))
			return
		}

		lat, latPresent, err := validators.ParseQueryFloat(r, "lat")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lng, lngPresent, err := validators.ParseQueryFloat(r, "lng")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !latPresent || !lngPresent {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "lat and lng query parameters are required"))
			return
		}

		quote, err := svc.Quote(r.Context(), lat, lng)
		if err != nil {
			orderMetrics.IncQuote(quoteOutcome(err))
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderMetrics.IncQuote("ok")
		responses.WriteSuccess(w, quote)
	}
}

func quoteOutcome(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return "error"
	}
	switch typed.Code() {
	case pkgerrors.CodeOutOfArea:
		return "out_of_area"
	case pkgerrors.CodeDependency:
		return "dependency_error"
	default:
		return "error"
	}
}
