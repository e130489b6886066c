package controllers

import (
	"net/http"

	"github.com/gabrielmoneiro/mariadoce/api/responses"
	"github.com/gabrielmoneiro/mariadoce/api/validators"
	settingssvc "github.com/gabrielmoneiro/mariadoce/internal/settings"
	"github.com/gabrielmoneiro/mariadoce/pkg/logger"
	"github.com/gabrielmoneiro/mariadoce/pkg/types"
)

// AdminGetSettings returns the full store configuration snapshot.
func AdminGetSettings(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := svc.Snapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// AdminUpdateDeliverySettings replaces the delivery-area configuration.
func AdminUpdateDeliverySettings(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload types.DeliverySettings
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateDelivery(r.Context(), payload, adminActor(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}

// AdminUpdateScheduleSettings replaces the operating schedule.
func AdminUpdateScheduleSettings(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload types.ScheduleConfig
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateSchedule(r.Context(), payload, adminActor(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}
