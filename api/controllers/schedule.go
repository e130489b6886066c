package controllers

import (
	"net/http"
	"time"

	"github.com/gabrielmoneiro/mariadoce/api/responses"
	"github.com/gabrielmoneiro/mariadoce/internal/schedule"
	settingssvc "github.com/gabrielmoneiro/mariadoce/internal/settings"
	"github.com/gabrielmoneiro/mariadoce/pkg/logger"
)

type scheduleDayResponse struct {
	Date    string            `json:"date"`
	Windows []schedule.Window `json:"windows"`
}

type scheduleAvailabilityResponse struct {
	Mode     string                `json:"mode"`
	Decision schedule.Decision     `json:"decision"`
	Days     []scheduleDayResponse `json:"days"`
}

// ScheduleAvailability returns the checkout decision plus every bookable
// window inside the scheduling horizon.
func ScheduleAvailability(svc settingssvc.Service, logg *logger.Logger, now func() time.Time) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := svc.Schedule(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current := now()
		payload := scheduleAvailabilityResponse{
			Mode:     cfg.Mode.String(),
			Decision: schedule.Decide(current, cfg),
			Days:     []scheduleDayResponse{},
		}

		for _, dateKey := range schedule.AvailableDates(cfg, current) {
			date, err := time.ParseInLocation("2006-01-02", dateKey, current.Location())
			if err != nil {
				continue
			}
			windows := schedule.TimeWindows(cfg, date)
			if len(windows) == 0 {
				continue
			}
			payload.Days = append(payload.Days, scheduleDayResponse{Date: dateKey, Windows: windows})
		}

		responses.WriteSuccess(w, payload)
	}
}
