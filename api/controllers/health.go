package controllers

import (
	"context"
	"net/http"

	"github.com/gabrielmoneiro/mariadoce/api/responses"
	"github.com/gabrielmoneiro/mariadoce/pkg/config"
	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
	"github.com/gabrielmoneiro/mariadoce/pkg/logger"
)

const envHeader = "X-MariaDoce-Env"

// Pinger is satisfied by the db and redis clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the hard dependencies. Redis is best-effort: the service
// degrades to TTL-only settings caching without it.
func HealthReady(cfg *config.Config, logg *logger.Logger, db Pinger, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		if db == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database not wired"))
			return
		}
		if err := db.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
			return
		}

		cacheStatus := "ok"
		if cache == nil {
			cacheStatus = "disabled"
		} else if err := cache.Ping(r.Context()); err != nil {
			cacheStatus = "unavailable"
			if logg != nil {
				logg.Warn(r.Context(), "redis unavailable, settings cache degrades to TTL only")
			}
		}

		responses.WriteSuccess(w, map[string]string{
			"status": "ready",
			"cache":  cacheStatus,
		})
	}
}
