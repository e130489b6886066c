package controllers

import (
	"net/http"

	"github.com/gabrielmoneiro/mariadoce/api/responses"
	"github.com/gabrielmoneiro/mariadoce/api/validators"
	authsvc "github.com/gabrielmoneiro/mariadoce/internal/auth"
	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
	"github.com/gabrielmoneiro/mariadoce/pkg/logger"
)

// AdminLogin exchanges credentials for a back-office access token.
func AdminLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload authsvc.LoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Login(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resp)
	}
}
