package controllers

import (
	"net/http"
	"strings"

	"github.com/gabrielmoneiro/mariadoce/api/responses"
	"github.com/gabrielmoneiro/mariadoce/api/validators"
	addresssvc "github.com/gabrielmoneiro/mariadoce/internal/address"
	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
	"github.com/gabrielmoneiro/mariadoce/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// AddressSuggest autocompletes a free-text address query.
func AddressSuggest(svc addresssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := addresssvc.SuggestRequest{
			Query:   strings.TrimSpace(r.URL.Query().Get("q")),
			Country: strings.TrimSpace(r.URL.Query().Get("country")),
		}

		suggestions, err := svc.Suggest(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, suggestions)
	}
}

// AddressReverse resolves coordinates into a display address.
func AddressReverse(svc addresssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lng, lngPresent, err := validators.ParseQueryFloat(r, "lng")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lat, latPresent, err := validators.ParseQueryFloat(r, "lat")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !lngPresent || !latPresent {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "lng and lat query parameters are required"))
			return
		}

		label, err := svc.Reverse(r.Context(), addresssvc.ReverseRequest{Lng: lng, Lat: lat})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"address": label})
	}
}

// AddressPostalLookup resolves a CEP into its registered street address.
func AddressPostalLookup(svc addresssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		result, err := svc.PostalLookup(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
