package address

import (
	"context"
	"strings"

	"github.com/gabrielmoneiro/mariadoce/pkg/errors"
	"github.com/gabrielmoneiro/mariadoce/pkg/maps"
	"github.com/gabrielmoneiro/mariadoce/pkg/postal"
)

// Service resolves customer addresses: geocode suggestions for the checkout
// autocomplete, reverse lookup for "how to get here", and CEP resolution.
type Service interface {
	Suggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error)
	Reverse(ctx context.Context, req ReverseRequest) (string, error)
	PostalLookup(ctx context.Context, code string) (*postal.Address, error)
}

type geocoder interface {
	ForwardGeocode(ctx context.Context, query, country string) ([]maps.Place, error)
	ReverseGeocode(ctx context.Context, lng, lat float64) (string, error)
}

type postalResolver interface {
	Lookup(ctx context.Context, cep string) (*postal.Address, error)
}

type service struct {
	geo            geocoder
	postal         postalResolver
	defaultCountry string
}

// NewService wires the address service. The default country scopes forward
// geocoding when the request does not override it.
func NewService(geo geocoder, postalClient postalResolver, defaultCountry string) Service {
	return &service{
		geo:            geo,
		postal:         postalClient,
		defaultCountry: defaultCountry,
	}
}

type SuggestRequest struct {
	Query   string
	Country string
}

type ReverseRequest struct {
	Lng float64
	Lat float64
}

// Suggestion is one ranked geocoding candidate.
type Suggestion struct {
	Label string  `json:"label"`
	Lng   float64 `json:"lng"`
	Lat   float64 `json:"lat"`
}

func (s *service) Suggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error) {
	if s == nil || s.geo == nil {
		return nil, errors.New(errors.CodeDependency, "geocoding unavailable")
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.New(errors.CodeValidation, "query is required")
	}

	country := strings.TrimSpace(req.Country)
	if country == "" {
		country = s.defaultCountry
	}

	places, err := s.geo.ForwardGeocode(ctx, req.Query, country)
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(places))
	for _, place := range places {
		suggestions = append(suggestions, Suggestion{
			Label: place.Label,
			Lng:   place.Lng,
			Lat:   place.Lat,
		})
	}
	return suggestions, nil
}

func (s *service) Reverse(ctx context.Context, req ReverseRequest) (string, error) {
	if s == nil || s.geo == nil {
		return "", errors.New(errors.CodeDependency, "geocoding unavailable")
	}
	return s.geo.ReverseGeocode(ctx, req.Lng, req.Lat)
}

func (s *service) PostalLookup(ctx context.Context, code string) (*postal.Address, error) {
	if s == nil || s.postal == nil {
		return nil, errors.New(errors.CodeDependency, "postal lookup unavailable")
	}
	return s.postal.Lookup(ctx, code)
}
