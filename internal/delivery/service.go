package delivery

import (
	"context"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
	"github.com/gabrielmoneiro/mariadoce/pkg/types"
)

// RouteDistancer resolves the best-route distance in meters between two
// coordinate pairs (lng/lat order, matching the directions API).
type RouteDistancer interface {
	RouteDistance(ctx context.Context, originLng, originLat, destLng, destLat float64) (float64, error)
}

// SettingsLoader yields the current delivery configuration.
type SettingsLoader interface {
	Delivery(ctx context.Context) (types.DeliverySettings, error)
}

// Quote is the priced serviceability answer for one destination.
type Quote struct {
	DistanceMeters float64         `json:"distance_meters"`
	Fee            decimal.Decimal `json:"fee"`
	Free           bool            `json:"free"`
}

// Service prices deliveries against the live route distance.
type Service interface {
	Quote(ctx context.Context, destLat, destLng float64) (*Quote, error)
}

type service struct {
	router   RouteDistancer
	settings SettingsLoader
}

// NewService builds the delivery quoting service.
func NewService(router RouteDistancer, settings SettingsLoader) (Service, error) {
	if router == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "route distancer required")
	}
	if settings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "settings loader required")
	}
	return &service{router: router, settings: settings}, nil
}

// Quote resolves the route from the store to the destination and prices it.
// A failed or routeless lookup surfaces as a dependency error so callers
// re-prompt instead of assuming a free delivery.
func (s *service) Quote(ctx context.Context, destLat, destLng float64) (*Quote, error) {
	cfg, err := s.settings.Delivery(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery settings")
	}

	distance, err := s.router.RouteDistance(ctx, cfg.OriginLng, cfg.OriginLat, destLng, destLat)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "route distance lookup")
	}

	if err := CheckServiceArea(distance, cfg); err != nil {
		return nil, err
	}

	fee := ComputeFee(distance, cfg)
	return &Quote{
		DistanceMeters: distance,
		Fee:            fee,
		Free:           fee.IsZero(),
	}, nil
}
