package delivery

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gabrielmoneiro/mariadoce/pkg/enums"
	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
	"github.com/gabrielmoneiro/mariadoce/pkg/types"
)

var (
	metersPerKm = decimal.NewFromInt(1000)
	halfReal    = decimal.RequireFromString("0.5")
)

// ComputeFee derives the delivery fee for a route distance. Rides within the
// free radius and stores without a positive per-km rate cost nothing;
// otherwise the fee is km times the rate, rounded per the configured policy.
// The result is monotonically non-decreasing in distance for a fixed config.
func ComputeFee(distanceMeters float64, cfg types.DeliverySettings) decimal.Decimal {
	if distanceMeters <= cfg.FreeRadiusMeters || !cfg.FeePerKm.IsPositive() {
		return decimal.Zero
	}

	km := decimal.NewFromFloat(distanceMeters).Div(metersPerKm)
	return roundFee(km.Mul(cfg.FeePerKm), cfg.Rounding)
}

// roundFee applies the canonical rounding policy. half_real rounds up to the
// next R$0.50 so quoted fees never undercut the raw rate; cent keeps exact
// half-up cents.
func roundFee(fee decimal.Decimal, policy enums.RoundingPolicy) decimal.Decimal {
	switch policy {
	case enums.RoundingCent:
		return fee.Round(2)
	default:
		return fee.Div(halfReal).Ceil().Mul(halfReal)
	}
}

// CheckServiceArea rejects destinations beyond 1.5 times the configured
// maximum radius. The slack keeps borderline regulars servable while still
// bounding the courier run.
func CheckServiceArea(distanceMeters float64, cfg types.DeliverySettings) error {
	if cfg.MaxRadiusKm <= 0 {
		return nil
	}
	km := distanceMeters / 1000
	if km > cfg.MaxRadiusKm*1.5 {
		return pkgerrors.New(pkgerrors.CodeOutOfArea,
			fmt.Sprintf("address is %.1f km away, beyond the %.1f km delivery area", km, cfg.MaxRadiusKm)).
			WithDetails(map[string]any{
				"distance_km":   km,
				"max_radius_km": cfg.MaxRadiusKm,
			})
	}
	return nil
}
