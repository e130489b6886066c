package enums

import "fmt"

// RoundingPolicy selects how computed delivery fees are rounded. Exactly one
// policy is applied per deployment; mixing policies across call sites is not
// supported.
type RoundingPolicy string

const (
	// RoundingHalfReal rounds up to the nearest R$0.50.
	RoundingHalfReal RoundingPolicy = "half_real"
	// RoundingCent rounds half-up to two decimal places.
	RoundingCent RoundingPolicy = "cent"
)

// IsValid reports whether the value is a known RoundingPolicy.
func (r RoundingPolicy) IsValid() bool {
	return r == RoundingHalfReal || r == RoundingCent
}

// ParseRoundingPolicy converts raw input into a RoundingPolicy.
func ParseRoundingPolicy(value string) (RoundingPolicy, error) {
	policy := RoundingPolicy(value)
	if !policy.IsValid() {
		return "", fmt.Errorf("invalid rounding policy %q", value)
	}
	return policy, nil
}
