package enums

import "fmt"

// OperatingMode controls whether the storefront takes immediate orders,
// scheduled orders, or both.
type OperatingMode string

const (
	OperatingModeImmediateOnly OperatingMode = "immediate_only"
	OperatingModeScheduledOnly OperatingMode = "scheduled_only"
	OperatingModeHybrid        OperatingMode = "hybrid"

	// OperatingModeClosed is only valid inside a special-date override.
	OperatingModeClosed OperatingMode = "closed"
)

var validOperatingModes = []OperatingMode{
	OperatingModeImmediateOnly,
	OperatingModeScheduledOnly,
	OperatingModeHybrid,
}

// String implements fmt.Stringer.
func (m OperatingMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a mode usable as the weekly default.
func (m OperatingMode) IsValid() bool {
	for _, candidate := range validOperatingModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// IsValidOverride reports whether the value may appear in a special-date
// override, which additionally allows "closed".
func (m OperatingMode) IsValidOverride() bool {
	return m == OperatingModeClosed || m.IsValid()
}

// ParseOperatingMode converts raw input into an OperatingMode.
func ParseOperatingMode(value string) (OperatingMode, error) {
	for _, candidate := range validOperatingModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid operating mode %q", value)
}
