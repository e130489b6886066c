package types

import (
	"github.com/shopspring/decimal"

	"github.com/gabrielmoneiro/mariadoce/pkg/enums"
)

// ScheduleConfig is the admin-owned weekly/holiday operating schedule.
// Time ranges are "HH:MM-HH:MM" strings with start strictly before end;
// ranges crossing midnight are rejected at the write boundary (use the split
// representation "22:00-23:59" + "00:00-02:00" instead).
type ScheduleConfig struct {
	Mode                  enums.OperatingMode            `json:"mode"`
	Weekly                map[enums.Weekday][]string     `json:"weekly"`
	SpecialDates          map[string]SpecialDateOverride `json:"special_dates"`
	MinDaysAhead          int                            `json:"min_days_ahead"`
	MaxDaysAhead          int                            `json:"max_days_ahead"`
	WindowDurationMinutes int                            `json:"window_duration_minutes"`
}

// SpecialDateOverride fully replaces the weekly default for one calendar date
// ("YYYY-MM-DD" key). Mode "closed" discards the ranges.
type SpecialDateOverride struct {
	Mode   enums.OperatingMode `json:"mode"`
	Ranges []string            `json:"ranges"`
}

// RangesFor resolves the operating ranges for a date: the special-date
// override when present, otherwise the weekday default. The boolean reports
// whether the date is closed outright.
func (c ScheduleConfig) RangesFor(dateKey string, weekday enums.Weekday) ([]string, bool) {
	if override, ok := c.SpecialDates[dateKey]; ok {
		if override.Mode == enums.OperatingModeClosed {
			return nil, true
		}
		return override.Ranges, false
	}
	return c.Weekly[weekday], false
}

// DeliverySettings is the admin-owned delivery-area configuration.
type DeliverySettings struct {
	OriginLat        float64              `json:"origin_lat"`
	OriginLng        float64              `json:"origin_lng"`
	FeePerKm         decimal.Decimal      `json:"fee_per_km"`
	FreeRadiusMeters float64              `json:"free_radius_meters"`
	MaxRadiusKm      float64              `json:"max_radius_km"`
	Rounding         enums.RoundingPolicy `json:"rounding"`
}

// DefaultScheduleConfig mirrors the storefront's bootstrap schedule.
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		Mode: enums.OperatingModeImmediateOnly,
		Weekly: map[enums.Weekday][]string{
			enums.WeekdayMonday:    {"08:00-12:00", "14:00-18:00"},
			enums.WeekdayTuesday:   {"08:00-12:00", "14:00-18:00"},
			enums.WeekdayWednesday: {"08:00-12:00", "14:00-18:00"},
			enums.WeekdayThursday:  {"08:00-12:00", "14:00-18:00"},
			enums.WeekdayFriday:    {"08:00-12:00", "14:00-18:00"},
			enums.WeekdaySaturday:  {"08:00-12:00"},
			enums.WeekdaySunday:    {},
		},
		SpecialDates:          map[string]SpecialDateOverride{},
		MinDaysAhead:          1,
		MaxDaysAhead:          7,
		WindowDurationMinutes: 60,
	}
}
