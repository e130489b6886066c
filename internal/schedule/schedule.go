package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gabrielmoneiro/mariadoce/pkg/enums"
	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
	"github.com/gabrielmoneiro/mariadoce/pkg/types"
)

const (
	dateKeyLayout = "2006-01-02"
	clockLayout   = "15:04"
)

var rangePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d-([01]\d|2[0-3]):[0-5]\d$`)

// Window is one bookable slot carved out of an operating range.
type Window struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Label renders the window as the "HH:MM-HH:MM" selection string.
func (w Window) Label() string {
	return w.Start + "-" + w.End
}

// Decision reports what kinds of orders checkout may accept right now.
type Decision struct {
	AllowImmediate     bool `json:"allow_immediate"`
	AllowScheduled     bool `json:"allow_scheduled"`
	SchedulingRequired bool `json:"scheduling_required"`
}

// Closed reports that neither immediate nor scheduled orders are possible.
func (d Decision) Closed() bool {
	return !d.AllowImmediate && !d.AllowScheduled
}

// DateKey formats a time as the calendar key used throughout the schedule.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// IsWithinOperatingHours reports whether the store is open at the given
// instant. A special-date override replaces the weekly default outright:
// closed overrides shut the whole day, open overrides use only their own
// ranges. Range bounds are inclusive on both ends.
func IsWithinOperatingHours(now time.Time, cfg types.ScheduleConfig) bool {
	ranges, closed := cfg.RangesFor(DateKey(now), enums.WeekdayFromTime(now))
	if closed {
		return false
	}

	clock := now.Format(clockLayout)
	for _, r := range ranges {
		start, end, err := splitRange(r)
		if err != nil {
			continue
		}
		if clock >= start && clock <= end {
			return true
		}
	}
	return false
}

// AvailableDates lists every bookable calendar date between today+min and
// today+max inclusive, ascending. A date qualifies when its override is not
// closed, or absent an override, when its weekday has at least one range.
func AvailableDates(cfg types.ScheduleConfig, today time.Time) []string {
	if cfg.MaxDaysAhead < cfg.MinDaysAhead {
		return nil
	}

	dates := make([]string, 0, cfg.MaxDaysAhead-cfg.MinDaysAhead+1)
	for offset := cfg.MinDaysAhead; offset <= cfg.MaxDaysAhead; offset++ {
		day := today.AddDate(0, 0, offset)
		key := DateKey(day)
		if override, ok := cfg.SpecialDates[key]; ok {
			if override.Mode != enums.OperatingModeClosed {
				dates = append(dates, key)
			}
			continue
		}
		if len(cfg.Weekly[enums.WeekdayFromTime(day)]) > 0 {
			dates = append(dates, key)
		}
	}
	return dates
}

// TimeWindows expands the operating ranges of a date into fixed-duration
// bookable windows. Windows step by the configured duration from each range
// start; a trailing slice shorter than the duration is dropped. Ranges are
// processed in configured order, each emitting ascending windows.
func TimeWindows(cfg types.ScheduleConfig, date time.Time) []Window {
	if cfg.WindowDurationMinutes <= 0 {
		return nil
	}

	key := DateKey(date)
	ranges, closed := cfg.RangesFor(key, enums.WeekdayFromTime(date))
	if closed {
		return nil
	}

	var windows []Window
	for _, r := range ranges {
		start, end, err := splitRange(r)
		if err != nil {
			continue
		}
		startMin, err := clockToMinutes(start)
		if err != nil {
			continue
		}
		endMin, err := clockToMinutes(end)
		if err != nil {
			continue
		}
		for i := startMin; i+cfg.WindowDurationMinutes <= endMin; i += cfg.WindowDurationMinutes {
			windows = append(windows, Window{
				Date:  key,
				Start: minutesToClock(i),
				End:   minutesToClock(i + cfg.WindowDurationMinutes),
			})
		}
	}
	return windows
}

// Decide resolves the checkout eligibility for the current instant.
//
//	immediate_only: immediate while open, scheduling never offered.
//	scheduled_only: scheduling always, immediate never.
//	hybrid:         immediate while open, scheduling (mandatory) while closed.
func Decide(now time.Time, cfg types.ScheduleConfig) Decision {
	switch cfg.Mode {
	case enums.OperatingModeImmediateOnly:
		return Decision{AllowImmediate: IsWithinOperatingHours(now, cfg)}
	case enums.OperatingModeScheduledOnly:
		return Decision{AllowScheduled: true, SchedulingRequired: true}
	case enums.OperatingModeHybrid:
		open := IsWithinOperatingHours(now, cfg)
		return Decision{
			AllowImmediate:     open,
			AllowScheduled:     !open,
			SchedulingRequired: !open,
		}
	default:
		return Decision{}
	}
}

// ValidateRange checks one "HH:MM-HH:MM" string: zero-padded 24h clock values
// with start strictly before end. Midnight-crossing ranges are rejected; the
// supported representation splits them at midnight ("22:00-23:59" plus
// "00:00-02:00").
func ValidateRange(r string) error {
	if !rangePattern.MatchString(r) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("time range %q must be HH:MM-HH:MM", r))
	}
	start, end, _ := splitRange(r)
	if start >= end {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("time range %q must start before it ends", r))
	}
	return nil
}

// ValidateConfig checks every invariant an admin write must satisfy.
func ValidateConfig(cfg types.ScheduleConfig) error {
	if !cfg.Mode.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown operating mode %q", cfg.Mode))
	}
	if cfg.MinDaysAhead < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "min days ahead cannot be negative")
	}
	if cfg.MaxDaysAhead < cfg.MinDaysAhead {
		return pkgerrors.New(pkgerrors.CodeValidation, "max days ahead must be >= min days ahead")
	}
	if cfg.WindowDurationMinutes <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "window duration must be positive")
	}

	for weekday, ranges := range cfg.Weekly {
		if !weekday.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown weekday %q", weekday))
		}
		for _, r := range ranges {
			if err := ValidateRange(r); err != nil {
				return err
			}
		}
	}

	for dateKey, override := range cfg.SpecialDates {
		if _, err := time.Parse(dateKeyLayout, dateKey); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("special date %q must be YYYY-MM-DD", dateKey))
		}
		if !override.Mode.IsValidOverride() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("special date %s has unknown mode %q", dateKey, override.Mode))
		}
		if override.Mode == enums.OperatingModeClosed {
			continue
		}
		for _, r := range override.Ranges {
			if err := ValidateRange(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WithinHorizon reports whether dateKey falls inside the booking horizon,
// between today+MinDaysAhead and today+MaxDaysAhead inclusive.
func WithinHorizon(cfg types.ScheduleConfig, dateKey string, today time.Time) bool {
	for offset := cfg.MinDaysAhead; offset <= cfg.MaxDaysAhead; offset++ {
		if DateKey(today.AddDate(0, 0, offset)) == dateKey {
			return true
		}
	}
	return false
}

// MatchesWindow reports whether the selection corresponds to a window the
// config can actually generate for that date.
func MatchesWindow(cfg types.ScheduleConfig, dateKey, label string) bool {
	date, err := time.Parse(dateKeyLayout, dateKey)
	if err != nil {
		return false
	}
	for _, w := range TimeWindows(cfg, date) {
		if w.Label() == label {
			return true
		}
	}
	return false
}

func splitRange(r string) (string, string, error) {
	parts := strings.SplitN(r, "-", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed range %q", r)
	}
	return parts[0], parts[1], nil
}

func clockToMinutes(clock string) (int, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed clock %q", clock)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	return hours*60 + minutes, nil
}

func minutesToClock(total int) string {
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
