package enums

import (
	"fmt"
	"time"
)

// Weekday keys the weekly operating schedule.
type Weekday string

const (
	WeekdayMonday    Weekday = "monday"
	WeekdayTuesday   Weekday = "tuesday"
	WeekdayWednesday Weekday = "wednesday"
	WeekdayThursday  Weekday = "thursday"
	WeekdayFriday    Weekday = "friday"
	WeekdaySaturday  Weekday = "saturday"
	WeekdaySunday    Weekday = "sunday"
)

var validWeekdays = []Weekday{
	WeekdayMonday,
	WeekdayTuesday,
	WeekdayWednesday,
	WeekdayThursday,
	WeekdayFriday,
	WeekdaySaturday,
	WeekdaySunday,
}

var weekdayByTime = map[time.Weekday]Weekday{
	time.Monday:    WeekdayMonday,
	time.Tuesday:   WeekdayTuesday,
	time.Wednesday: WeekdayWednesday,
	time.Thursday:  WeekdayThursday,
	time.Friday:    WeekdayFriday,
	time.Saturday:  WeekdaySaturday,
	time.Sunday:    WeekdaySunday,
}

// String implements fmt.Stringer.
func (w Weekday) String() string {
	return string(w)
}

// IsValid reports whether the value is a known Weekday.
func (w Weekday) IsValid() bool {
	for _, candidate := range validWeekdays {
		if candidate == w {
			return true
		}
	}
	return false
}

// Weekdays returns all weekday keys in Monday-first order.
func Weekdays() []Weekday {
	out := make([]Weekday, len(validWeekdays))
	copy(out, validWeekdays)
	return out
}

// WeekdayFromTime maps a time.Time to the schedule key for its weekday.
func WeekdayFromTime(t time.Time) Weekday {
	return weekdayByTime[t.Weekday()]
}

// ParseWeekday converts raw input into a Weekday.
func ParseWeekday(value string) (Weekday, error) {
	for _, candidate := range validWeekdays {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid weekday %q", value)
}
