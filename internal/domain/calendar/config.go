// Package calendar resolves timestamps to venue business days.
//
// A business day is the opening-hours window anchored to one calendar date.
// When closing time is earlier than opening time the window runs into the
// next calendar date. Everything here is pure: the venue configuration is
// passed to every call and never cached.
package calendar

import (
	"fmt"
	"time"

	"venueledger/internal/core/apperror"
)

// Mode selects how opening hours are looked up.
type Mode string

const (
	// ModeGeneral applies one set of hours to every operating day.
	ModeGeneral Mode = "GENERAL"
	// ModePerWeekday uses individual hours per day of week.
	ModePerWeekday Mode = "PER_WEEKDAY"
)

// ClockTime is a wall-clock time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock parses a 24-hour "HH:MM" string.
func ParseClock(s string) (ClockTime, error) {
	if len(s) != 5 || s[2] != ':' {
		return ClockTime{}, fmt.Errorf("time of day %q: want HH:MM", s)
	}
	h, okH := twoDigits(s[0:2])
	m, okM := twoDigits(s[3:5])
	if !okH || !okM || h > 23 || m > 59 {
		return ClockTime{}, fmt.Errorf("time of day %q: want HH:MM", s)
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

// MustClock is ParseClock for literals.
func MustClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// MarshalText implements encoding.TextMarshaler.
func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Minutes returns minutes since midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Hours is the GENERAL opening-hours policy. An empty OperatingDays set means
// the venue operates every day.
type Hours struct {
	Start         ClockTime
	End           ClockTime
	Timezone      string
	OperatingDays WeekdaySet
}

// DayHours is one weekday's entry in PER_WEEKDAY mode.
type DayHours struct {
	Start   ClockTime `json:"start"`
	End     ClockTime `json:"end"`
	Enabled bool      `json:"enabled"`
}

// Config is a venue's business-calendar policy. Build it with NewConfig or
// Settings.ToConfig so the timezone is resolved once.
type Config struct {
	Mode       Mode
	General    Hours
	PerWeekday map[Weekday]DayHours

	loc *time.Location
}

// NewConfig validates the policy and loads its timezone.
// PerWeekday is copied; the caller may reuse the map.
func NewConfig(mode Mode, general Hours, perWeekday map[Weekday]DayHours) (*Config, error) {
	switch mode {
	case ModeGeneral, ModePerWeekday:
	default:
		return nil, apperror.NewInvalidCalendarConfig(fmt.Sprintf("unknown calendar mode %q", mode)).
			WithDetail("mode", string(mode))
	}

	loc := time.UTC
	if general.Timezone != "" {
		l, err := time.LoadLocation(general.Timezone)
		if err != nil {
			return nil, apperror.NewInvalidCalendarConfig("unknown timezone").
				WithDetail("timezone", general.Timezone).
				WithCause(err)
		}
		loc = l
	}

	days := make(map[Weekday]DayHours, len(perWeekday))
	for wd, h := range perWeekday {
		if !wd.Valid() {
			return nil, apperror.NewInvalidCalendarConfig(fmt.Sprintf("unknown weekday %d", uint8(wd)))
		}
		days[wd] = h
	}

	return &Config{
		Mode:       mode,
		General:    general,
		PerWeekday: days,
		loc:        loc,
	}, nil
}

// Location returns the venue timezone. A nil config is UTC.
func (c *Config) Location() *time.Location {
	if c == nil || c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// hoursFor returns the opening hours anchored on a weekday, or ok=false when
// the day has no business hours and falls back to calendar-day bucketing.
func (c *Config) hoursFor(wd Weekday) (start, end ClockTime, ok bool) {
	if c == nil {
		return ClockTime{}, ClockTime{}, false
	}
	switch c.Mode {
	case ModePerWeekday:
		h, found := c.PerWeekday[wd]
		if !found || !h.Enabled {
			return ClockTime{}, ClockTime{}, false
		}
		return h.Start, h.End, true
	case ModeGeneral:
		if !c.General.OperatingDays.IsEmpty() && !c.General.OperatingDays.Has(wd) {
			return ClockTime{}, ClockTime{}, false
		}
		return c.General.Start, c.General.End, true
	default:
		return ClockTime{}, ClockTime{}, false
	}
}

func twoDigits(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}
