package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a day of week, Monday first.
type Weekday uint8

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// AllWeekdays lists every weekday in canonical order.
var AllWeekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayCodes = [...]string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

// String returns the three-letter upper-case code.
func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", uint8(w))
	}
	return weekdayCodes[w]
}

// Valid reports whether w is one of MON..SUN.
func (w Weekday) Valid() bool {
	return w <= Sunday
}

// ParseWeekday parses a weekday code. Codes are case-insensitive and trimmed;
// anything outside MON..SUN is an error.
func ParseWeekday(code string) (Weekday, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	for i, known := range weekdayCodes {
		if c == known {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday code %q", code)
}

// WeekdayOf converts a time.Weekday.
func WeekdayOf(wd time.Weekday) Weekday {
	if wd == time.Sunday {
		return Sunday
	}
	return Weekday(wd - 1)
}

// MarshalText implements encoding.TextMarshaler.
func (w Weekday) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("invalid weekday %d", uint8(w))
	}
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Weekday) UnmarshalText(b []byte) error {
	parsed, err := ParseWeekday(string(b))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// WeekdaySet is a bit set of weekdays. The zero value is empty.
type WeekdaySet uint8

// NewWeekdaySet builds a set from the given days.
func NewWeekdaySet(days ...Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

// EveryDay contains MON..SUN.
const EveryDay WeekdaySet = 1<<7 - 1

// With returns s plus d.
func (s WeekdaySet) With(d Weekday) WeekdaySet {
	if !d.Valid() {
		return s
	}
	return s | 1<<d
}

// Has reports membership.
func (s WeekdaySet) Has(d Weekday) bool {
	return d.Valid() && s&(1<<d) != 0
}

func (s WeekdaySet) IsEmpty() bool { return s&EveryDay == 0 }

// Days lists members in canonical MON..SUN order.
func (s WeekdaySet) Days() []Weekday {
	days := make([]Weekday, 0, 7)
	for _, d := range AllWeekdays {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}
