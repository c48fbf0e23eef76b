package calendar

import (
	"errors"
	"time"
)

// ErrConfigurationMissing is returned by settings stores when a company has no
// calendar configuration. Callers log it and continue with a nil *Config,
// which buckets by plain calendar day.
var ErrConfigurationMissing = errors.New("business calendar configuration missing")

// closingSlack keeps the closing second inclusive up to its last millisecond.
const closingSlack = 999 * time.Millisecond

// Window is an inclusive [Start, End] span.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t is inside the window, both ends inclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// CalendarDayStart is date 00:00:00.000 in the venue timezone.
func CalendarDayStart(date Date, cfg *Config) time.Time {
	return date.At(0, 0, 0, 0, cfg.Location())
}

// CalendarDayEnd is date 23:59:59.999 in the venue timezone.
func CalendarDayEnd(date Date, cfg *Config) time.Time {
	return date.AddDays(1).At(0, 0, 0, 0, cfg.Location()).Add(-time.Millisecond)
}

// CalendarDay returns the plain calendar-day window of date.
func CalendarDay(date Date, cfg *Config) Window {
	return Window{Start: CalendarDayStart(date, cfg), End: CalendarDayEnd(date, cfg)}
}

// BusinessWindow returns the opening-hours window anchored on date.
// ok is false when the date has no business hours (nil config, disabled
// weekday, non-operating day).
func BusinessWindow(date Date, cfg *Config) (w Window, ok bool) {
	start, end, ok := cfg.hoursFor(date.Weekday())
	if !ok {
		return Window{}, false
	}
	loc := cfg.Location()

	endDate := date
	if end.Minutes() < start.Minutes() {
		endDate = date.AddDays(1)
	}
	return Window{
		Start: date.At(start.Hour, start.Minute, 0, 0, loc),
		End:   endDate.At(end.Hour, end.Minute, 0, 0, loc).Add(closingSlack),
	}, true
}

// ResolveDay returns the business-day window of date, or its calendar day
// when the date has no business hours.
func ResolveDay(date Date, cfg *Config) Window {
	if w, ok := BusinessWindow(date, cfg); ok {
		return w
	}
	return CalendarDay(date, cfg)
}

// ResolveDayStart returns when the business day anchored on date opens.
func ResolveDayStart(date Date, cfg *Config) time.Time {
	return ResolveDay(date, cfg).Start
}

// ResolveDayEnd returns the last inclusive instant of the business day anchored on date.
func ResolveDayEnd(date Date, cfg *Config) time.Time {
	return ResolveDay(date, cfg).End
}

// AssignBusinessDay returns the calendar date owning ts.
//
// The previous date's window is checked first so the overnight tail of a
// midnight-crossing day, and any instant shared by two windows, goes to the
// earlier business day. Instants outside every window keep their calendar date.
func AssignBusinessDay(ts time.Time, cfg *Config) Date {
	local := ts.In(cfg.Location())
	date := DateOf(local)

	prev := date.AddDays(-1)
	if w, ok := BusinessWindow(prev, cfg); ok && w.Contains(ts) {
		return prev
	}
	if w, ok := BusinessWindow(date, cfg); ok && w.Contains(ts) {
		return date
	}
	return date
}

// FetchWindow is the smallest span containing every instant that can be
// assigned to date: its calendar day plus any overnight tail.
func FetchWindow(date Date, cfg *Config) Window {
	w := CalendarDay(date, cfg)
	if end := ResolveDayEnd(date, cfg); end.After(w.End) {
		w.End = end
	}
	return w
}
