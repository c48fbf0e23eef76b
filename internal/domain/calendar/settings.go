package calendar

import (
	"encoding/json"
	"fmt"
	"strings"

	"venueledger/internal/core/apperror"
)

// Settings is the raw venue settings row as stored by the settings owner.
type Settings struct {
	BusinessHoursStart string
	BusinessHoursEnd   string
	Timezone           string
	// OperatingDays is a JSON array of weekday codes (a legacy comma list is accepted).
	OperatingDays string
	// IndividualDayHours is a JSON object keyed by weekday code.
	IndividualDayHours string
	UseIndividualHours bool
}

// ParseOperatingDays decodes a serialized weekday list.
// Blank input is the empty set. Unknown codes are errors.
func ParseOperatingDays(raw string) (WeekdaySet, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	var codes []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &codes); err != nil {
			return 0, invalidConfig("operating days are not a JSON array", err).WithDetail("operatingDays", raw)
		}
	} else {
		codes = strings.Split(raw, ",")
	}

	var set WeekdaySet
	for _, code := range codes {
		if strings.TrimSpace(code) == "" {
			continue
		}
		wd, err := ParseWeekday(code)
		if err != nil {
			return 0, invalidConfig(err.Error(), err).WithDetail("operatingDays", raw)
		}
		set = set.With(wd)
	}
	return set, nil
}

// StringifyOperatingDays encodes a set as a JSON array in MON..SUN order.
// ParseOperatingDays(StringifyOperatingDays(s)) == s for every set.
func StringifyOperatingDays(set WeekdaySet) string {
	days := set.Days()
	codes := make([]string, len(days))
	for i, d := range days {
		codes[i] = d.String()
	}
	b, _ := json.Marshal(codes)
	return string(b)
}

type dayHoursRecord struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Enabled bool   `json:"enabled"`
}

// ParseIndividualHours decodes the per-weekday hours object, e.g.
// {"MON":{"start":"20:00","end":"02:00","enabled":true}}.
func ParseIndividualHours(raw string) (map[Weekday]DayHours, error) {
	raw = strings.TrimSpace(raw)
	out := make(map[Weekday]DayHours)
	if raw == "" {
		return out, nil
	}

	var records map[string]dayHoursRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, invalidConfig("individual day hours are not a JSON object", err)
	}

	for code, rec := range records {
		wd, err := ParseWeekday(code)
		if err != nil {
			return nil, invalidConfig(err.Error(), err).WithDetail("weekday", code)
		}
		start, err := ParseClock(rec.Start)
		if err != nil {
			return nil, invalidConfig(err.Error(), err).WithDetail("weekday", code)
		}
		end, err := ParseClock(rec.End)
		if err != nil {
			return nil, invalidConfig(err.Error(), err).WithDetail("weekday", code)
		}
		out[wd] = DayHours{Start: start, End: end, Enabled: rec.Enabled}
	}
	return out, nil
}

// StringifyIndividualHours encodes per-weekday hours keyed by weekday code.
func StringifyIndividualHours(hours map[Weekday]DayHours) string {
	records := make(map[string]dayHoursRecord, len(hours))
	for wd, h := range hours {
		if !wd.Valid() {
			continue
		}
		records[wd.String()] = dayHoursRecord{Start: h.Start.String(), End: h.End.String(), Enabled: h.Enabled}
	}
	b, _ := json.Marshal(records) // map keys are emitted sorted
	return string(b)
}

// EmptyOperatingDaysStored reports a GENERAL row whose operating-day list is
// present but names no day, such as "[]". ToConfig reads it the same as a
// missing list (every day operates), which may not be what the venue meant.
func (s Settings) EmptyOperatingDaysStored() bool {
	if s.UseIndividualHours || strings.TrimSpace(s.OperatingDays) == "" {
		return false
	}
	days, err := ParseOperatingDays(s.OperatingDays)
	return err == nil && days.IsEmpty()
}

// ToConfig validates the row and builds a Config.
func (s Settings) ToConfig() (*Config, error) {
	days, err := ParseOperatingDays(s.OperatingDays)
	if err != nil {
		return nil, err
	}

	general := Hours{Timezone: strings.TrimSpace(s.Timezone), OperatingDays: days}
	mode := ModeGeneral
	var perDay map[Weekday]DayHours

	if s.UseIndividualHours {
		mode = ModePerWeekday
		if perDay, err = ParseIndividualHours(s.IndividualDayHours); err != nil {
			return nil, err
		}
	} else {
		if general.Start, err = ParseClock(s.BusinessHoursStart); err != nil {
			return nil, invalidConfig(err.Error(), err).WithDetail("businessHoursStart", s.BusinessHoursStart)
		}
		if general.End, err = ParseClock(s.BusinessHoursEnd); err != nil {
			return nil, invalidConfig(err.Error(), err).WithDetail("businessHoursEnd", s.BusinessHoursEnd)
		}
	}

	return NewConfig(mode, general, perDay)
}

// FromConfig is the inverse of ToConfig.
func FromConfig(cfg *Config) Settings {
	if cfg == nil {
		return Settings{}
	}
	s := Settings{
		Timezone:           cfg.General.Timezone,
		OperatingDays:      StringifyOperatingDays(cfg.General.OperatingDays),
		UseIndividualHours: cfg.Mode == ModePerWeekday,
	}
	if s.UseIndividualHours {
		s.IndividualDayHours = StringifyIndividualHours(cfg.PerWeekday)
	} else {
		s.BusinessHoursStart = cfg.General.Start.String()
		s.BusinessHoursEnd = cfg.General.End.String()
	}
	return s
}

func invalidConfig(msg string, cause error) *apperror.AppError {
	return apperror.NewInvalidCalendarConfig(fmt.Sprintf("invalid calendar settings: %s", msg)).WithCause(cause)
}
