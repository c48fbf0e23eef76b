// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strings"
	"time"

	"venueledger/internal/core/apperror"
	"venueledger/internal/core/id"
	"venueledger/internal/domain/calendar"
)

// --- List Response ---

// ListResponse wraps one page of results.
type ListResponse[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
}

// --- Parsing helpers ---

// ParseCompanyID validates a company UUID.
func ParseCompanyID(raw string) (id.ID, error) {
	companyID, err := id.Parse(strings.TrimSpace(raw))
	if err != nil || id.IsNil(companyID) {
		return id.ID{}, apperror.NewValidation("invalid companyId").WithDetail("companyId", raw)
	}
	return companyID, nil
}

// ParseOptionalDate parses YYYY-MM-DD; blank gives the zero Date.
func ParseOptionalDate(field, raw string) (calendar.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return calendar.Date{}, nil
	}
	d, err := calendar.ParseDate(raw)
	if err != nil {
		return calendar.Date{}, apperror.NewValidation("invalid " + field + ", expected YYYY-MM-DD").
			WithDetail(field, raw)
	}
	return d, nil
}

// instantOrDate parses either a bare YYYY-MM-DD date or an RFC 3339 instant.
func instantOrDate(field, raw string) (*time.Time, *calendar.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil, nil
	}
	if len(raw) == len(calendar.DateLayout) {
		d, err := ParseOptionalDate(field, raw)
		if err != nil {
			return nil, nil, err
		}
		return nil, &d, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, nil, apperror.NewValidation("invalid " + field + ", expected RFC 3339 or YYYY-MM-DD").
			WithDetail(field, raw)
	}
	return &t, nil, nil
}
