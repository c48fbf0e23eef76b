package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venueledger/internal/core/apperror"
	"venueledger/internal/domain/calendar"
	"venueledger/internal/domain/finance"
)

const company = "0190a6f0-0000-7000-8000-0000000000bb"

func TestGenerateReportRequest_ToDomain(t *testing.T) {
	t.Run("daily date", func(t *testing.T) {
		req, err := GenerateReportRequest{CompanyID: company, ReportType: "DAILY", Date: "2024-05-01"}.ToDomain()
		require.NoError(t, err)
		assert.Equal(t, finance.ReportDaily, req.ReportType)
		assert.Equal(t, calendar.NewDate(2024, time.May, 1), req.Date)
	})

	t.Run("custom instants", func(t *testing.T) {
		req, err := GenerateReportRequest{
			CompanyID:   company,
			ReportType:  "CUSTOM",
			PeriodStart: "2024-05-01T09:00:00Z",
			PeriodEnd:   "2024-05-01T23:00:00+02:00",
		}.ToDomain()
		require.NoError(t, err)
		require.NotNil(t, req.PeriodStart)
		require.NotNil(t, req.PeriodEnd)
		assert.Nil(t, req.StartDate)
		assert.True(t, req.PeriodEnd.Equal(time.Date(2024, 5, 1, 21, 0, 0, 0, time.UTC)))
	})

	t.Run("custom dates", func(t *testing.T) {
		req, err := GenerateReportRequest{
			CompanyID:   company,
			ReportType:  "CUSTOM",
			PeriodStart: "2024-05-01",
			PeriodEnd:   "2024-05-03",
		}.ToDomain()
		require.NoError(t, err)
		assert.Nil(t, req.PeriodStart)
		require.NotNil(t, req.EndDate)
		assert.Equal(t, calendar.NewDate(2024, time.May, 3), *req.EndDate)
	})

	rejects := []GenerateReportRequest{
		{CompanyID: "nope", ReportType: "DAILY", Date: "2024-05-01"},
		{CompanyID: company, ReportType: "DAILY", Date: "01/05/2024"},
		{CompanyID: company, ReportType: "CUSTOM", PeriodStart: "yesterday", PeriodEnd: "2024-05-03"},
		{CompanyID: company, ReportType: "CUSTOM", PeriodStart: "2024-05-01", PeriodEnd: "2024-05-03T00:00:00Z"},
	}
	for _, r := range rejects {
		_, err := r.ToDomain()
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "%+v", r)
	}
}

func TestListReportsRequest_ToFilter(t *testing.T) {
	filter, err := ListReportsRequest{CompanyID: company, ReportType: "CUSTOM", From: "2024-05-01", To: "2024-05-31", Limit: 1000}.ToFilter()
	require.NoError(t, err)
	require.NotNil(t, filter.ReportType)
	assert.Equal(t, finance.ReportCustom, *filter.ReportType)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *filter.From)
	assert.Equal(t, time.Date(2024, 5, 31, 23, 59, 59, 999_000_000, time.UTC), *filter.To)
	assert.Equal(t, finance.MaxListLimit, filter.Limit)

	filter, err = ListReportsRequest{CompanyID: company}.ToFilter()
	require.NoError(t, err)
	assert.Equal(t, finance.DefaultListLimit, filter.Limit)

	_, err = ListReportsRequest{CompanyID: company, From: "2024-05-02", To: "2024-05-01"}.ToFilter()
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTimeRange))

	_, err = ListReportsRequest{CompanyID: company, ReportType: "WEEKLY"}.ToFilter()
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
