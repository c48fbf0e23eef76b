package finance

import (
	"venueledger/internal/core/types"
	"venueledger/internal/domain/calendar"
)

const (
	// DefaultSummaryDays is the chart range when the caller gives none.
	DefaultSummaryDays = 7
	// MaxSummaryDays caps the chart range.
	MaxSummaryDays = 366
)

// SeriesPoint is one day of the revenue chart.
type SeriesPoint struct {
	DateLabel   string      `json:"dateLabel"`
	PosAmount   types.Money `json:"posAmount"`
	TableAmount types.Money `json:"tableAmount"`
}

// BuildSalesSeries returns one point per calendar day in [from, to], zero
// seeded. Every event is placed on its own business day, so a business day
// that straddles midnight is neither split nor counted twice. Events whose
// business day is outside the range are dropped.
func BuildSalesSeries(
	from, to calendar.Date,
	cfg *calendar.Config,
	sales []SaleEvent,
	sessions []TableSessionEvent,
) []SeriesPoint {
	n := calendar.DaysBetween(from, to) + 1
	if n <= 0 {
		return []SeriesPoint{}
	}

	series := make([]SeriesPoint, n)
	for i := range series {
		series[i] = SeriesPoint{
			DateLabel:   from.AddDays(i).String(),
			PosAmount:   types.Zero(),
			TableAmount: types.Zero(),
		}
	}

	events, _ := RevenueAggregator{}.Normalize(sales, sessions)
	for _, e := range events {
		if !countsAsIncome(e) {
			continue
		}
		i := calendar.DaysBetween(from, calendar.AssignBusinessDay(e.Timestamp, cfg))
		if i < 0 || i >= n {
			continue
		}
		switch e.Kind {
		case KindSale:
			series[i].PosAmount = series[i].PosAmount.Add(e.Amount)
		case KindTableRent:
			series[i].TableAmount = series[i].TableAmount.Add(e.Amount)
		}
	}

	return series
}
