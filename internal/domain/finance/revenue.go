package finance

import (
	"time"

	"venueledger/internal/core/apperror"
	"venueledger/internal/core/types"
	"venueledger/internal/domain/calendar"
)

// IncomeScope decides which income events a report counts and which
// business day each one lands on.
type IncomeScope struct {
	Type     ReportType
	Calendar *calendar.Config

	// Date anchors a DAILY scope.
	Date calendar.Date
	// Start and End bound a CUSTOM scope, both inclusive.
	Start time.Time
	End   time.Time
}

// DailyScope counts exactly the events whose own business day is date.
func DailyScope(date calendar.Date, cfg *calendar.Config) IncomeScope {
	return IncomeScope{Type: ReportDaily, Calendar: cfg, Date: date}
}

// CustomScope counts events with timestamps in [start, end].
func CustomScope(start, end time.Time, cfg *calendar.Config) (IncomeScope, error) {
	if end.Before(start) {
		return IncomeScope{}, apperror.NewInvalidTimeRange(start, end)
	}
	return IncomeScope{Type: ReportCustom, Calendar: cfg, Start: start, End: end}, nil
}

// Period is the span recorded on the report. For DAILY it is the opening
// hours window; Place decides which events count.
func (s IncomeScope) Period() calendar.Window {
	if s.Type == ReportDaily {
		return calendar.ResolveDay(s.Date, s.Calendar)
	}
	return calendar.Window{Start: s.Start, End: s.End}
}

// FetchWindow is the range income sources must be read over. For DAILY it is
// wider than the business day so that every event that can resolve to Date
// is seen; Place does the exact filtering.
func (s IncomeScope) FetchWindow() calendar.Window {
	if s.Type == ReportDaily {
		return calendar.FetchWindow(s.Date, s.Calendar)
	}
	return calendar.Window{Start: s.Start, End: s.End}
}

// Place returns the business day ts is bucketed on, or ok=false when the
// scope does not count it.
func (s IncomeScope) Place(ts time.Time) (calendar.Date, bool) {
	day := calendar.AssignBusinessDay(ts, s.Calendar)
	if s.Type == ReportDaily {
		return day, day == s.Date
	}
	if ts.Before(s.Start) || ts.After(s.End) {
		return calendar.Date{}, false
	}
	return day, true
}

// RevenueAggregator sums point-of-sale and table-rental income.
type RevenueAggregator struct{}

// Normalize turns source rows into income events.
//
// Only PAID sales and COMPLETED sessions with an end time become events.
// Sessions are timed by their end. Sales folded into a session keep their
// LinkedSessionID and are ignored by Aggregate. Null amounts are zero.
func (RevenueAggregator) Normalize(sales []SaleEvent, sessions []TableSessionEvent) (events []FinancialEvent, skipped int) {
	events = make([]FinancialEvent, 0, len(sales)+len(sessions))

	for _, sale := range sales {
		if sale.PaymentStatus != PaymentPaid {
			skipped++
			continue
		}
		events = append(events, FinancialEvent{
			Kind:            KindSale,
			Timestamp:       sale.CreatedAt,
			Amount:          types.OrZero(sale.Amount),
			SourceID:        sale.ID,
			LinkedSessionID: sale.TableSessionID,
		})
	}

	for _, session := range sessions {
		if session.Status != SessionCompleted || session.EndedAt == nil {
			skipped++
			continue
		}
		events = append(events, FinancialEvent{
			Kind:      KindTableRent,
			Timestamp: *session.EndedAt,
			Amount:    types.OrZero(session.TotalCost),
			SourceID:  session.ID,
		})
	}

	return events, skipped
}

// countsAsIncome is false for session-linked sales: their value is already
// part of the session's total cost.
func countsAsIncome(e FinancialEvent) bool {
	return !(e.Kind == KindSale && e.LinkedSessionID != nil)
}

// Aggregate sums income per category and per business day. Each event lands
// in exactly one category and at most one bucket.
func (a RevenueAggregator) Aggregate(sales []SaleEvent, sessions []TableSessionEvent, scope IncomeScope) Aggregation {
	events, skipped := a.Normalize(sales, sessions)

	b := newBucketer()
	b.skipped = skipped
	for _, e := range events {
		if !countsAsIncome(e) {
			b.skip()
			continue
		}
		day, ok := scope.Place(e.Timestamp)
		if !ok {
			b.skip()
			continue
		}
		b.add(day, e.Kind, e.Amount)
	}
	return b.result()
}
