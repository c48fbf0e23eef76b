package finance

import (
	"context"
	"time"

	"venueledger/internal/core/types"
	"venueledger/internal/domain/calendar"
	"venueledger/pkg/logger"
)

// ExpenseWindow returns the span expenses are read over: always whole
// calendar days in the venue timezone, regardless of opening hours.
// Expense timing is not assumed to follow business hours, so a DAILY
// report's expenses and income intentionally use different bounds.
func ExpenseWindow(scope IncomeScope) calendar.Window {
	cfg := scope.Calendar
	if scope.Type == ReportDaily {
		return calendar.CalendarDay(scope.Date, cfg)
	}
	loc := cfg.Location()
	return calendar.Window{
		Start: calendar.CalendarDayStart(calendar.DateOf(scope.Start.In(loc)), cfg),
		End:   calendar.CalendarDayEnd(calendar.DateOf(scope.End.In(loc)), cfg),
	}
}

// ExpenseAggregator sums purchases, maintenance and manual expenses.
type ExpenseAggregator struct{}

// Normalize turns source rows into expense events.
//
// Only PURCHASE movements are costs, valued at costPrice × quantity: resale
// items are inventory cost, everything else is internal use. Venue
// maintenance and MAINTENANCE manual entries both become maintenance.
// Manual categories outside the known set are logged and counted as OTHER.
func (ExpenseAggregator) Normalize(
	ctx context.Context,
	movements []StockMovementEvent,
	maintenance []MaintenanceEvent,
	expenses []ManualExpenseEvent,
) (events []FinancialEvent, skipped int) {
	events = make([]FinancialEvent, 0, len(movements)+len(maintenance)+len(expenses))

	for _, m := range movements {
		if m.Type != MovementPurchase {
			skipped++
			continue
		}
		kind := KindInternalUseCost
		switch m.ItemClassification {
		case ItemResale:
			kind = KindInventoryCost
		case ItemInternalUse:
		default:
			logger.Warn(ctx, "stock movement has unknown item classification, booking as internal use",
				"movement_id", m.ID, "classification", m.ItemClassification)
		}
		events = append(events, FinancialEvent{
			Kind:      kind,
			Timestamp: m.CreatedAt,
			Amount:    types.OrZero(m.CostPrice).Mul(types.OrZero(m.Quantity)),
			SourceID:  m.ID,
		})
	}

	for _, m := range maintenance {
		events = append(events, FinancialEvent{
			Kind:      KindMaintenance,
			Timestamp: m.MaintenanceAt,
			Amount:    types.OrZero(m.Cost),
			SourceID:  m.ID,
		})
	}

	for _, e := range expenses {
		category, ok := ParseExpenseCategory(e.Category)
		if !ok {
			logger.Warn(ctx, "manual expense has unknown category, booking as OTHER",
				"expense_id", e.ID, "category", e.Category)
			category = CategoryOther
		}
		events = append(events, FinancialEvent{
			Kind:      category.Kind(),
			Timestamp: e.ExpenseDate,
			Amount:    types.OrZero(e.Amount),
			SourceID:  e.ID,
		})
	}

	return events, skipped
}

// Aggregate sums expenses inside window, bucketed by calendar date.
func (a ExpenseAggregator) Aggregate(
	ctx context.Context,
	movements []StockMovementEvent,
	maintenance []MaintenanceEvent,
	expenses []ManualExpenseEvent,
	window calendar.Window,
	loc *time.Location,
) Aggregation {
	events, skipped := a.Normalize(ctx, movements, maintenance, expenses)

	b := newBucketer()
	b.skipped = skipped
	for _, e := range events {
		if !window.Contains(e.Timestamp) {
			b.skip()
			continue
		}
		b.add(calendar.DateOf(e.Timestamp.In(loc)), e.Kind, e.Amount)
	}
	return b.result()
}
