package finance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venueledger/internal/core/id"
	"venueledger/internal/domain/calendar"
)

func TestRevenueAggregator_SessionLinkedSaleCountsNothing(t *testing.T) {
	session := id.New()
	ts := at("2024-05-01T12:00:00Z")
	sales := []SaleEvent{
		{ID: id.New(), Amount: moneyPtr("12.00"), CreatedAt: ts, PaymentStatus: PaymentPaid, TableSessionID: &session},
	}

	agg := RevenueAggregator{}.Aggregate(sales, nil, DailyScope(calendar.NewDate(2024, 5, 1), nil))

	assertMoney(t, "0", agg.Totals.Get(KindSale))
	assert.Zero(t, agg.Counted)
	assert.Equal(t, 1, agg.Skipped)
}

func TestRevenueAggregator_Sessions(t *testing.T) {
	ended := at("2024-05-01T20:00:00Z")
	sessions := []TableSessionEvent{
		{ID: id.New(), TotalCost: moneyPtr("30.00"), EndedAt: &ended, Status: SessionCompleted},
		{ID: id.New(), TotalCost: moneyPtr("50.00"), EndedAt: &ended, Status: SessionCancelled},
		{ID: id.New(), TotalCost: moneyPtr("70.00"), Status: SessionActive},
		{ID: id.New(), TotalCost: nil, EndedAt: &ended, Status: SessionCompleted},
	}

	agg := RevenueAggregator{}.Aggregate(nil, sessions, DailyScope(calendar.NewDate(2024, 5, 1), nil))

	assertMoney(t, "30.00", agg.Totals.Get(KindTableRent))
	assert.Equal(t, 2, agg.Counted)
	assert.Equal(t, 2, agg.Skipped)
}

func TestRevenueAggregator_EachEventInOneBucket(t *testing.T) {
	cfg, err := calendar.Settings{BusinessHoursStart: "18:00", BusinessHoursEnd: "03:00"}.ToConfig()
	require.NoError(t, err)

	start, end := at("2024-05-01T00:00:00Z"), at("2024-05-03T23:59:59.999Z")
	scope, err := CustomScope(start, end, cfg)
	require.NoError(t, err)

	sales := []SaleEvent{
		{ID: id.New(), Amount: moneyPtr("1"), CreatedAt: at("2024-05-01T19:00:00Z"), PaymentStatus: PaymentPaid},
		{ID: id.New(), Amount: moneyPtr("2"), CreatedAt: at("2024-05-02T02:00:00Z"), PaymentStatus: PaymentPaid},
		{ID: id.New(), Amount: moneyPtr("4"), CreatedAt: at("2024-05-02T12:00:00Z"), PaymentStatus: PaymentPaid},
		{ID: id.New(), Amount: moneyPtr("8"), CreatedAt: at("2024-05-03T01:00:00Z"), PaymentStatus: PaymentPaid},
	}

	agg := RevenueAggregator{}.Aggregate(sales, nil, scope)

	require.Len(t, agg.Buckets, 2)
	assert.Equal(t, calendar.NewDate(2024, 5, 1), agg.Buckets[0].Date)
	assertMoney(t, "3", agg.Buckets[0].Totals.Get(KindSale))
	assert.Equal(t, calendar.NewDate(2024, 5, 2), agg.Buckets[1].Date)
	assertMoney(t, "12", agg.Buckets[1].Totals.Get(KindSale))
	assertMoney(t, "15", agg.Totals.Get(KindSale))
	assert.Equal(t, 4, agg.Counted)
}

func TestCustomScope_RejectsInvertedRange(t *testing.T) {
	_, err := CustomScope(at("2024-05-02T00:00:00Z"), at("2024-05-01T23:59:59Z"), nil)
	assert.Error(t, err)

	_, err = CustomScope(at("2024-05-02T00:00:00Z"), at("2024-05-02T00:00:00Z"), nil)
	assert.NoError(t, err, "single instant is a valid range")
}

func TestExpenseAggregator_ScenarioC(t *testing.T) {
	ts := at("2024-05-01T10:00:00Z")
	day := calendar.CalendarDay(calendar.NewDate(2024, 5, 1), nil)

	tests := []struct {
		name          string
		class         ItemClassification
		wantInventory string
		wantOther     string
	}{
		{"resale", ItemResale, "37.50", "0"},
		{"internal use", ItemInternalUse, "0", "37.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			movements := []StockMovementEvent{
				{ID: id.New(), CostPrice: moneyPtr("12.50"), Quantity: moneyPtr("3"), Type: MovementPurchase, CreatedAt: ts, ItemClassification: tt.class},
			}

			agg := ExpenseAggregator{}.Aggregate(context.Background(), movements, nil, nil, day, time.UTC)

			r := NewReport(id.New(), ReportDaily, day, "u", ts)
			r.ApplyExpenses(agg.Totals)
			assertMoney(t, tt.wantInventory, r.InventoryCost)
			assertMoney(t, tt.wantOther, r.OtherExpenses)
			assertMoney(t, "37.50", r.TotalExpense)
		})
	}
}

func TestExpenseAggregator_Categories(t *testing.T) {
	ts := at("2024-05-01T10:00:00Z")
	day := calendar.CalendarDay(calendar.NewDate(2024, 5, 1), nil)

	movements := []StockMovementEvent{
		{ID: id.New(), CostPrice: moneyPtr("5"), Quantity: moneyPtr("2"), Type: MovementSale, CreatedAt: ts, ItemClassification: ItemResale},
		{ID: id.New(), CostPrice: nil, Quantity: moneyPtr("2"), Type: MovementPurchase, CreatedAt: ts, ItemClassification: ItemResale},
	}
	maintenance := []MaintenanceEvent{
		{ID: id.New(), Cost: moneyPtr("100.00"), MaintenanceAt: ts},
		{ID: id.New(), Cost: moneyPtr("1.00"), MaintenanceAt: at("2024-05-02T00:00:00Z")},
	}
	expenses := []ManualExpenseEvent{
		{ID: id.New(), Amount: moneyPtr("20.00"), Category: "MAINTENANCE", ExpenseDate: ts},
		{ID: id.New(), Amount: moneyPtr("300.00"), Category: "STAFF", ExpenseDate: ts},
		{ID: id.New(), Amount: moneyPtr("40.00"), Category: "UTILITIES", ExpenseDate: ts},
		{ID: id.New(), Amount: moneyPtr("5.00"), Category: "MARKETING", ExpenseDate: ts},
		{ID: id.New(), Amount: moneyPtr("6.00"), Category: "BRIBES", ExpenseDate: ts},
		{ID: id.New(), Amount: nil, Category: "RENT", ExpenseDate: ts},
	}

	agg := ExpenseAggregator{}.Aggregate(context.Background(), movements, maintenance, expenses, day, time.UTC)

	r := NewReport(id.New(), ReportDaily, day, "u", ts)
	r.ApplyExpenses(agg.Totals)
	assertMoney(t, "0", r.InventoryCost)
	assertMoney(t, "120.00", r.MaintenanceCost, "venue maintenance and manual entries are summed")
	assertMoney(t, "300.00", r.StaffCost)
	assertMoney(t, "40.00", r.UtilityCost)
	assertMoney(t, "11.00", r.OtherExpenses, "unknown categories book as OTHER")
	assertMoney(t, "471.00", r.TotalExpense)
	assert.Equal(t, 2, agg.Skipped, "non-purchase movement and out-of-window maintenance")
}

func TestExpenseWindow_AlwaysCalendarDays(t *testing.T) {
	cfg, err := calendar.Settings{BusinessHoursStart: "20:00", BusinessHoursEnd: "02:00", Timezone: "Europe/Berlin"}.ToConfig()
	require.NoError(t, err)
	d := calendar.NewDate(2024, 5, 1)

	w := ExpenseWindow(DailyScope(d, cfg))
	assert.Equal(t, calendar.CalendarDay(d, cfg), w)

	custom, err := CustomScope(at("2024-05-01T15:00:00Z"), at("2024-05-03T03:00:00Z"), cfg)
	require.NoError(t, err)
	w = ExpenseWindow(custom)
	assert.Equal(t, at("2024-04-30T22:00:00Z"), w.Start.UTC())
	assert.Equal(t, at("2024-05-03T21:59:59.999Z"), w.End.UTC())
}

func TestFinancialReport_AddExpenseKeepsIdentities(t *testing.T) {
	r := NewReport(id.New(), ReportDaily, calendar.Window{}, "u", time.Now())
	r.SalesIncome = money("50.00")
	r.Recalculate()

	r.AddExpense(KindMaintenance, money("15.00"))
	r.AddExpense(KindInternalUseCost, money("2.50"))
	r.RoundForStorage()

	assertMoney(t, "15.00", r.MaintenanceCost)
	assertMoney(t, "2.50", r.OtherExpenses)
	assertMoney(t, "17.50", r.TotalExpense)
	assertMoney(t, "32.50", r.NetProfit)
	assert.True(t, r.Balanced())

	r.NetProfit = money("0")
	assert.False(t, r.Balanced())
}

func TestBuildSalesSeries(t *testing.T) {
	cfg, err := calendar.Settings{
		UseIndividualHours: true,
		IndividualDayHours: `{"MON":{"start":"20:00","end":"02:00","enabled":true}}`,
	}.ToConfig()
	require.NoError(t, err)

	session := id.New()
	sales := []SaleEvent{
		{ID: id.New(), Amount: moneyPtr("10"), CreatedAt: at("2024-05-06T21:00:00Z"), PaymentStatus: PaymentPaid},
		{ID: id.New(), Amount: moneyPtr("5"), CreatedAt: at("2024-05-07T01:30:00Z"), PaymentStatus: PaymentPaid},
		{ID: id.New(), Amount: moneyPtr("3"), CreatedAt: at("2024-05-07T01:40:00Z"), PaymentStatus: PaymentPaid, TableSessionID: &session},
		{ID: id.New(), Amount: moneyPtr("9"), CreatedAt: at("2024-05-07T12:00:00Z"), PaymentStatus: PaymentRefunded},
		{ID: id.New(), Amount: moneyPtr("1"), CreatedAt: at("2024-05-05T23:00:00Z"), PaymentStatus: PaymentPaid},
	}
	sessions := []TableSessionEvent{
		{ID: session, TotalCost: moneyPtr("40"), EndedAt: timePtr("2024-05-07T01:50:00Z"), Status: SessionCompleted},
	}

	series := BuildSalesSeries(calendar.NewDate(2024, 5, 6), calendar.NewDate(2024, 5, 8), cfg, sales, sessions)

	require.Len(t, series, 3)
	assert.Equal(t, "2024-05-06", series[0].DateLabel)
	assertMoney(t, "15", series[0].PosAmount)
	assertMoney(t, "40", series[0].TableAmount)
	assert.Equal(t, "2024-05-07", series[1].DateLabel)
	assertMoney(t, "0", series[1].PosAmount)
	assertMoney(t, "0", series[2].TableAmount)

	assert.Empty(t, BuildSalesSeries(calendar.NewDate(2024, 5, 8), calendar.NewDate(2024, 5, 6), cfg, sales, sessions))
}

func TestSalesSummary_DefaultsAndLimits(t *testing.T) {
	company := id.New()
	f := newFixture(at("2024-05-10T15:00:00Z"))
	f.events.sales = []SaleEvent{
		{ID: id.New(), Amount: moneyPtr("2.50"), CreatedAt: at("2024-05-04T10:00:00Z"), PaymentStatus: PaymentPaid},
		{ID: id.New(), Amount: moneyPtr("1.00"), CreatedAt: at("2024-05-03T23:59:59Z"), PaymentStatus: PaymentPaid},
	}
	ctx := memberCtx(company)

	series, err := f.svc.SalesSummary(ctx, SalesSummaryRequest{CompanyID: company})
	require.NoError(t, err)
	require.Len(t, series, DefaultSummaryDays)
	assert.Equal(t, "2024-05-04", series[0].DateLabel)
	assert.Equal(t, "2024-05-10", series[6].DateLabel)
	assertMoney(t, "2.50", series[0].PosAmount)

	_, err = f.svc.SalesSummary(ctx, SalesSummaryRequest{
		CompanyID: company, From: calendar.NewDate(2023, 1, 1), To: calendar.NewDate(2024, 5, 1),
	})
	assert.Error(t, err)

	_, err = f.svc.SalesSummary(ctx, SalesSummaryRequest{
		CompanyID: company, From: calendar.NewDate(2024, 5, 2), To: calendar.NewDate(2024, 5, 1),
	})
	assert.Error(t, err)
}
