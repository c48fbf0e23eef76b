// Package finance aggregates venue money events into financial reports and
// revenue chart series.
package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"venueledger/internal/core/apperror"
	appctx "venueledger/internal/core/context"
	"venueledger/internal/core/id"
	"venueledger/internal/core/security"
	"venueledger/internal/core/tx"
	"venueledger/internal/core/types"
	"venueledger/internal/domain/calendar"
	"venueledger/pkg/logger"
)

var tracer = otel.Tracer("venueledger/finance")

// Audit vocabulary for sys_audit rows written by this package.
const (
	AuditEntityReport   = "financial_report"
	AuditActionGenerate = "generate"
	AuditActionExpense  = "post_expense"
)

// Service builds and stores financial reports.
type Service struct {
	settings SettingsRepository
	events   EventRepository
	reports  ReportRepository
	txm      tx.Manager
	locker   tx.Locker
	audit    AuditLogger

	revenue RevenueAggregator
	expense ExpenseAggregator
	now     func() time.Time
}

// NewService creates a new finance service.
func NewService(
	settings SettingsRepository,
	events EventRepository,
	reports ReportRepository,
	txm tx.Manager,
	locker tx.Locker,
	audit AuditLogger,
) *Service {
	return &Service{
		settings: settings,
		events:   events,
		reports:  reports,
		txm:      txm,
		locker:   locker,
		audit:    audit,
		now:      time.Now,
	}
}

// GenerateRequest asks for a fresh report.
//
// DAILY uses Date. CUSTOM uses either PeriodStart/PeriodEnd as raw
// inclusive bounds, or StartDate/EndDate which widen to whole calendar days.
type GenerateRequest struct {
	CompanyID   id.ID
	ReportType  ReportType
	Date        calendar.Date
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	StartDate   *calendar.Date
	EndDate     *calendar.Date
}

// Generate aggregates every source over the requested period and inserts a
// new report row. Existing rows are never read or changed.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*FinancialReport, error) {
	ctx, span := tracer.Start(ctx, "finance.Generate", trace.WithAttributes(
		attribute.String("company.id", req.CompanyID.String()),
		attribute.String("report.type", string(req.ReportType)),
	))
	defer span.End()
	ctx = appctx.WithCompany(ctx, req.CompanyID.String())

	scope := security.GetScope(ctx)
	if err := scope.RequireCompany(req.CompanyID); err != nil {
		return nil, err
	}
	if !req.ReportType.Valid() {
		return nil, apperror.NewValidation("reportType must be DAILY or CUSTOM").
			WithDetail("reportType", string(req.ReportType))
	}

	cfg, err := s.LoadCalendar(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}

	income, err := s.incomeScope(req, cfg)
	if err != nil {
		return nil, err
	}
	expenseWindow := ExpenseWindow(income)

	src, err := s.fetchSources(ctx, req.CompanyID, income.FetchWindow(), expenseWindow)
	if err != nil {
		return nil, err
	}

	revenue := s.revenue.Aggregate(src.sales, src.sessions, income)
	expenses := s.expense.Aggregate(ctx, src.movements, src.maintenance, src.expenses, expenseWindow, cfg.Location())

	report := NewReport(req.CompanyID, req.ReportType, income.Period(), scope.UserID, s.now())
	report.ApplyIncome(revenue.Totals)
	report.ApplyExpenses(expenses.Totals)
	report.RoundForStorage()

	lockKey := fmt.Sprintf("finance:generate:%s:%s:%d:%d", req.CompanyID, req.ReportType,
		report.PeriodStart.UnixMilli(), report.PeriodEnd.UnixMilli())

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.locker.LockKey(ctx, lockKey); err != nil {
			return err
		}
		if err := s.reports.Create(ctx, report); err != nil {
			return err
		}
		return s.audit.LogChange(ctx, AuditEntityReport, report.ID, AuditActionGenerate, map[string]any{
			"report":        report,
			"income":        revenue,
			"expenses":      expenses,
			"incomeWindow":  income.FetchWindow(),
			"expenseWindow": expenseWindow,
		})
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	logger.Info(ctx, "financial report generated",
		"report_id", report.ID,
		"report_type", req.ReportType,
		"period_start", report.PeriodStart,
		"period_end", report.PeriodEnd,
		"total_income", report.TotalIncome.StringFixed(types.StoragePlaces),
		"total_expense", report.TotalExpense.StringFixed(types.StoragePlaces),
		"events_counted", revenue.Counted+expenses.Counted,
	)

	return report, nil
}

func (s *Service) incomeScope(req GenerateRequest, cfg *calendar.Config) (IncomeScope, error) {
	if req.ReportType == ReportDaily {
		if req.Date.IsZero() {
			return IncomeScope{}, apperror.NewValidation("date is required for DAILY reports")
		}
		return DailyScope(req.Date, cfg), nil
	}

	var start, end time.Time
	switch {
	case req.StartDate != nil && req.EndDate != nil:
		start = calendar.CalendarDayStart(*req.StartDate, cfg)
		end = calendar.CalendarDayEnd(*req.EndDate, cfg)
	case req.PeriodStart != nil && req.PeriodEnd != nil:
		start, end = *req.PeriodStart, *req.PeriodEnd
	default:
		return IncomeScope{}, apperror.NewValidation("CUSTOM reports need periodStart and periodEnd")
	}
	return CustomScope(start, end, cfg)
}

type sources struct {
	sales       []SaleEvent
	sessions    []TableSessionEvent
	movements   []StockMovementEvent
	maintenance []MaintenanceEvent
	expenses    []ManualExpenseEvent
}

// fetchSources reads the five sources in parallel. Any failure cancels the
// others; there are no partial reports.
func (s *Service) fetchSources(ctx context.Context, companyID id.ID, incomeWindow, expenseWindow calendar.Window) (*sources, error) {
	var src sources
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		src.sales, err = s.events.ListSales(gctx, companyID, incomeWindow)
		return readError("sales", err)
	})
	g.Go(func() (err error) {
		src.sessions, err = s.events.ListTableSessions(gctx, companyID, incomeWindow)
		return readError("table sessions", err)
	})
	g.Go(func() (err error) {
		src.movements, err = s.events.ListStockMovements(gctx, companyID, expenseWindow)
		return readError("stock movements", err)
	})
	g.Go(func() (err error) {
		src.maintenance, err = s.events.ListMaintenance(gctx, companyID, expenseWindow)
		return readError("maintenance", err)
	})
	g.Go(func() (err error) {
		src.expenses, err = s.events.ListExpenses(gctx, companyID, expenseWindow)
		return readError("expenses", err)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &src, nil
}

func readError(source string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	return apperror.NewDatabase(source, err)
}

func persistenceError(err error) error {
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	return apperror.NewPersistenceFailure(err)
}

// PostExpenseRequest adds one expense to a day's DAILY report.
type PostExpenseRequest struct {
	CompanyID id.ID
	Date      calendar.Date
	Category  ExpenseCategory
	Amount    types.Money
}

// PostExpense finds the DAILY report anchored on the date and increments it,
// or creates a zero-income report holding just this expense. The lookup and
// the write happen in one transaction under a per-company-day lock, so
// concurrent postings never lose an update.
func (s *Service) PostExpense(ctx context.Context, req PostExpenseRequest) (*FinancialReport, error) {
	ctx, span := tracer.Start(ctx, "finance.PostExpense", trace.WithAttributes(
		attribute.String("company.id", req.CompanyID.String()),
		attribute.String("expense.category", string(req.Category)),
	))
	defer span.End()
	ctx = appctx.WithCompany(ctx, req.CompanyID.String())

	scope := security.GetScope(ctx)
	if err := scope.RequireCompany(req.CompanyID); err != nil {
		return nil, err
	}
	if req.Date.IsZero() {
		return nil, apperror.NewValidation("date is required")
	}
	if _, ok := ParseExpenseCategory(string(req.Category)); !ok {
		return nil, apperror.NewValidation("unknown expense category").WithDetail("category", string(req.Category))
	}
	if !req.Amount.IsPositive() {
		return nil, apperror.NewValidation("amount must be positive")
	}

	cfg, err := s.LoadCalendar(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}

	kind := req.Category.Kind()
	lockKey := fmt.Sprintf("finance:expense:%s:%s", req.CompanyID, req.Date)

	var (
		report  *FinancialReport
		created bool
	)
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.locker.LockKey(ctx, lockKey); err != nil {
			return err
		}

		existing, err := s.reports.FindDailyForUpdate(ctx, req.CompanyID, calendar.CalendarDay(req.Date, cfg))
		switch {
		case err == nil:
			report = existing
			report.AddExpense(kind, req.Amount)
			report.RoundForStorage()
			if err := s.reports.Update(ctx, report); err != nil {
				return err
			}
		case apperror.IsNotFound(err):
			created = true
			report = NewReport(req.CompanyID, ReportDaily, calendar.ResolveDay(req.Date, cfg), scope.UserID, s.now())
			report.AddExpense(kind, req.Amount)
			report.RoundForStorage()
			if err := s.reports.Create(ctx, report); err != nil {
				return err
			}
		default:
			return err
		}

		return s.audit.LogChange(ctx, AuditEntityReport, report.ID, AuditActionExpense, map[string]any{
			"category": req.Category,
			"amount":   req.Amount,
			"created":  created,
			"report":   report,
		})
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	logger.Info(ctx, "expense posted",
		"report_id", report.ID,
		"date", req.Date.String(),
		"category", req.Category,
		"amount", req.Amount.String(),
		"created", created,
	)

	return report, nil
}

// LoadCalendar reads and parses the company's calendar settings.
// A company without settings gets a nil config (calendar-day bucketing).
func (s *Service) LoadCalendar(ctx context.Context, companyID id.ID) (*calendar.Config, error) {
	ctx = appctx.WithCompany(ctx, companyID.String())
	settings, err := s.settings.GetCalendarSettings(ctx, companyID)
	if err != nil {
		if errors.Is(err, calendar.ErrConfigurationMissing) {
			logger.Warn(ctx, "business calendar not configured, using calendar days")
			return nil, nil
		}
		return nil, readError("venue settings", err)
	}

	cfg, err := settings.ToConfig()
	if err != nil {
		return nil, err
	}
	if settings.EmptyOperatingDaysStored() {
		logger.Warn(ctx, "operating days list is empty, treating every day as operating",
			"operating_days", settings.OperatingDays)
	}
	return cfg, nil
}

// GetReport returns a stored report the caller may read.
func (s *Service) GetReport(ctx context.Context, reportID id.ID) (*FinancialReport, error) {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	if err := security.GetScope(ctx).RequireCompany(report.CompanyID); err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports lists stored reports of one company, newest first.
func (s *Service) ListReports(ctx context.Context, filter ReportFilter) ([]FinancialReport, int, error) {
	if err := security.GetScope(ctx).RequireCompany(filter.CompanyID); err != nil {
		return nil, 0, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, 0, apperror.NewInvalidTimeRange(*filter.From, *filter.To)
	}

	filter = filter.Normalized()

	items, total, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	return items, total, nil
}

// BusinessDayInfo describes how a date resolves under a company's calendar.
type BusinessDayInfo struct {
	Date          calendar.Date   `json:"date"`
	Configured    bool            `json:"configured"`
	Mode          calendar.Mode   `json:"mode,omitempty"`
	Timezone      string          `json:"timezone"`
	BusinessDay   calendar.Window `json:"businessDay"`
	CalendarDay   calendar.Window `json:"calendarDay"`
	HasOpenHours  bool            `json:"hasOpenHours"`
	CrossMidnight bool            `json:"crossesMidnight"`
}

// BusinessDay previews the windows a DAILY report for date would use.
func (s *Service) BusinessDay(ctx context.Context, companyID id.ID, date calendar.Date) (*BusinessDayInfo, error) {
	if err := security.GetScope(ctx).RequireCompany(companyID); err != nil {
		return nil, err
	}
	cfg, err := s.LoadCalendar(ctx, companyID)
	if err != nil {
		return nil, err
	}

	day := calendar.CalendarDay(date, cfg)
	info := &BusinessDayInfo{
		Date:        date,
		Configured:  cfg != nil,
		Timezone:    cfg.Location().String(),
		BusinessDay: calendar.ResolveDay(date, cfg),
		CalendarDay: day,
	}
	if cfg != nil {
		info.Mode = cfg.Mode
	}
	if _, ok := calendar.BusinessWindow(date, cfg); ok {
		info.HasOpenHours = true
		info.CrossMidnight = info.BusinessDay.End.After(day.End)
	}
	return info, nil
}

// SalesSummaryRequest asks for a revenue chart. Zero dates default to the
// last DefaultSummaryDays business days ending today.
type SalesSummaryRequest struct {
	CompanyID id.ID
	From      calendar.Date
	To        calendar.Date
}

// SalesSummary returns the per-day POS and table revenue series.
func (s *Service) SalesSummary(ctx context.Context, req SalesSummaryRequest) ([]SeriesPoint, error) {
	ctx, span := tracer.Start(ctx, "finance.SalesSummary")
	defer span.End()
	ctx = appctx.WithCompany(ctx, req.CompanyID.String())

	if err := security.GetScope(ctx).RequireCompany(req.CompanyID); err != nil {
		return nil, err
	}

	cfg, err := s.LoadCalendar(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}

	from, to := req.From, req.To
	if to.IsZero() {
		to = calendar.AssignBusinessDay(s.now(), cfg)
	}
	if from.IsZero() {
		from = to.AddDays(-(DefaultSummaryDays - 1))
	}
	if to.Before(from) {
		return nil, apperror.NewInvalidTimeRange(calendar.CalendarDayStart(from, cfg), calendar.CalendarDayStart(to, cfg))
	}
	if calendar.DaysBetween(from, to)+1 > MaxSummaryDays {
		return nil, apperror.NewValidation(fmt.Sprintf("range exceeds %d days", MaxSummaryDays))
	}

	window := calendar.Window{
		Start: calendar.CalendarDayStart(from, cfg),
		End:   calendar.FetchWindow(to, cfg).End,
	}

	var (
		sales    []SaleEvent
		sessions []TableSessionEvent
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sales, err = s.events.ListSales(gctx, req.CompanyID, window)
		return readError("sales", err)
	})
	g.Go(func() (err error) {
		sessions, err = s.events.ListTableSessions(gctx, req.CompanyID, window)
		return readError("table sessions", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return BuildSalesSeries(from, to, cfg, sales, sessions), nil
}

// GenerateDueDaily generates the DAILY report of the last closed business
// day for every company with calendar settings, skipping companies that
// already have a job-generated report for it. Failures are logged per company
// and do not stop the run. Returns the number of reports generated.
func (s *Service) GenerateDueDaily(ctx context.Context, now time.Time) (int, error) {
	companies, err := s.settings.ListConfiguredCompanies(ctx)
	if err != nil {
		return 0, readError("venue settings", err)
	}

	ctx = security.WithScope(ctx, security.SystemScope())
	generated := 0
	for _, companyID := range companies {
		if err := ctx.Err(); err != nil {
			return generated, err
		}
		ctx := appctx.WithCompany(ctx, companyID.String())

		cfg, err := s.LoadCalendar(ctx, companyID)
		if err != nil {
			logger.Error(ctx, "load calendar failed", "error", err)
			continue
		}
		date := calendar.AssignBusinessDay(now, cfg).AddDays(-1)

		exists, err := s.reports.ExistsDaily(ctx, companyID, calendar.CalendarDay(date, cfg), security.SystemUserID)
		if err != nil {
			logger.Error(ctx, "check daily report failed", "date", date.String(), "error", err)
			continue
		}
		if exists {
			continue
		}

		if _, err := s.Generate(ctx, GenerateRequest{
			CompanyID:  companyID,
			ReportType: ReportDaily,
			Date:       date,
		}); err != nil {
			logger.Error(ctx, "daily report generation failed", "date", date.String(), "error", err)
			continue
		}
		generated++
	}
	return generated, nil
}
