package finance

import (
	"context"
	"time"

	"venueledger/internal/core/id"
	"venueledger/internal/domain/calendar"
)

// SettingsRepository reads venue calendar settings.
type SettingsRepository interface {
	// GetCalendarSettings returns calendar.ErrConfigurationMissing when the
	// company has no settings row.
	GetCalendarSettings(ctx context.Context, companyID id.ID) (*calendar.Settings, error)

	// ListConfiguredCompanies returns companies that have a settings row.
	ListConfiguredCompanies(ctx context.Context) ([]id.ID, error)
}

// EventRepository reads source events with inclusive range queries.
type EventRepository interface {
	ListSales(ctx context.Context, companyID id.ID, w calendar.Window) ([]SaleEvent, error)
	// ListTableSessions matches on ended_at.
	ListTableSessions(ctx context.Context, companyID id.ID, w calendar.Window) ([]TableSessionEvent, error)
	// ListStockMovements joins each movement with its item's classification.
	ListStockMovements(ctx context.Context, companyID id.ID, w calendar.Window) ([]StockMovementEvent, error)
	ListMaintenance(ctx context.Context, companyID id.ID, w calendar.Window) ([]MaintenanceEvent, error)
	ListExpenses(ctx context.Context, companyID id.ID, w calendar.Window) ([]ManualExpenseEvent, error)
}

// ReportRepository persists financial reports.
type ReportRepository interface {
	Create(ctx context.Context, r *FinancialReport) error
	Update(ctx context.Context, r *FinancialReport) error
	GetByID(ctx context.Context, reportID id.ID) (*FinancialReport, error)

	// FindDailyForUpdate returns the most recently generated DAILY report whose
	// period starts inside day, row-locked until the transaction ends.
	// Returns a NOT_FOUND AppError when there is none.
	FindDailyForUpdate(ctx context.Context, companyID id.ID, day calendar.Window) (*FinancialReport, error)

	// ExistsDaily reports whether generatedBy already produced a DAILY report
	// whose period starts inside day.
	ExistsDaily(ctx context.Context, companyID id.ID, day calendar.Window, generatedBy string) (bool, error)

	List(ctx context.Context, filter ReportFilter) ([]FinancialReport, int, error)
}

// AuditLogger records report mutations.
type AuditLogger interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error
}

// ReportFilter narrows report listings.
type ReportFilter struct {
	CompanyID  id.ID
	ReportType *ReportType
	// From and To bound period_start, inclusive.
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// Page size bounds for ReportFilter.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Normalized applies the default page size and clamps limit and offset.
func (f ReportFilter) Normalized() ReportFilter {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultListLimit
	case f.Limit > MaxListLimit:
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
