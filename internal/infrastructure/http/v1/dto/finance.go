package dto

import (
	"time"

	"venueledger/internal/core/apperror"
	"venueledger/internal/core/types"
	"venueledger/internal/domain/calendar"
	"venueledger/internal/domain/finance"
)

// --- Generate ---

// GenerateReportRequest is the body of POST /reports/generate.
//
// periodStart and periodEnd accept RFC 3339 instants, used as inclusive
// bounds, or bare dates, widened to whole calendar days.
type GenerateReportRequest struct {
	CompanyID   string `json:"companyId" binding:"required"`
	ReportType  string `json:"reportType" binding:"required"`
	Date        string `json:"date"`
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
}

// ToDomain converts the request to a finance.GenerateRequest.
func (r GenerateReportRequest) ToDomain() (finance.GenerateRequest, error) {
	companyID, err := ParseCompanyID(r.CompanyID)
	if err != nil {
		return finance.GenerateRequest{}, err
	}
	out := finance.GenerateRequest{
		CompanyID:  companyID,
		ReportType: finance.ReportType(r.ReportType),
	}

	switch out.ReportType {
	case finance.ReportDaily:
		if out.Date, err = ParseOptionalDate("date", r.Date); err != nil {
			return out, err
		}
	case finance.ReportCustom:
		startAt, startDate, err := instantOrDate("periodStart", r.PeriodStart)
		if err != nil {
			return out, err
		}
		endAt, endDate, err := instantOrDate("periodEnd", r.PeriodEnd)
		if err != nil {
			return out, err
		}
		if (startAt == nil) != (endAt == nil) {
			return out, apperror.NewValidation("periodStart and periodEnd must both be instants or both be dates")
		}
		out.PeriodStart, out.PeriodEnd = startAt, endAt
		out.StartDate, out.EndDate = startDate, endDate
	}
	return out, nil
}

// --- Expense ---

// PostExpenseRequest is the body of POST /reports/expenses.
type PostExpenseRequest struct {
	CompanyID string      `json:"companyId" binding:"required"`
	Date      string      `json:"date" binding:"required"`
	Category  string      `json:"category" binding:"required"`
	Amount    types.Money `json:"amount"`
}

// ToDomain converts the request to a finance.PostExpenseRequest.
func (r PostExpenseRequest) ToDomain() (finance.PostExpenseRequest, error) {
	companyID, err := ParseCompanyID(r.CompanyID)
	if err != nil {
		return finance.PostExpenseRequest{}, err
	}
	date, err := ParseOptionalDate("date", r.Date)
	if err != nil {
		return finance.PostExpenseRequest{}, err
	}
	return finance.PostExpenseRequest{
		CompanyID: companyID,
		Date:      date,
		Category:  finance.ExpenseCategory(r.Category),
		Amount:    r.Amount,
	}, nil
}

// --- List ---

// ListReportsRequest holds the query of GET /reports.
type ListReportsRequest struct {
	CompanyID  string `form:"companyId" binding:"required"`
	ReportType string `form:"reportType"`
	From       string `form:"from"`
	To         string `form:"to"`
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
}

// ToFilter converts the query to a finance.ReportFilter.
// from and to are dates bounding the report period start in UTC.
func (r ListReportsRequest) ToFilter() (finance.ReportFilter, error) {
	companyID, err := ParseCompanyID(r.CompanyID)
	if err != nil {
		return finance.ReportFilter{}, err
	}
	filter := finance.ReportFilter{CompanyID: companyID, Limit: r.Limit, Offset: r.Offset}.Normalized()

	if r.ReportType != "" {
		rt := finance.ReportType(r.ReportType)
		if !rt.Valid() {
			return filter, apperror.NewValidation("reportType must be DAILY or CUSTOM").WithDetail("reportType", r.ReportType)
		}
		filter.ReportType = &rt
	}

	from, err := ParseOptionalDate("from", r.From)
	if err != nil {
		return filter, err
	}
	if !from.IsZero() {
		start := calendar.CalendarDayStart(from, nil)
		filter.From = &start
	}
	to, err := ParseOptionalDate("to", r.To)
	if err != nil {
		return filter, err
	}
	if !to.IsZero() {
		end := calendar.CalendarDayEnd(to, nil)
		filter.To = &end
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, apperror.NewInvalidTimeRange(*filter.From, *filter.To)
	}
	return filter, nil
}

// --- Report ---

// ReportResponse is a persisted report with 2dp amounts.
type ReportResponse struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"companyId"`
	ReportType  string    `json:"reportType"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`

	SalesIncome     string `json:"salesIncome"`
	TableRentIncome string `json:"tableRentIncome"`
	OtherIncome     string `json:"otherIncome"`
	TotalIncome     string `json:"totalIncome"`

	InventoryCost   string `json:"inventoryCost"`
	MaintenanceCost string `json:"maintenanceCost"`
	StaffCost       string `json:"staffCost"`
	UtilityCost     string `json:"utilityCost"`
	OtherExpenses   string `json:"otherExpenses"`
	TotalExpense    string `json:"totalExpense"`

	NetProfit string `json:"netProfit"`

	GeneratedAt   time.Time `json:"generatedAt"`
	GeneratedByID string    `json:"generatedById"`
}

// FromReport converts a domain report to its response DTO.
func FromReport(r *finance.FinancialReport) ReportResponse {
	return ReportResponse{
		ID:              r.ID.String(),
		CompanyID:       r.CompanyID.String(),
		ReportType:      string(r.ReportType),
		PeriodStart:     r.PeriodStart,
		PeriodEnd:       r.PeriodEnd,
		SalesIncome:     money(r.SalesIncome),
		TableRentIncome: money(r.TableRentIncome),
		OtherIncome:     money(r.OtherIncome),
		TotalIncome:     money(r.TotalIncome),
		InventoryCost:   money(r.InventoryCost),
		MaintenanceCost: money(r.MaintenanceCost),
		StaffCost:       money(r.StaffCost),
		UtilityCost:     money(r.UtilityCost),
		OtherExpenses:   money(r.OtherExpenses),
		TotalExpense:    money(r.TotalExpense),
		NetProfit:       money(r.NetProfit),
		GeneratedAt:     r.GeneratedAt,
		GeneratedByID:   r.GeneratedByID,
	}
}

// FromReports converts a page of reports.
func FromReports(items []finance.FinancialReport) []ReportResponse {
	out := make([]ReportResponse, 0, len(items))
	for i := range items {
		out = append(out, FromReport(&items[i]))
	}
	return out
}

func money(m types.Money) string {
	return m.StringFixed(types.StoragePlaces)
}

// --- Sales summary ---

// SalesSummaryRequest holds the query of GET /sales-summary.
type SalesSummaryRequest struct {
	CompanyID string `form:"companyId" binding:"required"`
	From      string `form:"from"`
	To        string `form:"to"`
}

// ToDomain converts the query to a finance.SalesSummaryRequest.
func (r SalesSummaryRequest) ToDomain() (finance.SalesSummaryRequest, error) {
	companyID, err := ParseCompanyID(r.CompanyID)
	if err != nil {
		return finance.SalesSummaryRequest{}, err
	}
	from, err := ParseOptionalDate("from", r.From)
	if err != nil {
		return finance.SalesSummaryRequest{}, err
	}
	to, err := ParseOptionalDate("to", r.To)
	if err != nil {
		return finance.SalesSummaryRequest{}, err
	}
	return finance.SalesSummaryRequest{CompanyID: companyID, From: from, To: to}, nil
}

// SeriesPointResponse is one day of the revenue chart.
type SeriesPointResponse struct {
	DateLabel   string `json:"dateLabel"`
	PosAmount   string `json:"posAmount"`
	TableAmount string `json:"tableAmount"`
}

// FromSeries converts the revenue chart.
func FromSeries(points []finance.SeriesPoint) []SeriesPointResponse {
	out := make([]SeriesPointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, SeriesPointResponse{
			DateLabel:   p.DateLabel,
			PosAmount:   money(p.PosAmount),
			TableAmount: money(p.TableAmount),
		})
	}
	return out
}

// --- Business day ---

// BusinessDayRequest holds the query of GET /business-day.
type BusinessDayRequest struct {
	CompanyID string `form:"companyId" binding:"required"`
	Date      string `form:"date" binding:"required"`
}
