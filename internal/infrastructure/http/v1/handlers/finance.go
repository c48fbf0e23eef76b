package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"venueledger/internal/core/apperror"
	"venueledger/internal/core/id"
	"venueledger/internal/domain/calendar"
	"venueledger/internal/domain/finance"
	"venueledger/internal/infrastructure/http/v1/dto"
	"venueledger/internal/infrastructure/storage/postgres"
)

const historyLimit = 100

// FinanceService is the part of finance.Service the HTTP layer calls.
type FinanceService interface {
	Generate(ctx context.Context, req finance.GenerateRequest) (*finance.FinancialReport, error)
	PostExpense(ctx context.Context, req finance.PostExpenseRequest) (*finance.FinancialReport, error)
	GetReport(ctx context.Context, reportID id.ID) (*finance.FinancialReport, error)
	ListReports(ctx context.Context, filter finance.ReportFilter) ([]finance.FinancialReport, int, error)
	SalesSummary(ctx context.Context, req finance.SalesSummaryRequest) ([]finance.SeriesPoint, error)
	BusinessDay(ctx context.Context, companyID id.ID, date calendar.Date) (*finance.BusinessDayInfo, error)
}

// ReportHistory reads the audit trail of a report.
type ReportHistory interface {
	GetEntityHistory(ctx context.Context, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error)
}

var (
	_ FinanceService = (*finance.Service)(nil)
	_ ReportHistory  = (*postgres.AuditService)(nil)
)

// FinanceHandler handles HTTP requests for financial reports.
type FinanceHandler struct {
	*BaseHandler
	service FinanceService
	history ReportHistory
}

// NewFinanceHandler creates a new finance handler. history may be nil, which
// disables the history endpoint.
func NewFinanceHandler(base *BaseHandler, service FinanceService, history ReportHistory) *FinanceHandler {
	return &FinanceHandler{
		BaseHandler: base,
		service:     service,
		history:     history,
	}
}

// Generate handles POST /reports/generate
func (h *FinanceHandler) Generate(c *gin.Context) {
	var req dto.GenerateReportRequest
	if !h.BindJSON(c, &req) {
		return
	}
	domainReq, err := req.ToDomain()
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.Generate(c.Request.Context(), domainReq)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromReport(report))
}

// PostExpense handles POST /reports/expenses
func (h *FinanceHandler) PostExpense(c *gin.Context) {
	var req dto.PostExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	domainReq, err := req.ToDomain()
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.PostExpense(c.Request.Context(), domainReq)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromReport(report))
}

// Get handles GET /reports/:id
func (h *FinanceHandler) Get(c *gin.Context) {
	reportID, ok := h.reportID(c)
	if !ok {
		return
	}
	report, err := h.service.GetReport(c.Request.Context(), reportID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromReport(report))
}

// List handles GET /reports
func (h *FinanceHandler) List(c *gin.Context) {
	var req dto.ListReportsRequest
	if !h.BindQuery(c, &req) {
		return
	}
	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	items, total, err := h.service.ListReports(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse[dto.ReportResponse]{
		Items:      dto.FromReports(items),
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// History handles GET /reports/:id/history
func (h *FinanceHandler) History(c *gin.Context) {
	if h.history == nil {
		h.Error(c, apperror.NewNotFound("report history", c.Param("id")))
		return
	}
	reportID, ok := h.reportID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// Resolves company access before exposing the trail.
	if _, err := h.service.GetReport(ctx, reportID); err != nil {
		h.Error(c, err)
		return
	}
	entries, err := h.history.GetEntityHistory(ctx, finance.AuditEntityReport, reportID, historyLimit)
	if err != nil {
		h.Error(c, apperror.NewDatabase("audit", err))
		return
	}
	h.OK(c, entries)
}

// SalesSummary handles GET /sales-summary
func (h *FinanceHandler) SalesSummary(c *gin.Context) {
	var req dto.SalesSummaryRequest
	if !h.BindQuery(c, &req) {
		return
	}
	domainReq, err := req.ToDomain()
	if err != nil {
		h.Error(c, err)
		return
	}

	points, err := h.service.SalesSummary(c.Request.Context(), domainReq)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSeries(points))
}

// BusinessDay handles GET /business-day
func (h *FinanceHandler) BusinessDay(c *gin.Context) {
	var req dto.BusinessDayRequest
	if !h.BindQuery(c, &req) {
		return
	}
	companyID, err := dto.ParseCompanyID(req.CompanyID)
	if err != nil {
		h.Error(c, err)
		return
	}
	date, err := dto.ParseOptionalDate("date", req.Date)
	if err != nil {
		h.Error(c, err)
		return
	}

	info, err := h.service.BusinessDay(c.Request.Context(), companyID, date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, info)
}

func (h *FinanceHandler) reportID(c *gin.Context) (id.ID, bool) {
	raw := c.Param("id")
	reportID, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid report id").WithDetail("id", raw))
		return id.ID{}, false
	}
	return reportID, true
}
