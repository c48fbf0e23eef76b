// Package report_repo provides PostgreSQL implementations for the finance repositories.
// Every query runs on the querier of the transaction carried by ctx, if any.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"venueledger/internal/core/apperror"
	"venueledger/internal/core/id"
	"venueledger/internal/domain/calendar"
	"venueledger/internal/domain/finance"
	"venueledger/internal/infrastructure/storage/postgres"
)

const reportsTable = "fin_reports"

var reportColumns = postgres.ExtractDBColumns[finance.FinancialReport]()

// immutableReportColumns are never rewritten by Update.
var immutableReportColumns = []string{"id", "company_id", "report_type"}

// ReportRepo implements finance.ReportRepository.
type ReportRepo struct {
	builder   squirrel.StatementBuilderType
	txManager *postgres.TxManager
}

var _ finance.ReportRepository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		txManager: txManager,
	}
}

// Create inserts a report row.
func (r *ReportRepo) Create(ctx context.Context, rep *finance.FinancialReport) error {
	sql, args, err := r.builder.
		Insert(reportsTable).
		SetMap(postgres.StructToMap(rep)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", reportsTable, err)
	}
	return nil
}

// Update rewrites the amounts, period and generation stamp of an existing report.
func (r *ReportRepo) Update(ctx context.Context, rep *finance.FinancialReport) error {
	sql, args, err := r.updateQuery(rep).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", reportsTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("financial report", rep.ID.String())
	}
	return nil
}

// GetByID retrieves a report by ID.
func (r *ReportRepo) GetByID(ctx context.Context, reportID id.ID) (*finance.FinancialReport, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"id": reportID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rep finance.FinancialReport
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &rep, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("financial report", reportID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}
	return &rep, nil
}

// FindDailyForUpdate returns the newest DAILY report starting inside day and locks its row.
func (r *ReportRepo) FindDailyForUpdate(ctx context.Context, companyID id.ID, day calendar.Window) (*finance.FinancialReport, error) {
	sql, args, err := r.findDailyQuery(companyID, day).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rep finance.FinancialReport
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &rep, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("financial report", day.Start.Format(calendar.DateLayout)).
				WithDetail("companyId", companyID.String())
		}
		return nil, fmt.Errorf("find daily report: %w", err)
	}
	return &rep, nil
}

// ExistsDaily checks for a DAILY report starting inside day produced by generatedBy.
func (r *ReportRepo) ExistsDaily(ctx context.Context, companyID id.ID, day calendar.Window, generatedBy string) (bool, error) {
	sql, args, err := r.existsDailyQuery(companyID, day, generatedBy).ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists bool
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists daily report: %w", err)
	}
	return exists, nil
}

// List returns one page of reports, newest period first, and the total match count.
func (r *ReportRepo) List(ctx context.Context, filter finance.ReportFilter) ([]finance.FinancialReport, int, error) {
	querier := r.txManager.GetQuerier(ctx)

	countSQL, countArgs, err := r.applyFilter(r.builder.Select("COUNT(*)").From(reportsTable), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	sql, args, err := r.listQuery(filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}
	var items []finance.FinancialReport
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	return items, total, nil
}

func (r *ReportRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(reportColumns...).From(reportsTable)
}

func (r *ReportRepo) updateQuery(rep *finance.FinancialReport) squirrel.UpdateBuilder {
	values := postgres.StructToMap(rep)
	for _, col := range immutableReportColumns {
		delete(values, col)
	}
	return r.builder.
		Update(reportsTable).
		SetMap(values).
		Where(squirrel.Eq{"id": rep.ID})
}

func (r *ReportRepo) dailyIn(companyID id.ID, day calendar.Window) squirrel.And {
	return squirrel.And{
		squirrel.Eq{"company_id": companyID},
		squirrel.Eq{"report_type": finance.ReportDaily},
		squirrel.Expr("period_start BETWEEN ? AND ?", day.Start, day.End),
	}
}

func (r *ReportRepo) findDailyQuery(companyID id.ID, day calendar.Window) squirrel.SelectBuilder {
	return r.baseSelect().
		Where(r.dailyIn(companyID, day)).
		OrderBy("generated_at DESC").
		Limit(1).
		Suffix("FOR UPDATE")
}

func (r *ReportRepo) existsDailyQuery(companyID id.ID, day calendar.Window, generatedBy string) squirrel.SelectBuilder {
	return r.builder.Select("COUNT(*) > 0").From(reportsTable).
		Where(r.dailyIn(companyID, day)).
		Where(squirrel.Eq{"generated_by_id": generatedBy})
}

func (r *ReportRepo) listQuery(filter finance.ReportFilter) squirrel.SelectBuilder {
	q := r.applyFilter(r.baseSelect(), filter).
		OrderBy("period_start DESC", "generated_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

func (r *ReportRepo) applyFilter(q squirrel.SelectBuilder, filter finance.ReportFilter) squirrel.SelectBuilder {
	q = q.Where(squirrel.Eq{"company_id": filter.CompanyID})
	if filter.ReportType != nil {
		q = q.Where(squirrel.Eq{"report_type": *filter.ReportType})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"period_start": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"period_start": *filter.To})
	}
	return q
}
