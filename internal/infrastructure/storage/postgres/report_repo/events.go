package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"venueledger/internal/core/id"
	"venueledger/internal/domain/calendar"
	"venueledger/internal/domain/finance"
	"venueledger/internal/infrastructure/storage/postgres"
)

// EventRepo implements finance.EventRepository over the venue operational tables.
// Status and classification filtering is left to the aggregators.
type EventRepo struct {
	builder   squirrel.StatementBuilderType
	txManager *postgres.TxManager
}

var _ finance.EventRepository = (*EventRepo)(nil)

// NewEventRepo creates a new event repository.
func NewEventRepo(txManager *postgres.TxManager) *EventRepo {
	return &EventRepo{
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		txManager: txManager,
	}
}

func (r *EventRepo) ListSales(ctx context.Context, companyID id.ID, w calendar.Window) ([]finance.SaleEvent, error) {
	var out []finance.SaleEvent
	return out, r.selectInto(ctx, &out, "sales", r.salesQuery(companyID, w))
}

func (r *EventRepo) ListTableSessions(ctx context.Context, companyID id.ID, w calendar.Window) ([]finance.TableSessionEvent, error) {
	var out []finance.TableSessionEvent
	return out, r.selectInto(ctx, &out, "table sessions", r.sessionsQuery(companyID, w))
}

func (r *EventRepo) ListStockMovements(ctx context.Context, companyID id.ID, w calendar.Window) ([]finance.StockMovementEvent, error) {
	var out []finance.StockMovementEvent
	return out, r.selectInto(ctx, &out, "stock movements", r.movementsQuery(companyID, w))
}

func (r *EventRepo) ListMaintenance(ctx context.Context, companyID id.ID, w calendar.Window) ([]finance.MaintenanceEvent, error) {
	var out []finance.MaintenanceEvent
	return out, r.selectInto(ctx, &out, "maintenance", r.maintenanceQuery(companyID, w))
}

func (r *EventRepo) ListExpenses(ctx context.Context, companyID id.ID, w calendar.Window) ([]finance.ManualExpenseEvent, error) {
	var out []finance.ManualExpenseEvent
	return out, r.selectInto(ctx, &out, "expenses", r.expensesQuery(companyID, w))
}

func (r *EventRepo) selectInto(ctx context.Context, dst any, source string, q squirrel.SelectBuilder) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build %s query: %w", source, err)
	}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), dst, sql, args...); err != nil {
		return fmt.Errorf("list %s: %w", source, err)
	}
	return nil
}

// inWindow is an inclusive range predicate on col.
func inWindow(col string, w calendar.Window) squirrel.Sqlizer {
	return squirrel.Expr(col+" BETWEEN ? AND ?", w.Start, w.End)
}

func (r *EventRepo) salesQuery(companyID id.ID, w calendar.Window) squirrel.SelectBuilder {
	return r.builder.
		Select("id", "amount", "created_at", "table_session_id", "payment_status").
		From("pos_sales").
		Where(squirrel.Eq{"company_id": companyID}).
		Where(inWindow("created_at", w)).
		OrderBy("created_at")
}

func (r *EventRepo) sessionsQuery(companyID id.ID, w calendar.Window) squirrel.SelectBuilder {
	return r.builder.
		Select("id", "total_cost", "started_at", "ended_at", "status").
		From("table_sessions").
		Where(squirrel.Eq{"company_id": companyID}).
		Where(inWindow("ended_at", w)).
		OrderBy("ended_at")
}

func (r *EventRepo) movementsQuery(companyID id.ID, w calendar.Window) squirrel.SelectBuilder {
	return r.builder.
		Select(
			"m.id", "m.quantity", "m.cost_price", "m.type", "m.created_at",
			"COALESCE(i.classification, '') AS item_classification",
		).
		From("stock_movements m").
		LeftJoin("inventory_items i ON i.id = m.item_id").
		Where(squirrel.Eq{"m.company_id": companyID}).
		Where(inWindow("m.created_at", w)).
		OrderBy("m.created_at")
}

func (r *EventRepo) maintenanceQuery(companyID id.ID, w calendar.Window) squirrel.SelectBuilder {
	return r.builder.
		Select("id", "cost", "maintenance_at").
		From("venue_maintenance").
		Where(squirrel.Eq{"company_id": companyID}).
		Where(inWindow("maintenance_at", w)).
		OrderBy("maintenance_at")
}

func (r *EventRepo) expensesQuery(companyID id.ID, w calendar.Window) squirrel.SelectBuilder {
	return r.builder.
		Select("id", "amount", "category", "expense_date").
		From("expenses").
		Where(squirrel.Eq{"company_id": companyID}).
		Where(inWindow("expense_date", w)).
		OrderBy("expense_date")
}
