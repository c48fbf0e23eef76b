package finance

import (
	"time"

	"venueledger/internal/core/id"
	"venueledger/internal/core/types"
	"venueledger/internal/domain/calendar"
)

// ReportType distinguishes business-day reports from caller-bounded ones.
type ReportType string

const (
	ReportDaily  ReportType = "DAILY"
	ReportCustom ReportType = "CUSTOM"
)

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	return t == ReportDaily || t == ReportCustom
}

// FinancialReport is a persisted income/expense statement for one period.
//
// For DAILY reports PeriodStart/PeriodEnd record the opening-hours window of
// the business day, not the counting rule. Income is counted per event by the
// business day it resolves to, so a session that ends after closing time
// still counts even though its end lies past PeriodEnd. Expenses are counted
// over the whole calendar day. CUSTOM reports record the requested bounds.
//
// Invariants, restored by Recalculate after every mutation:
//
//	TotalIncome  = SalesIncome + TableRentIncome + OtherIncome
//	TotalExpense = InventoryCost + MaintenanceCost + StaffCost + UtilityCost + OtherExpenses
//	NetProfit    = TotalIncome - TotalExpense
type FinancialReport struct {
	ID          id.ID      `db:"id" json:"id"`
	CompanyID   id.ID      `db:"company_id" json:"companyId"`
	ReportType  ReportType `db:"report_type" json:"reportType"`
	PeriodStart time.Time  `db:"period_start" json:"periodStart"`
	PeriodEnd   time.Time  `db:"period_end" json:"periodEnd"`

	SalesIncome     types.Money `db:"sales_income" json:"salesIncome"`
	TableRentIncome types.Money `db:"table_rent_income" json:"tableRentIncome"`
	OtherIncome     types.Money `db:"other_income" json:"otherIncome"`
	TotalIncome     types.Money `db:"total_income" json:"totalIncome"`

	InventoryCost   types.Money `db:"inventory_cost" json:"inventoryCost"`
	MaintenanceCost types.Money `db:"maintenance_cost" json:"maintenanceCost"`
	StaffCost       types.Money `db:"staff_cost" json:"staffCost"`
	UtilityCost     types.Money `db:"utility_cost" json:"utilityCost"`
	OtherExpenses   types.Money `db:"other_expenses" json:"otherExpenses"`
	TotalExpense    types.Money `db:"total_expense" json:"totalExpense"`

	NetProfit types.Money `db:"net_profit" json:"netProfit"`

	GeneratedAt   time.Time `db:"generated_at" json:"generatedAt"`
	GeneratedByID string    `db:"generated_by_id" json:"generatedById"`
}

// NewReport returns an all-zero report covering period.
func NewReport(companyID id.ID, reportType ReportType, period calendar.Window, generatedBy string, now time.Time) *FinancialReport {
	r := &FinancialReport{
		ID:            id.New(),
		CompanyID:     companyID,
		ReportType:    reportType,
		PeriodStart:   period.Start,
		PeriodEnd:     period.End,
		GeneratedAt:   now.UTC(),
		GeneratedByID: generatedBy,
	}
	r.Recalculate()
	return r
}

// ApplyIncome copies income totals into the report.
// Other income has no source yet and stays zero.
func (r *FinancialReport) ApplyIncome(t Totals) {
	r.SalesIncome = t.Get(KindSale)
	r.TableRentIncome = t.Get(KindTableRent)
	r.OtherIncome = types.Zero()
	r.Recalculate()
}

// ApplyExpenses copies expense totals into the report.
func (r *FinancialReport) ApplyExpenses(t Totals) {
	r.InventoryCost = t.Get(KindInventoryCost)
	r.MaintenanceCost = t.Get(KindMaintenance)
	r.StaffCost = t.Get(KindStaff)
	r.UtilityCost = t.Get(KindUtility)
	r.OtherExpenses = t.Get(KindInternalUseCost).Add(t.Get(KindOther))
	r.Recalculate()
}

// AddExpense increments the field fed by k. TotalExpense grows and NetProfit
// shrinks by the same amount.
func (r *FinancialReport) AddExpense(k Kind, amount types.Money) {
	switch k {
	case KindInventoryCost:
		r.InventoryCost = r.InventoryCost.Add(amount)
	case KindMaintenance:
		r.MaintenanceCost = r.MaintenanceCost.Add(amount)
	case KindStaff:
		r.StaffCost = r.StaffCost.Add(amount)
	case KindUtility:
		r.UtilityCost = r.UtilityCost.Add(amount)
	default:
		r.OtherExpenses = r.OtherExpenses.Add(amount)
	}
	r.Recalculate()
}

// Recalculate derives the totals from the components.
func (r *FinancialReport) Recalculate() {
	r.TotalIncome = types.Sum(r.SalesIncome, r.TableRentIncome, r.OtherIncome)
	r.TotalExpense = types.Sum(r.InventoryCost, r.MaintenanceCost, r.StaffCost, r.UtilityCost, r.OtherExpenses)
	r.NetProfit = r.TotalIncome.Sub(r.TotalExpense)
}

// RoundForStorage rounds every component to cents and re-derives the totals
// from the rounded values, so the identities hold exactly in storage.
func (r *FinancialReport) RoundForStorage() {
	for _, m := range []*types.Money{
		&r.SalesIncome, &r.TableRentIncome, &r.OtherIncome,
		&r.InventoryCost, &r.MaintenanceCost, &r.StaffCost, &r.UtilityCost, &r.OtherExpenses,
	} {
		*m = types.RoundForStorage(*m)
	}
	r.Recalculate()
}

// Balanced reports whether the identities hold to the cent.
func (r *FinancialReport) Balanced() bool {
	income := types.Sum(r.SalesIncome, r.TableRentIncome, r.OtherIncome)
	expense := types.Sum(r.InventoryCost, r.MaintenanceCost, r.StaffCost, r.UtilityCost, r.OtherExpenses)
	return types.EqualCents(income, r.TotalIncome) &&
		types.EqualCents(expense, r.TotalExpense) &&
		types.EqualCents(r.TotalIncome.Sub(r.TotalExpense), r.NetProfit)
}

// Period returns the report's [PeriodStart, PeriodEnd] window.
func (r *FinancialReport) Period() calendar.Window {
	return calendar.Window{Start: r.PeriodStart, End: r.PeriodEnd}
}
