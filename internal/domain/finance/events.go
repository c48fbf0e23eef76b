package finance

import (
	"time"

	"venueledger/internal/core/id"
	"venueledger/internal/core/types"
)

// Kind classifies a money event. It doubles as the aggregation category.
type Kind string

const (
	KindSale            Kind = "SALE"
	KindTableRent       Kind = "TABLE_RENT"
	KindInventoryCost   Kind = "INVENTORY_COST"
	KindInternalUseCost Kind = "INTERNAL_USE_COST"
	KindMaintenance     Kind = "MAINTENANCE"
	KindStaff           Kind = "STAFF"
	KindUtility         Kind = "UTILITY"
	KindOther           Kind = "OTHER"
)

// FinancialEvent is one normalized money event.
type FinancialEvent struct {
	Kind            Kind        `json:"kind"`
	Timestamp       time.Time   `json:"timestamp"`
	Amount          types.Money `json:"amount"`
	SourceID        id.ID       `json:"sourceId"`
	LinkedSessionID *id.ID      `json:"linkedSessionId,omitempty"`
}

// PaymentStatus of a point-of-sale charge.
type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "PAID"
	PaymentPending  PaymentStatus = "PENDING"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// SessionStatus of a table-rental session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "ACTIVE"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionCancelled SessionStatus = "CANCELLED"
)

// MovementType of a stock movement. Only purchases are costs.
type MovementType string

const (
	MovementPurchase   MovementType = "PURCHASE"
	MovementSale       MovementType = "SALE"
	MovementAdjustment MovementType = "ADJUSTMENT"
	MovementWaste      MovementType = "WASTE"
)

// ItemClassification of an inventory item.
type ItemClassification string

const (
	ItemResale      ItemClassification = "RESALE"
	ItemInternalUse ItemClassification = "INTERNAL_USE"
)

// Source rows. Monetary fields are nullable in storage; nil counts as zero.

// SaleEvent is a point-of-sale charge.
type SaleEvent struct {
	ID             id.ID         `db:"id" json:"id"`
	Amount         *types.Money  `db:"amount" json:"amount"`
	CreatedAt      time.Time     `db:"created_at" json:"createdAt"`
	TableSessionID *id.ID        `db:"table_session_id" json:"tableSessionId,omitempty"`
	PaymentStatus  PaymentStatus `db:"payment_status" json:"paymentStatus"`
}

// TableSessionEvent is a table-rental session.
type TableSessionEvent struct {
	ID        id.ID         `db:"id" json:"id"`
	TotalCost *types.Money  `db:"total_cost" json:"totalCost"`
	StartedAt time.Time     `db:"started_at" json:"startedAt"`
	EndedAt   *time.Time    `db:"ended_at" json:"endedAt,omitempty"`
	Status    SessionStatus `db:"status" json:"status"`
}

// StockMovementEvent is a stock movement joined with its item's classification.
type StockMovementEvent struct {
	ID                 id.ID              `db:"id" json:"id"`
	Quantity           *types.Quantity    `db:"quantity" json:"quantity"`
	CostPrice          *types.Money       `db:"cost_price" json:"costPrice"`
	Type               MovementType       `db:"type" json:"type"`
	CreatedAt          time.Time          `db:"created_at" json:"createdAt"`
	ItemClassification ItemClassification `db:"item_classification" json:"itemClassification"`
}

// MaintenanceEvent is scheduled venue maintenance.
type MaintenanceEvent struct {
	ID            id.ID        `db:"id" json:"id"`
	Cost          *types.Money `db:"cost" json:"cost"`
	MaintenanceAt time.Time    `db:"maintenance_at" json:"maintenanceAt"`
}

// ManualExpenseEvent is an ad-hoc expense entry.
type ManualExpenseEvent struct {
	ID          id.ID        `db:"id" json:"id"`
	Amount      *types.Money `db:"amount" json:"amount"`
	Category    string       `db:"category" json:"category"`
	ExpenseDate time.Time    `db:"expense_date" json:"expenseDate"`
}

// ExpenseCategory is the fixed manual-expense category set.
type ExpenseCategory string

const (
	CategoryStaff       ExpenseCategory = "STAFF"
	CategoryUtilities   ExpenseCategory = "UTILITIES"
	CategoryMaintenance ExpenseCategory = "MAINTENANCE"
	CategorySupplies    ExpenseCategory = "SUPPLIES"
	CategoryRent        ExpenseCategory = "RENT"
	CategoryInsurance   ExpenseCategory = "INSURANCE"
	CategoryMarketing   ExpenseCategory = "MARKETING"
	CategoryOther       ExpenseCategory = "OTHER"
)

// ParseExpenseCategory validates a category string.
func ParseExpenseCategory(s string) (ExpenseCategory, bool) {
	switch c := ExpenseCategory(s); c {
	case CategoryStaff, CategoryUtilities, CategoryMaintenance, CategorySupplies,
		CategoryRent, CategoryInsurance, CategoryMarketing, CategoryOther:
		return c, true
	}
	return "", false
}

// Kind maps a manual-expense category onto the report field it feeds.
func (c ExpenseCategory) Kind() Kind {
	switch c {
	case CategoryStaff:
		return KindStaff
	case CategoryUtilities:
		return KindUtility
	case CategoryMaintenance:
		return KindMaintenance
	default:
		return KindOther
	}
}
