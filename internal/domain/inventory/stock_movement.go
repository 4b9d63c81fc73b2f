package inventory

import (
	"strings"
	"time"

	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType is the direction of a stock movement
type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	return t == MovementIn || t == MovementOut
}

// Apply returns balance moved by qty in this direction
func (t MovementType) Apply(balance, qty decimal.Decimal) decimal.Decimal {
	if t == MovementOut {
		return balance.Sub(qty)
	}
	return balance.Add(qty)
}

// Signed returns qty with the sign of this direction
func (t MovementType) Signed(qty decimal.Decimal) decimal.Decimal {
	if t == MovementOut {
		return qty.Neg()
	}
	return qty
}

// MovementRequest is the input of a stock movement
type MovementRequest struct {
	Type            MovementType
	Quantity        decimal.Decimal
	Reason          string
	ReferenceNumber string
	Notes           string
	// MovementDate defaults to today when zero
	MovementDate time.Time
}

// StockMovement is an append-only ledger entry. It is never updated or deleted.
type StockMovement struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InventoryItemID uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movements_item_date,priority:1"`
	MovementType    MovementType    `gorm:"type:varchar(10);not null;index"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceBefore   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason          string          `gorm:"type:varchar(255);not null"`
	ReferenceNumber string          `gorm:"type:varchar(100)"`
	Notes           string          `gorm:"type:text"`
	MovementDate    time.Time       `gorm:"type:date;not null;index:idx_stock_movements_item_date,priority:2"`
	CreatedBy       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement builds a movement row. Ids are UUIDv7 so that movements
// recorded in the same instant still sort in insertion order.
func NewStockMovement(itemID uuid.UUID, req MovementRequest, before, after decimal.Decimal, actor uuid.UUID) *StockMovement {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	date := req.MovementDate
	if date.IsZero() {
		date = shared.Today()
	}
	return &StockMovement{
		ID:              id,
		InventoryItemID: itemID,
		MovementType:    req.Type,
		Quantity:        req.Quantity,
		BalanceBefore:   before,
		BalanceAfter:    after,
		Reason:          strings.TrimSpace(req.Reason),
		ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
		Notes:           strings.TrimSpace(req.Notes),
		MovementDate:    shared.DateOf(date),
		CreatedBy:       actor,
		CreatedAt:       time.Now().UTC(),
	}
}

// MovementRecord is a movement joined with its item and author, as shown in history views.
type MovementRecord struct {
	StockMovement
	ItemName string
	Unit     string
	Username string
}

// MovementSummary aggregates a filtered set of movements
type MovementSummary struct {
	TotalIn  decimal.Decimal
	TotalOut decimal.Decimal
	Count    int64
}

// Net returns TotalIn minus TotalOut
func (s MovementSummary) Net() decimal.Decimal {
	return s.TotalIn.Sub(s.TotalOut)
}
