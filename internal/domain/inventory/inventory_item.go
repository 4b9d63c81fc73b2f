package inventory

import (
	"strings"
	"time"

	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemType classifies an inventory item
type ItemType string

const (
	ItemTypeSupply    ItemType = "supply"
	ItemTypeEquipment ItemType = "equipment"
	ItemTypeEmployee  ItemType = "employee"
)

// IsValid returns true if the item type is valid
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeSupply, ItemTypeEquipment, ItemTypeEmployee:
		return true
	}
	return false
}

// ItemStatus is the lifecycle status of an item. Items are never hard-deleted.
type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusInactive ItemStatus = "inactive"
)

// IsValid returns true if the status is valid
func (s ItemStatus) IsValid() bool {
	return s == ItemStatusActive || s == ItemStatusInactive
}

// OpeningBalanceReason is the reason recorded on the movement synthesized
// for an item's initial quantity.
const OpeningBalanceReason = "Opening balance"

// QuantityScale is the number of decimal places stored for quantities and
// reorder levels. Finer values would be rounded by the database on the item
// and on its movements independently.
const QuantityScale int32 = 4

// FitsQuantityScale reports whether q is representable at QuantityScale
func FitsQuantityScale(q decimal.Decimal) bool {
	return q.Equal(q.Round(QuantityScale))
}

// InventoryItem is an owned stock-keeping record. Quantity is a cached value;
// the authoritative history is the item's stock movements and the two are only
// ever changed together.
type InventoryItem struct {
	shared.OwnedEntity
	ItemType     ItemType         `gorm:"type:varchar(20);not null;index"`
	ItemName     string           `gorm:"type:varchar(200);not null"`
	Category     string           `gorm:"type:varchar(100);not null"`
	Quantity     decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Unit         string           `gorm:"type:varchar(30)"`
	ReorderLevel *decimal.Decimal `gorm:"type:decimal(18,4)"`
	PurchaseDate *time.Time       `gorm:"type:date"`
	Phone        string           `gorm:"type:varchar(50)"`
	Salary       *decimal.Decimal `gorm:"type:decimal(18,2)"`
	HireDate     *time.Time       `gorm:"type:date"`
	Status       ItemStatus       `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// ItemDetails holds the descriptive, editable attributes of an item.
type ItemDetails struct {
	ItemType     ItemType
	ItemName     string
	Category     string
	Unit         string
	ReorderLevel *decimal.Decimal
	PurchaseDate *time.Time
	Phone        string
	Salary       *decimal.Decimal
	HireDate     *time.Time
}

func (d ItemDetails) validate() shared.ValidationErrors {
	var errs shared.ValidationErrors
	if !d.ItemType.IsValid() {
		errs.Add("item_type", "Item type must be supply, equipment or employee.")
	}
	errs.Required("item_name", d.ItemName, "Item name is required.")
	errs.Required("category", d.Category, "Category is required.")
	errs.NonNegative("reorder_level", d.ReorderLevel, "Reorder level cannot be negative.")
	if d.ReorderLevel != nil && !FitsQuantityScale(*d.ReorderLevel) {
		errs.Add("reorder_level", "Reorder level can have at most 4 decimal places.")
	}
	errs.NonNegative("salary", d.Salary, "Salary cannot be negative.")
	return errs
}

// NewInventoryItem creates an active item. The initial quantity is recorded
// by the caller as an opening-balance movement, see OpeningMovement.
func NewInventoryItem(owner uuid.UUID, details ItemDetails, initialQuantity decimal.Decimal) (*InventoryItem, error) {
	errs := details.validate()
	if initialQuantity.IsNegative() {
		errs.Add("quantity", "Quantity cannot be negative.")
	} else if !FitsQuantityScale(initialQuantity) {
		errs.Add("quantity", "Quantity can have at most 4 decimal places.")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	item := &InventoryItem{
		OwnedEntity: shared.NewOwnedEntity(owner),
		Quantity:    decimal.Zero,
		Status:      ItemStatusActive,
	}
	item.applyDetails(details)
	return item, nil
}

// UpdateDetails replaces the descriptive attributes. Quantity is not editable here.
func (i *InventoryItem) UpdateDetails(details ItemDetails) error {
	if err := details.validate().Err(); err != nil {
		return err
	}
	i.applyDetails(details)
	i.Touch()
	return nil
}

func (i *InventoryItem) applyDetails(d ItemDetails) {
	i.ItemType = d.ItemType
	i.ItemName = strings.TrimSpace(d.ItemName)
	i.Category = strings.TrimSpace(d.Category)
	i.Unit = strings.TrimSpace(d.Unit)
	i.ReorderLevel = d.ReorderLevel
	i.PurchaseDate = d.PurchaseDate
	i.Phone = strings.TrimSpace(d.Phone)
	i.Salary = d.Salary
	i.HireDate = d.HireDate
}

// SetStatus changes the lifecycle status
func (i *InventoryItem) SetStatus(status ItemStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Status must be active or inactive")
	}
	i.Status = status
	i.Touch()
	return nil
}

// Deactivate marks the item inactive. It is how items are "deleted".
func (i *InventoryItem) Deactivate() {
	i.Status = ItemStatusInactive
	i.Touch()
}

// IsActive reports whether the item accepts stock movements
func (i *InventoryItem) IsActive() bool {
	return i.Status == ItemStatusActive
}

// IsLowStock reports whether a supply item has fallen to its reorder level.
func (i *InventoryItem) IsLowStock() bool {
	if i.ItemType != ItemTypeSupply || i.ReorderLevel == nil {
		return false
	}
	if i.ReorderLevel.IsNegative() {
		return false
	}
	return i.Quantity.LessThanOrEqual(*i.ReorderLevel)
}

// ApplyMovement validates a movement against the item's current quantity and,
// on success, moves the cached quantity and returns the movement to append.
// Persistence goes through an atomic conditional update instead; this is the
// in-memory form of the same rule.
func (i *InventoryItem) ApplyMovement(req MovementRequest, actor uuid.UUID) (*StockMovement, error) {
	if err := ValidateMovement(i, req); err != nil {
		return nil, err
	}

	before := i.Quantity
	after := req.Type.Apply(before, req.Quantity)

	m := NewStockMovement(i.ID, req, before, after, actor)
	i.Quantity = after
	i.Touch()
	return m, nil
}

// OpeningMovement returns the movement that records an initial quantity, or
// nil when the item starts empty.
func (i *InventoryItem) OpeningMovement(initialQuantity decimal.Decimal, date time.Time) (*StockMovement, error) {
	if !initialQuantity.IsPositive() {
		return nil, nil
	}
	return i.ApplyMovement(MovementRequest{
		Type:         MovementIn,
		Quantity:     initialQuantity,
		Reason:       OpeningBalanceReason,
		MovementDate: date,
	}, i.CreatedBy)
}
