package inventory

import (
	"time"

	"github.com/farmsaathi/backend/internal/application/owned"
	"github.com/farmsaathi/backend/internal/domain/inventory"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateItemRequest creates an inventory item. Quantity becomes the opening balance.
type CreateItemRequest struct {
	ItemType     string           `json:"item_type" binding:"required,oneof=supply equipment employee"`
	ItemName     string           `json:"item_name" binding:"required,max=200"`
	Category     string           `json:"category" binding:"required,max=100"`
	Quantity     decimal.Decimal  `json:"quantity"`
	Unit         string           `json:"unit" binding:"max=30"`
	ReorderLevel *decimal.Decimal `json:"reorder_level"`
	PurchaseDate string           `json:"purchase_date"`
	Phone        string           `json:"phone" binding:"max=50"`
	Salary       *decimal.Decimal `json:"salary"`
	HireDate     string           `json:"hire_date"`
}

// UpdateItemRequest replaces an item's descriptive fields. The quantity only
// changes through stock movements.
type UpdateItemRequest struct {
	ItemType     string           `json:"item_type" binding:"required,oneof=supply equipment employee"`
	ItemName     string           `json:"item_name" binding:"required,max=200"`
	Category     string           `json:"category" binding:"required,max=100"`
	Unit         string           `json:"unit" binding:"max=30"`
	ReorderLevel *decimal.Decimal `json:"reorder_level"`
	PurchaseDate string           `json:"purchase_date"`
	Phone        string           `json:"phone" binding:"max=50"`
	Salary       *decimal.Decimal `json:"salary"`
	HireDate     string           `json:"hire_date"`
	Status       string           `json:"status" binding:"omitempty,oneof=active inactive"`
}

func itemDetails(errs *shared.ValidationErrors, itemType, name, category, unit string, reorder *decimal.Decimal,
	purchaseDate, phone string, salary *decimal.Decimal, hireDate string) inventory.ItemDetails {
	return inventory.ItemDetails{
		ItemType:     inventory.ItemType(itemType),
		ItemName:     name,
		Category:     category,
		Unit:         unit,
		ReorderLevel: reorder,
		PurchaseDate: errs.Date("purchase_date", purchaseDate),
		Phone:        phone,
		Salary:       salary,
		HireDate:     errs.Date("hire_date", hireDate),
	}
}

func (r CreateItemRequest) details() (inventory.ItemDetails, error) {
	var errs shared.ValidationErrors
	d := itemDetails(&errs, r.ItemType, r.ItemName, r.Category, r.Unit, r.ReorderLevel, r.PurchaseDate, r.Phone, r.Salary, r.HireDate)
	return d, errs.Err()
}

func (r UpdateItemRequest) details() (inventory.ItemDetails, error) {
	var errs shared.ValidationErrors
	d := itemDetails(&errs, r.ItemType, r.ItemName, r.Category, r.Unit, r.ReorderLevel, r.PurchaseDate, r.Phone, r.Salary, r.HireDate)
	return d, errs.Err()
}

// ItemQuery filters the item listing. Type selects the item type.
type ItemQuery struct {
	owned.ListQuery
	Category string `form:"category"`
	LowStock bool   `form:"low_stock"`
}

func (q ItemQuery) filter() shared.Filter {
	f := q.ListQuery.Filter("status", "item_type")
	if q.Category != "" {
		f.Filters["category"] = q.Category
	}
	if q.LowStock {
		f.Filters[inventory.LowStockFilter] = true
	}
	return f
}

// ItemResponse is an inventory item as returned by the API
type ItemResponse struct {
	ID           uuid.UUID        `json:"id"`
	ItemType     string           `json:"item_type"`
	ItemName     string           `json:"item_name"`
	Category     string           `json:"category"`
	Quantity     decimal.Decimal  `json:"quantity"`
	Unit         string           `json:"unit"`
	ReorderLevel *decimal.Decimal `json:"reorder_level,omitempty"`
	PurchaseDate *time.Time       `json:"purchase_date,omitempty"`
	Phone        string           `json:"phone,omitempty"`
	Salary       *decimal.Decimal `json:"salary,omitempty"`
	HireDate     *time.Time       `json:"hire_date,omitempty"`
	Status       string           `json:"status"`
	LowStock     bool             `json:"low_stock"`
	CreatedBy    uuid.UUID        `json:"created_by"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ToItemResponse converts a domain item
func ToItemResponse(i inventory.InventoryItem) ItemResponse {
	return ItemResponse{
		ID:           i.ID,
		ItemType:     string(i.ItemType),
		ItemName:     i.ItemName,
		Category:     i.Category,
		Quantity:     i.Quantity,
		Unit:         i.Unit,
		ReorderLevel: i.ReorderLevel,
		PurchaseDate: i.PurchaseDate,
		Phone:        i.Phone,
		Salary:       i.Salary,
		HireDate:     i.HireDate,
		Status:       string(i.Status),
		LowStock:     i.IsLowStock(),
		CreatedBy:    i.CreatedBy,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

// RecordMovementInput is one stock movement against an item
type RecordMovementInput struct {
	MovementType    string          `json:"movement_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	Reason          string          `json:"reason" binding:"max=255"`
	ReferenceNumber string          `json:"reference_number" binding:"max=100"`
	Notes           string          `json:"notes"`
	MovementDate    string          `json:"movement_date"`

	// IdempotencyKey comes from the Idempotency-Key header
	IdempotencyKey string `json:"-"`
}

// request converts the input. A malformed movement_date is returned as field
// errors next to a request with a zero date, so the caller can report it
// together with the ledger rules.
func (in RecordMovementInput) request() (inventory.MovementRequest, shared.ValidationErrors) {
	var errs shared.ValidationErrors
	date := errs.Date("movement_date", in.MovementDate)
	return inventory.MovementRequest{
		Type:            inventory.MovementType(in.MovementType),
		Quantity:        in.Quantity,
		Reason:          in.Reason,
		ReferenceNumber: in.ReferenceNumber,
		Notes:           in.Notes,
		MovementDate:    shared.DateOrZero(date),
	}, errs
}

// MovementResult is the outcome of a recorded movement
type MovementResult struct {
	ItemID   uuid.UUID        `json:"item_id"`
	Quantity decimal.Decimal  `json:"quantity"`
	LowStock bool             `json:"low_stock"`
	Movement MovementResponse `json:"movement"`
}

// MovementQuery filters movement history and summaries
type MovementQuery struct {
	ItemID   string `form:"item_id" binding:"omitempty,uuid"`
	Type     string `form:"type" binding:"omitempty,oneof=in out"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (q MovementQuery) filter() (inventory.MovementFilter, error) {
	var errs shared.ValidationErrors
	f := inventory.MovementFilter{
		DateFrom: errs.Date("date_from", q.DateFrom),
		DateTo:   errs.Date("date_to", q.DateTo),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if q.ItemID != "" {
		id, err := uuid.Parse(q.ItemID)
		if err != nil {
			errs.Add("item_id", "Invalid item id.")
		} else {
			f.ItemID = &id
		}
	}
	if q.Type != "" {
		t := inventory.MovementType(q.Type)
		if !t.IsValid() {
			errs.Add("type", "Type must be in or out.")
		} else {
			f.Type = &t
		}
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		errs.Add("date_to", "End date cannot be before start date.")
	}
	return f, errs.Err()
}

// MovementResponse is a stock movement as shown in history
type MovementResponse struct {
	ID              uuid.UUID       `json:"id"`
	InventoryItemID uuid.UUID       `json:"inventory_item_id"`
	ItemName        string          `json:"item_name,omitempty"`
	Unit            string          `json:"unit,omitempty"`
	MovementType    string          `json:"movement_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	BalanceBefore   decimal.Decimal `json:"balance_before"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	Reason          string          `json:"reason"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	MovementDate    time.Time       `json:"movement_date"`
	CreatedBy       uuid.UUID       `json:"created_by"`
	CreatedByName   string          `json:"created_by_name,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToMovementResponse converts a bare movement
func ToMovementResponse(m inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:              m.ID,
		InventoryItemID: m.InventoryItemID,
		MovementType:    string(m.MovementType),
		Quantity:        m.Quantity,
		BalanceBefore:   m.BalanceBefore,
		BalanceAfter:    m.BalanceAfter,
		Reason:          m.Reason,
		ReferenceNumber: m.ReferenceNumber,
		Notes:           m.Notes,
		MovementDate:    m.MovementDate,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
	}
}

// ToMovementRecordResponse converts a movement joined with its item and author
func ToMovementRecordResponse(r inventory.MovementRecord) MovementResponse {
	resp := ToMovementResponse(r.StockMovement)
	resp.ItemName = r.ItemName
	resp.Unit = r.Unit
	resp.CreatedByName = r.Username
	return resp
}

// MovementSummaryResponse totals a set of movements
type MovementSummaryResponse struct {
	TotalIn  decimal.Decimal `json:"total_in"`
	TotalOut decimal.Decimal `json:"total_out"`
	Net      decimal.Decimal `json:"net"`
	Count    int64           `json:"count"`
}

// BalanceCheckResponse compares an item's cached quantity with its ledger
type BalanceCheckResponse struct {
	ItemID     uuid.UUID       `json:"item_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	LedgerNet  decimal.Decimal `json:"ledger_net"`
	Consistent bool            `json:"consistent"`
}
