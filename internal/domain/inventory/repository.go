package inventory

import (
	"context"
	"time"

	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LowStockFilter is the shared.Filter key that restricts an item listing to low-stock items
const LowStockFilter = "low_stock"

// InventoryItemRepository defines the interface for inventory item persistence
type InventoryItemRepository interface {
	// FindByID finds an item regardless of owner; access is decided by the caller
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)

	// FindAll returns the visible items matching filter and the total count
	FindAll(ctx context.Context, pred access.Predicate, filter shared.Filter) ([]InventoryItem, int64, error)

	// FindLowStock returns visible supply items at or below their reorder level
	FindLowStock(ctx context.Context, pred access.Predicate) ([]InventoryItem, error)

	// CountLowStock counts visible low-stock items
	CountLowStock(ctx context.Context, pred access.Predicate) (int64, error)

	Create(ctx context.Context, item *InventoryItem) error

	// Update saves descriptive fields and status; quantity is never written here
	Update(ctx context.Context, item *InventoryItem) error

	// AdjustQuantity moves the cached quantity in one conditional statement and
	// returns the resulting quantity. An out movement larger than the stored
	// quantity changes nothing and returns a LedgerError.
	AdjustQuantity(ctx context.Context, id uuid.UUID, movementType MovementType, qty decimal.Decimal) (decimal.Decimal, error)
}

// MovementFilter selects movements for history and summary queries
type MovementFilter struct {
	ItemID   *uuid.UUID
	Type     *MovementType
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}

// StockMovementRepository defines the interface for the append-only movement log
type StockMovementRepository interface {
	Create(ctx context.Context, movement *StockMovement) error

	// FindAll returns movements of visible items, newest first, and the total count
	FindAll(ctx context.Context, pred access.Predicate, filter MovementFilter) ([]MovementRecord, int64, error)

	// Summarize aggregates the movements selected by filter
	Summarize(ctx context.Context, pred access.Predicate, filter MovementFilter) (MovementSummary, error)

	// NetQuantity returns sum(in) - sum(out) over all movements of an item
	NetQuantity(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error)
}
