package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/domain/inventory"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/farmsaathi/backend/internal/infrastructure/persistence/datascope"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// lowStockCondition is the SQL form of InventoryItem.IsLowStock
const lowStockCondition = "item_type = 'supply' AND reorder_level IS NOT NULL AND reorder_level >= 0 AND quantity <= reorder_level"

// roundQuantity wraps a quantity expression in ROUND(expr, scale). Postgres
// numeric arithmetic is exact and the round is a no-op there; sqlite stores
// decimals as REAL, and rounding keeps sums and balances on the same 4-place
// grid as the values that were written.
func roundQuantity(expr string) string {
	return fmt.Sprintf("ROUND(%s, %d)", expr, inventory.QuantityScale)
}

// GormInventoryItemRepository implements InventoryItemRepository using GORM
type GormInventoryItemRepository struct {
	db    *gorm.DB
	owned *GormOwnedRepository[inventory.InventoryItem]
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{
		db: db,
		owned: NewGormOwnedRepository[inventory.InventoryItem](db, OwnedQuery{
			SortFields:    InventoryItemSortFields,
			DefaultSort:   "item_name",
			DefaultDir:    "ASC",
			SearchColumns: []string{"item_name", "category"},
			FilterColumns: map[string]bool{"item_type": true, "status": true, "category": true},
			OmitOnUpdate:  []string{"quantity"},
		}),
	}
}

// FindByID finds an inventory item by its ID
func (r *GormInventoryItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	return r.owned.FindByID(ctx, id)
}

// FindAll lists visible items. Filters[inventory.LowStockFilter] = true keeps low-stock items only.
func (r *GormInventoryItemRepository) FindAll(ctx context.Context, pred access.Predicate, filter shared.Filter) ([]inventory.InventoryItem, int64, error) {
	lowStock, _ := filter.Filters[inventory.LowStockFilter].(bool)
	query := func() *gorm.DB {
		q := r.owned.scoped(ctx, pred, filter)
		if lowStock {
			q = q.Where(lowStockCondition)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []inventory.InventoryItem
	if err := r.owned.applyPaging(query(), filter).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// FindLowStock returns visible low-stock items, lowest quantity first
func (r *GormInventoryItemRepository) FindLowStock(ctx context.Context, pred access.Predicate) ([]inventory.InventoryItem, error) {
	var items []inventory.InventoryItem
	err := r.db.WithContext(ctx).
		Scopes(datascope.Scope(pred)).
		Where(lowStockCondition).
		Order("quantity ASC").Order("item_name ASC").
		Find(&items).Error
	return items, err
}

// CountLowStock counts visible low-stock items
func (r *GormInventoryItemRepository) CountLowStock(ctx context.Context, pred access.Predicate) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&inventory.InventoryItem{}).
		Scopes(datascope.Scope(pred)).
		Where(lowStockCondition).
		Count(&count).Error
	return count, err
}

// CountLowStockItems counts low-stock items across all owners, for the metrics gauge
func (r *GormInventoryItemRepository) CountLowStockItems(ctx context.Context) (int64, error) {
	return r.CountLowStock(ctx, access.Predicate{All: true})
}

// Count counts the visible items matching filters
func (r *GormInventoryItemRepository) Count(ctx context.Context, pred access.Predicate, filters map[string]interface{}) (int64, error) {
	return r.owned.Count(ctx, pred, filters)
}

// Create inserts an item
func (r *GormInventoryItemRepository) Create(ctx context.Context, item *inventory.InventoryItem) error {
	return r.owned.Create(ctx, item)
}

// Update saves descriptive fields and status; the quantity column is never written
func (r *GormInventoryItemRepository) Update(ctx context.Context, item *inventory.InventoryItem) error {
	return r.owned.Update(ctx, item)
}

// AdjustQuantity applies a movement with one conditional UPDATE. An out
// movement only matches the row while quantity >= qty, so concurrent
// removals can never drive the quantity negative. qty must already fit
// inventory.QuantityScale.
func (r *GormInventoryItemRepository) AdjustQuantity(ctx context.Context, id uuid.UUID, movementType inventory.MovementType, qty decimal.Decimal) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&inventory.InventoryItem{}).Where("id = ?", id)

	var expr string
	switch movementType {
	case inventory.MovementIn:
		expr = "quantity + ?"
	case inventory.MovementOut:
		expr = "quantity - ?"
		q = q.Where("quantity >= ?", qty)
	default:
		return decimal.Zero, fmt.Errorf("adjust quantity: unknown movement type %q", movementType)
	}

	result := q.UpdateColumns(map[string]any{
		"quantity":   gorm.Expr(roundQuantity(expr), qty),
		"updated_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return decimal.Zero, result.Error
	}

	item, err := r.FindByID(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	if result.RowsAffected == 0 {
		return decimal.Zero, inventory.InsufficientStockError(item.Quantity, item.Unit)
	}
	return item.Quantity, nil
}

var _ inventory.InventoryItemRepository = (*GormInventoryItemRepository)(nil)

// GormStockMovementRepository implements StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Create appends a movement
func (r *GormStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindAll returns one page of movements of visible items, newest first
func (r *GormStockMovementRepository) FindAll(ctx context.Context, pred access.Predicate, filter inventory.MovementFilter) ([]inventory.MovementRecord, int64, error) {
	var total int64
	if err := r.filtered(ctx, pred, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.filtered(ctx, pred, filter).
		Select("stock_movements.*, inventory_items.item_name, inventory_items.unit, users.username").
		Joins("LEFT JOIN users ON users.id = stock_movements.created_by").
		Order("stock_movements.movement_date DESC").
		Order("stock_movements.created_at DESC").
		Order("stock_movements.id DESC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		q = q.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var records []inventory.MovementRecord
	if err := q.Scan(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

type movementTotals struct {
	TotalIn  decimal.Decimal
	TotalOut decimal.Decimal
	Count    int64
}

// Summarize totals in and out quantities of the filtered movements
func (r *GormStockMovementRepository) Summarize(ctx context.Context, pred access.Predicate, filter inventory.MovementFilter) (inventory.MovementSummary, error) {
	var totals movementTotals
	err := r.filtered(ctx, pred, filter).
		Select(roundQuantity("COALESCE(SUM(CASE WHEN stock_movements.movement_type = 'in' THEN stock_movements.quantity ELSE 0 END), 0)")+" AS total_in, "+
			roundQuantity("COALESCE(SUM(CASE WHEN stock_movements.movement_type = 'out' THEN stock_movements.quantity ELSE 0 END), 0)")+" AS total_out, "+
			"COUNT(*) AS count").
		Scan(&totals).Error
	if err != nil {
		return inventory.MovementSummary{}, err
	}
	return inventory.MovementSummary{TotalIn: totals.TotalIn, TotalOut: totals.TotalOut, Count: totals.Count}, nil
}

// NetQuantity returns sum(in) - sum(out) over all movements of an item
func (r *GormStockMovementRepository) NetQuantity(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	var net decimal.Decimal
	err := r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
		Where("inventory_item_id = ?", itemID).
		Select(roundQuantity("COALESCE(SUM(CASE WHEN movement_type = 'in' THEN quantity ELSE -quantity END), 0)")).
		Row().Scan(&net)
	return net, err
}

// filtered joins movements to their item so the visibility predicate applies to the item's owner
func (r *GormStockMovementRepository) filtered(ctx context.Context, pred access.Predicate, filter inventory.MovementFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Table("stock_movements").
		Joins("JOIN inventory_items ON inventory_items.id = stock_movements.inventory_item_id").
		Scopes(datascope.ScopeColumn(pred, "inventory_items.created_by"))

	if filter.ItemID != nil {
		q = q.Where("stock_movements.inventory_item_id = ?", *filter.ItemID)
	}
	if filter.Type != nil {
		q = q.Where("stock_movements.movement_type = ?", string(*filter.Type))
	}
	if filter.DateFrom != nil {
		q = q.Where("stock_movements.movement_date >= ?", shared.DateOf(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		q = q.Where("stock_movements.movement_date <= ?", shared.DateOf(*filter.DateTo))
	}
	return q
}

var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
