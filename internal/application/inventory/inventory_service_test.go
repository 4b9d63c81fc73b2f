package inventory_test

import (
	"context"
	"testing"

	appinv "github.com/farmsaathi/backend/internal/application/inventory"
	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/domain/identity"
	"github.com/farmsaathi/backend/internal/domain/inventory"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/farmsaathi/backend/internal/infrastructure/persistence"
	"github.com/farmsaathi/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	items  *appinv.ItemService
	ledger *appinv.LedgerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t, &inventory.InventoryItem{}, &inventory.StockMovement{}, &identity.User{})
	itemRepo := persistence.NewGormInventoryItemRepository(db)
	scope := persistence.NewGormTransactionScope(db)
	return &fixture{
		db:     db,
		items:  appinv.NewItemService(itemRepo, scope, nil),
		ledger: appinv.NewLedgerService(itemRepo, persistence.NewGormStockMovementRepository(db), scope, nil),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func feed(qty, reorder string) appinv.CreateItemRequest {
	req := appinv.CreateItemRequest{
		ItemType: "supply",
		ItemName: "Cattle feed",
		Category: "Feed",
		Quantity: dec(qty),
		Unit:     "kg",
	}
	if reorder != "" {
		r := dec(reorder)
		req.ReorderLevel = &r
	}
	return req
}

func move(movementType, qty, reason string) appinv.RecordMovementInput {
	return appinv.RecordMovementInput{MovementType: movementType, Quantity: dec(qty), Reason: reason}
}

func (f *fixture) movementCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&inventory.StockMovement{}).Count(&n).Error)
	return n
}

func TestItemService_CreateRecordsOpeningBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := testutil.Manager(t, "asha")

	item, err := f.items.Create(ctx, manager, feed("100", "20"))
	require.NoError(t, err)
	assert.True(t, item.Quantity.Equal(dec("100")))
	assert.False(t, item.LowStock)

	history, err := f.ledger.MovementHistory(ctx, manager, appinv.MovementQuery{ItemID: item.ID.String()})
	require.NoError(t, err)
	require.Len(t, history.Items, 1)
	opening := history.Items[0]
	assert.Equal(t, inventory.OpeningBalanceReason, opening.Reason)
	assert.True(t, opening.BalanceBefore.IsZero())
	assert.True(t, opening.BalanceAfter.Equal(dec("100")))

	empty, err := f.items.Create(ctx, manager, feed("0", ""))
	require.NoError(t, err)
	assert.True(t, empty.Quantity.IsZero())
	assert.Equal(t, int64(1), f.movementCount(t), "empty items start without a ledger row")
}

func TestItemService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	req := feed("-5", "-1")
	req.PurchaseDate = "yesterday"

	_, err := f.items.Create(context.Background(), testutil.Manager(t, "asha"), req)
	var verrs shared.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "purchase_date", verrs[0].Field)

	req.PurchaseDate = ""
	_, err = f.items.Create(context.Background(), testutil.Manager(t, "asha"), req)
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = fe.Field
	}
	assert.ElementsMatch(t, []string{"reorder_level", "quantity"}, fields)
	assert.Zero(t, f.movementCount(t))
}

func TestItemService_UpdateNeverTouchesQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := testutil.Manager(t, "asha")

	item, err := f.items.Create(ctx, manager, feed("40", "10"))
	require.NoError(t, err)

	reorder := dec("50")
	updated, err := f.items.Update(ctx, manager, item.ID, appinv.UpdateItemRequest{
		ItemType:     "supply",
		ItemName:     "Mineral mix",
		Category:     "Feed",
		Unit:         "kg",
		ReorderLevel: &reorder,
	})
	require.NoError(t, err)
	assert.Equal(t, "Mineral mix", updated.ItemName)
	assert.True(t, updated.LowStock)

	qty, err := f.ledger.CurrentQuantity(ctx, manager, item.ID)
	require.NoError(t, err)
	assert.True(t, qty.Equal(dec("40")))

	_, err = f.items.Update(ctx, testutil.Manager(t, "other"), item.ID, appinv.UpdateItemRequest{
		ItemType: "supply", ItemName: "x", Category: "y",
	})
	assert.True(t, access.IsAccessError(err))
}

func TestItemService_DeleteDeactivates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := testutil.Manager(t, "asha")

	item, err := f.items.Create(ctx, manager, feed("10", ""))
	require.NoError(t, err)
	require.NoError(t, f.items.Delete(ctx, manager, item.ID))

	got, err := f.items.Get(ctx, manager, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", got.Status)

	_, err = f.ledger.RecordMovement(ctx, manager, item.ID, move("in", "5", "Restock"))
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	check, err := f.ledger.VerifyBalance(ctx, manager, item.ID)
	require.NoError(t, err)
	assert.True(t, check.Consistent)
}

func TestItemService_ListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.Manager(t, "manager_a")
	b := testutil.Manager(t, "manager_b")

	_, err := f.items.Create(ctx, a, feed("5", "10"))
	require.NoError(t, err)
	_, err = f.items.Create(ctx, a, feed("50", "10"))
	require.NoError(t, err)
	tool := appinv.CreateItemRequest{ItemType: "equipment", ItemName: "Sickle", Category: "Tools", Quantity: dec("3")}
	_, err = f.items.Create(ctx, a, tool)
	require.NoError(t, err)
	_, err = f.items.Create(ctx, b, feed("1", "10"))
	require.NoError(t, err)

	page, err := f.items.List(ctx, a, appinv.ItemQuery{LowStock: true})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].Quantity.Equal(dec("5")))

	page, err = f.items.List(ctx, a, appinv.ItemQuery{ListQuery: listQuery("equipment")})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Sickle", page.Items[0].ItemName)

	page, err = f.items.List(ctx, testutil.Admin(t), appinv.ItemQuery{LowStock: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}
