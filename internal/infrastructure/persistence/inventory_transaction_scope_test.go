package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	appinv "github.com/farmsaathi/backend/internal/application/inventory"
	"github.com/farmsaathi/backend/internal/domain/inventory"
	"github.com/farmsaathi/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope_RollsBackWhenMovementInsertFails(t *testing.T) {
	m := testutil.NewMockDB(t)
	scope := NewGormTransactionScope(m.DB)
	itemID := uuid.New()
	insertErr := errors.New("insert failed")

	m.Mock.ExpectBegin()
	m.Mock.ExpectExec(`UPDATE "inventory_items" SET "quantity"=ROUND\(quantity \+ \$1, 4\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	m.Mock.ExpectQuery(`SELECT \* FROM "inventory_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quantity"}).AddRow(itemID, "15"))
	m.Mock.ExpectExec(`INSERT INTO "stock_movements"`).WillReturnError(insertErr)
	m.Mock.ExpectRollback()

	err := scope.Execute(context.Background(), func(repos appinv.TransactionalRepositories) error {
		after, err := repos.ItemRepo().AdjustQuantity(context.Background(), itemID, inventory.MovementIn, dec("5"))
		if err != nil {
			return err
		}
		mv := inventory.NewStockMovement(itemID, inventory.MovementRequest{
			Type: inventory.MovementIn, Quantity: dec("5"), Reason: "restock",
		}, dec("10"), after, uuid.New())
		return repos.MovementRepo().Create(context.Background(), mv)
	})

	assert.ErrorIs(t, err, insertErr)
	m.ExpectationsWereMet(t)
}

func TestGormTransactionScope_CommitsOnSuccess(t *testing.T) {
	m := testutil.NewMockDB(t)

	m.Mock.ExpectBegin()
	m.Mock.ExpectExec(`INSERT INTO "stock_movements"`).WillReturnResult(sqlmock.NewResult(0, 1))
	m.Mock.ExpectCommit()

	err := NewGormTransactionScope(m.DB).Execute(context.Background(), func(repos appinv.TransactionalRepositories) error {
		mv := inventory.NewStockMovement(uuid.New(), inventory.MovementRequest{
			Type: inventory.MovementIn, Quantity: dec("1"), Reason: "restock",
		}, dec("0"), dec("1"), uuid.New())
		return repos.MovementRepo().Create(context.Background(), mv)
	})

	require.NoError(t, err)
	m.ExpectationsWereMet(t)
}

func TestGormTransactionScope_SQLiteRollbackKeepsLedgerConsistent(t *testing.T) {
	db := testutil.NewSQLiteDB(t, Models()...)
	ctx := context.Background()
	item := seedItem(t, db, uuid.New(), "Hay", inventory.ItemTypeSupply, "10", nil)
	failure := errors.New("abort after update")

	err := NewGormTransactionScope(db).Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		if _, err := repos.ItemRepo().AdjustQuantity(ctx, item.ID, inventory.MovementOut, dec("4")); err != nil {
			return err
		}
		return failure
	})
	require.ErrorIs(t, err, failure)

	stored, err := NewGormInventoryItemRepository(db).FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, stored.Quantity.Equal(dec("10")))
}
