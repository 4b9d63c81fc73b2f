package inventory

import (
	"context"

	"github.com/farmsaathi/backend/internal/domain/inventory"
)

// TransactionScope runs ledger writes atomically.
// The function receives repositories bound to one transaction; returning an
// error rolls back every write made through them.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are the ledger repositories inside a transaction
type TransactionalRepositories interface {
	ItemRepo() inventory.InventoryItemRepository
	MovementRepo() inventory.StockMovementRepository
}

// NoOpTransactionScope hands out plain repositories without a transaction.
// It is meant for unit tests with in-memory fakes.
type NoOpTransactionScope struct {
	itemRepo     inventory.InventoryItemRepository
	movementRepo inventory.StockMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(itemRepo inventory.InventoryItemRepository, movementRepo inventory.StockMovementRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{itemRepo: itemRepo, movementRepo: movementRepo}
}

// Execute calls fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ItemRepo returns the item repository
func (s *NoOpTransactionScope) ItemRepo() inventory.InventoryItemRepository {
	return s.itemRepo
}

// MovementRepo returns the movement repository
func (s *NoOpTransactionScope) MovementRepo() inventory.StockMovementRepository {
	return s.movementRepo
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
