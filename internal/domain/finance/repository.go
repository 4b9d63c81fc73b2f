package finance

import (
	"context"
	"time"

	"github.com/farmsaathi/backend/internal/domain/access"
)

// TransactionRepository persists finance transactions
type TransactionRepository interface {
	access.OwnedRepository[Transaction]

	// Totals sums income and expense of visible transactions, optionally in [from, to]
	Totals(ctx context.Context, pred access.Predicate, from, to *time.Time) (Totals, error)

	// EntriesSince returns visible entries dated on or after from
	EntriesSince(ctx context.Context, pred access.Predicate, from time.Time) ([]Entry, error)

	// TotalsByCategory sums visible transactions of one type per category, largest first
	TotalsByCategory(ctx context.Context, pred access.Predicate, txType TransactionType) ([]CategoryTotal, error)
}
