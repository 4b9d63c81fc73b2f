package persistence

import (
	"context"
	"time"

	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/domain/finance"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/farmsaathi/backend/internal/infrastructure/persistence/datascope"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormTransactionRepository implements finance.TransactionRepository
type GormTransactionRepository struct {
	*GormOwnedRepository[finance.Transaction]
	db *gorm.DB
}

// NewGormTransactionRepository creates a finance transaction repository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{
		GormOwnedRepository: NewGormOwnedRepository[finance.Transaction](db, OwnedQuery{
			SortFields:    TransactionSortFields,
			DefaultSort:   "transaction_date",
			DefaultDir:    "DESC",
			SearchColumns: []string{"category", "description"},
			FilterColumns: map[string]bool{"type": true, "category": true, "payment_method": true},
		}),
		db: db,
	}
}

func (r *GormTransactionRepository) visible(ctx context.Context, pred access.Predicate) *gorm.DB {
	return r.db.WithContext(ctx).Model(&finance.Transaction{}).Scopes(datascope.Scope(pred))
}

// Totals sums income and expense of visible transactions dated in [from, to]; nil bounds are open
func (r *GormTransactionRepository) Totals(ctx context.Context, pred access.Predicate, from, to *time.Time) (finance.Totals, error) {
	q := r.visible(ctx, pred)
	if from != nil {
		q = q.Where("transaction_date >= ?", shared.DateOf(*from))
	}
	if to != nil {
		q = q.Where("transaction_date <= ?", shared.DateOf(*to))
	}

	var totals struct {
		Income  decimal.Decimal
		Expense decimal.Decimal
	}
	err := q.Select(`COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0) AS income,
		COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS expense`).
		Scan(&totals).Error
	if err != nil {
		return finance.Totals{}, err
	}
	return finance.Totals{Income: totals.Income, Expense: totals.Expense}, nil
}

// EntriesSince returns visible entries dated on or after from
func (r *GormTransactionRepository) EntriesSince(ctx context.Context, pred access.Predicate, from time.Time) ([]finance.Entry, error) {
	var entries []finance.Entry
	err := r.visible(ctx, pred).
		Where("transaction_date >= ?", shared.DateOf(from)).
		Select("type, amount, transaction_date").
		Order("transaction_date ASC").
		Scan(&entries).Error
	return entries, err
}

// TotalsByCategory sums visible transactions of one type per category, largest first
func (r *GormTransactionRepository) TotalsByCategory(ctx context.Context, pred access.Predicate, txType finance.TransactionType) ([]finance.CategoryTotal, error) {
	var totals []finance.CategoryTotal
	err := r.visible(ctx, pred).
		Where("type = ?", string(txType)).
		Select("category, SUM(amount) AS total").
		Group("category").
		Order("total DESC").
		Scan(&totals).Error
	return totals, err
}

var _ finance.TransactionRepository = (*GormTransactionRepository)(nil)
