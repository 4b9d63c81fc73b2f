package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/farmsaathi/backend/internal/infrastructure/persistence/datascope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedQuery describes how one owned table is searched, filtered and sorted
type OwnedQuery struct {
	SortFields  map[string]bool
	DefaultSort string
	DefaultDir  string
	// SearchColumns are matched case-insensitively against Filter.Search
	SearchColumns []string
	// FilterColumns whitelists the keys of Filter.Filters compared by equality
	FilterColumns map[string]bool
	// OmitOnUpdate lists columns Update never writes
	OmitOnUpdate []string
}

// GormOwnedRepository implements access.OwnedRepository for any table with a
// created_by owner column.
type GormOwnedRepository[T any] struct {
	db    *gorm.DB
	query OwnedQuery
}

// NewGormOwnedRepository creates a repository for T
func NewGormOwnedRepository[T any](db *gorm.DB, query OwnedQuery) *GormOwnedRepository[T] {
	query.OmitOnUpdate = append([]string{"created_by", "created_at"}, query.OmitOnUpdate...)
	return &GormOwnedRepository[T]{db: db, query: query}
}

// FindByID finds a record by id whoever owns it
func (r *GormOwnedRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

// FindAll returns one page of the rows pred allows and their total count
func (r *GormOwnedRepository[T]) FindAll(ctx context.Context, pred access.Predicate, filter shared.Filter) ([]T, int64, error) {
	var total int64
	if err := r.scoped(ctx, pred, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entities []T
	if err := r.applyPaging(r.scoped(ctx, pred, filter), filter).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	return entities, total, nil
}

// Count counts the rows pred allows that match filters
func (r *GormOwnedRepository[T]) Count(ctx context.Context, pred access.Predicate, filters map[string]interface{}) (int64, error) {
	var total int64
	err := r.scoped(ctx, pred, shared.Filter{Filters: filters}).Count(&total).Error
	return total, err
}

// Create inserts a record
func (r *GormOwnedRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

// Update saves a record. The owner column is never rewritten.
func (r *GormOwnedRepository[T]) Update(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Omit(r.query.OmitOnUpdate...).Save(entity).Error
}

// Delete removes a record by id
func (r *GormOwnedRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// scoped builds the filtered query without ordering or paging
func (r *GormOwnedRepository[T]) scoped(ctx context.Context, pred access.Predicate, filter shared.Filter) *gorm.DB {
	q := datascope.Apply(r.db.WithContext(ctx).Model(new(T)), pred)

	if search := strings.TrimSpace(filter.Search); search != "" && len(r.query.SearchColumns) > 0 {
		like := "%" + strings.ToLower(search) + "%"
		clauses := make([]string, len(r.query.SearchColumns))
		args := make([]any, len(r.query.SearchColumns))
		for i, col := range r.query.SearchColumns {
			clauses[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = like
		}
		q = q.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}

	for key, value := range filter.Filters {
		if r.query.FilterColumns[key] {
			q = q.Where(key+" = ?", value)
		}
	}
	return q
}

func (r *GormOwnedRepository[T]) applyPaging(q *gorm.DB, filter shared.Filter) *gorm.DB {
	sortField := ValidateSortField(filter.OrderBy, r.query.SortFields, r.query.DefaultSort)
	dir := r.query.DefaultDir
	if filter.OrderDir != "" || dir == "" {
		dir = ValidateSortOrder(filter.OrderDir)
	}
	q = q.Order(sortField + " " + dir).Order("id " + dir)

	if filter.PageSize > 0 {
		q = q.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return q
}
