package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/domain/farm"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/farmsaathi/backend/internal/infrastructure/persistence/datascope"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCropRepository implements farm.CropRepository
type GormCropRepository struct {
	*GormOwnedRepository[farm.Crop]
	db *gorm.DB
}

// NewGormCropRepository creates a crop repository
func NewGormCropRepository(db *gorm.DB) *GormCropRepository {
	return &GormCropRepository{
		GormOwnedRepository: NewGormOwnedRepository[farm.Crop](db, OwnedQuery{
			SortFields:    CropSortFields,
			DefaultSort:   "planting_date",
			DefaultDir:    "DESC",
			SearchColumns: []string{"crop_name", "crop_type"},
			FilterColumns: map[string]bool{"status": true, "crop_type": true},
		}),
		db: db,
	}
}

// FindHarvestsDue returns visible active crops to be harvested in [from, to], soonest first
func (r *GormCropRepository) FindHarvestsDue(ctx context.Context, pred access.Predicate, from, to time.Time, limit int) ([]farm.Crop, error) {
	q := r.db.WithContext(ctx).
		Scopes(datascope.Scope(pred)).
		Where("status = ?", farm.CropStatusActive).
		Where("harvest_date BETWEEN ? AND ?", shared.DateOf(from), shared.DateOf(to)).
		Order("harvest_date ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var crops []farm.Crop
	return crops, q.Find(&crops).Error
}

// SumActiveArea sums the area of visible active crops
func (r *GormCropRepository) SumActiveArea(ctx context.Context, pred access.Predicate) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&farm.Crop{}).
		Scopes(datascope.Scope(pred)).
		Where("status = ?", farm.CropStatusActive).
		Select("COALESCE(SUM(area_hectares), 0)").
		Row().Scan(&total)
	return total, err
}

// GormLivestockRepository implements farm.LivestockRepository
type GormLivestockRepository struct {
	*GormOwnedRepository[farm.Livestock]
	db *gorm.DB
}

// NewGormLivestockRepository creates a livestock repository
func NewGormLivestockRepository(db *gorm.DB) *GormLivestockRepository {
	return &GormLivestockRepository{
		GormOwnedRepository: NewGormOwnedRepository[farm.Livestock](db, OwnedQuery{
			SortFields:    LivestockSortFields,
			DefaultSort:   "created_at",
			DefaultDir:    "DESC",
			SearchColumns: []string{"animal_tag", "breed", "current_location"},
			FilterColumns: map[string]bool{"animal_type": true, "status": true, "gender": true},
		}),
		db: db,
	}
}

// ExistsByTag reports whether tag is used by any animal other than excludeID.
// Tags are unique across owners.
func (r *GormLivestockRepository) ExistsByTag(ctx context.Context, tag string, excludeID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&farm.Livestock{}).Where("animal_tag = ?", tag)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// HeadCount sums heads of visible active livestock and counts distinct animal types
func (r *GormLivestockRepository) HeadCount(ctx context.Context, pred access.Predicate) (int64, int64, error) {
	var head, types int64
	err := r.db.WithContext(ctx).Model(&farm.Livestock{}).
		Scopes(datascope.Scope(pred)).
		Where("status = ?", farm.LivestockStatusActive).
		Select("COALESCE(SUM(quantity), 0), COUNT(DISTINCT animal_type)").
		Row().Scan(&head, &types)
	return head, types, err
}

// FindHealthTasksDue lists health events of visible active animals due in [from, to]
func (r *GormLivestockRepository) FindHealthTasksDue(ctx context.Context, pred access.Predicate, from, to time.Time) ([]farm.HealthTask, error) {
	var tasks []farm.HealthTask
	err := r.db.WithContext(ctx).
		Table("livestock_health_records AS h").
		Joins("JOIN livestock AS l ON l.id = h.livestock_id").
		Scopes(datascope.ScopeColumn(pred, "l.created_by")).
		Where("l.status = ?", farm.LivestockStatusActive).
		Where("h.next_due_date BETWEEN ? AND ?", shared.DateOf(from), shared.DateOf(to)).
		Select("h.livestock_id, l.animal_tag, l.animal_type, l.breed, h.next_due_date AS due_date, h.description").
		Order("h.next_due_date ASC").
		Scan(&tasks).Error
	return tasks, err
}

// GormLivestockRecordRepository persists one kind of livestock history row
type GormLivestockRecordRepository[T any] struct {
	db *gorm.DB
}

// NewGormLivestockRecordRepository creates a history repository for T
func NewGormLivestockRecordRepository[T any](db *gorm.DB) *GormLivestockRecordRepository[T] {
	return &GormLivestockRecordRepository[T]{db: db}
}

// Create inserts a record
func (r *GormLivestockRecordRepository[T]) Create(ctx context.Context, record *T) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByID finds a record by id
func (r *GormLivestockRecordRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var record T
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByLivestock lists the records of one animal, newest first
func (r *GormLivestockRecordRepository[T]) FindByLivestock(ctx context.Context, livestockID uuid.UUID) ([]T, error) {
	var records []T
	err := r.db.WithContext(ctx).
		Where("livestock_id = ?", livestockID).
		Order("record_date DESC").Order("created_at DESC").
		Find(&records).Error
	return records, err
}

// Delete removes a record
func (r *GormLivestockRecordRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// NewGormEquipmentRepository creates an equipment repository, soonest maintenance first
func NewGormEquipmentRepository(db *gorm.DB) *GormOwnedRepository[farm.Equipment] {
	return NewGormOwnedRepository[farm.Equipment](db, OwnedQuery{
		SortFields:    EquipmentSortFields,
		DefaultSort:   "next_maintenance",
		DefaultDir:    "ASC",
		SearchColumns: []string{"equipment_name", "type"},
		FilterColumns: map[string]bool{"condition": true, "type": true},
	})
}

// NewGormEmployeeRepository creates an employee repository
func NewGormEmployeeRepository(db *gorm.DB) *GormOwnedRepository[farm.Employee] {
	return NewGormOwnedRepository[farm.Employee](db, OwnedQuery{
		SortFields:    EmployeeSortFields,
		DefaultSort:   "name",
		DefaultDir:    "ASC",
		SearchColumns: []string{"name", "role", "phone"},
		FilterColumns: map[string]bool{"status": true, "role": true},
	})
}

var (
	_ farm.CropRepository                                   = (*GormCropRepository)(nil)
	_ farm.LivestockRepository                              = (*GormLivestockRepository)(nil)
	_ farm.EquipmentRepository                              = (*GormOwnedRepository[farm.Equipment])(nil)
	_ farm.EmployeeRepository                               = (*GormOwnedRepository[farm.Employee])(nil)
	_ farm.LivestockRecordRepository[farm.HealthRecord]     = (*GormLivestockRecordRepository[farm.HealthRecord])(nil)
	_ farm.LivestockRecordRepository[farm.BreedingRecord]   = (*GormLivestockRecordRepository[farm.BreedingRecord])(nil)
	_ farm.LivestockRecordRepository[farm.ProductionRecord] = (*GormLivestockRecordRepository[farm.ProductionRecord])(nil)
	_ farm.LivestockRecordRepository[farm.ExpenseRecord]    = (*GormLivestockRecordRepository[farm.ExpenseRecord])(nil)
)
