package farm

import (
	"context"
	"time"

	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CropRepository persists crops
type CropRepository interface {
	access.OwnedRepository[Crop]

	// FindHarvestsDue returns visible active crops with a harvest date in [from, to]
	FindHarvestsDue(ctx context.Context, pred access.Predicate, from, to time.Time, limit int) ([]Crop, error)

	// SumActiveArea sums area_hectares of visible active crops
	SumActiveArea(ctx context.Context, pred access.Predicate) (decimal.Decimal, error)
}

// LivestockRepository persists livestock
type LivestockRepository interface {
	access.OwnedRepository[Livestock]

	ExistsByTag(ctx context.Context, tag string, excludeID *uuid.UUID) (bool, error)

	// HeadCount sums quantity of visible active livestock and counts distinct types
	HeadCount(ctx context.Context, pred access.Predicate) (head int64, types int64, err error)

	// FindHealthTasksDue lists health records of visible active animals due in [from, to]
	FindHealthTasksDue(ctx context.Context, pred access.Predicate, from, to time.Time) ([]HealthTask, error)
}

// LivestockRecordRepository persists one kind of livestock history
type LivestockRecordRepository[T any] interface {
	Create(ctx context.Context, record *T) error
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindByLivestock(ctx context.Context, livestockID uuid.UUID) ([]T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// EquipmentRepository persists equipment
type EquipmentRepository interface {
	access.OwnedRepository[Equipment]
}

// EmployeeRepository persists employees
type EmployeeRepository interface {
	access.OwnedRepository[Employee]
}
