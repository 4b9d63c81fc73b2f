package access

import (
	"context"

	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OwnedRepository is the persistence contract of every owned table.
// FindByID deliberately ignores ownership so that callers can tell a missing
// record from a forbidden one before calling AuthorizeRecordAccess; every
// listing takes the predicate.
type OwnedRepository[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindAll(ctx context.Context, pred Predicate, filter shared.Filter) ([]T, int64, error)
	Count(ctx context.Context, pred Predicate, filters map[string]interface{}) (int64, error)
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
}
