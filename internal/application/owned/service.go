// Package owned implements the read and write paths shared by every record
// type that carries a single owner. Each operation resolves access before it
// touches the record, so module services only add their own validation.
package owned

import (
	"context"
	"errors"
	"fmt"

	"github.com/farmsaathi/backend/internal/application/activity"
	"github.com/farmsaathi/backend/internal/domain/access"
	domainactivity "github.com/farmsaathi/backend/internal/domain/activity"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/farmsaathi/backend/internal/infrastructure/logger"
	"github.com/farmsaathi/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Paging limits of owned listings
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Ptr constrains the pointer type of an owned record
type Ptr[T any] interface {
	*T
	shared.Owned
}

// Service runs access-checked CRUD on one owned table
type Service[T any, PT Ptr[T]] struct {
	repo     access.OwnedRepository[T]
	module   string
	recorder activity.Recorder
	label    func(*T) string
}

// NewService creates a Service for module. label names a record in the
// activity log; recorder may be nil.
func NewService[T any, PT Ptr[T]](repo access.OwnedRepository[T], module string, recorder activity.Recorder, label func(*T) string) *Service[T, PT] {
	if recorder == nil {
		recorder = activity.Nop{}
	}
	return &Service[T, PT]{repo: repo, module: module, recorder: recorder, label: label}
}

// Module returns the module name used in spans and activity entries
func (s *Service[T, PT]) Module() string {
	return s.module
}

// Get loads a record the principal may access. Missing and forbidden records
// produce the same AccessError.
func (s *Service[T, PT]) Get(ctx context.Context, p access.Principal, id uuid.UUID) (*T, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.module, "get", telemetry.WithAttribute("record.id", id.String()))
	defer span.End()

	entity, err := s.load(ctx, p, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return entity, nil
}

// load is Get without its own span
func (s *Service[T, PT]) load(ctx context.Context, p access.Principal, id uuid.UUID) (*T, error) {
	entity, err := s.repo.FindByID(ctx, id)
	exists := true
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		exists = false
	}

	var owner uuid.UUID
	if exists {
		owner = PT(entity).GetOwnerID()
	}
	if err := access.AuthorizeRecordAccess(p, owner, exists); err != nil {
		s.logDenied(ctx, id, err)
		return nil, err
	}
	return entity, nil
}

// Authorize checks access to a record without returning it
func (s *Service[T, PT]) Authorize(ctx context.Context, p access.Principal, id uuid.UUID) error {
	_, err := s.load(ctx, p, id)
	return err
}

func (s *Service[T, PT]) logDenied(ctx context.Context, id uuid.UUID, err error) {
	var ae *access.AccessError
	if !errors.As(err, &ae) {
		return
	}
	logger.L(ctx).Warn("record access refused",
		zap.String("module", s.module),
		zap.String("record_id", id.String()),
		zap.String("reason", string(ae.Reason)),
		zap.String("detail", ae.Detail()),
	)
}

// List returns one page of the records the principal may see
func (s *Service[T, PT]) List(ctx context.Context, p access.Principal, filter shared.Filter) (shared.Paginated[T], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.module, "list")
	defer span.End()

	filter = filter.Normalize(DefaultPageSize, MaxPageSize)
	items, total, err := s.repo.FindAll(ctx, access.VisibilityPredicate(p), filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return shared.Paginated[T]{}, err
	}
	telemetry.SetAttributes(span, "result.total", total)
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Count counts the visible records matching filters
func (s *Service[T, PT]) Count(ctx context.Context, p access.Principal, filters map[string]interface{}) (int64, error) {
	return s.repo.Count(ctx, access.VisibilityPredicate(p), filters)
}

// Create builds a record owned by the principal and stores it
func (s *Service[T, PT]) Create(ctx context.Context, p access.Principal, build func(owner uuid.UUID) (*T, error)) (*T, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.module, "create")
	defer span.End()

	entity, err := build(access.OwnerForNewRecord(p))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.repo.Create(ctx, entity); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to create %s record: %w", s.module, err)
	}

	s.recorder.Record(ctx, p, domainactivity.ActionCreate, s.module, "Created "+s.describe(entity))
	return entity, nil
}

// Update applies mutate to a record the principal may access and saves it
func (s *Service[T, PT]) Update(ctx context.Context, p access.Principal, id uuid.UUID, mutate func(*T) error) (*T, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.module, "update", telemetry.WithAttribute("record.id", id.String()))
	defer span.End()

	entity, err := s.load(ctx, p, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := mutate(entity); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.repo.Update(ctx, entity); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to update %s record: %w", s.module, err)
	}

	s.recorder.Record(ctx, p, domainactivity.ActionUpdate, s.module, "Updated "+s.describe(entity))
	return entity, nil
}

// Delete removes a record the principal may access
func (s *Service[T, PT]) Delete(ctx context.Context, p access.Principal, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, s.module, "delete", telemetry.WithAttribute("record.id", id.String()))
	defer span.End()

	entity, err := s.load(ctx, p, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to delete %s record: %w", s.module, err)
	}

	s.recorder.Record(ctx, p, domainactivity.ActionDelete, s.module, "Deleted "+s.describe(entity))
	return nil
}

func (s *Service[T, PT]) describe(entity *T) string {
	if s.label == nil {
		return s.module + " record " + PT(entity).GetID().String()
	}
	return s.label(entity)
}
