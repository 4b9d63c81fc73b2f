package farm

import (
	"context"

	"github.com/farmsaathi/backend/internal/application/activity"
	"github.com/farmsaathi/backend/internal/application/owned"
	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/domain/farm"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ModuleEquipment names the equipment module
const ModuleEquipment = "equipment"

// EquipmentService manages tools and machines
type EquipmentService struct {
	records *owned.Service[farm.Equipment, *farm.Equipment]
}

// NewEquipmentService creates a new EquipmentService
func NewEquipmentService(repo farm.EquipmentRepository, recorder activity.Recorder) *EquipmentService {
	return &EquipmentService{
		records: owned.NewService[farm.Equipment, *farm.Equipment](repo, ModuleEquipment, recorder,
			func(e *farm.Equipment) string { return "equipment " + e.EquipmentName }),
	}
}

// List returns visible equipment; status filters on condition
func (s *EquipmentService) List(ctx context.Context, p access.Principal, q owned.ListQuery) (shared.Paginated[EquipmentResponse], error) {
	page, err := s.records.List(ctx, p, q.Filter("condition", "type"))
	if err != nil {
		return shared.Paginated[EquipmentResponse]{}, err
	}
	return shared.MapPaginated(page, ToEquipmentResponse), nil
}

// Get returns one equipment record
func (s *EquipmentService) Get(ctx context.Context, p access.Principal, id uuid.UUID) (*EquipmentResponse, error) {
	e, err := s.records.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	resp := ToEquipmentResponse(*e)
	return &resp, nil
}

// Create adds equipment owned by p
func (s *EquipmentService) Create(ctx context.Context, p access.Principal, req EquipmentRequest) (*EquipmentResponse, error) {
	d, err := req.details()
	if err != nil {
		return nil, err
	}
	e, err := s.records.Create(ctx, p, func(owner uuid.UUID) (*farm.Equipment, error) {
		return farm.NewEquipment(owner, d)
	})
	if err != nil {
		return nil, err
	}
	resp := ToEquipmentResponse(*e)
	return &resp, nil
}

// Update replaces an equipment record's content
func (s *EquipmentService) Update(ctx context.Context, p access.Principal, id uuid.UUID, req EquipmentRequest) (*EquipmentResponse, error) {
	d, err := req.details()
	if err != nil {
		return nil, err
	}
	e, err := s.records.Update(ctx, p, id, func(e *farm.Equipment) error {
		return e.Update(d)
	})
	if err != nil {
		return nil, err
	}
	resp := ToEquipmentResponse(*e)
	return &resp, nil
}

// Delete removes an equipment record
func (s *EquipmentService) Delete(ctx context.Context, p access.Principal, id uuid.UUID) error {
	return s.records.Delete(ctx, p, id)
}
