// Package farm serves the owned farm modules: crops, livestock and its
// history, equipment and employees.
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

// ModuleCrops names the crops module in spans and activity entries
const ModuleCrops = "crops"

// CropService manages crops
type CropService struct {
	records *owned.Service[farm.Crop, *farm.Crop]
}

// NewCropService creates a new CropService
func NewCropService(repo farm.CropRepository, recorder activity.Recorder) *CropService {
	return &CropService{
		records: owned.NewService[farm.Crop, *farm.Crop](repo, ModuleCrops, recorder,
			func(c *farm.Crop) string { return "crop " + c.CropName }),
	}
}

// List returns the visible crops matching q
func (s *CropService) List(ctx context.Context, p access.Principal, q owned.ListQuery) (shared.Paginated[CropResponse], error) {
	page, err := s.records.List(ctx, p, q.Filter("status", "crop_type"))
	if err != nil {
		return shared.Paginated[CropResponse]{}, err
	}
	return shared.MapPaginated(page, ToCropResponse), nil
}

// Get returns one crop
func (s *CropService) Get(ctx context.Context, p access.Principal, id uuid.UUID) (*CropResponse, error) {
	c, err := s.records.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	resp := ToCropResponse(*c)
	return &resp, nil
}

// Create adds a crop owned by p
func (s *CropService) Create(ctx context.Context, p access.Principal, req CropRequest) (*CropResponse, error) {
	d, err := req.details()
	if err != nil {
		return nil, err
	}
	c, err := s.records.Create(ctx, p, func(owner uuid.UUID) (*farm.Crop, error) {
		return farm.NewCrop(owner, d)
	})
	if err != nil {
		return nil, err
	}
	resp := ToCropResponse(*c)
	return &resp, nil
}

// Update replaces a crop's content
func (s *CropService) Update(ctx context.Context, p access.Principal, id uuid.UUID, req CropRequest) (*CropResponse, error) {
	d, err := req.details()
	if err != nil {
		return nil, err
	}
	c, err := s.records.Update(ctx, p, id, func(c *farm.Crop) error {
		return c.Update(d)
	})
	if err != nil {
		return nil, err
	}
	resp := ToCropResponse(*c)
	return &resp, nil
}

// Delete removes a crop
func (s *CropService) Delete(ctx context.Context, p access.Principal, id uuid.UUID) error {
	return s.records.Delete(ctx, p, id)
}
