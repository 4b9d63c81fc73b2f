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

// ModuleEmployees names the employees module
const ModuleEmployees = "employees"

// EmployeeService manages farm workers
type EmployeeService struct {
	records *owned.Service[farm.Employee, *farm.Employee]
}

// NewEmployeeService creates a new EmployeeService
func NewEmployeeService(repo farm.EmployeeRepository, recorder activity.Recorder) *EmployeeService {
	return &EmployeeService{
		records: owned.NewService[farm.Employee, *farm.Employee](repo, ModuleEmployees, recorder,
			func(e *farm.Employee) string { return "employee " + e.Name }),
	}
}

// List returns visible employees; type filters on role
func (s *EmployeeService) List(ctx context.Context, p access.Principal, q owned.ListQuery) (shared.Paginated[EmployeeResponse], error) {
	page, err := s.records.List(ctx, p, q.Filter("status", "role"))
	if err != nil {
		return shared.Paginated[EmployeeResponse]{}, err
	}
	return shared.MapPaginated(page, ToEmployeeResponse), nil
}

// Get returns one employee
func (s *EmployeeService) Get(ctx context.Context, p access.Principal, id uuid.UUID) (*EmployeeResponse, error) {
	e, err := s.records.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	resp := ToEmployeeResponse(*e)
	return &resp, nil
}

// Create adds an employee owned by p
func (s *EmployeeService) Create(ctx context.Context, p access.Principal, req EmployeeRequest) (*EmployeeResponse, error) {
	d, err := req.details()
	if err != nil {
		return nil, err
	}
	e, err := s.records.Create(ctx, p, func(owner uuid.UUID) (*farm.Employee, error) {
		return farm.NewEmployee(owner, d)
	})
	if err != nil {
		return nil, err
	}
	resp := ToEmployeeResponse(*e)
	return &resp, nil
}

// Update replaces an employee's content
func (s *EmployeeService) Update(ctx context.Context, p access.Principal, id uuid.UUID, req EmployeeRequest) (*EmployeeResponse, error) {
	d, err := req.details()
	if err != nil {
		return nil, err
	}
	e, err := s.records.Update(ctx, p, id, func(e *farm.Employee) error {
		return e.Update(d)
	})
	if err != nil {
		return nil, err
	}
	resp := ToEmployeeResponse(*e)
	return &resp, nil
}

// Delete removes an employee
func (s *EmployeeService) Delete(ctx context.Context, p access.Principal, id uuid.UUID) error {
	return s.records.Delete(ctx, p, id)
}

// CountActive counts the visible active employees
func (s *EmployeeService) CountActive(ctx context.Context, p access.Principal) (int64, error) {
	return s.records.Count(ctx, p, map[string]interface{}{"status": string(farm.EmployeeStatusActive)})
}
