package farm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/farmsaathi/backend/internal/application/activity"
	"github.com/farmsaathi/backend/internal/application/owned"
	"github.com/farmsaathi/backend/internal/domain/access"
	domainactivity "github.com/farmsaathi/backend/internal/domain/activity"
	"github.com/farmsaathi/backend/internal/domain/farm"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ModuleLivestock names the livestock module
const ModuleLivestock = "livestock"

// DefaultHealthTaskDays is the look-ahead of upcoming health tasks
const DefaultHealthTaskDays = 30

// LivestockRecordRepositories groups the history tables of an animal
type LivestockRecordRepositories struct {
	Health     farm.LivestockRecordRepository[farm.HealthRecord]
	Breeding   farm.LivestockRecordRepository[farm.BreedingRecord]
	Production farm.LivestockRecordRepository[farm.ProductionRecord]
	Expense    farm.LivestockRecordRepository[farm.ExpenseRecord]
}

// LivestockService manages animals and their history. History entries are
// owned through their animal: every record operation first authorizes the
// parent.
type LivestockService struct {
	repo     farm.LivestockRepository
	records  *owned.Service[farm.Livestock, *farm.Livestock]
	history  LivestockRecordRepositories
	recorder activity.Recorder
}

// NewLivestockService creates a new LivestockService
func NewLivestockService(repo farm.LivestockRepository, history LivestockRecordRepositories, recorder activity.Recorder) *LivestockService {
	if recorder == nil {
		recorder = activity.Nop{}
	}
	return &LivestockService{
		repo: repo,
		records: owned.NewService[farm.Livestock, *farm.Livestock](repo, ModuleLivestock, recorder,
			func(l *farm.Livestock) string { return "animal " + l.AnimalTag }),
		history:  history,
		recorder: recorder,
	}
}

// List returns visible livestock; type filters on animal_type
func (s *LivestockService) List(ctx context.Context, p access.Principal, q owned.ListQuery) (shared.Paginated[LivestockResponse], error) {
	page, err := s.records.List(ctx, p, q.Filter("status", "animal_type"))
	if err != nil {
		return shared.Paginated[LivestockResponse]{}, err
	}
	return shared.MapPaginated(page, ToLivestockResponse), nil
}

// Get returns one livestock record
func (s *LivestockService) Get(ctx context.Context, p access.Principal, id uuid.UUID) (*LivestockResponse, error) {
	l, err := s.records.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	resp := ToLivestockResponse(*l)
	return &resp, nil
}

// Create adds livestock owned by p. Animal tags are unique across all owners.
func (s *LivestockService) Create(ctx context.Context, p access.Principal, req LivestockRequest) (*LivestockResponse, error) {
	d, err := req.details()
	if err != nil {
		return nil, err
	}
	if err := s.ensureTagFree(ctx, d.AnimalTag, nil); err != nil {
		return nil, err
	}
	l, err := s.records.Create(ctx, p, func(owner uuid.UUID) (*farm.Livestock, error) {
		return farm.NewLivestock(owner, d)
	})
	if err != nil {
		return nil, err
	}
	resp := ToLivestockResponse(*l)
	return &resp, nil
}

// Update replaces a livestock record's content
func (s *LivestockService) Update(ctx context.Context, p access.Principal, id uuid.UUID, req LivestockRequest) (*LivestockResponse, error) {
	d, err := req.details()
	if err != nil {
		return nil, err
	}
	l, err := s.records.Update(ctx, p, id, func(l *farm.Livestock) error {
		if err := s.ensureTagFree(ctx, d.AnimalTag, &l.ID); err != nil {
			return err
		}
		return l.Update(d)
	})
	if err != nil {
		return nil, err
	}
	resp := ToLivestockResponse(*l)
	return &resp, nil
}

// Delete removes a livestock record. Its history goes with it through the
// foreign keys of the history tables.
func (s *LivestockService) Delete(ctx context.Context, p access.Principal, id uuid.UUID) error {
	return s.records.Delete(ctx, p, id)
}

func (s *LivestockService) ensureTagFree(ctx context.Context, tag string, exclude *uuid.UUID) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil
	}
	taken, err := s.repo.ExistsByTag(ctx, tag, exclude)
	if err != nil {
		return fmt.Errorf("failed to check animal tag: %w", err)
	}
	if taken {
		return farm.ErrDuplicateAnimalTag
	}
	return nil
}

// UpcomingHealthTasks lists health events of visible active animals due
// within days, soonest first.
func (s *LivestockService) UpcomingHealthTasks(ctx context.Context, p access.Principal, days int) ([]HealthTaskResponse, error) {
	if days <= 0 {
		days = DefaultHealthTaskDays
	}
	today := shared.Today()
	tasks, err := s.repo.FindHealthTasksDue(ctx, access.VisibilityPredicate(p), today, today.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}
	out := make([]HealthTaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = HealthTaskResponse{
			LivestockID: t.LivestockID,
			AnimalTag:   t.AnimalTag,
			AnimalType:  t.AnimalType,
			Breed:       t.Breed,
			DueDate:     t.DueDate,
			Description: t.Description,
		}
	}
	return out, nil
}

// =============================================================================
// History records
// =============================================================================

// AddHealthRecord appends a health event to an animal
func (s *LivestockService) AddHealthRecord(ctx context.Context, p access.Principal, livestockID uuid.UUID, req HealthRecordRequest) (*HealthRecordResponse, error) {
	r, err := addRecord(ctx, s, p, livestockID, s.history.Health, func(parent *farm.Livestock) (*farm.HealthRecord, error) {
		var errs shared.ValidationErrors
		date := errs.Date("date", req.Date)
		nextDue := errs.Date("next_due_date", req.NextDueDate)
		if err := errs.Err(); err != nil {
			return nil, err
		}
		return farm.NewHealthRecord(parent.ID, p.ID, shared.DateOrZero(date), req.Type, req.Description, req.Cost, req.Veterinarian, nextDue, req.Notes)
	})
	if err != nil {
		return nil, err
	}
	resp := ToHealthRecordResponse(*r)
	return &resp, nil
}

// HealthRecords lists the health events of an animal, newest first
func (s *LivestockService) HealthRecords(ctx context.Context, p access.Principal, livestockID uuid.UUID) ([]HealthRecordResponse, error) {
	return listRecords(ctx, s, p, livestockID, s.history.Health, ToHealthRecordResponse)
}

// AddBreedingRecord appends a breeding event to an animal
func (s *LivestockService) AddBreedingRecord(ctx context.Context, p access.Principal, livestockID uuid.UUID, req BreedingRecordRequest) (*BreedingRecordResponse, error) {
	r, err := addRecord(ctx, s, p, livestockID, s.history.Breeding, func(parent *farm.Livestock) (*farm.BreedingRecord, error) {
		var errs shared.ValidationErrors
		date := errs.Date("date", req.Date)
		expected := errs.Date("expected_delivery", req.ExpectedDelivery)
		actual := errs.Date("actual_delivery", req.ActualDelivery)
		if err := errs.Err(); err != nil {
			return nil, err
		}
		return farm.NewBreedingRecord(parent.ID, p.ID, shared.DateOrZero(date), req.FatherTag, expected, actual, req.OffspringCount, req.Notes)
	})
	if err != nil {
		return nil, err
	}
	resp := ToBreedingRecordResponse(*r)
	return &resp, nil
}

// BreedingRecords lists the breeding events of an animal, newest first
func (s *LivestockService) BreedingRecords(ctx context.Context, p access.Principal, livestockID uuid.UUID) ([]BreedingRecordResponse, error) {
	return listRecords(ctx, s, p, livestockID, s.history.Breeding, ToBreedingRecordResponse)
}

// AddProductionRecord appends a production entry to an animal
func (s *LivestockService) AddProductionRecord(ctx context.Context, p access.Principal, livestockID uuid.UUID, req ProductionRecordRequest) (*ProductionRecordResponse, error) {
	r, err := addRecord(ctx, s, p, livestockID, s.history.Production, func(parent *farm.Livestock) (*farm.ProductionRecord, error) {
		var errs shared.ValidationErrors
		date := errs.Date("date", req.Date)
		if err := errs.Err(); err != nil {
			return nil, err
		}
		return farm.NewProductionRecord(parent.ID, p.ID, shared.DateOrZero(date), req.Type, req.Quantity, req.Unit, req.Morning, req.Evening, req.Notes)
	})
	if err != nil {
		return nil, err
	}
	resp := ToProductionRecordResponse(*r)
	return &resp, nil
}

// ProductionRecords lists the production entries of an animal, newest first
func (s *LivestockService) ProductionRecords(ctx context.Context, p access.Principal, livestockID uuid.UUID) ([]ProductionRecordResponse, error) {
	return listRecords(ctx, s, p, livestockID, s.history.Production, ToProductionRecordResponse)
}

// AddExpenseRecord appends an expense entry to an animal
func (s *LivestockService) AddExpenseRecord(ctx context.Context, p access.Principal, livestockID uuid.UUID, req ExpenseRecordRequest) (*ExpenseRecordResponse, error) {
	r, err := addRecord(ctx, s, p, livestockID, s.history.Expense, func(parent *farm.Livestock) (*farm.ExpenseRecord, error) {
		var errs shared.ValidationErrors
		date := errs.Date("date", req.Date)
		if err := errs.Err(); err != nil {
			return nil, err
		}
		return farm.NewExpenseRecord(parent.ID, p.ID, shared.DateOrZero(date), req.Category, req.Amount, req.Description, req.Notes)
	})
	if err != nil {
		return nil, err
	}
	resp := ToExpenseRecordResponse(*r)
	return &resp, nil
}

// ExpenseRecords lists the expense entries of an animal, newest first
func (s *LivestockService) ExpenseRecords(ctx context.Context, p access.Principal, livestockID uuid.UUID) ([]ExpenseRecordResponse, error) {
	return listRecords(ctx, s, p, livestockID, s.history.Expense, ToExpenseRecordResponse)
}

// DeleteRecord removes one history entry of an animal. An entry that belongs
// to another animal is reported like a missing one.
func (s *LivestockService) DeleteRecord(ctx context.Context, p access.Principal, livestockID uuid.UUID, kind farm.RecordKind, recordID uuid.UUID) error {
	switch kind {
	case farm.RecordKindHealth:
		return deleteRecord(ctx, s, p, livestockID, recordID, s.history.Health)
	case farm.RecordKindBreeding:
		return deleteRecord(ctx, s, p, livestockID, recordID, s.history.Breeding)
	case farm.RecordKindProduction:
		return deleteRecord(ctx, s, p, livestockID, recordID, s.history.Production)
	case farm.RecordKindExpense:
		return deleteRecord(ctx, s, p, livestockID, recordID, s.history.Expense)
	default:
		return shared.NewDomainError("INVALID_INPUT", "Unknown record kind")
	}
}

type livestockRecord[T any] interface {
	*T
	farm.LivestockRecord
}

func addRecord[T any, PT livestockRecord[T]](ctx context.Context, s *LivestockService, p access.Principal, livestockID uuid.UUID, repo farm.LivestockRecordRepository[T], build func(parent *farm.Livestock) (*T, error)) (*T, error) {
	parent, err := s.records.Get(ctx, p, livestockID)
	if err != nil {
		return nil, err
	}
	record, err := build(parent)
	if err != nil {
		return nil, err
	}
	if err := repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to add %s record: %w", PT(record).Kind(), err)
	}
	s.recorder.Record(ctx, p, domainactivity.ActionCreate, ModuleLivestock,
		fmt.Sprintf("Added %s record to animal %s", PT(record).Kind(), parent.AnimalTag))
	return record, nil
}

func listRecords[T, R any](ctx context.Context, s *LivestockService, p access.Principal, livestockID uuid.UUID, repo farm.LivestockRecordRepository[T], convert func(T) R) ([]R, error) {
	if err := s.records.Authorize(ctx, p, livestockID); err != nil {
		return nil, err
	}
	records, err := repo.FindByLivestock(ctx, livestockID)
	if err != nil {
		return nil, err
	}
	out := make([]R, len(records))
	for i := range records {
		out[i] = convert(records[i])
	}
	return out, nil
}

func deleteRecord[T any, PT livestockRecord[T]](ctx context.Context, s *LivestockService, p access.Principal, livestockID, recordID uuid.UUID, repo farm.LivestockRecordRepository[T]) error {
	parent, err := s.records.Get(ctx, p, livestockID)
	if err != nil {
		return err
	}
	record, err := repo.FindByID(ctx, recordID)
	if errors.Is(err, shared.ErrNotFound) || (err == nil && PT(record).GetLivestockID() != livestockID) {
		return access.AuthorizeRecordAccess(p, uuid.Nil, false)
	}
	if err != nil {
		return err
	}
	if err := repo.Delete(ctx, recordID); err != nil {
		return fmt.Errorf("failed to delete %s record: %w", PT(record).Kind(), err)
	}
	s.recorder.Record(ctx, p, domainactivity.ActionDelete, ModuleLivestock,
		fmt.Sprintf("Deleted %s record of animal %s", PT(record).Kind(), parent.AnimalTag))
	return nil
}
