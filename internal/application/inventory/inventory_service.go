// Package inventory holds the inventory item and stock ledger use cases.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/farmsaathi/backend/internal/application/activity"
	"github.com/farmsaathi/backend/internal/application/owned"
	"github.com/farmsaathi/backend/internal/domain/access"
	domainactivity "github.com/farmsaathi/backend/internal/domain/activity"
	"github.com/farmsaathi/backend/internal/domain/inventory"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/farmsaathi/backend/internal/infrastructure/logger"
	"github.com/farmsaathi/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ModuleInventory names the inventory module
const ModuleInventory = "inventory"

// ItemService manages inventory items. Quantities are only changed through
// the ledger; see LedgerService.
type ItemService struct {
	items    inventory.InventoryItemRepository
	scope    TransactionScope
	recorder activity.Recorder
}

// NewItemService creates a new ItemService. recorder may be nil.
func NewItemService(items inventory.InventoryItemRepository, scope TransactionScope, recorder activity.Recorder) *ItemService {
	if recorder == nil {
		recorder = activity.Nop{}
	}
	return &ItemService{items: items, scope: scope, recorder: recorder}
}

// authorizedItem loads an item the principal may access. It is shared with
// the ledger so both report missing and foreign items the same way.
func authorizedItem(ctx context.Context, items inventory.InventoryItemRepository, p access.Principal, id uuid.UUID) (*inventory.InventoryItem, error) {
	item, err := items.FindByID(ctx, id)
	exists := true
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		exists = false
	}

	var owner uuid.UUID
	if exists {
		owner = item.CreatedBy
	}
	if err := access.AuthorizeRecordAccess(p, owner, exists); err != nil {
		var ae *access.AccessError
		if errors.As(err, &ae) {
			logger.L(ctx).Warn("record access refused",
				zap.String("module", ModuleInventory),
				zap.String("record_id", id.String()),
				zap.String("reason", string(ae.Reason)),
				zap.String("detail", ae.Detail()),
			)
		}
		return nil, err
	}
	return item, nil
}

// List returns one page of the visible items matching q
func (s *ItemService) List(ctx context.Context, p access.Principal, q ItemQuery) (shared.Paginated[ItemResponse], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, ModuleInventory, "list")
	defer span.End()

	filter := q.filter().Normalize(owned.DefaultPageSize, owned.MaxPageSize)
	items, total, err := s.items.FindAll(ctx, access.VisibilityPredicate(p), filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return shared.Paginated[ItemResponse]{}, err
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return shared.MapPaginated(page, ToItemResponse), nil
}

// Get returns one item
func (s *ItemService) Get(ctx context.Context, p access.Principal, id uuid.UUID) (*ItemResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, ModuleInventory, "get", telemetry.WithAttribute("record.id", id.String()))
	defer span.End()

	item, err := authorizedItem(ctx, s.items, p, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToItemResponse(*item)
	return &resp, nil
}

// Create stores a new item owned by p. A positive initial quantity is
// written as an opening-balance movement in the same transaction, so the
// ledger explains the item's quantity from its first row.
func (s *ItemService) Create(ctx context.Context, p access.Principal, req CreateItemRequest) (*ItemResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, ModuleInventory, "create")
	defer span.End()

	details, err := req.details()
	if err != nil {
		return nil, err
	}
	item, err := inventory.NewInventoryItem(access.OwnerForNewRecord(p), details, req.Quantity)
	if err != nil {
		return nil, err
	}
	opening, err := item.OpeningMovement(req.Quantity, shared.Today())
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.ItemRepo().Create(ctx, item); err != nil {
			return fmt.Errorf("failed to create inventory item: %w", err)
		}
		if opening == nil {
			return nil
		}
		if err := repos.MovementRepo().Create(ctx, opening); err != nil {
			return fmt.Errorf("failed to record opening balance: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.recorder.Record(ctx, p, domainactivity.ActionCreate, ModuleInventory,
		fmt.Sprintf("Created inventory item %s (%s %s)", item.ItemName, item.Quantity.String(), item.Unit))
	resp := ToItemResponse(*item)
	return &resp, nil
}

// Update replaces an item's descriptive fields and optionally its status
func (s *ItemService) Update(ctx context.Context, p access.Principal, id uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, ModuleInventory, "update", telemetry.WithAttribute("record.id", id.String()))
	defer span.End()

	details, err := req.details()
	if err != nil {
		return nil, err
	}
	item, err := authorizedItem(ctx, s.items, p, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := item.UpdateDetails(details); err != nil {
		return nil, err
	}
	if req.Status != "" {
		if err := item.SetStatus(inventory.ItemStatus(req.Status)); err != nil {
			return nil, err
		}
	}
	if err := s.items.Update(ctx, item); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}

	s.recorder.Record(ctx, p, domainactivity.ActionUpdate, ModuleInventory, "Updated inventory item "+item.ItemName)
	resp := ToItemResponse(*item)
	return &resp, nil
}

// Delete marks an item inactive. Its movements stay in the ledger.
func (s *ItemService) Delete(ctx context.Context, p access.Principal, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, ModuleInventory, "delete", telemetry.WithAttribute("record.id", id.String()))
	defer span.End()

	item, err := authorizedItem(ctx, s.items, p, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if !item.IsActive() {
		return nil
	}
	item.Deactivate()
	if err := s.items.Update(ctx, item); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to deactivate inventory item: %w", err)
	}

	s.recorder.Record(ctx, p, domainactivity.ActionDelete, ModuleInventory, "Deactivated inventory item "+item.ItemName)
	return nil
}
