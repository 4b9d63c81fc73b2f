package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/farmsaathi/backend/internal/application/activity"
	"github.com/farmsaathi/backend/internal/application/owned"
	"github.com/farmsaathi/backend/internal/domain/access"
	domainactivity "github.com/farmsaathi/backend/internal/domain/activity"
	"github.com/farmsaathi/backend/internal/domain/inventory"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/farmsaathi/backend/internal/infrastructure/logger"
	"github.com/farmsaathi/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultHistoryPageSize is the movement history page size when none is configured
const DefaultHistoryPageSize = 50

// ErrItemInactive rejects movements against deactivated items
var ErrItemInactive = shared.NewDomainError("INVALID_STATE", "Inactive items cannot receive stock movements")

// LedgerService records stock movements and answers questions about them.
// Every movement changes the item's cached quantity and appends one ledger
// row in a single transaction.
type LedgerService struct {
	items     inventory.InventoryItemRepository
	movements inventory.StockMovementRepository
	scope     TransactionScope
	recorder  activity.Recorder

	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	metrics        *telemetry.LedgerMetrics
	pageSize       int
}

// NewLedgerService creates a new LedgerService. recorder may be nil.
func NewLedgerService(
	items inventory.InventoryItemRepository,
	movements inventory.StockMovementRepository,
	scope TransactionScope,
	recorder activity.Recorder,
) *LedgerService {
	if recorder == nil {
		recorder = activity.Nop{}
	}
	return &LedgerService{
		items:          items,
		movements:      movements,
		scope:          scope,
		recorder:       recorder,
		idempotencyTTL: shared.DefaultIdempotencyConfig().TTL,
		pageSize:       DefaultHistoryPageSize,
	}
}

// SetIdempotencyStore enables Idempotency-Key handling for movements
func (s *LedgerService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.idempotency = store
	if ttl > 0 {
		s.idempotencyTTL = ttl
	}
}

// SetMetrics sets the ledger instruments (optional)
func (s *LedgerService) SetMetrics(m *telemetry.LedgerMetrics) {
	s.metrics = m
}

// SetHistoryPageSize sets the default page size of movement history
func (s *LedgerService) SetHistoryPageSize(n int) {
	if n > 0 {
		s.pageSize = n
	}
}

// RecordMovement applies one movement to an item the principal may access
// and returns the resulting quantity with the appended ledger row.
func (s *LedgerService) RecordMovement(ctx context.Context, p access.Principal, itemID uuid.UUID, in RecordMovementInput) (*MovementResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, ModuleInventory, "record_movement",
		telemetry.WithAttribute("record.id", itemID.String()),
		telemetry.WithAttribute("movement.type", in.MovementType),
	)
	defer span.End()
	start := time.Now()

	item, err := authorizedItem(ctx, s.items, p, itemID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !item.IsActive() {
		return nil, ErrItemInactive
	}
	req, fieldErrs := in.request()

	key, err := s.reserve(ctx, p, in.IdempotencyKey)
	if err != nil {
		if errors.Is(err, shared.ErrDuplicateRequest) {
			s.observe(ctx, in.MovementType, telemetry.OutcomeDuplicate, start)
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	movement, err := s.apply(ctx, p, item, req, fieldErrs)
	if err != nil {
		s.release(ctx, key)
		s.observeFailure(ctx, in.MovementType, start, err)
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.observe(ctx, in.MovementType, telemetry.OutcomeRecorded, start)

	item.Quantity = movement.BalanceAfter
	s.recorder.Record(ctx, p, domainactivity.ActionMovement, ModuleInventory,
		fmt.Sprintf("Stock %s %s %s %s: %s", movement.MovementType, movement.Quantity.String(), item.Unit, item.ItemName, movement.Reason))
	logger.L(ctx).Debug("stock movement recorded",
		zap.String("item_id", item.ID.String()),
		zap.String("movement_id", movement.ID.String()),
		zap.String("balance_after", movement.BalanceAfter.String()),
	)

	return &MovementResult{
		ItemID:   item.ID,
		Quantity: movement.BalanceAfter,
		LowStock: item.IsLowStock(),
		Movement: ToMovementResponse(*movement),
	}, nil
}

// validateMovement checks req against the loaded item and folds the input's
// field errors into the same ledger error, so one response lists every
// broken rule.
func validateMovement(item *inventory.InventoryItem, req inventory.MovementRequest, fieldErrs shared.ValidationErrors) error {
	err := inventory.ValidateMovement(item, req)
	if len(fieldErrs) == 0 {
		return err
	}
	le := &inventory.LedgerError{}
	if err != nil && !errors.As(err, &le) {
		return err
	}
	for _, fe := range fieldErrs {
		le.Add(inventory.ViolationInvalidMovementDate, fe.Message)
	}
	return le
}

// apply validates the movement against the loaded item, then moves the
// stored quantity with a conditional update and appends the ledger row. The
// conditional update is what guards concurrent removals; the first check
// only reports every broken rule at once.
func (s *LedgerService) apply(ctx context.Context, p access.Principal, item *inventory.InventoryItem, req inventory.MovementRequest, fieldErrs shared.ValidationErrors) (*inventory.StockMovement, error) {
	if err := validateMovement(item, req, fieldErrs); err != nil {
		return nil, err
	}

	var movement *inventory.StockMovement
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		after, err := repos.ItemRepo().AdjustQuantity(ctx, item.ID, req.Type, req.Quantity)
		if err != nil {
			return err
		}
		// undo the movement to get the balance it started from
		before := req.Type.Apply(after, req.Quantity.Neg())
		movement = inventory.NewStockMovement(item.ID, req, before, after, p.ID)
		return repos.MovementRepo().Create(ctx, movement)
	})
	if err != nil {
		var le *inventory.LedgerError
		if errors.As(err, &le) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to record stock movement: %w", err)
	}
	return movement, nil
}

// reserve claims an idempotency key scoped to the principal. It returns the
// scoped key, or "" when no key was supplied.
func (s *LedgerService) reserve(ctx context.Context, p access.Principal, key string) (string, error) {
	if s.idempotency == nil || key == "" {
		return "", nil
	}
	scoped := p.ID.String() + ":" + key
	reserved, err := s.idempotency.MarkProcessed(ctx, scoped, s.idempotencyTTL)
	if err != nil {
		return "", fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if !reserved {
		return "", shared.ErrDuplicateRequest
	}
	return scoped, nil
}

func (s *LedgerService) release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.idempotency.Release(ctx, key); err != nil {
		logger.L(ctx).Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

func (s *LedgerService) observe(ctx context.Context, movementType, outcome string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordMovement(ctx, movementType, outcome, time.Since(start))
}

func (s *LedgerService) observeFailure(ctx context.Context, movementType string, start time.Time, err error) {
	var le *inventory.LedgerError
	if !errors.As(err, &le) {
		s.observe(ctx, movementType, telemetry.OutcomeFailed, start)
		return
	}
	s.observe(ctx, movementType, telemetry.OutcomeRejected, start)
	if s.metrics == nil {
		return
	}
	kinds := make([]string, len(le.Violations))
	for i, v := range le.Violations {
		kinds[i] = string(v.Kind)
	}
	s.metrics.RecordViolations(ctx, kinds...)
}

// CurrentQuantity returns the cached quantity of an item
func (s *LedgerService) CurrentQuantity(ctx context.Context, p access.Principal, itemID uuid.UUID) (decimal.Decimal, error) {
	item, err := authorizedItem(ctx, s.items, p, itemID)
	if err != nil {
		return decimal.Zero, err
	}
	return item.Quantity, nil
}

// MovementHistory returns one page of movements of visible items, newest first
func (s *LedgerService) MovementHistory(ctx context.Context, p access.Principal, q MovementQuery) (shared.Paginated[MovementResponse], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, ModuleInventory, "movement_history")
	defer span.End()

	filter, err := q.filter()
	if err != nil {
		return shared.Paginated[MovementResponse]{}, err
	}
	paging := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize(s.pageSize, owned.MaxPageSize)
	filter.Page, filter.PageSize = paging.Page, paging.PageSize

	records, total, err := s.movements.FindAll(ctx, access.VisibilityPredicate(p), filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return shared.Paginated[MovementResponse]{}, err
	}
	telemetry.SetAttributes(span, "result.total", total)
	page := shared.NewPaginated(records, total, filter.Page, filter.PageSize)
	return shared.MapPaginated(page, ToMovementRecordResponse), nil
}

// Summary totals the visible movements selected by q. Paging is ignored.
func (s *LedgerService) Summary(ctx context.Context, p access.Principal, q MovementQuery) (*MovementSummaryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, ModuleInventory, "movement_summary")
	defer span.End()

	filter, err := q.filter()
	if err != nil {
		return nil, err
	}
	sum, err := s.movements.Summarize(ctx, access.VisibilityPredicate(p), filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &MovementSummaryResponse{TotalIn: sum.TotalIn, TotalOut: sum.TotalOut, Net: sum.Net(), Count: sum.Count}, nil
}

// ListLowStock returns visible supply items at or below their reorder level
func (s *LedgerService) ListLowStock(ctx context.Context, p access.Principal) ([]ItemResponse, error) {
	items, err := s.items.FindLowStock(ctx, access.VisibilityPredicate(p))
	if err != nil {
		return nil, err
	}
	out := make([]ItemResponse, len(items))
	for i, item := range items {
		out[i] = ToItemResponse(item)
	}
	return out, nil
}

// VerifyBalance checks that an item's cached quantity equals the net of its movements
func (s *LedgerService) VerifyBalance(ctx context.Context, p access.Principal, itemID uuid.UUID) (*BalanceCheckResponse, error) {
	item, err := authorizedItem(ctx, s.items, p, itemID)
	if err != nil {
		return nil, err
	}
	net, err := s.movements.NetQuantity(ctx, itemID)
	if err != nil {
		return nil, err
	}
	consistent := net.Equal(item.Quantity)
	if !consistent {
		logger.L(ctx).Error("inventory quantity differs from ledger",
			zap.String("item_id", itemID.String()),
			zap.String("quantity", item.Quantity.String()),
			zap.String("ledger_net", net.String()),
		)
	}
	return &BalanceCheckResponse{ItemID: itemID, Quantity: item.Quantity, LedgerNet: net, Consistent: consistent}, nil
}
