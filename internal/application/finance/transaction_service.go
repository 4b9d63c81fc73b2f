package finance

import (
	"context"

	"github.com/farmsaathi/backend/internal/application/activity"
	"github.com/farmsaathi/backend/internal/application/owned"
	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/domain/finance"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/farmsaathi/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// ModuleFinance names the finance module
const ModuleFinance = "finance"

// TransactionService manages the income and expense books
type TransactionService struct {
	repo    finance.TransactionRepository
	records *owned.Service[finance.Transaction, *finance.Transaction]
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(repo finance.TransactionRepository, recorder activity.Recorder) *TransactionService {
	return &TransactionService{
		repo: repo,
		records: owned.NewService[finance.Transaction, *finance.Transaction](repo, ModuleFinance, recorder,
			func(t *finance.Transaction) string {
				return string(t.Type) + " " + t.Category + " " + t.Amount.StringFixed(2)
			}),
	}
}

// List returns the visible transactions matching q, newest first by default
func (s *TransactionService) List(ctx context.Context, p access.Principal, q TransactionQuery) (shared.Paginated[TransactionResponse], error) {
	page, err := s.records.List(ctx, p, q.filter())
	if err != nil {
		return shared.Paginated[TransactionResponse]{}, err
	}
	return shared.MapPaginated(page, ToTransactionResponse), nil
}

// Get returns one transaction
func (s *TransactionService) Get(ctx context.Context, p access.Principal, id uuid.UUID) (*TransactionResponse, error) {
	t, err := s.records.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(*t)
	return &resp, nil
}

// Create records a transaction owned by p
func (s *TransactionService) Create(ctx context.Context, p access.Principal, req TransactionRequest) (*TransactionResponse, error) {
	d, err := req.details()
	if err != nil {
		return nil, err
	}
	t, err := s.records.Create(ctx, p, func(owner uuid.UUID) (*finance.Transaction, error) {
		return finance.NewTransaction(owner, d)
	})
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(*t)
	return &resp, nil
}

// Update replaces a transaction's content
func (s *TransactionService) Update(ctx context.Context, p access.Principal, id uuid.UUID, req TransactionRequest) (*TransactionResponse, error) {
	d, err := req.details()
	if err != nil {
		return nil, err
	}
	t, err := s.records.Update(ctx, p, id, func(t *finance.Transaction) error {
		return t.Update(d)
	})
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(*t)
	return &resp, nil
}

// Delete removes a transaction
func (s *TransactionService) Delete(ctx context.Context, p access.Principal, id uuid.UUID) error {
	return s.records.Delete(ctx, p, id)
}

// Summary totals the visible transactions in the optional date range
func (s *TransactionService) Summary(ctx context.Context, p access.Principal, q SummaryQuery) (*SummaryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, ModuleFinance, "summary")
	defer span.End()

	var errs shared.ValidationErrors
	from := errs.Date("date_from", q.DateFrom)
	to := errs.Date("date_to", q.DateTo)
	if from != nil && to != nil && to.Before(*from) {
		errs.Add("date_to", "End date cannot be before start date.")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	totals, err := s.repo.Totals(ctx, access.VisibilityPredicate(p), from, to)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToSummaryResponse(totals)
	return &resp, nil
}

// Categories returns the suggested categories
func (s *TransactionService) Categories() CategoriesResponse {
	return CategoriesResponse{Income: finance.IncomeCategories, Expense: finance.ExpenseCategories}
}
