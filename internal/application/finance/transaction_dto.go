package finance

import (
	"time"

	"github.com/farmsaathi/backend/internal/application/owned"
	"github.com/farmsaathi/backend/internal/domain/finance"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRequest creates or replaces a finance transaction
type TransactionRequest struct {
	Type            string          `json:"type" binding:"omitempty,oneof=income expense"`
	Category        string          `json:"category" binding:"max=100"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate string          `json:"transaction_date"`
	Description     string          `json:"description"`
	PaymentMethod   string          `json:"payment_method" binding:"omitempty,oneof=cash bank other"`
}

func (r TransactionRequest) details() (finance.TransactionDetails, error) {
	var errs shared.ValidationErrors
	date := errs.Date("transaction_date", r.TransactionDate)
	if err := errs.Err(); err != nil {
		return finance.TransactionDetails{}, err
	}
	return finance.TransactionDetails{
		Type:            finance.TransactionType(r.Type),
		Category:        r.Category,
		Amount:          r.Amount,
		TransactionDate: shared.DateOrZero(date),
		Description:     r.Description,
		PaymentMethod:   r.PaymentMethod,
	}, nil
}

// TransactionQuery filters the transaction listing. Type selects income or expense.
type TransactionQuery struct {
	owned.ListQuery
	Category      string `form:"category"`
	PaymentMethod string `form:"payment_method" binding:"omitempty,oneof=cash bank other"`
}

func (q TransactionQuery) filter() shared.Filter {
	f := q.ListQuery.Filter("", "type")
	if q.Category != "" {
		f.Filters["category"] = q.Category
	}
	if q.PaymentMethod != "" {
		f.Filters["payment_method"] = q.PaymentMethod
	}
	return f
}

// TransactionResponse is a transaction as returned by the API
type TransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	Type            string          `json:"type"`
	Category        string          `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate time.Time       `json:"transaction_date"`
	Description     string          `json:"description"`
	PaymentMethod   string          `json:"payment_method"`
	CreatedBy       uuid.UUID       `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToTransactionResponse converts a domain transaction
func ToTransactionResponse(t finance.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		Type:            string(t.Type),
		Category:        t.Category,
		Amount:          t.Amount,
		TransactionDate: t.TransactionDate,
		Description:     t.Description,
		PaymentMethod:   t.PaymentMethod,
		CreatedBy:       t.CreatedBy,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// SummaryQuery bounds a summary by transaction date, both ends inclusive
type SummaryQuery struct {
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
}

// SummaryResponse is income against expense
type SummaryResponse struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Net          decimal.Decimal `json:"net"`
}

// ToSummaryResponse converts domain totals
func ToSummaryResponse(t finance.Totals) SummaryResponse {
	return SummaryResponse{TotalIncome: t.Income, TotalExpense: t.Expense, Net: t.Net()}
}

// CategoriesResponse lists the suggested categories per type
type CategoriesResponse struct {
	Income  []string `json:"income"`
	Expense []string `json:"expense"`
}
