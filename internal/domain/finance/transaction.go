package finance

import (
	"strings"
	"time"

	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType tells income from expense
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// IsValid returns true if the type is valid
func (t TransactionType) IsValid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// PaymentMethods lists accepted payment methods
var PaymentMethods = []string{"cash", "bank", "other"}

// IncomeCategories are the suggested categories for income
var IncomeCategories = []string{
	"Crop Sales", "Livestock Sales", "Dairy Products", "Poultry Products",
	"Equipment Rental", "Services", "Government Subsidies", "Other Income",
}

// ExpenseCategories are the suggested categories for expenses
var ExpenseCategories = []string{
	"Seeds & Planting", "Fertilizers & Pesticides", "Animal Feed", "Veterinary Services",
	"Labor & Wages", "Equipment & Machinery", "Fuel & Transportation", "Utilities",
	"Rent & Lease", "Insurance", "Taxes & Fees", "Maintenance & Repairs",
	"Marketing & Sales", "Other Expenses",
}

// Transaction is an income or expense entry of the farm books
type Transaction struct {
	shared.OwnedEntity
	Type            TransactionType `gorm:"type:varchar(10);not null;index"`
	Category        string          `gorm:"type:varchar(100);not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TransactionDate time.Time       `gorm:"type:date;not null;index"`
	Description     string          `gorm:"type:text"`
	PaymentMethod   string          `gorm:"type:varchar(20);not null;default:'cash'"`
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "finance_transactions"
}

// TransactionDetails is the editable content of a transaction
type TransactionDetails struct {
	Type            TransactionType
	Category        string
	Amount          decimal.Decimal
	TransactionDate time.Time
	Description     string
	PaymentMethod   string
}

func (d TransactionDetails) validate() error {
	var errs shared.ValidationErrors
	if !d.Type.IsValid() {
		errs.Add("type", "Type must be income or expense.")
	}
	errs.Required("category", d.Category, "Category is required.")
	if !d.Amount.IsPositive() {
		errs.Add("amount", "Amount must be greater than 0.")
	}
	if d.TransactionDate.IsZero() {
		errs.Add("transaction_date", "Transaction date is required.")
	}
	errs.OneOf("payment_method", d.PaymentMethod, PaymentMethods, "Payment method must be cash, bank or other.")
	return errs.Err()
}

// NewTransaction creates a transaction owned by owner
func NewTransaction(owner uuid.UUID, d TransactionDetails) (*Transaction, error) {
	if strings.TrimSpace(d.PaymentMethod) == "" {
		d.PaymentMethod = "cash"
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	tx := &Transaction{OwnedEntity: shared.NewOwnedEntity(owner)}
	tx.apply(d)
	return tx, nil
}

// Update replaces the transaction's content
func (t *Transaction) Update(d TransactionDetails) error {
	if strings.TrimSpace(d.PaymentMethod) == "" {
		d.PaymentMethod = t.PaymentMethod
	}
	if err := d.validate(); err != nil {
		return err
	}
	t.apply(d)
	t.Touch()
	return nil
}

func (t *Transaction) apply(d TransactionDetails) {
	t.Type = d.Type
	t.Category = strings.TrimSpace(d.Category)
	t.Amount = d.Amount
	t.TransactionDate = shared.DateOf(d.TransactionDate)
	t.Description = strings.TrimSpace(d.Description)
	t.PaymentMethod = d.PaymentMethod
}

// Totals is income and expense over a set of transactions
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Net returns income minus expense
func (t Totals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// MonthlyTotals is the income and expense of one calendar month, keyed "YYYY-MM"
type MonthlyTotals struct {
	Month string
	Totals
}

// CategoryTotal is the sum of one category
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// Entry is the minimal projection used for trend computations
type Entry struct {
	Type            TransactionType
	Amount          decimal.Decimal
	TransactionDate time.Time
}

// MonthlyTrend buckets entries into the months ending with the month of now,
// oldest first. Months without entries are present with zero totals.
func MonthlyTrend(entries []Entry, now time.Time, months int) []MonthlyTotals {
	if months <= 0 {
		return nil
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	out := make([]MonthlyTotals, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		key := start.AddDate(0, i, 0).Format("2006-01")
		out[i] = MonthlyTotals{Month: key, Totals: Totals{Income: decimal.Zero, Expense: decimal.Zero}}
		index[key] = i
	}

	for _, e := range entries {
		i, ok := index[e.TransactionDate.UTC().Format("2006-01")]
		if !ok {
			continue
		}
		switch e.Type {
		case TransactionIncome:
			out[i].Income = out[i].Income.Add(e.Amount)
		case TransactionExpense:
			out[i].Expense = out[i].Expense.Add(e.Amount)
		}
	}
	return out
}
