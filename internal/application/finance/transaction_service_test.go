package finance_test

import (
	"context"
	"testing"

	appfinance "github.com/farmsaathi/backend/internal/application/finance"
	"github.com/farmsaathi/backend/internal/application/owned"
	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/domain/finance"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/farmsaathi/backend/internal/infrastructure/persistence"
	"github.com/farmsaathi/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransactionService(t *testing.T) *appfinance.TransactionService {
	t.Helper()
	db := testutil.NewSQLiteDB(t, &finance.Transaction{})
	return appfinance.NewTransactionService(persistence.NewGormTransactionRepository(db), nil)
}

func book(t *testing.T, svc *appfinance.TransactionService, p access.Principal, txType, category, amount, date string) *appfinance.TransactionResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), p, appfinance.TransactionRequest{
		Type:            txType,
		Category:        category,
		Amount:          decimal.RequireFromString(amount),
		TransactionDate: date,
	})
	require.NoError(t, err)
	return resp
}

func TestTransactionService_SummaryIsScoped(t *testing.T) {
	svc := newTransactionService(t)
	ctx := context.Background()
	a := testutil.Manager(t, "manager_a")
	b := testutil.Manager(t, "manager_b")

	book(t, svc, a, "income", "Crop Sales", "50000", "2026-09-01")
	book(t, svc, a, "expense", "Animal Feed", "12000.50", "2026-09-15")
	book(t, svc, b, "expense", "Fuel & Transportation", "3000", "2026-10-01")

	sum, err := svc.Summary(ctx, a, appfinance.SummaryQuery{})
	require.NoError(t, err)
	assert.True(t, sum.TotalIncome.Equal(decimal.NewFromInt(50000)))
	assert.True(t, sum.TotalExpense.Equal(decimal.RequireFromString("12000.50")))
	assert.True(t, sum.Net.Equal(decimal.RequireFromString("37999.50")))

	sum, err = svc.Summary(ctx, testutil.Admin(t), appfinance.SummaryQuery{DateFrom: "2026-09-10"})
	require.NoError(t, err)
	assert.True(t, sum.TotalIncome.IsZero())
	assert.True(t, sum.TotalExpense.Equal(decimal.RequireFromString("15000.50")))

	_, err = svc.Summary(ctx, a, appfinance.SummaryQuery{DateFrom: "2026-09-10", DateTo: "2026-09-01"})
	var verrs shared.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestTransactionService_Validation(t *testing.T) {
	svc := newTransactionService(t)

	_, err := svc.Create(context.Background(), testutil.Manager(t, "asha"), appfinance.TransactionRequest{
		Type:   "income",
		Amount: decimal.Zero,
	})

	var verrs shared.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = fe.Field
	}
	assert.ElementsMatch(t, []string{"category", "amount", "transaction_date"}, fields)
}

func TestTransactionService_ListByType(t *testing.T) {
	svc := newTransactionService(t)
	ctx := context.Background()
	a := testutil.Manager(t, "asha")

	book(t, svc, a, "income", "Dairy Products", "800", "2026-10-01")
	book(t, svc, a, "expense", "Utilities", "200", "2026-10-02")
	created := book(t, svc, a, "expense", "Utilities", "300", "2026-10-03")
	assert.Equal(t, "cash", created.PaymentMethod)

	page, err := svc.List(ctx, a, appfinance.TransactionQuery{ListQuery: owned.ListQuery{Type: "expense"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, created.ID, page.Items[0].ID, "newest transaction date first")

	_, err = svc.Get(ctx, testutil.Manager(t, "other"), created.ID)
	assert.True(t, access.IsAccessError(err))
}
