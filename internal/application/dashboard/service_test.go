package dashboard_test

import (
	"context"
	"sync"
	"testing"

	"github.com/farmsaathi/backend/internal/application/dashboard"
	appfarm "github.com/farmsaathi/backend/internal/application/farm"
	appfinance "github.com/farmsaathi/backend/internal/application/finance"
	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/domain/farm"
	"github.com/farmsaathi/backend/internal/domain/finance"
	"github.com/farmsaathi/backend/internal/domain/identity"
	"github.com/farmsaathi/backend/internal/domain/inventory"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/farmsaathi/backend/internal/infrastructure/persistence"
	"github.com/farmsaathi/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seeded struct {
	db        *gorm.DB
	svc       *dashboard.Service
	crops     *appfarm.CropService
	livestock *appfarm.LivestockService
	finance   *appfinance.TransactionService
}

func setup(t *testing.T) *seeded {
	t.Helper()
	db := testutil.NewSQLiteDB(t,
		&farm.Crop{}, &farm.Livestock{}, &farm.HealthRecord{}, &farm.BreedingRecord{},
		&farm.ProductionRecord{}, &farm.ExpenseRecord{}, &farm.Employee{},
		&inventory.InventoryItem{}, &finance.Transaction{}, &identity.User{},
	)
	cropRepo := persistence.NewGormCropRepository(db)
	livestockRepo := persistence.NewGormLivestockRepository(db)
	txRepo := persistence.NewGormTransactionRepository(db)

	return &seeded{
		db: db,
		svc: dashboard.NewService(dashboard.Repositories{
			Crops:        cropRepo,
			Livestock:    livestockRepo,
			Employees:    persistence.NewGormEmployeeRepository(db),
			Inventory:    persistence.NewGormInventoryItemRepository(db),
			Transactions: txRepo,
			Users:        persistence.NewGormUserRepository(db),
		}),
		crops: appfarm.NewCropService(cropRepo, nil),
		livestock: appfarm.NewLivestockService(livestockRepo, appfarm.LivestockRecordRepositories{
			Health:     persistence.NewGormLivestockRecordRepository[farm.HealthRecord](db),
			Breeding:   persistence.NewGormLivestockRecordRepository[farm.BreedingRecord](db),
			Production: persistence.NewGormLivestockRecordRepository[farm.ProductionRecord](db),
			Expense:    persistence.NewGormLivestockRecordRepository[farm.ExpenseRecord](db),
		}, nil),
		finance: appfinance.NewTransactionService(txRepo, nil),
	}
}

func (s *seeded) crop(t *testing.T, p access.Principal, name, area string, harvestInDays int) {
	t.Helper()
	_, err := s.crops.Create(context.Background(), p, appfarm.CropRequest{
		CropName:     name,
		CropType:     "Grain",
		AreaHectares: decimal.RequireFromString(area),
		PlantingDate: shared.Today().AddDate(0, -3, 0).Format(shared.DateLayout),
		HarvestDate:  shared.Today().AddDate(0, 0, harvestInDays).Format(shared.DateLayout),
	})
	require.NoError(t, err)
}

func (s *seeded) animal(t *testing.T, p access.Principal, tag, animalType string, qty int) {
	t.Helper()
	_, err := s.livestock.Create(context.Background(), p, appfarm.LivestockRequest{
		AnimalTag: tag, AnimalType: animalType, Gender: "female", Quantity: qty,
		DateOfBirth: "2024-01-01", AcquisitionType: "born",
	})
	require.NoError(t, err)
}

func (s *seeded) book(t *testing.T, p access.Principal, txType, category, amount string) {
	t.Helper()
	_, err := s.finance.Create(context.Background(), p, appfinance.TransactionRequest{
		Type: txType, Category: category, Amount: decimal.RequireFromString(amount),
		TransactionDate: shared.Today().Format(shared.DateLayout),
	})
	require.NoError(t, err)
}

func TestDashboard_ScopedFigures(t *testing.T) {
	s := setup(t)
	a := testutil.Manager(t, "manager_a")
	b := testutil.Manager(t, "manager_b")

	s.crop(t, a, "Wheat", "2.5", 10)
	s.crop(t, a, "Mustard", "1.5", 60)
	s.crop(t, b, "Paddy", "4", 5)
	s.animal(t, a, "COW-1", "cow", 3)
	s.animal(t, a, "GOAT-1", "goat", 1)
	s.animal(t, b, "PIG-1", "pig", 7)
	s.book(t, a, "income", "Crop Sales", "1000")
	s.book(t, a, "expense", "animal feed", "200")
	s.book(t, a, "expense", "Animal Feed", "300")
	s.book(t, a, "expense", "Utilities", "400")
	s.book(t, b, "expense", "Fuel", "900")

	resp, err := s.svc.Get(context.Background(), a)
	require.NoError(t, err)

	assert.Equal(t, int64(2), resp.Crops.Active)
	assert.True(t, resp.Crops.TotalArea.Equal(decimal.NewFromInt(4)))
	require.Len(t, resp.UpcomingHarvests, 1)
	assert.Equal(t, "Wheat", resp.UpcomingHarvests[0].CropName)

	assert.Equal(t, int64(4), resp.Livestock.HeadCount)
	assert.Equal(t, int64(2), resp.Livestock.Types)

	assert.True(t, resp.Finance.TotalIncome.Equal(decimal.NewFromInt(1000)))
	assert.True(t, resp.Finance.Net.Equal(decimal.NewFromInt(100)))

	require.Len(t, resp.ExpenseByCategory, 2)
	assert.Equal(t, "Animal Feed", resp.ExpenseByCategory[0].Category)
	assert.True(t, resp.ExpenseByCategory[0].Total.Equal(decimal.NewFromInt(500)))

	require.Len(t, resp.MonthlyTrend, dashboard.TrendMonths)
	current := resp.MonthlyTrend[len(resp.MonthlyTrend)-1]
	assert.True(t, current.Expense.Equal(decimal.NewFromInt(900)))
	assert.Nil(t, resp.Admin)
}

// One Service serves every request; concurrent dashboards must not share
// per-call state such as the category title-caser.
func TestDashboard_ConcurrentRequests(t *testing.T) {
	s := setup(t)
	a := testutil.Manager(t, "manager_a")
	s.book(t, a, "expense", "animal feed", "200")
	s.book(t, a, "expense", "ANIMAL FEED", "300")
	s.book(t, a, "expense", "veterinary care", "50")

	const workers = 8
	var wg sync.WaitGroup
	results := make([]*dashboard.Response, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.svc.Get(context.Background(), a)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.Len(t, results[i].ExpenseByCategory, 2)
		assert.Equal(t, "Animal Feed", results[i].ExpenseByCategory[0].Category)
		assert.Equal(t, "Veterinary Care", results[i].ExpenseByCategory[1].Category)
	}
}

func TestDashboard_AdminOverview(t *testing.T) {
	identity.SetBcryptCost(bcrypt.MinCost)
	s := setup(t)
	users := persistence.NewGormUserRepository(s.db)
	for _, u := range []struct {
		name string
		role access.Role
	}{{"root", access.RoleAdmin}, {"asha", access.RoleManager}, {"ravi", access.RoleManager}} {
		user, err := identity.NewUser(u.name, "harvest2026", u.role)
		require.NoError(t, err)
		require.NoError(t, users.Create(context.Background(), user))
	}
	s.crop(t, testutil.Manager(t, "asha"), "Wheat", "2", 10)

	resp, err := s.svc.Get(context.Background(), testutil.Admin(t))
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Crops.Active)
	require.NotNil(t, resp.Admin)
	assert.Equal(t, int64(3), resp.Admin.TotalUsers)
	assert.Equal(t, int64(2), resp.Admin.UsersByRole["manager"])
	assert.Len(t, resp.Admin.RecentUsers, 3)
}
