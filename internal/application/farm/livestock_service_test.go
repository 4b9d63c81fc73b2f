package farm_test

import (
	"context"
	"testing"

	appfarm "github.com/farmsaathi/backend/internal/application/farm"
	"github.com/farmsaathi/backend/internal/application/owned"
	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/domain/farm"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/farmsaathi/backend/internal/infrastructure/persistence"
	"github.com/farmsaathi/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLivestockService(t *testing.T) *appfarm.LivestockService {
	t.Helper()
	db := testutil.NewSQLiteDB(t,
		&farm.Livestock{}, &farm.HealthRecord{}, &farm.BreedingRecord{},
		&farm.ProductionRecord{}, &farm.ExpenseRecord{},
	)
	return appfarm.NewLivestockService(persistence.NewGormLivestockRepository(db), historyRepos(db), nil)
}

func historyRepos(db *gorm.DB) appfarm.LivestockRecordRepositories {
	return appfarm.LivestockRecordRepositories{
		Health:     persistence.NewGormLivestockRecordRepository[farm.HealthRecord](db),
		Breeding:   persistence.NewGormLivestockRecordRepository[farm.BreedingRecord](db),
		Production: persistence.NewGormLivestockRecordRepository[farm.ProductionRecord](db),
		Expense:    persistence.NewGormLivestockRecordRepository[farm.ExpenseRecord](db),
	}
}

func cow(tag string) appfarm.LivestockRequest {
	return appfarm.LivestockRequest{
		AnimalTag:       tag,
		AnimalType:      "cow",
		Breed:           "Gir",
		Gender:          "female",
		Quantity:        1,
		DateOfBirth:     "2023-04-10",
		AcquisitionType: "born",
	}
}

func TestLivestockService_TagIsUniqueAcrossOwners(t *testing.T) {
	svc := newLivestockService(t)
	ctx := context.Background()
	a := testutil.Manager(t, "manager_a")
	b := testutil.Manager(t, "manager_b")

	first, err := svc.Create(ctx, a, cow("COW-001"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, b, cow("COW-001"))
	var verrs shared.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "animal_tag", verrs[0].Field)

	second, err := svc.Create(ctx, a, cow("COW-002"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, a, second.ID, cow("COW-001"))
	require.ErrorAs(t, err, &verrs)

	// keeping its own tag is not a conflict
	req := cow("COW-001")
	req.Breed = "Sahiwal"
	updated, err := svc.Update(ctx, a, first.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Sahiwal", updated.Breed)
}

func TestLivestockService_RejectsMalformedDates(t *testing.T) {
	svc := newLivestockService(t)
	req := cow("COW-009")
	req.DateOfBirth = "10/04/2023"

	_, err := svc.Create(context.Background(), testutil.Manager(t, "asha"), req)

	var verrs shared.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "date_of_birth", verrs[0].Field)
}

func TestLivestockService_HistoryFollowsParentAccess(t *testing.T) {
	svc := newLivestockService(t)
	ctx := context.Background()
	owner := testutil.Manager(t, "owner")
	other := testutil.Manager(t, "other")
	admin := testutil.Admin(t)

	animal, err := svc.Create(ctx, owner, cow("COW-100"))
	require.NoError(t, err)

	health, err := svc.AddHealthRecord(ctx, owner, animal.ID, appfarm.HealthRecordRequest{
		Date:        "2026-10-01",
		Type:        "vaccination",
		Description: "FMD booster",
		NextDueDate: "2027-04-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "health", health.Kind)

	_, err = svc.AddHealthRecord(ctx, other, animal.ID, appfarm.HealthRecordRequest{
		Date: "2026-10-02", Type: "checkup", Description: "sneaky",
	})
	assert.True(t, access.IsAccessError(err))

	_, err = svc.HealthRecords(ctx, other, animal.ID)
	assert.True(t, access.IsAccessError(err))

	records, err := svc.HealthRecords(ctx, admin, animal.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "FMD booster", records[0].Description)

	err = svc.DeleteRecord(ctx, other, animal.ID, farm.RecordKindHealth, health.ID)
	assert.True(t, access.IsAccessError(err))

	require.NoError(t, svc.DeleteRecord(ctx, owner, animal.ID, farm.RecordKindHealth, health.ID))
	records, err = svc.HealthRecords(ctx, owner, animal.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLivestockService_DeleteRecordOfAnotherAnimal(t *testing.T) {
	svc := newLivestockService(t)
	ctx := context.Background()
	owner := testutil.Manager(t, "owner")

	first, err := svc.Create(ctx, owner, cow("COW-1"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, owner, cow("COW-2"))
	require.NoError(t, err)

	expense, err := svc.AddExpenseRecord(ctx, owner, first.ID, appfarm.ExpenseRecordRequest{
		Date: "2026-10-05", Category: "Feed", Amount: decimal.NewFromInt(1200),
	})
	require.NoError(t, err)

	err = svc.DeleteRecord(ctx, owner, second.ID, farm.RecordKindExpense, expense.ID)
	var ae *access.AccessError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, access.ReasonNotFound, ae.Reason)

	err = svc.DeleteRecord(ctx, owner, first.ID, farm.RecordKindExpense, uuid.New())
	require.ErrorAs(t, err, &ae)

	err = svc.DeleteRecord(ctx, owner, first.ID, farm.RecordKind("vaccine"), expense.ID)
	assert.Error(t, err)
}

func TestLivestockService_ProductionAndBreeding(t *testing.T) {
	svc := newLivestockService(t)
	ctx := context.Background()
	owner := testutil.Manager(t, "owner")

	animal, err := svc.Create(ctx, owner, cow("COW-7"))
	require.NoError(t, err)

	morning, evening := decimal.NewFromInt(6), decimal.RequireFromString("4.5")
	prod, err := svc.AddProductionRecord(ctx, owner, animal.ID, appfarm.ProductionRecordRequest{
		Date: "2026-10-10", Type: "milk", Unit: "litre", Morning: &morning, Evening: &evening,
	})
	require.NoError(t, err)
	assert.True(t, prod.Quantity.Equal(decimal.RequireFromString("10.5")))

	breeding, err := svc.AddBreedingRecord(ctx, owner, animal.ID, appfarm.BreedingRecordRequest{
		Date: "2026-06-01", FatherTag: "BULL-3", ExpectedDelivery: "2027-03-10",
	})
	require.NoError(t, err)
	require.NotNil(t, breeding.ExpectedDelivery)

	_, err = svc.AddBreedingRecord(ctx, owner, animal.ID, appfarm.BreedingRecordRequest{
		Date: "2026-06-01", OffspringCount: -1,
	})
	var verrs shared.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	list, err := svc.ProductionRecords(ctx, owner, animal.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLivestockService_UpcomingHealthTasks(t *testing.T) {
	svc := newLivestockService(t)
	ctx := context.Background()
	owner := testutil.Manager(t, "owner")
	other := testutil.Manager(t, "other")

	animal, err := svc.Create(ctx, owner, cow("GOAT-1"))
	require.NoError(t, err)

	soon := shared.Today().AddDate(0, 0, 5).Format(shared.DateLayout)
	later := shared.Today().AddDate(0, 0, 90).Format(shared.DateLayout)
	for _, due := range []string{later, soon} {
		_, err := svc.AddHealthRecord(ctx, owner, animal.ID, appfarm.HealthRecordRequest{
			Date: shared.Today().Format(shared.DateLayout), Type: "deworming", Description: "Dose " + due, NextDueDate: due,
		})
		require.NoError(t, err)
	}

	tasks, err := svc.UpcomingHealthTasks(ctx, owner, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "GOAT-1", tasks[0].AnimalTag)
	assert.Equal(t, "Dose "+soon, tasks[0].Description)

	tasks, err = svc.UpcomingHealthTasks(ctx, other, 0)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestLivestockService_ListFilters(t *testing.T) {
	svc := newLivestockService(t)
	ctx := context.Background()
	owner := testutil.Manager(t, "owner")

	_, err := svc.Create(ctx, owner, cow("COW-1"))
	require.NoError(t, err)
	goat := cow("GOAT-1")
	goat.AnimalType = "goat"
	_, err = svc.Create(ctx, owner, goat)
	require.NoError(t, err)

	page, err := svc.List(ctx, owner, owned.ListQuery{Type: "goat"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "GOAT-1", page.Items[0].AnimalTag)

	page, err = svc.List(ctx, owner, owned.ListQuery{Search: "cow-"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}
