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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCropService_CRUD(t *testing.T) {
	db := testutil.NewSQLiteDB(t, &farm.Crop{})
	svc := appfarm.NewCropService(persistence.NewGormCropRepository(db), nil)
	ctx := context.Background()
	manager := testutil.Manager(t, "asha")

	created, err := svc.Create(ctx, manager, appfarm.CropRequest{
		CropName:     "Basmati",
		CropType:     "Rice",
		AreaHectares: decimal.RequireFromString("2.5"),
		PlantingDate: "2026-06-15",
		HarvestDate:  "2026-10-20",
	})
	require.NoError(t, err)
	assert.Equal(t, "active", created.Status)
	assert.Equal(t, manager.ID, created.CreatedBy)

	_, err = svc.Update(ctx, manager, created.ID, appfarm.CropRequest{
		CropName:     "Basmati",
		CropType:     "Rice",
		PlantingDate: "2026-06-15",
		HarvestDate:  "2026-01-01",
	})
	var verrs shared.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "harvest_date", verrs[0].Field)

	updated, err := svc.Update(ctx, manager, created.ID, appfarm.CropRequest{
		CropName:     "Basmati",
		CropType:     "Rice",
		PlantingDate: "2026-06-15",
		Status:       "harvested",
	})
	require.NoError(t, err)
	assert.Equal(t, "harvested", updated.Status)

	page, err := svc.List(ctx, manager, owned.ListQuery{Status: "active"})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	require.NoError(t, svc.Delete(ctx, manager, created.ID))
	_, err = svc.Get(ctx, manager, created.ID)
	assert.True(t, access.IsAccessError(err))
}

func TestEquipmentService_ListByCondition(t *testing.T) {
	db := testutil.NewSQLiteDB(t, &farm.Equipment{})
	svc := appfarm.NewEquipmentService(persistence.NewGormEquipmentRepository(db), nil)
	ctx := context.Background()
	manager := testutil.Manager(t, "asha")

	tractor, err := svc.Create(ctx, manager, appfarm.EquipmentRequest{
		EquipmentName:   "Tractor",
		Type:            "Machinery",
		PurchaseDate:    "2020-02-01",
		NextMaintenance: "2021-01-01",
		Condition:       "needs_repair",
		Value:           decimal.NewFromInt(450000),
	})
	require.NoError(t, err)
	assert.True(t, tractor.MaintenanceOverdue)

	_, err = svc.Create(ctx, manager, appfarm.EquipmentRequest{
		EquipmentName: "Sprayer",
		Type:          "Tool",
		PurchaseDate:  "2024-05-01",
	})
	require.NoError(t, err)

	page, err := svc.List(ctx, manager, owned.ListQuery{Status: "needs_repair"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Tractor", page.Items[0].EquipmentName)

	_, err = svc.Create(ctx, manager, appfarm.EquipmentRequest{EquipmentName: "Plough", Type: "Tool"})
	var verrs shared.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestEmployeeService_CountActive(t *testing.T) {
	db := testutil.NewSQLiteDB(t, &farm.Employee{})
	svc := appfarm.NewEmployeeService(persistence.NewGormEmployeeRepository(db), nil)
	ctx := context.Background()
	a := testutil.Manager(t, "manager_a")
	b := testutil.Manager(t, "manager_b")

	for _, tc := range []struct {
		owner  access.Principal
		name   string
		status string
	}{
		{a, "Ravi", ""},
		{a, "Meena", "terminated"},
		{b, "Kiran", "active"},
	} {
		_, err := svc.Create(ctx, tc.owner, appfarm.EmployeeRequest{
			Name: tc.name, Role: "Labourer", Phone: "98450 00000", HireDate: "2025-01-01", Status: tc.status,
		})
		require.NoError(t, err)
	}

	n, err := svc.CountActive(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = svc.CountActive(ctx, testutil.Admin(t))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = svc.Create(ctx, a, appfarm.EmployeeRequest{
		Name: "Bad", Role: "Driver", Phone: "1", Email: "not-an-email", HireDate: "2025-01-01",
	})
	var verrs shared.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "email", verrs[0].Field)
}
