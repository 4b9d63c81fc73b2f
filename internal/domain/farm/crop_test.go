package farm

import (
	"errors"
	"testing"
	"time"

	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var verrs shared.ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %v", err)
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Field)
	}
	return out
}

func validCrop() CropDetails {
	harvest := date(2026, 9, 1)
	return CropDetails{
		CropName:     "Basmati",
		CropType:     "Rice",
		AreaHectares: decimal.RequireFromString("2.5"),
		PlantingDate: date(2026, 6, 15),
		HarvestDate:  &harvest,
	}
}

func TestNewCrop(t *testing.T) {
	owner := uuid.New()

	t.Run("defaults to active", func(t *testing.T) {
		c, err := NewCrop(owner, validCrop())
		require.NoError(t, err)
		assert.Equal(t, CropStatusActive, c.Status)
		assert.Equal(t, owner, c.CreatedBy)
	})

	t.Run("reports every invalid field", func(t *testing.T) {
		d := CropDetails{AreaHectares: decimal.NewFromInt(-1), Status: "growing"}
		_, err := NewCrop(owner, d)
		assert.ElementsMatch(t, []string{"crop_name", "crop_type", "area_hectares", "planting_date", "status"}, fieldsOf(t, err))
	})

	t.Run("harvest before planting rejected", func(t *testing.T) {
		d := validCrop()
		early := date(2026, 1, 1)
		d.HarvestDate = &early
		_, err := NewCrop(owner, d)
		assert.Equal(t, []string{"harvest_date"}, fieldsOf(t, err))
	})
}

func TestCrop_UpdateKeepsOwnerAndStatus(t *testing.T) {
	owner := uuid.New()
	c, err := NewCrop(owner, validCrop())
	require.NoError(t, err)
	c.Status = CropStatusHarvested

	d := validCrop()
	d.CropName = "Jasmine"
	require.NoError(t, c.Update(d))

	assert.Equal(t, "Jasmine", c.CropName)
	assert.Equal(t, CropStatusHarvested, c.Status)
	assert.Equal(t, owner, c.CreatedBy)
}

func TestCrop_HarvestDueWithin(t *testing.T) {
	c, err := NewCrop(uuid.New(), validCrop())
	require.NoError(t, err)

	window := 30 * 24 * time.Hour
	assert.True(t, c.HarvestDueWithin(date(2026, 8, 15), window))
	assert.False(t, c.HarvestDueWithin(date(2026, 7, 1), window))
	assert.False(t, c.HarvestDueWithin(date(2026, 9, 2), window))

	c.Status = CropStatusFailed
	assert.False(t, c.HarvestDueWithin(date(2026, 8, 15), window))
}

func TestNewEquipment(t *testing.T) {
	e, err := NewEquipment(uuid.New(), EquipmentDetails{
		EquipmentName: "Tractor",
		Type:          "Machinery",
		PurchaseDate:  date(2020, 1, 1),
		Value:         decimal.NewFromInt(500000),
	})
	require.NoError(t, err)
	assert.Equal(t, ConditionGood, e.Condition)

	next := date(2026, 1, 1)
	e.NextMaintenance = &next
	assert.True(t, e.MaintenanceOverdue(date(2026, 2, 1)))
	assert.False(t, e.MaintenanceOverdue(date(2025, 12, 1)))

	_, err = NewEquipment(uuid.New(), EquipmentDetails{Condition: "broken", Value: decimal.NewFromInt(-5)})
	assert.ElementsMatch(t, []string{"equipment_name", "type", "purchase_date", "value", "condition"}, fieldsOf(t, err))
}

func TestNewEmployee(t *testing.T) {
	e, err := NewEmployee(uuid.New(), EmployeeDetails{
		Name:     "Ram",
		Role:     "Herder",
		Phone:    "9800000000",
		Email:    "Ram@Farm.NP",
		Salary:   decimal.NewFromInt(15000),
		HireDate: date(2024, 4, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, EmployeeStatusActive, e.Status)
	assert.Equal(t, "ram@farm.np", e.Email)

	_, err = NewEmployee(uuid.New(), EmployeeDetails{Email: "nope", Salary: decimal.NewFromInt(-1), Status: "fired"})
	assert.ElementsMatch(t, []string{"name", "role", "phone", "email", "salary", "hire_date", "status"}, fieldsOf(t, err))
}
