package farm

import (
	"strings"
	"time"

	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CropStatus is the lifecycle of a planting
type CropStatus string

const (
	CropStatusActive    CropStatus = "active"
	CropStatusHarvested CropStatus = "harvested"
	CropStatusFailed    CropStatus = "failed"
)

// CropStatuses lists every crop status
var CropStatuses = []string{string(CropStatusActive), string(CropStatusHarvested), string(CropStatusFailed)}

// Crop is a planting on a plot of land
type Crop struct {
	shared.OwnedEntity
	CropName       string           `gorm:"type:varchar(150);not null"`
	CropType       string           `gorm:"type:varchar(100);not null"`
	Variety        string           `gorm:"type:varchar(100)"`
	AreaHectares   decimal.Decimal  `gorm:"type:decimal(12,4);not null;default:0"`
	PlantingDate   time.Time        `gorm:"type:date;not null"`
	HarvestDate    *time.Time       `gorm:"type:date"`
	ExpectedYield  *decimal.Decimal `gorm:"type:decimal(14,2)"`
	ActualYield    *decimal.Decimal `gorm:"type:decimal(14,2)"`
	ProductionCost *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Status         CropStatus       `gorm:"type:varchar(20);not null;default:'active';index"`
	Notes          string           `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Crop) TableName() string {
	return "crops"
}

// CropDetails is the editable content of a crop
type CropDetails struct {
	CropName       string
	CropType       string
	Variety        string
	AreaHectares   decimal.Decimal
	PlantingDate   time.Time
	HarvestDate    *time.Time
	ExpectedYield  *decimal.Decimal
	ActualYield    *decimal.Decimal
	ProductionCost *decimal.Decimal
	Status         CropStatus
	Notes          string
}

func (d CropDetails) validate() error {
	var errs shared.ValidationErrors
	errs.Required("crop_name", d.CropName, "Crop name is required.")
	errs.Required("crop_type", d.CropType, "Crop type is required.")
	if d.AreaHectares.IsNegative() {
		errs.Add("area_hectares", "Area must be zero or greater.")
	}
	if d.PlantingDate.IsZero() {
		errs.Add("planting_date", "Planting date is required.")
	}
	if d.HarvestDate != nil && !d.PlantingDate.IsZero() && d.HarvestDate.Before(d.PlantingDate) {
		errs.Add("harvest_date", "Harvest date cannot be before planting date.")
	}
	errs.NonNegative("expected_yield", d.ExpectedYield, "Expected yield cannot be negative.")
	errs.NonNegative("actual_yield", d.ActualYield, "Actual yield cannot be negative.")
	errs.NonNegative("production_cost", d.ProductionCost, "Production cost cannot be negative.")
	errs.OneOf("status", string(d.Status), CropStatuses, "Status must be active, harvested or failed.")
	return errs.Err()
}

// NewCrop creates a crop owned by owner
func NewCrop(owner uuid.UUID, d CropDetails) (*Crop, error) {
	if d.Status == "" {
		d.Status = CropStatusActive
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	c := &Crop{OwnedEntity: shared.NewOwnedEntity(owner)}
	c.apply(d)
	return c, nil
}

// Update replaces the crop's content
func (c *Crop) Update(d CropDetails) error {
	if d.Status == "" {
		d.Status = c.Status
	}
	if err := d.validate(); err != nil {
		return err
	}
	c.apply(d)
	c.Touch()
	return nil
}

func (c *Crop) apply(d CropDetails) {
	c.CropName = strings.TrimSpace(d.CropName)
	c.CropType = strings.TrimSpace(d.CropType)
	c.Variety = strings.TrimSpace(d.Variety)
	c.AreaHectares = d.AreaHectares
	c.PlantingDate = shared.DateOf(d.PlantingDate)
	c.HarvestDate = d.HarvestDate
	c.ExpectedYield = d.ExpectedYield
	c.ActualYield = d.ActualYield
	c.ProductionCost = d.ProductionCost
	c.Status = d.Status
	c.Notes = strings.TrimSpace(d.Notes)
}

// HarvestDueWithin reports whether an active crop is expected to be harvested
// between from and from+window.
func (c *Crop) HarvestDueWithin(from time.Time, window time.Duration) bool {
	if c.Status != CropStatusActive || c.HarvestDate == nil {
		return false
	}
	return !c.HarvestDate.Before(from) && !c.HarvestDate.After(from.Add(window))
}
