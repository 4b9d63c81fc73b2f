package farm

import (
	"strings"
	"time"

	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EquipmentCondition grades the state of a machine
type EquipmentCondition string

const (
	ConditionExcellent   EquipmentCondition = "excellent"
	ConditionGood        EquipmentCondition = "good"
	ConditionFair        EquipmentCondition = "fair"
	ConditionPoor        EquipmentCondition = "poor"
	ConditionNeedsRepair EquipmentCondition = "needs_repair"
)

// EquipmentConditions lists every condition
var EquipmentConditions = []string{"excellent", "good", "fair", "poor", "needs_repair"}

// Equipment is a tool or machine kept on the farm
type Equipment struct {
	shared.OwnedEntity
	EquipmentName   string             `gorm:"type:varchar(150);not null"`
	Type            string             `gorm:"type:varchar(100);not null"`
	PurchaseDate    time.Time          `gorm:"type:date;not null"`
	LastMaintenance *time.Time         `gorm:"type:date"`
	NextMaintenance *time.Time         `gorm:"type:date;index"`
	Condition       EquipmentCondition `gorm:"type:varchar(20);not null;default:'good'"`
	Value           decimal.Decimal    `gorm:"type:decimal(14,2);not null;default:0"`
	Notes           string             `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Equipment) TableName() string {
	return "equipment"
}

// EquipmentDetails is the editable content of an equipment record
type EquipmentDetails struct {
	EquipmentName   string
	Type            string
	PurchaseDate    time.Time
	LastMaintenance *time.Time
	NextMaintenance *time.Time
	Condition       EquipmentCondition
	Value           decimal.Decimal
	Notes           string
}

func (d EquipmentDetails) validate() error {
	var errs shared.ValidationErrors
	errs.Required("equipment_name", d.EquipmentName, "Equipment name is required.")
	errs.Required("type", d.Type, "Type is required.")
	if d.PurchaseDate.IsZero() {
		errs.Add("purchase_date", "Purchase date is required.")
	}
	if d.Value.IsNegative() {
		errs.Add("value", "Value must be zero or greater.")
	}
	errs.OneOf("condition", string(d.Condition), EquipmentConditions, "Condition is not valid.")
	return errs.Err()
}

// NewEquipment creates an equipment record owned by owner
func NewEquipment(owner uuid.UUID, d EquipmentDetails) (*Equipment, error) {
	if d.Condition == "" {
		d.Condition = ConditionGood
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	e := &Equipment{OwnedEntity: shared.NewOwnedEntity(owner)}
	e.apply(d)
	return e, nil
}

// Update replaces the record's content
func (e *Equipment) Update(d EquipmentDetails) error {
	if d.Condition == "" {
		d.Condition = e.Condition
	}
	if err := d.validate(); err != nil {
		return err
	}
	e.apply(d)
	e.Touch()
	return nil
}

func (e *Equipment) apply(d EquipmentDetails) {
	e.EquipmentName = strings.TrimSpace(d.EquipmentName)
	e.Type = strings.TrimSpace(d.Type)
	e.PurchaseDate = shared.DateOf(d.PurchaseDate)
	e.LastMaintenance = d.LastMaintenance
	e.NextMaintenance = d.NextMaintenance
	e.Condition = d.Condition
	e.Value = d.Value
	e.Notes = strings.TrimSpace(d.Notes)
}

// MaintenanceOverdue reports whether the next maintenance date has passed
func (e *Equipment) MaintenanceOverdue(today time.Time) bool {
	return e.NextMaintenance != nil && e.NextMaintenance.Before(shared.DateOf(today))
}
