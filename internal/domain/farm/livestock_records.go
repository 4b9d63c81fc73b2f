package farm

import (
	"strings"
	"time"

	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordKind names a livestock history table
type RecordKind string

const (
	RecordKindHealth     RecordKind = "health"
	RecordKindBreeding   RecordKind = "breeding"
	RecordKindProduction RecordKind = "production"
	RecordKindExpense    RecordKind = "expense"
)

// IsValid reports whether k is a known record kind
func (k RecordKind) IsValid() bool {
	switch k {
	case RecordKindHealth, RecordKindBreeding, RecordKindProduction, RecordKindExpense:
		return true
	}
	return false
}

// LivestockRecord is a history entry attached to one livestock record.
// Access to it is decided by the parent's owner.
type LivestockRecord interface {
	GetID() uuid.UUID
	GetLivestockID() uuid.UUID
	Kind() RecordKind
}

// RecordBase holds the columns every livestock history row has
type RecordBase struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	LivestockID uuid.UUID `gorm:"type:uuid;not null;index"`
	RecordDate  time.Time `gorm:"type:date;not null"`
	Notes       string    `gorm:"type:text"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// GetID returns the record id
func (r *RecordBase) GetID() uuid.UUID { return r.ID }

// GetLivestockID returns the parent id
func (r *RecordBase) GetLivestockID() uuid.UUID { return r.LivestockID }

func newRecordBase(livestockID, actor uuid.UUID, date time.Time, notes string) RecordBase {
	return RecordBase{
		ID:          uuid.New(),
		LivestockID: livestockID,
		RecordDate:  shared.DateOf(date),
		Notes:       strings.TrimSpace(notes),
		CreatedBy:   actor,
		CreatedAt:   time.Now().UTC(),
	}
}

// HealthRecordTypes lists accepted health event types
var HealthRecordTypes = []string{"vaccination", "treatment", "checkup", "deworming", "other"}

// HealthRecord is a veterinary event
type HealthRecord struct {
	RecordBase
	RecordType   string           `gorm:"type:varchar(30);not null"`
	Description  string           `gorm:"type:varchar(255);not null"`
	Cost         *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Veterinarian string           `gorm:"type:varchar(150)"`
	NextDueDate  *time.Time       `gorm:"type:date;index"`
}

// TableName returns the table name for GORM
func (HealthRecord) TableName() string { return "livestock_health_records" }

// Kind returns RecordKindHealth
func (HealthRecord) Kind() RecordKind { return RecordKindHealth }

// NewHealthRecord validates and builds a health record
func NewHealthRecord(livestockID, actor uuid.UUID, date time.Time, recordType, description string, cost *decimal.Decimal, veterinarian string, nextDue *time.Time, notes string) (*HealthRecord, error) {
	var errs shared.ValidationErrors
	requireDate(&errs, date)
	errs.OneOf("type", recordType, HealthRecordTypes, "Please select a valid health record type.")
	errs.Required("description", description, "Description is required.")
	errs.NonNegative("cost", cost, "Cost cannot be negative.")
	if nextDue != nil && !date.IsZero() && nextDue.Before(shared.DateOf(date)) {
		errs.Add("next_due_date", "Next due date cannot be before the record date.")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return &HealthRecord{
		RecordBase:   newRecordBase(livestockID, actor, date, notes),
		RecordType:   recordType,
		Description:  strings.TrimSpace(description),
		Cost:         cost,
		Veterinarian: strings.TrimSpace(veterinarian),
		NextDueDate:  nextDue,
	}, nil
}

// BreedingRecord is a mating or birth event
type BreedingRecord struct {
	RecordBase
	FatherTag        string     `gorm:"type:varchar(50)"`
	ExpectedDelivery *time.Time `gorm:"type:date"`
	ActualDelivery   *time.Time `gorm:"type:date"`
	OffspringCount   int        `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (BreedingRecord) TableName() string { return "livestock_breeding_records" }

// Kind returns RecordKindBreeding
func (BreedingRecord) Kind() RecordKind { return RecordKindBreeding }

// NewBreedingRecord validates and builds a breeding record
func NewBreedingRecord(livestockID, actor uuid.UUID, date time.Time, fatherTag string, expected, actual *time.Time, offspring int, notes string) (*BreedingRecord, error) {
	var errs shared.ValidationErrors
	requireDate(&errs, date)
	if offspring < 0 {
		errs.Add("offspring_count", "Offspring count cannot be negative.")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return &BreedingRecord{
		RecordBase:       newRecordBase(livestockID, actor, date, notes),
		FatherTag:        strings.TrimSpace(fatherTag),
		ExpectedDelivery: expected,
		ActualDelivery:   actual,
		OffspringCount:   offspring,
	}, nil
}

// ProductionTypes lists accepted production types
var ProductionTypes = []string{"milk", "eggs", "wool", "meat", "other"}

// ProductionRecord is a daily yield such as milk or eggs
type ProductionRecord struct {
	RecordBase
	ProductionType string           `gorm:"type:varchar(20);not null"`
	Quantity       decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	Unit           string           `gorm:"type:varchar(20);not null"`
	Morning        *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Evening        *decimal.Decimal `gorm:"type:decimal(14,2)"`
}

// TableName returns the table name for GORM
func (ProductionRecord) TableName() string { return "livestock_production_records" }

// Kind returns RecordKindProduction
func (ProductionRecord) Kind() RecordKind { return RecordKindProduction }

// NewProductionRecord validates and builds a production record. When quantity
// is zero and morning/evening yields are given, their sum is used.
func NewProductionRecord(livestockID, actor uuid.UUID, date time.Time, productionType string, quantity decimal.Decimal, unit string, morning, evening *decimal.Decimal, notes string) (*ProductionRecord, error) {
	if quantity.IsZero() && (morning != nil || evening != nil) {
		if morning != nil {
			quantity = quantity.Add(*morning)
		}
		if evening != nil {
			quantity = quantity.Add(*evening)
		}
	}

	var errs shared.ValidationErrors
	requireDate(&errs, date)
	errs.OneOf("type", productionType, ProductionTypes, "Please select a valid production type.")
	if !quantity.IsPositive() {
		errs.Add("quantity", "Quantity must be greater than 0.")
	}
	errs.Required("unit", unit, "Unit is required.")
	errs.NonNegative("morning", morning, "Morning yield cannot be negative.")
	errs.NonNegative("evening", evening, "Evening yield cannot be negative.")
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return &ProductionRecord{
		RecordBase:     newRecordBase(livestockID, actor, date, notes),
		ProductionType: productionType,
		Quantity:       quantity,
		Unit:           strings.TrimSpace(unit),
		Morning:        morning,
		Evening:        evening,
	}, nil
}

// ExpenseRecord is money spent on one animal or flock
type ExpenseRecord struct {
	RecordBase
	Category    string          `gorm:"type:varchar(100);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Description string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (ExpenseRecord) TableName() string { return "livestock_expense_records" }

// Kind returns RecordKindExpense
func (ExpenseRecord) Kind() RecordKind { return RecordKindExpense }

// NewExpenseRecord validates and builds an expense record
func NewExpenseRecord(livestockID, actor uuid.UUID, date time.Time, category string, amount decimal.Decimal, description, notes string) (*ExpenseRecord, error) {
	var errs shared.ValidationErrors
	requireDate(&errs, date)
	errs.Required("category", category, "Category is required.")
	if !amount.IsPositive() {
		errs.Add("amount", "Amount must be greater than 0.")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return &ExpenseRecord{
		RecordBase:  newRecordBase(livestockID, actor, date, notes),
		Category:    strings.TrimSpace(category),
		Amount:      amount,
		Description: strings.TrimSpace(description),
	}, nil
}

func requireDate(errs *shared.ValidationErrors, date time.Time) {
	if date.IsZero() {
		errs.Add("date", "Date is required.")
	}
}

// HealthTask is an upcoming health event of an active animal
type HealthTask struct {
	LivestockID uuid.UUID
	AnimalTag   string
	AnimalType  string
	Breed       string
	DueDate     time.Time
	Description string
}
