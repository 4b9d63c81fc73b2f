package farm

import (
	"strings"
	"time"

	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AnimalTypes lists the accepted animal types
var AnimalTypes = []string{"cow", "buffalo", "goat", "sheep", "chicken", "duck", "pig", "other"}

// Gender of an animal
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// AcquisitionType tells how an animal joined the herd
type AcquisitionType string

const (
	AcquisitionPurchase AcquisitionType = "purchase"
	AcquisitionBorn     AcquisitionType = "born"
)

// LivestockStatus is the lifecycle of an animal or flock
type LivestockStatus string

const (
	LivestockStatusActive   LivestockStatus = "active"
	LivestockStatusSold     LivestockStatus = "sold"
	LivestockStatusDeceased LivestockStatus = "deceased"
)

// LivestockStatuses lists every livestock status
var LivestockStatuses = []string{"active", "sold", "deceased"}

// ErrDuplicateAnimalTag is returned when an animal tag is already taken
var ErrDuplicateAnimalTag = shared.ValidationErrors{
	{Field: "animal_tag", Message: "Animal tag already exists. Please use a unique tag."},
}

// Livestock is a tagged animal, or a flock sharing one tag
type Livestock struct {
	shared.OwnedEntity
	AnimalTag       string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	AnimalType      string           `gorm:"type:varchar(20);not null;index"`
	Breed           string           `gorm:"type:varchar(100)"`
	Gender          Gender           `gorm:"type:varchar(10);not null"`
	Quantity        int              `gorm:"not null;default:1"`
	DateOfBirth     *time.Time       `gorm:"type:date"`
	AcquisitionType AcquisitionType  `gorm:"type:varchar(20);not null"`
	PurchaseDate    *time.Time       `gorm:"type:date"`
	PurchaseCost    *decimal.Decimal `gorm:"type:decimal(14,2)"`
	MotherTag       string           `gorm:"type:varchar(50)"`
	CurrentLocation string           `gorm:"type:varchar(150)"`
	Notes           string           `gorm:"type:text"`
	Status          LivestockStatus  `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (Livestock) TableName() string {
	return "livestock"
}

// LivestockDetails is the editable content of a livestock record
type LivestockDetails struct {
	AnimalTag       string
	AnimalType      string
	Breed           string
	Gender          Gender
	Quantity        int
	DateOfBirth     *time.Time
	AcquisitionType AcquisitionType
	PurchaseDate    *time.Time
	PurchaseCost    *decimal.Decimal
	MotherTag       string
	CurrentLocation string
	Notes           string
	Status          LivestockStatus
}

func (d LivestockDetails) validate() error {
	var errs shared.ValidationErrors
	errs.Required("animal_tag", d.AnimalTag, "Animal tag is required.")
	errs.OneOf("animal_type", d.AnimalType, AnimalTypes, "Please select a valid animal type.")
	errs.OneOf("gender", string(d.Gender), []string{"male", "female"}, "Please select gender.")
	if d.Quantity <= 0 {
		errs.Add("quantity", "Quantity must be greater than 0.")
	}
	switch d.AcquisitionType {
	case AcquisitionPurchase:
		if d.PurchaseDate == nil {
			errs.Add("purchase_date", "Purchase date is required for purchased animals.")
		}
		if d.PurchaseCost == nil {
			errs.Add("purchase_cost", "Purchase cost is required for purchased animals.")
		}
	case AcquisitionBorn:
		if d.DateOfBirth == nil {
			errs.Add("date_of_birth", "Date of birth is required for animals born on the farm.")
		}
	default:
		errs.Add("acquisition_type", "Acquisition type must be purchase or born.")
	}
	errs.NonNegative("purchase_cost", d.PurchaseCost, "Purchase cost cannot be negative.")
	if strings.EqualFold(strings.TrimSpace(d.MotherTag), strings.TrimSpace(d.AnimalTag)) && d.MotherTag != "" {
		errs.Add("mother_tag", "An animal cannot be its own mother.")
	}
	errs.OneOf("status", string(d.Status), LivestockStatuses, "Status must be active, sold or deceased.")
	return errs.Err()
}

// NewLivestock creates a livestock record owned by owner
func NewLivestock(owner uuid.UUID, d LivestockDetails) (*Livestock, error) {
	if d.Status == "" {
		d.Status = LivestockStatusActive
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	l := &Livestock{OwnedEntity: shared.NewOwnedEntity(owner)}
	l.apply(d)
	return l, nil
}

// Update replaces the record's content
func (l *Livestock) Update(d LivestockDetails) error {
	if d.Status == "" {
		d.Status = l.Status
	}
	if err := d.validate(); err != nil {
		return err
	}
	l.apply(d)
	l.Touch()
	return nil
}

func (l *Livestock) apply(d LivestockDetails) {
	l.AnimalTag = strings.TrimSpace(d.AnimalTag)
	l.AnimalType = d.AnimalType
	l.Breed = strings.TrimSpace(d.Breed)
	l.Gender = d.Gender
	l.Quantity = d.Quantity
	l.DateOfBirth = d.DateOfBirth
	l.AcquisitionType = d.AcquisitionType
	l.PurchaseDate = d.PurchaseDate
	l.PurchaseCost = d.PurchaseCost
	l.MotherTag = strings.TrimSpace(d.MotherTag)
	l.CurrentLocation = strings.TrimSpace(d.CurrentLocation)
	l.Notes = strings.TrimSpace(d.Notes)
	l.Status = d.Status
}
