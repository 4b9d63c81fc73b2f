package farm

import (
	"time"

	"github.com/farmsaathi/backend/internal/domain/farm"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Dates travel as YYYY-MM-DD strings and are parsed here so that a malformed
// date is reported next to the domain's own field errors.

// =============================================================================
// Crop DTOs
// =============================================================================

// CropRequest creates or replaces a crop
type CropRequest struct {
	CropName       string           `json:"crop_name" binding:"max=150"`
	CropType       string           `json:"crop_type" binding:"max=100"`
	Variety        string           `json:"variety" binding:"max=100"`
	AreaHectares   decimal.Decimal  `json:"area_hectares"`
	PlantingDate   string           `json:"planting_date"`
	HarvestDate    string           `json:"harvest_date"`
	ExpectedYield  *decimal.Decimal `json:"expected_yield"`
	ActualYield    *decimal.Decimal `json:"actual_yield"`
	ProductionCost *decimal.Decimal `json:"production_cost"`
	Status         string           `json:"status" binding:"omitempty,oneof=active harvested failed"`
	Notes          string           `json:"notes"`
}

func (r CropRequest) details() (farm.CropDetails, error) {
	var errs shared.ValidationErrors
	planting := errs.Date("planting_date", r.PlantingDate)
	harvest := errs.Date("harvest_date", r.HarvestDate)
	if err := errs.Err(); err != nil {
		return farm.CropDetails{}, err
	}
	return farm.CropDetails{
		CropName:       r.CropName,
		CropType:       r.CropType,
		Variety:        r.Variety,
		AreaHectares:   r.AreaHectares,
		PlantingDate:   shared.DateOrZero(planting),
		HarvestDate:    harvest,
		ExpectedYield:  r.ExpectedYield,
		ActualYield:    r.ActualYield,
		ProductionCost: r.ProductionCost,
		Status:         farm.CropStatus(r.Status),
		Notes:          r.Notes,
	}, nil
}

// CropResponse is a crop as returned by the API
type CropResponse struct {
	ID             uuid.UUID        `json:"id"`
	CropName       string           `json:"crop_name"`
	CropType       string           `json:"crop_type"`
	Variety        string           `json:"variety"`
	AreaHectares   decimal.Decimal  `json:"area_hectares"`
	PlantingDate   time.Time        `json:"planting_date"`
	HarvestDate    *time.Time       `json:"harvest_date"`
	ExpectedYield  *decimal.Decimal `json:"expected_yield"`
	ActualYield    *decimal.Decimal `json:"actual_yield"`
	ProductionCost *decimal.Decimal `json:"production_cost"`
	Status         string           `json:"status"`
	Notes          string           `json:"notes"`
	CreatedBy      uuid.UUID        `json:"created_by"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ToCropResponse converts a domain crop
func ToCropResponse(c farm.Crop) CropResponse {
	return CropResponse{
		ID:             c.ID,
		CropName:       c.CropName,
		CropType:       c.CropType,
		Variety:        c.Variety,
		AreaHectares:   c.AreaHectares,
		PlantingDate:   c.PlantingDate,
		HarvestDate:    c.HarvestDate,
		ExpectedYield:  c.ExpectedYield,
		ActualYield:    c.ActualYield,
		ProductionCost: c.ProductionCost,
		Status:         string(c.Status),
		Notes:          c.Notes,
		CreatedBy:      c.CreatedBy,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// =============================================================================
// Livestock DTOs
// =============================================================================

// LivestockRequest creates or replaces a livestock record
type LivestockRequest struct {
	AnimalTag       string           `json:"animal_tag" binding:"max=50"`
	AnimalType      string           `json:"animal_type"`
	Breed           string           `json:"breed" binding:"max=100"`
	Gender          string           `json:"gender"`
	Quantity        int              `json:"quantity"`
	DateOfBirth     string           `json:"date_of_birth"`
	AcquisitionType string           `json:"acquisition_type"`
	PurchaseDate    string           `json:"purchase_date"`
	PurchaseCost    *decimal.Decimal `json:"purchase_cost"`
	MotherTag       string           `json:"mother_tag" binding:"max=50"`
	CurrentLocation string           `json:"current_location" binding:"max=150"`
	Notes           string           `json:"notes"`
	Status          string           `json:"status" binding:"omitempty,oneof=active sold deceased"`
}

func (r LivestockRequest) details() (farm.LivestockDetails, error) {
	var errs shared.ValidationErrors
	born := errs.Date("date_of_birth", r.DateOfBirth)
	purchased := errs.Date("purchase_date", r.PurchaseDate)
	if err := errs.Err(); err != nil {
		return farm.LivestockDetails{}, err
	}
	return farm.LivestockDetails{
		AnimalTag:       r.AnimalTag,
		AnimalType:      r.AnimalType,
		Breed:           r.Breed,
		Gender:          farm.Gender(r.Gender),
		Quantity:        r.Quantity,
		DateOfBirth:     born,
		AcquisitionType: farm.AcquisitionType(r.AcquisitionType),
		PurchaseDate:    purchased,
		PurchaseCost:    r.PurchaseCost,
		MotherTag:       r.MotherTag,
		CurrentLocation: r.CurrentLocation,
		Notes:           r.Notes,
		Status:          farm.LivestockStatus(r.Status),
	}, nil
}

// LivestockResponse is a livestock record as returned by the API
type LivestockResponse struct {
	ID              uuid.UUID        `json:"id"`
	AnimalTag       string           `json:"animal_tag"`
	AnimalType      string           `json:"animal_type"`
	Breed           string           `json:"breed"`
	Gender          string           `json:"gender"`
	Quantity        int              `json:"quantity"`
	DateOfBirth     *time.Time       `json:"date_of_birth"`
	AcquisitionType string           `json:"acquisition_type"`
	PurchaseDate    *time.Time       `json:"purchase_date"`
	PurchaseCost    *decimal.Decimal `json:"purchase_cost"`
	MotherTag       string           `json:"mother_tag"`
	CurrentLocation string           `json:"current_location"`
	Notes           string           `json:"notes"`
	Status          string           `json:"status"`
	CreatedBy       uuid.UUID        `json:"created_by"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ToLivestockResponse converts a domain livestock record
func ToLivestockResponse(l farm.Livestock) LivestockResponse {
	return LivestockResponse{
		ID:              l.ID,
		AnimalTag:       l.AnimalTag,
		AnimalType:      l.AnimalType,
		Breed:           l.Breed,
		Gender:          string(l.Gender),
		Quantity:        l.Quantity,
		DateOfBirth:     l.DateOfBirth,
		AcquisitionType: string(l.AcquisitionType),
		PurchaseDate:    l.PurchaseDate,
		PurchaseCost:    l.PurchaseCost,
		MotherTag:       l.MotherTag,
		CurrentLocation: l.CurrentLocation,
		Notes:           l.Notes,
		Status:          string(l.Status),
		CreatedBy:       l.CreatedBy,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

// HealthRecordRequest adds a health event
type HealthRecordRequest struct {
	Date         string           `json:"date"`
	Type         string           `json:"type"`
	Description  string           `json:"description" binding:"max=255"`
	Cost         *decimal.Decimal `json:"cost"`
	Veterinarian string           `json:"veterinarian" binding:"max=150"`
	NextDueDate  string           `json:"next_due_date"`
	Notes        string           `json:"notes"`
}

// BreedingRecordRequest adds a breeding event
type BreedingRecordRequest struct {
	Date             string `json:"date"`
	FatherTag        string `json:"father_tag" binding:"max=50"`
	ExpectedDelivery string `json:"expected_delivery"`
	ActualDelivery   string `json:"actual_delivery"`
	OffspringCount   int    `json:"offspring_count"`
	Notes            string `json:"notes"`
}

// ProductionRecordRequest adds a production entry
type ProductionRecordRequest struct {
	Date     string           `json:"date"`
	Type     string           `json:"type"`
	Quantity decimal.Decimal  `json:"quantity"`
	Unit     string           `json:"unit" binding:"max=20"`
	Morning  *decimal.Decimal `json:"morning"`
	Evening  *decimal.Decimal `json:"evening"`
	Notes    string           `json:"notes"`
}

// ExpenseRecordRequest adds an expense entry
type ExpenseRecordRequest struct {
	Date        string          `json:"date"`
	Category    string          `json:"category" binding:"max=100"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" binding:"max=255"`
	Notes       string          `json:"notes"`
}

// RecordResponse holds the columns shared by every livestock history entry
type RecordResponse struct {
	ID          uuid.UUID `json:"id"`
	LivestockID uuid.UUID `json:"livestock_id"`
	Kind        string    `json:"kind"`
	Date        time.Time `json:"date"`
	Notes       string    `json:"notes"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func toRecordResponse(b farm.RecordBase, kind farm.RecordKind) RecordResponse {
	return RecordResponse{
		ID:          b.ID,
		LivestockID: b.LivestockID,
		Kind:        string(kind),
		Date:        b.RecordDate,
		Notes:       b.Notes,
		CreatedBy:   b.CreatedBy,
		CreatedAt:   b.CreatedAt,
	}
}

// HealthRecordResponse is a health event
type HealthRecordResponse struct {
	RecordResponse
	Type         string           `json:"type"`
	Description  string           `json:"description"`
	Cost         *decimal.Decimal `json:"cost"`
	Veterinarian string           `json:"veterinarian"`
	NextDueDate  *time.Time       `json:"next_due_date"`
}

// ToHealthRecordResponse converts a domain health record
func ToHealthRecordResponse(r farm.HealthRecord) HealthRecordResponse {
	return HealthRecordResponse{
		RecordResponse: toRecordResponse(r.RecordBase, r.Kind()),
		Type:           r.RecordType,
		Description:    r.Description,
		Cost:           r.Cost,
		Veterinarian:   r.Veterinarian,
		NextDueDate:    r.NextDueDate,
	}
}

// BreedingRecordResponse is a breeding event
type BreedingRecordResponse struct {
	RecordResponse
	FatherTag        string     `json:"father_tag"`
	ExpectedDelivery *time.Time `json:"expected_delivery"`
	ActualDelivery   *time.Time `json:"actual_delivery"`
	OffspringCount   int        `json:"offspring_count"`
}

// ToBreedingRecordResponse converts a domain breeding record
func ToBreedingRecordResponse(r farm.BreedingRecord) BreedingRecordResponse {
	return BreedingRecordResponse{
		RecordResponse:   toRecordResponse(r.RecordBase, r.Kind()),
		FatherTag:        r.FatherTag,
		ExpectedDelivery: r.ExpectedDelivery,
		ActualDelivery:   r.ActualDelivery,
		OffspringCount:   r.OffspringCount,
	}
}

// ProductionRecordResponse is a production entry
type ProductionRecordResponse struct {
	RecordResponse
	Type     string           `json:"type"`
	Quantity decimal.Decimal  `json:"quantity"`
	Unit     string           `json:"unit"`
	Morning  *decimal.Decimal `json:"morning"`
	Evening  *decimal.Decimal `json:"evening"`
}

// ToProductionRecordResponse converts a domain production record
func ToProductionRecordResponse(r farm.ProductionRecord) ProductionRecordResponse {
	return ProductionRecordResponse{
		RecordResponse: toRecordResponse(r.RecordBase, r.Kind()),
		Type:           r.ProductionType,
		Quantity:       r.Quantity,
		Unit:           r.Unit,
		Morning:        r.Morning,
		Evening:        r.Evening,
	}
}

// ExpenseRecordResponse is an expense entry
type ExpenseRecordResponse struct {
	RecordResponse
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// ToExpenseRecordResponse converts a domain expense record
func ToExpenseRecordResponse(r farm.ExpenseRecord) ExpenseRecordResponse {
	return ExpenseRecordResponse{
		RecordResponse: toRecordResponse(r.RecordBase, r.Kind()),
		Category:       r.Category,
		Amount:         r.Amount,
		Description:    r.Description,
	}
}

// HealthTaskResponse is an upcoming health event
type HealthTaskResponse struct {
	LivestockID uuid.UUID `json:"livestock_id"`
	AnimalTag   string    `json:"animal_tag"`
	AnimalType  string    `json:"animal_type"`
	Breed       string    `json:"breed"`
	DueDate     time.Time `json:"due_date"`
	Description string    `json:"description"`
}

// =============================================================================
// Equipment DTOs
// =============================================================================

// EquipmentRequest creates or replaces an equipment record
type EquipmentRequest struct {
	EquipmentName   string          `json:"equipment_name" binding:"max=150"`
	Type            string          `json:"type" binding:"max=100"`
	PurchaseDate    string          `json:"purchase_date"`
	LastMaintenance string          `json:"last_maintenance"`
	NextMaintenance string          `json:"next_maintenance"`
	Condition       string          `json:"condition" binding:"omitempty,oneof=excellent good fair poor needs_repair"`
	Value           decimal.Decimal `json:"value"`
	Notes           string          `json:"notes"`
}

func (r EquipmentRequest) details() (farm.EquipmentDetails, error) {
	var errs shared.ValidationErrors
	purchased := errs.Date("purchase_date", r.PurchaseDate)
	last := errs.Date("last_maintenance", r.LastMaintenance)
	next := errs.Date("next_maintenance", r.NextMaintenance)
	if err := errs.Err(); err != nil {
		return farm.EquipmentDetails{}, err
	}
	return farm.EquipmentDetails{
		EquipmentName:   r.EquipmentName,
		Type:            r.Type,
		PurchaseDate:    shared.DateOrZero(purchased),
		LastMaintenance: last,
		NextMaintenance: next,
		Condition:       farm.EquipmentCondition(r.Condition),
		Value:           r.Value,
		Notes:           r.Notes,
	}, nil
}

// EquipmentResponse is an equipment record as returned by the API
type EquipmentResponse struct {
	ID                 uuid.UUID       `json:"id"`
	EquipmentName      string          `json:"equipment_name"`
	Type               string          `json:"type"`
	PurchaseDate       time.Time       `json:"purchase_date"`
	LastMaintenance    *time.Time      `json:"last_maintenance"`
	NextMaintenance    *time.Time      `json:"next_maintenance"`
	MaintenanceOverdue bool            `json:"maintenance_overdue"`
	Condition          string          `json:"condition"`
	Value              decimal.Decimal `json:"value"`
	Notes              string          `json:"notes"`
	CreatedBy          uuid.UUID       `json:"created_by"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ToEquipmentResponse converts a domain equipment record
func ToEquipmentResponse(e farm.Equipment) EquipmentResponse {
	return EquipmentResponse{
		ID:                 e.ID,
		EquipmentName:      e.EquipmentName,
		Type:               e.Type,
		PurchaseDate:       e.PurchaseDate,
		LastMaintenance:    e.LastMaintenance,
		NextMaintenance:    e.NextMaintenance,
		MaintenanceOverdue: e.MaintenanceOverdue(time.Now()),
		Condition:          string(e.Condition),
		Value:              e.Value,
		Notes:              e.Notes,
		CreatedBy:          e.CreatedBy,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

// =============================================================================
// Employee DTOs
// =============================================================================

// EmployeeRequest creates or replaces an employee
type EmployeeRequest struct {
	Name     string          `json:"name" binding:"max=150"`
	Role     string          `json:"role" binding:"max=100"`
	Phone    string          `json:"phone" binding:"max=50"`
	Email    string          `json:"email" binding:"max=200"`
	Salary   decimal.Decimal `json:"salary"`
	HireDate string          `json:"hire_date"`
	Status   string          `json:"status" binding:"omitempty,oneof=active inactive terminated"`
	Notes    string          `json:"notes"`
}

func (r EmployeeRequest) details() (farm.EmployeeDetails, error) {
	var errs shared.ValidationErrors
	hired := errs.Date("hire_date", r.HireDate)
	if err := errs.Err(); err != nil {
		return farm.EmployeeDetails{}, err
	}
	return farm.EmployeeDetails{
		Name:     r.Name,
		Role:     r.Role,
		Phone:    r.Phone,
		Email:    r.Email,
		Salary:   r.Salary,
		HireDate: shared.DateOrZero(hired),
		Status:   farm.EmployeeStatus(r.Status),
		Notes:    r.Notes,
	}, nil
}

// EmployeeResponse is an employee as returned by the API
type EmployeeResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Role      string          `json:"role"`
	Phone     string          `json:"phone"`
	Email     string          `json:"email"`
	Salary    decimal.Decimal `json:"salary"`
	HireDate  time.Time       `json:"hire_date"`
	Status    string          `json:"status"`
	Notes     string          `json:"notes"`
	CreatedBy uuid.UUID       `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ToEmployeeResponse converts a domain employee
func ToEmployeeResponse(e farm.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:        e.ID,
		Name:      e.Name,
		Role:      e.Role,
		Phone:     e.Phone,
		Email:     e.Email,
		Salary:    e.Salary,
		HireDate:  e.HireDate,
		Status:    string(e.Status),
		Notes:     e.Notes,
		CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
