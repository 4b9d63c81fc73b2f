package farm

import (
	"regexp"
	"strings"
	"time"

	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EmployeeStatus is the employment state
type EmployeeStatus string

const (
	EmployeeStatusActive     EmployeeStatus = "active"
	EmployeeStatusInactive   EmployeeStatus = "inactive"
	EmployeeStatusTerminated EmployeeStatus = "terminated"
)

// EmployeeStatuses lists every employee status
var EmployeeStatuses = []string{"active", "inactive", "terminated"}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Employee is a farm worker
type Employee struct {
	shared.OwnedEntity
	Name     string          `gorm:"type:varchar(150);not null"`
	Role     string          `gorm:"type:varchar(100);not null"`
	Phone    string          `gorm:"type:varchar(50);not null"`
	Email    string          `gorm:"type:varchar(200)"`
	Salary   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	HireDate time.Time       `gorm:"type:date;not null"`
	Status   EmployeeStatus  `gorm:"type:varchar(20);not null;default:'active';index"`
	Notes    string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Employee) TableName() string {
	return "employees"
}

// EmployeeDetails is the editable content of an employee
type EmployeeDetails struct {
	Name     string
	Role     string
	Phone    string
	Email    string
	Salary   decimal.Decimal
	HireDate time.Time
	Status   EmployeeStatus
	Notes    string
}

func (d EmployeeDetails) validate() error {
	var errs shared.ValidationErrors
	errs.Required("name", d.Name, "Name is required.")
	errs.Required("role", d.Role, "Role is required.")
	errs.Required("phone", d.Phone, "Phone is required.")
	if email := strings.TrimSpace(d.Email); email != "" && !emailPattern.MatchString(email) {
		errs.Add("email", "Invalid email format.")
	}
	if d.Salary.IsNegative() {
		errs.Add("salary", "Salary must be zero or greater.")
	}
	if d.HireDate.IsZero() {
		errs.Add("hire_date", "Hire date is required.")
	}
	errs.OneOf("status", string(d.Status), EmployeeStatuses, "Status must be active, inactive or terminated.")
	return errs.Err()
}

// NewEmployee creates an employee owned by owner
func NewEmployee(owner uuid.UUID, d EmployeeDetails) (*Employee, error) {
	if d.Status == "" {
		d.Status = EmployeeStatusActive
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	e := &Employee{OwnedEntity: shared.NewOwnedEntity(owner)}
	e.apply(d)
	return e, nil
}

// Update replaces the employee's content
func (e *Employee) Update(d EmployeeDetails) error {
	if d.Status == "" {
		d.Status = e.Status
	}
	if err := d.validate(); err != nil {
		return err
	}
	e.apply(d)
	e.Touch()
	return nil
}

func (e *Employee) apply(d EmployeeDetails) {
	e.Name = strings.TrimSpace(d.Name)
	e.Role = strings.TrimSpace(d.Role)
	e.Phone = strings.TrimSpace(d.Phone)
	e.Email = strings.ToLower(strings.TrimSpace(d.Email))
	e.Salary = d.Salary
	e.HireDate = shared.DateOf(d.HireDate)
	e.Status = d.Status
	e.Notes = strings.TrimSpace(d.Notes)
}
