package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity provides common fields for all entities
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// Touch bumps the update timestamp
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now().UTC()
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Owned is implemented by every record that carries a single owner.
type Owned interface {
	Entity
	GetOwnerID() uuid.UUID
}

// OwnedEntity is a BaseEntity attributed to the principal that created it.
// CreatedBy is the canonical owner column for every owned table; it is set once
// at creation and never reassigned.
type OwnedEntity struct {
	BaseEntity
	CreatedBy uuid.UUID `gorm:"type:uuid;not null;index"`
}

// GetOwnerID returns the owning principal
func (e *OwnedEntity) GetOwnerID() uuid.UUID {
	return e.CreatedBy
}

// NewOwnedEntity creates a new owned entity for the given owner
func NewOwnedEntity(owner uuid.UUID) OwnedEntity {
	return OwnedEntity{
		BaseEntity: NewBaseEntity(),
		CreatedBy:  owner,
	}
}
