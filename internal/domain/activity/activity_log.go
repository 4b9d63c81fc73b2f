// Package activity records who did what, for the admin audit view.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Actions written to the log
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionMovement = "stock_movement"
	ActionLogin    = "login"
	ActionLogout   = "logout"
)

// Log is one audit entry. It is written after the fact and never changed.
type Log struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Username    string    `gorm:"type:varchar(100);not null"`
	Action      string    `gorm:"type:varchar(50);not null;index"`
	Module      string    `gorm:"type:varchar(50);not null;index"`
	Description string    `gorm:"type:text"`
	IPAddress   string    `gorm:"type:varchar(64)"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Log) TableName() string {
	return "activity_logs"
}

// NewLog builds an entry stamped now
func NewLog(userID uuid.UUID, username, action, module, description, ip string) *Log {
	return &Log{
		ID:          uuid.New(),
		UserID:      userID,
		Username:    username,
		Action:      action,
		Module:      module,
		Description: description,
		IPAddress:   ip,
		CreatedAt:   time.Now().UTC(),
	}
}

// Filter selects log entries
type Filter struct {
	UserID   *uuid.UUID
	Module   string
	Action   string
	Page     int
	PageSize int
}

// Repository persists activity entries
type Repository interface {
	Create(ctx context.Context, entry *Log) error
	FindAll(ctx context.Context, filter Filter) ([]Log, int64, error)
}
