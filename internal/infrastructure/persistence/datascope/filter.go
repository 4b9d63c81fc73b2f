// Package datascope turns an access predicate into a GORM query condition.
//
// Usage:
//
//	pred := access.VisibilityPredicate(principal)
//	db.Scopes(datascope.Scope(pred)).Find(&crops) // WHERE created_by = ? for managers
package datascope

import (
	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnerColumn is the canonical owner column of every owned table
const OwnerColumn = "created_by"

// Apply restricts db to the rows pred allows
func Apply(db *gorm.DB, pred access.Predicate) *gorm.DB {
	return ApplyColumn(db, pred, OwnerColumn)
}

// ApplyColumn is Apply with a qualified owner column, for joined queries
// such as "inventory_items.created_by".
func ApplyColumn(db *gorm.DB, pred access.Predicate, column string) *gorm.DB {
	if pred.All {
		return db
	}
	if pred.OwnerID == uuid.Nil {
		return db.Where("1 = 0")
	}
	return db.Where(column+" = ?", pred.OwnerID)
}

// Scope returns Apply as a gorm scope
func Scope(pred access.Predicate) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return Apply(db, pred)
	}
}

// ScopeColumn returns ApplyColumn as a gorm scope
func ScopeColumn(pred access.Predicate, column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return ApplyColumn(db, pred, column)
	}
}
