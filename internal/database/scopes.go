package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/helixtrack/core/internal/utils"
)

// Paginate limits a query to one page. A zero limit leaves the query unbounded.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.Limit <= 0 {
			return db
		}
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// NotDeleted hides tombstones
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("deleted = ?", false)
}

// Match filters column by value, skipping the filter when value is empty
func Match(column, value string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if value == "" {
			return db
		}
		return db.Where(column+" = ?", value)
	}
}

// ForUpdate holds row locks on the selected rows until the transaction ends.
// SQLite has no row locks and serializes writers on its own, so it is skipped there.
func ForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector != nil && db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}
