package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountScope returns a GORM scope that filters by the owning account.
// It should be applied to every query on account-owned tables.
// A nil account matches nothing.
func AccountScope(accountID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if accountID == uuid.Nil {
			return db.Where("1 = 0")
		}
		return db.Where("user_id = ?", accountID)
	}
}

// likePattern wraps a search term for ILIKE
func likePattern(search string) string {
	return "%" + search + "%"
}
