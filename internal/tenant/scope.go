package tenant

import "gorm.io/gorm"

// Scope filters any query to a single school's rows.
func Scope(schoolID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("school_id = ?", schoolID)
	}
}
