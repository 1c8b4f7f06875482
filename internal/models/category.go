package models

import "time"

// Category represents a transaction category. Rows are global reference data
// seeded at startup and looked up by their stable numeric code.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Code      int    `gorm:"uniqueIndex;not null"`
	Name      string `gorm:"size:64;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
