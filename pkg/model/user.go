package model

import "time"

// User is the owner of logged time entries. Account management lives
// outside this service; only the fields the CRM references are mapped.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
