package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Contact is a person at a client. At most one contact per client is
// flagged primary; the flag is maintained by ContactRepository.MakePrimary.
type Contact struct {
	ID        uint    `gorm:"primaryKey"`
	ClientID  uint    `gorm:"not null;index:idx_contacts_client_primary,priority:1"`
	Client    *Client `gorm:"foreignKey:ClientID"`
	Name      string  `gorm:"not null"`
	Email     string
	Phone     string
	Position  string
	IsPrimary bool `gorm:"default:false;index:idx_contacts_client_primary,priority:2"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// FullContactInfo joins the non-empty contact fields with " | ".
func (c *Contact) FullContactInfo() string {
	parts := make([]string, 0, 4)
	for _, part := range []string{c.Name, c.Position, c.Email, c.Phone} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " | ")
}
