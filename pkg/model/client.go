package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Client struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"not null;index"`
	Company      string `gorm:"index"`
	AddressLine1 string
	AddressLine2 string
	PostalCode   string `gorm:"size:20"`
	City         string
	Country      string `gorm:"default:Germany"`
	Email        string `gorm:"index"`
	Phone        string `gorm:"size:50"`
	Website      string
	Notes        string    `gorm:"type:text"`
	Contacts     []Contact `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	Projects     []Project `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	Quotes       []Quote   `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// FullAddress renders the postal address as newline-separated lines,
// skipping empty components. Postal code and city share a line.
func (c *Client) FullAddress() string {
	lines := make([]string, 0, 4)
	for _, line := range []string{
		c.AddressLine1,
		c.AddressLine2,
		strings.TrimSpace(c.PostalCode + " " + c.City),
		c.Country,
	} {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// PrimaryContact returns the primary contact from the loaded Contacts
// association, or nil if none is flagged.
func (c *Client) PrimaryContact() *Contact {
	for i := range c.Contacts {
		if c.Contacts[i].IsPrimary {
			return &c.Contacts[i]
		}
	}
	return nil
}
