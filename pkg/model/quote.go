package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type QuoteStatus string

const (
	QuoteDraft     QuoteStatus = "draft"
	QuoteSent      QuoteStatus = "sent"
	QuoteAccepted  QuoteStatus = "accepted"
	QuoteRejected  QuoteStatus = "rejected"
	QuoteConverted QuoteStatus = "converted"
)

// DefaultTaxRateBps is the stored default tax rate in basis points (19%).
const DefaultTaxRateBps int64 = 1900

// Quote money fields are integer minor currency units (cents); TaxRate is
// basis points. This integer representation is separate from the decimal
// percent layer in pkg/money and the two must not be mixed.
type Quote struct {
	ID          uint     `gorm:"primaryKey"`
	ClientID    uint     `gorm:"not null;index:idx_quotes_client_status,priority:1"`
	Client      *Client  `gorm:"foreignKey:ClientID"`
	ProjectID   *uint    `gorm:"index"`
	Project     *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:SET NULL"`
	QuoteNumber string   `gorm:"uniqueIndex;not null"`
	Version     int      `gorm:"default:1"`
	Status      QuoteStatus `gorm:"type:varchar(20);default:'draft';index:idx_quotes_client_status,priority:2"`
	ValidUntil  *time.Time  `gorm:"type:date"`
	SentAt      *time.Time
	AcceptedAt  *time.Time
	Notes       string      `gorm:"type:text"` // internal
	ClientNotes string      `gorm:"type:text"` // shown to the client
	Subtotal    int64       `gorm:"not null;default:0;check:subtotal >= 0"`
	TaxRate     int64       `gorm:"not null;default:1900;check:tax_rate >= 0"`
	TaxAmount   int64       `gorm:"not null;default:0;check:tax_amount >= 0"`
	Total       int64       `gorm:"not null;default:0;check:total >= 0"`
	Items       []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (q *Quote) IsDraft() bool {
	return q.Status == QuoteDraft
}

// CanBeEdited reports whether the quote is still mutable. Sent, accepted,
// rejected and converted quotes are immutable by contract; enforcement is
// up to the write path.
func (q *Quote) CanBeEdited() bool {
	return q.Status == QuoteDraft
}

// IsExpired reports whether the validity date has passed. An accepted quote
// never expires, whatever its date.
func (q *Quote) IsExpired() bool {
	return q.ValidUntil != nil &&
		q.ValidUntil.Before(time.Now()) &&
		q.Status != QuoteAccepted
}

// CanBeConverted reports whether the quote can become an invoice. Once the
// invoice subsystem lands this will also require no existing linkage.
func (q *Quote) CanBeConverted() bool {
	return q.Status == QuoteAccepted
}

func ValidQuoteStatus(status QuoteStatus) bool {
	switch status {
	case QuoteDraft, QuoteSent, QuoteAccepted, QuoteRejected, QuoteConverted:
		return true
	default:
		return false
	}
}

type QuoteItem struct {
	ID          uint   `gorm:"primaryKey"`
	QuoteID     uint   `gorm:"not null;index"`
	Description string `gorm:"type:text;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:1"`
	Unit        string          `gorm:"default:hours"`
	UnitPrice   int64           `gorm:"not null;default:0;check:unit_price >= 0"` // cents
	Total       int64           `gorm:"not null;default:0;check:total >= 0"`      // cents, quantity × unit price truncated
	SortOrder   int             `gorm:"default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
