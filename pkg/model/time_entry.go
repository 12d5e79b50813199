package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TimeEntry struct {
	ID          uint     `gorm:"primaryKey"`
	ProjectID   uint     `gorm:"not null;index"`
	Project     *Project `gorm:"foreignKey:ProjectID"`
	UserID      uint     `gorm:"not null;index"`
	User        *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Description string   `gorm:"type:text"`
	Date        time.Time       `gorm:"type:date;not null;index"`
	Hours       decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	Billable    bool            `gorm:"default:true;index:idx_time_entries_billable_invoiced,priority:1"`
	Invoiced    bool            `gorm:"default:false;index:idx_time_entries_billable_invoiced,priority:2"`
	// InvoiceID is a forward reference to the billing subsystem; no invoice
	// table exists yet, so it carries no foreign key.
	InvoiceID *uint
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BillableAmount is hours times the project's hourly rate, zero when the
// entry is not billable or the project has no rate set.
func (t *TimeEntry) BillableAmount(project *Project) decimal.Decimal {
	if !t.Billable || project == nil || project.HourlyRate == nil {
		return decimal.Zero
	}
	return t.Hours.Mul(*project.HourlyRate)
}
