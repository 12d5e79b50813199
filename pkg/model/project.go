package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

type RateType string

const (
	RateHourly   RateType = "hourly"
	RateFixed    RateType = "fixed"
	RateRetainer RateType = "retainer"
)

type Project struct {
	ID          uint    `gorm:"primaryKey"`
	ClientID    uint    `gorm:"not null;index"`
	Client      *Client `gorm:"foreignKey:ClientID"`
	Name        string  `gorm:"not null;index"`
	Description string  `gorm:"type:text"`
	Status      ProjectStatus `gorm:"type:varchar(20);default:'active';index"`
	RateType    RateType      `gorm:"type:varchar(20);default:'hourly'"`
	// Only one of HourlyRate/FixedPrice is meaningful, selected by RateType.
	HourlyRate  *decimal.Decimal `gorm:"type:decimal(10,2)"`
	FixedPrice  *decimal.Decimal `gorm:"type:decimal(10,2)"`
	BudgetHours *int
	StartDate   *time.Time  `gorm:"type:date"`
	EndDate     *time.Time  `gorm:"type:date"`
	TimeEntries []TimeEntry `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (p *Project) IsActive() bool {
	return p.Status == ProjectActive
}

func ValidProjectStatus(status ProjectStatus) bool {
	switch status {
	case ProjectActive, ProjectCompleted, ProjectArchived:
		return true
	default:
		return false
	}
}

func ValidRateType(rateType RateType) bool {
	switch rateType {
	case RateHourly, RateFixed, RateRetainer:
		return true
	default:
		return false
	}
}
