package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Recurring expense frequencies
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

type Expense struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key"`
	ShopID          uuid.UUID  `gorm:"type:uuid;index;not null"`
	CreatedByUserID *uuid.UUID `gorm:"type:uuid"` // nil when materialized by the scheduler

	Category    string          `gorm:"default:'General'"`
	Description string          `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ExpenseDate time.Time       `gorm:"not null;uniqueIndex:idx_recurring_period,priority:2"`

	// Set when this row was materialized from a recurring template.
	// The composite unique index keeps the scheduler idempotent:
	// one expense per template per period.
	RecurringExpenseID *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_recurring_period,priority:1"`

	gorm.Model
}

func (e *Expense) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}

type RecurringExpense struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	ShopID uuid.UUID `gorm:"type:uuid;index;not null"`

	Category    string          `gorm:"default:'General'"`
	Description string          `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Frequency   string    `gorm:"type:varchar(10);not null"`
	NextDueDate time.Time `gorm:"not null"`
	LastRunDate *time.Time

	IsActive bool `gorm:"default:true"`

	gorm.Model
}

func (r *RecurringExpense) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
