package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment methods accepted at checkout
const (
	PaymentMethodCash    = "cash"
	PaymentMethodCard    = "card"
	PaymentMethodBalance = "balance" // pay from prepaid store credit
	PaymentMethodCredit  = "credit"  // unpaid remainder goes on the ledger
)

// Sale statuses
const (
	SaleStatusCompleted = "completed"
	SaleStatusVoided    = "voided"
)

type Sale struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	ShopID          uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null"`

	SaleNumber string     `gorm:"uniqueIndex;not null"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index"` // nil for walk-in sales
	SaleDate   time.Time  `gorm:"not null"`

	Subtotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	TaxRate  decimal.Decimal `gorm:"type:decimal(5,2);default:0"` // percent
	Total    decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	PaymentMethod string          `gorm:"type:varchar(20);not null"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	Status        string          `gorm:"type:varchar(20);default:'completed'"`
	Notes         string

	Items    []SaleItem `gorm:"foreignKey:SaleID"`
	Delivery *Delivery  `gorm:"foreignKey:SaleID"`

	gorm.Model
}

func (s *Sale) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

type SaleItem struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	SaleID uuid.UUID `gorm:"type:uuid;index;not null"`
	ItemID uuid.UUID `gorm:"type:uuid;index;not null"`

	// Snapshots taken at sale time; later item edits must not
	// rewrite sold history.
	ItemName string `gorm:"not null"`
	SKU      string `gorm:"not null"`

	Quantity   int             `gorm:"default:1"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
