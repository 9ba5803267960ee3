package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Customer struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	ShopID          uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_shop_phone,priority:1;index;not null"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name    string `gorm:"not null"`
	Phone   string `gorm:"not null;uniqueIndex:idx_shop_phone,priority:2"`
	Email   string
	Address string
	Notes   string

	// Amount the customer owes the shop. Positive = receivable,
	// negative = prepaid store credit. Maintained only through
	// ledger entries, never written directly by handlers.
	CurrentBalance decimal.Decimal `gorm:"type:decimal(12,2);default:0"`

	TotalPurchases int             `gorm:"default:0"`
	TotalSpent     decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	LastPurchase   *time.Time
	IsActive       bool `gorm:"default:true"`

	Transactions []CustomerTransaction `gorm:"foreignKey:CustomerID"`
	Sales        []Sale                `gorm:"foreignKey:CustomerID"`

	gorm.Model
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
