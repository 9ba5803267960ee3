package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stock movement reasons
const (
	MovementReasonSale       = "sale"
	MovementReasonPurchase   = "purchase"
	MovementReasonAdjustment = "adjustment"
	MovementReasonVoid       = "void"
	MovementReasonReturn     = "return"
)

type InventoryItem struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	ShopID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_shop_sku,priority:1;index;not null"`

	SKU      string `gorm:"not null;uniqueIndex:idx_shop_sku,priority:2"`
	Name     string `gorm:"not null"`
	Category string `gorm:"default:'General'"`

	Metal       string          // gold, silver, platinum, ...
	Purity      string          // e.g. "22K", "925"
	WeightGrams decimal.Decimal `gorm:"type:decimal(10,3);default:0"`

	CostPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	StockQuantity     int `gorm:"default:0"`
	LowStockThreshold int `gorm:"default:5"`

	PhotoKey string // object storage key, empty if no photo
	IsActive bool   `gorm:"default:true"`

	Movements []StockMovement `gorm:"foreignKey:ItemID"`

	gorm.Model
}

func (i *InventoryItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

// StockMovement records every change to an item's stock quantity.
// Quantity is signed: positive for stock in, negative for stock out.
type StockMovement struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	ShopID uuid.UUID `gorm:"type:uuid;index;not null"`
	ItemID uuid.UUID `gorm:"type:uuid;index;not null"`

	Quantity int        `gorm:"not null"`
	Reason   string     `gorm:"type:varchar(20);not null"`
	SourceID *uuid.UUID `gorm:"type:uuid"` // sale or purchase id, if any

	Notes            string
	RecordedByUserID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
