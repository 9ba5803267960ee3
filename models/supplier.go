package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Purchase statuses
const (
	PurchaseStatusOrdered   = "ordered"
	PurchaseStatusReceived  = "received"
	PurchaseStatusCancelled = "cancelled"
)

type Supplier struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	ShopID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name        string `gorm:"not null"`
	ContactName string
	Phone       string
	Email       string
	Address     string
	Notes       string
	IsActive    bool `gorm:"default:true"`

	Purchases []Purchase `gorm:"foreignKey:SupplierID"`

	gorm.Model
}

func (s *Supplier) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

type Purchase struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	ShopID          uuid.UUID `gorm:"type:uuid;index;not null"`
	SupplierID      uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null"`

	PurchaseNumber string    `gorm:"uniqueIndex;not null"`
	OrderDate      time.Time `gorm:"not null"`
	Status         string    `gorm:"type:varchar(20);default:'ordered'"`
	ReceivedAt     *time.Time

	Total decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes string

	Items []PurchaseItem `gorm:"foreignKey:PurchaseID"`

	gorm.Model
}

func (p *Purchase) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

type PurchaseItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	PurchaseID uuid.UUID `gorm:"type:uuid;index;not null"`
	ItemID     uuid.UUID `gorm:"type:uuid;index;not null"`

	ItemName string `gorm:"not null"`
	SKU      string `gorm:"not null"`

	Quantity  int             `gorm:"default:1"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalCost decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (i *PurchaseItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
