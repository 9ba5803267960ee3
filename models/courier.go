package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Delivery statuses
const (
	DeliveryStatusPending    = "pending"
	DeliveryStatusDispatched = "dispatched"
	DeliveryStatusDelivered  = "delivered"
	DeliveryStatusReturned   = "returned"
	DeliveryStatusCancelled  = "cancelled"
)

type CourierCompany struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	ShopID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name        string `gorm:"not null"`
	ContactName string
	Phone       string
	Notes       string

	// Amount the courier owes the shop for collected COD parcels.
	// Maintained only through ledger entries, like Customer.
	CurrentBalance decimal.Decimal `gorm:"type:decimal(12,2);default:0"`

	IsActive bool `gorm:"default:true"`

	Transactions []CourierTransaction `gorm:"foreignKey:CourierCompanyID"`
	Deliveries   []Delivery           `gorm:"foreignKey:CourierCompanyID"`

	gorm.Model
}

func (c *CourierCompany) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

type Delivery struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	ShopID           uuid.UUID `gorm:"type:uuid;index;not null"`
	SaleID           uuid.UUID `gorm:"type:uuid;index;not null"`
	CourierCompanyID uuid.UUID `gorm:"type:uuid;index;not null"`

	TrackingCode   string
	RecipientName  string `gorm:"not null"`
	RecipientPhone string `gorm:"not null"`
	Address        string `gorm:"not null"`

	CODAmount decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	Fee       decimal.Decimal `gorm:"type:decimal(12,2);default:0"`

	Status       string `gorm:"type:varchar(20);default:'pending'"`
	DispatchedAt *time.Time
	DeliveredAt  *time.Time
	Notes        string

	gorm.Model
}

func (d *Delivery) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}
