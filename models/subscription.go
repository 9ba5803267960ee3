package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Subscription statuses
const (
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// Plan is global, not shop-scoped. Seeded at startup.
type Plan struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key"`
	Code string    `gorm:"uniqueIndex;not null"`
	Name string    `gorm:"not null"`

	MonthlyPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	MaxUsers     int             `gorm:"default:1"`
	MaxItems     int             `gorm:"default:100"`

	IsActive bool `gorm:"default:true"`
}

func (p *Plan) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

type Subscription struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	ShopID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	PlanID uuid.UUID `gorm:"type:uuid;index;not null"`

	Status           string    `gorm:"type:varchar(20);default:'trialing'"`
	CurrentPeriodEnd time.Time `gorm:"not null"`

	// Last payment-provider checkout session, pending confirmation.
	CheckoutSessionID string
	PendingPlanID     *uuid.UUID `gorm:"type:uuid"`

	Plan Plan `gorm:"foreignKey:PlanID"`

	gorm.Model
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
