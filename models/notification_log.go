package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationLog records every outbound SMS attempt (delivery
// updates, balance reminders, subscription warnings).
type NotificationLog struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	ShopID uuid.UUID `gorm:"type:uuid;index;not null"`

	Kind         string `gorm:"type:varchar(30)"` // delivery_dispatched, balance_reminder, ...
	Recipient    string `gorm:"not null"`
	Message      string `gorm:"type:text"`
	Status       string `gorm:"type:varchar(20)"` // sent, failed
	ErrorMessage string `gorm:"type:text"`

	SentAt time.Time

	gorm.Model
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
