package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Change event actions
const (
	EventActionInsert = "insert"
	EventActionUpdate = "update"
	EventActionDelete = "delete"
)

// ChangeEvent is the persisted form of an entity change broadcast on
// the realtime feed. Append-only audit trail, one row per mutation.
type ChangeEvent struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	ShopID uuid.UUID `gorm:"type:uuid;index;not null"`

	Entity string    `gorm:"type:varchar(40);not null"` // table name, e.g. "customers"
	Action string    `gorm:"type:varchar(10);not null"`
	RowID  uuid.UUID `gorm:"type:uuid;not null"`

	Payload datatypes.JSON

	CreatedAt time.Time `gorm:"index"`
}

func (e *ChangeEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
