package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Shop struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	Name         string    `gorm:"not null"`
	Address      string
	Phone        string
	CurrencyCode string `gorm:"type:varchar(3);default:'USD'"`

	Settings         JSONB `gorm:"type:jsonb;default:'{}'"`
	LowStockAlerts   bool  `gorm:"default:true"`
	SMSNotifications bool  `gorm:"default:false"`
	BalanceReminders bool  `gorm:"default:true"`

	Users            []User           `gorm:"foreignKey:ShopID"`
	Customers        []Customer       `gorm:"foreignKey:ShopID"`
	InventoryItems   []InventoryItem  `gorm:"foreignKey:ShopID"`
	Sales            []Sale           `gorm:"foreignKey:ShopID"`
	Suppliers        []Supplier       `gorm:"foreignKey:ShopID"`
	CourierCompanies []CourierCompany `gorm:"foreignKey:ShopID"`

	gorm.Model
}

func (s *Shop) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

// Custom JSONB type for shop settings
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	case nil:
		*j = nil
		return nil
	}
	return errors.New("unsupported type for JSONB scan")
}
