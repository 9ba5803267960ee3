package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ledger entry directions. A debit increases the owner's balance
// (they owe the shop more), a credit decreases it.
const (
	EntryTypeDebit  = "debit"
	EntryTypeCredit = "credit"
)

// Ledger entry sources
const (
	EntrySourceManual     = "manual"
	EntrySourceSale       = "sale"
	EntrySourcePayment    = "payment"
	EntrySourceVoid       = "void"
	EntrySourceDelivery   = "delivery"
	EntrySourceSettlement = "settlement"
)

// CustomerTransaction is one entry in a customer's append-only ledger.
// Entries are never updated or deleted; corrections are posted as new
// entries. BalanceAfter is a snapshot at insertion time and
// SequenceNumber gives a total order per customer.
type CustomerTransaction struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	ShopID     uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_customer_seq,priority:1;not null"`

	Type     string     `gorm:"type:varchar(10);not null"`
	Source   string     `gorm:"type:varchar(20);not null;default:'manual'"`
	SourceID *uuid.UUID `gorm:"type:uuid"`

	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	BalanceAfter   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SequenceNumber int64           `gorm:"uniqueIndex:idx_customer_seq,priority:2;not null"`

	Notes            string
	RecordedByUserID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
}

func (t *CustomerTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

// CourierTransaction mirrors CustomerTransaction for courier company
// ledgers (COD amounts owed to the shop and their settlements).
type CourierTransaction struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	ShopID           uuid.UUID `gorm:"type:uuid;index;not null"`
	CourierCompanyID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_courier_seq,priority:1;not null"`

	Type     string     `gorm:"type:varchar(10);not null"`
	Source   string     `gorm:"type:varchar(20);not null;default:'manual'"`
	SourceID *uuid.UUID `gorm:"type:uuid"`

	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	BalanceAfter   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SequenceNumber int64           `gorm:"uniqueIndex:idx_courier_seq,priority:2;not null"`

	Notes            string
	RecordedByUserID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
}

func (t *CourierTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
