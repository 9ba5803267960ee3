// services/ledger.go
package services

import (
	"errors"

	"gempro-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidEntryType  = errors.New("invalid ledger entry type")
	ErrNonPositiveAmount = errors.New("ledger amount must be positive")
	ErrOwnerNotFound     = errors.New("ledger owner not found")
)

// LedgerEntryInput describes one entry to append to a ledger.
type LedgerEntryInput struct {
	Type             string // debit or credit
	Source           string // defaults to manual
	SourceID         *uuid.UUID
	Amount           decimal.Decimal // always positive, direction comes from Type
	Notes            string
	RecordedByUserID *uuid.UUID
}

func (in *LedgerEntryInput) validate() error {
	if in.Type != models.EntryTypeDebit && in.Type != models.EntryTypeCredit {
		return ErrInvalidEntryType
	}
	if !in.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if in.Source == "" {
		in.Source = models.EntrySourceManual
	}
	return nil
}

// LedgerService appends entries to the customer and courier ledgers.
// All posting happens inside one database transaction that locks the
// owning row, so balance_after snapshots and sequence numbers stay
// consistent under concurrent writers. Entries are append-only:
// nothing here updates or deletes an existing entry.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// PostCustomerEntry appends one entry to a customer's ledger and
// moves the customer's current balance. Debit raises the balance
// (customer owes more), credit lowers it.
func (s *LedgerService) PostCustomerEntry(shopID, customerID uuid.UUID, input LedgerEntryInput) (*models.CustomerTransaction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var entry models.CustomerTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := s.lockOwner(tx).Where("shop_id = ? AND id = ?", shopID, customerID).
			First(&customer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOwnerNotFound
			}
			return err
		}

		var lastSeq int64
		if err := tx.Model(&models.CustomerTransaction{}).
			Where("customer_id = ?", customerID).
			Select("COALESCE(MAX(sequence_number), 0)").
			Scan(&lastSeq).Error; err != nil {
			return err
		}

		newBalance := applyEntry(customer.CurrentBalance, input.Type, input.Amount)

		entry = models.CustomerTransaction{
			ShopID:           shopID,
			CustomerID:       customerID,
			Type:             input.Type,
			Source:           input.Source,
			SourceID:         input.SourceID,
			Amount:           input.Amount,
			BalanceAfter:     newBalance,
			SequenceNumber:   lastSeq + 1,
			Notes:            input.Notes,
			RecordedByUserID: input.RecordedByUserID,
		}
		// The unique (customer_id, sequence_number) index turns a
		// lost race into an insert error and rolls the whole
		// posting back.
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		return tx.Model(&models.Customer{}).Where("id = ?", customerID).
			Update("current_balance", newBalance).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// PostCourierEntry is the courier-company twin of PostCustomerEntry.
func (s *LedgerService) PostCourierEntry(shopID, courierID uuid.UUID, input LedgerEntryInput) (*models.CourierTransaction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var entry models.CourierTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var courier models.CourierCompany
		if err := s.lockOwner(tx).Where("shop_id = ? AND id = ?", shopID, courierID).
			First(&courier).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOwnerNotFound
			}
			return err
		}

		var lastSeq int64
		if err := tx.Model(&models.CourierTransaction{}).
			Where("courier_company_id = ?", courierID).
			Select("COALESCE(MAX(sequence_number), 0)").
			Scan(&lastSeq).Error; err != nil {
			return err
		}

		newBalance := applyEntry(courier.CurrentBalance, input.Type, input.Amount)

		entry = models.CourierTransaction{
			ShopID:           shopID,
			CourierCompanyID: courierID,
			Type:             input.Type,
			Source:           input.Source,
			SourceID:         input.SourceID,
			Amount:           input.Amount,
			BalanceAfter:     newBalance,
			SequenceNumber:   lastSeq + 1,
			Notes:            input.Notes,
			RecordedByUserID: input.RecordedByUserID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		return tx.Model(&models.CourierCompany{}).Where("id = ?", courierID).
			Update("current_balance", newBalance).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// lockOwner adds FOR UPDATE on dialects that support it. SQLite (used
// in tests) serializes writers on its own and rejects the clause.
func (s *LedgerService) lockOwner(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func applyEntry(balance decimal.Decimal, entryType string, amount decimal.Decimal) decimal.Decimal {
	if entryType == models.EntryTypeDebit {
		return balance.Add(amount)
	}
	return balance.Sub(amount)
}
