// controllers/ledger.go
package controllers

import (
	"errors"
	"net/http"

	"gempro-backend/config"
	"gempro-backend/models"
	"gempro-backend/services"
	"gempro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateTransactionInput is a manual ledger entry: a debit for new
// credit extended to the customer, a credit for a payment received.
type CreateTransactionInput struct {
	Type   string          `json:"type" binding:"required,oneof=debit credit"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Source string          `json:"source" binding:"omitempty,oneof=manual payment"`
	Notes  string          `json:"notes"`
}

// GetCustomerTransactions lists a customer's ledger newest first
func GetCustomerTransactions(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	customerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Confirm the customer belongs to this shop
	var customer models.Customer
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, customerID).
		First(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	page := utils.ParsePagination(c)

	var total int64
	config.DB.Model(&models.CustomerTransaction{}).
		Where("customer_id = ?", customerID).Count(&total)

	var transactions []models.CustomerTransaction
	if err := config.DB.Where("customer_id = ?", customerID).
		Order("sequence_number desc").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&transactions).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve transactions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":           transactions,
		"total":          total,
		"page":           page.Page,
		"limit":          page.Limit,
		"currentBalance": customer.CurrentBalance,
	})
}

// CreateCustomerTransaction appends a manual entry to a customer's ledger
func CreateCustomerTransaction(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}
	customerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input CreateTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	source := input.Source
	if source == "" {
		source = models.EntrySourceManual
		if input.Type == models.EntryTypeCredit {
			source = models.EntrySourcePayment
		}
	}

	ledger := services.NewLedgerService(config.DB)
	entry, err := ledger.PostCustomerEntry(shopID, customerID, services.LedgerEntryInput{
		Type:             input.Type,
		Source:           source,
		Amount:           input.Amount,
		Notes:            input.Notes,
		RecordedByUserID: &userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOwnerNotFound):
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		case errors.Is(err, services.ErrInvalidEntryType),
			errors.Is(err, services.ErrNonPositiveAmount):
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record transaction")
		}
		return
	}

	services.PublishChange(shopID, "customer_transactions", models.EventActionInsert, entry.ID, entry)
	c.JSON(http.StatusCreated, entry)
}
