// controllers/courier.go
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
	"gorm.io/gorm"
)

type CreateCourierInput struct {
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contactName"`
	Phone       string `json:"phone"`
	Notes       string `json:"notes"`
}

type UpdateCourierInput struct {
	Name        *string `json:"name"`
	ContactName *string `json:"contactName"`
	Phone       *string `json:"phone"`
	Notes       *string `json:"notes"`
	IsActive    *bool   `json:"isActive"`
}

type SettleCourierInput struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Notes  string          `json:"notes"`
}

// CreateCourier registers a courier company for the shop
func CreateCourier(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	var input CreateCourierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	courier := models.CourierCompany{
		ShopID:      shopID,
		Name:        input.Name,
		ContactName: input.ContactName,
		Phone:       input.Phone,
		Notes:       input.Notes,
		IsActive:    true,
	}

	if err := config.DB.Create(&courier).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create courier")
		return
	}

	services.PublishChange(shopID, "courier_companies", models.EventActionInsert, courier.ID, courier)
	c.JSON(http.StatusCreated, courier)
}

// GetCouriers retrieves the shop's courier companies
func GetCouriers(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	query := config.DB.Where("shop_id = ?", shopID)
	if c.Query("withBalance") == "true" {
		query = query.Where("current_balance <> 0")
	}

	var couriers []models.CourierCompany
	if err := query.Order("name asc").Find(&couriers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve couriers")
		return
	}

	c.JSON(http.StatusOK, couriers)
}

// GetCourier retrieves a specific courier company by ID
func GetCourier(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	courierID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var courier models.CourierCompany
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, courierID).
		First(&courier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Courier not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, courier)
}

// UpdateCourier updates an existing courier company
func UpdateCourier(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	courierID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input UpdateCourierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var courier models.CourierCompany
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, courierID).
		First(&courier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Courier not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		courier.Name = *input.Name
	}
	if input.ContactName != nil {
		courier.ContactName = *input.ContactName
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		courier.Phone = *input.Phone
	}
	if input.Notes != nil {
		courier.Notes = *input.Notes
	}
	if input.IsActive != nil {
		courier.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&courier).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update courier")
		return
	}

	services.PublishChange(shopID, "courier_companies", models.EventActionUpdate, courier.ID, courier)
	c.JSON(http.StatusOK, courier)
}

// DeleteCourier soft deletes a courier company with a settled ledger
func DeleteCourier(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	courierID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var courier models.CourierCompany
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, courierID).
		First(&courier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Courier not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !courier.CurrentBalance.IsZero() {
		utils.RespondWithError(c, http.StatusConflict, "Courier has an outstanding balance")
		return
	}

	if err := config.DB.Delete(&courier).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete courier")
		return
	}

	services.PublishChange(shopID, "courier_companies", models.EventActionDelete, courier.ID, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Courier deleted successfully"})
}

// GetCourierTransactions lists a courier's ledger newest first
func GetCourierTransactions(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	courierID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var courier models.CourierCompany
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, courierID).
		First(&courier).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Courier not found")
		return
	}

	page := utils.ParsePagination(c)

	var total int64
	config.DB.Model(&models.CourierTransaction{}).
		Where("courier_company_id = ?", courierID).Count(&total)

	var transactions []models.CourierTransaction
	if err := config.DB.Where("courier_company_id = ?", courierID).
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
		"currentBalance": courier.CurrentBalance,
	})
}

// SettleCourier records a COD settlement payment from the courier,
// crediting their ledger.
func SettleCourier(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}
	courierID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input SettleCourierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	ledger := services.NewLedgerService(config.DB)
	entry, err := ledger.PostCourierEntry(shopID, courierID, services.LedgerEntryInput{
		Type:             models.EntryTypeCredit,
		Source:           models.EntrySourceSettlement,
		Amount:           input.Amount,
		Notes:            input.Notes,
		RecordedByUserID: &userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOwnerNotFound):
			utils.RespondWithError(c, http.StatusNotFound, "Courier not found")
		case errors.Is(err, services.ErrNonPositiveAmount):
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record settlement")
		}
		return
	}

	services.PublishChange(shopID, "courier_transactions", models.EventActionInsert, entry.ID, entry)
	c.JSON(http.StatusCreated, entry)
}
