package controllers

import (
	"errors"
	"net/http"

	"gempro-backend/config"
	"gempro-backend/models"
	"gempro-backend/services"
	"gempro-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateCustomerInput defines the expected JSON structure for creating a customer
type CreateCustomerInput struct {
	Name    string  `json:"name" binding:"required"`
	Phone   string  `json:"phone" binding:"required"`
	Email   *string `json:"email"`
	Address string  `json:"address"`
	Notes   string  `json:"notes"`
}

// UpdateCustomerInput defines the expected JSON structure for updating a customer
type UpdateCustomerInput struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	Notes    *string `json:"notes"`
	IsActive *bool   `json:"isActive"`
}

var customerSortColumns = map[string]bool{
	"name":            true,
	"created_at":      true,
	"current_balance": true,
	"total_spent":     true,
	"last_purchase":   true,
}

// CreateCustomer creates a new customer for the shop
func CreateCustomer(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	// Check if phone already exists for this shop
	var existingCustomer models.Customer
	if err := config.DB.Where("shop_id = ? AND phone = ?", shopID, input.Phone).
		First(&existingCustomer).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Customer with this phone number already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	customer := models.Customer{
		ShopID:          shopID,
		CreatedByUserID: userID,
		Name:            input.Name,
		Phone:           input.Phone,
		Address:         input.Address,
		Notes:           input.Notes,
		IsActive:        true,
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}

	if err := config.DB.Create(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create customer")
		return
	}

	services.PublishChange(shopID, "customers", models.EventActionInsert, customer.ID, customer)
	c.JSON(http.StatusCreated, customer)
}

// GetCustomers retrieves the shop's customers with search, filter and
// pagination params passed straight from the client
func GetCustomers(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	page := utils.ParsePagination(c)
	order := utils.ParseSort(c, customerSortColumns, "created_at desc")

	query := config.DB.Model(&models.Customer{}).Where("shop_id = ?", shopID)

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", like, like)
	}
	if c.Query("isActive") == "true" {
		query = query.Where("is_active = ?", true)
	}
	if c.Query("withBalance") == "true" {
		query = query.Where("current_balance <> 0")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count customers")
		return
	}

	var customers []models.Customer
	if err := query.Order(order).Offset(page.Offset()).Limit(page.Limit).
		Find(&customers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  customers,
		"total": total,
		"page":  page.Page,
		"limit": page.Limit,
	})
}

// GetCustomer retrieves a specific customer by ID
func GetCustomer(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	customerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var customer models.Customer
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, customerID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer updates an existing customer
func UpdateCustomer(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	customerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var customer models.Customer
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, customerID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.Phone != nil {
		if !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}

		// Check if phone is being changed to another existing customer
		if customer.Phone != *input.Phone {
			var existingCustomer models.Customer
			if err := config.DB.Where("shop_id = ? AND phone = ?", shopID, *input.Phone).
				First(&existingCustomer).Error; err == nil {
				utils.RespondWithError(c, http.StatusConflict, "Another customer with this phone number already exists")
				return
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
				return
			}
		}
		customer.Phone = *input.Phone
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}
	if input.Address != nil {
		customer.Address = *input.Address
	}
	if input.Notes != nil {
		customer.Notes = *input.Notes
	}
	if input.IsActive != nil {
		customer.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer")
		return
	}

	services.PublishChange(shopID, "customers", models.EventActionUpdate, customer.ID, customer)
	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer soft deletes a customer. Customers with a non-zero
// balance keep an open ledger and cannot be removed.
func DeleteCustomer(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	customerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var customer models.Customer
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, customerID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !customer.CurrentBalance.IsZero() {
		utils.RespondWithError(c, http.StatusConflict, "Customer has an outstanding balance")
		return
	}

	if err := config.DB.Delete(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
		return
	}

	services.PublishChange(shopID, "customers", models.EventActionDelete, customer.ID, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}
