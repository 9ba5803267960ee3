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

type CreateSupplierInput struct {
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contactName"`
	Phone       string `json:"phone"`
	Email       string `json:"email" binding:"omitempty,email"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
}

type UpdateSupplierInput struct {
	Name        *string `json:"name"`
	ContactName *string `json:"contactName"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Address     *string `json:"address"`
	Notes       *string `json:"notes"`
	IsActive    *bool   `json:"isActive"`
}

// CreateSupplier creates a new supplier for the shop
func CreateSupplier(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	var input CreateSupplierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	supplier := models.Supplier{
		ShopID:      shopID,
		Name:        input.Name,
		ContactName: input.ContactName,
		Phone:       input.Phone,
		Email:       input.Email,
		Address:     input.Address,
		Notes:       input.Notes,
		IsActive:    true,
	}

	if err := config.DB.Create(&supplier).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create supplier")
		return
	}

	services.PublishChange(shopID, "suppliers", models.EventActionInsert, supplier.ID, supplier)
	c.JSON(http.StatusCreated, supplier)
}

// GetSuppliers retrieves all suppliers for the shop
func GetSuppliers(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	query := config.DB.Where("shop_id = ?", shopID)
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var suppliers []models.Supplier
	if err := query.Order("name asc").Find(&suppliers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve suppliers")
		return
	}

	c.JSON(http.StatusOK, suppliers)
}

// GetSupplier retrieves a specific supplier by ID
func GetSupplier(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	supplierID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var supplier models.Supplier
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, supplierID).
		First(&supplier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Supplier not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, supplier)
}

// UpdateSupplier updates an existing supplier
func UpdateSupplier(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	supplierID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input UpdateSupplierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var supplier models.Supplier
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, supplierID).
		First(&supplier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Supplier not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		supplier.Name = *input.Name
	}
	if input.ContactName != nil {
		supplier.ContactName = *input.ContactName
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		supplier.Phone = *input.Phone
	}
	if input.Email != nil {
		supplier.Email = *input.Email
	}
	if input.Address != nil {
		supplier.Address = *input.Address
	}
	if input.Notes != nil {
		supplier.Notes = *input.Notes
	}
	if input.IsActive != nil {
		supplier.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&supplier).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update supplier")
		return
	}

	services.PublishChange(shopID, "suppliers", models.EventActionUpdate, supplier.ID, supplier)
	c.JSON(http.StatusOK, supplier)
}

// DeleteSupplier soft deletes a supplier
func DeleteSupplier(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	supplierID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("shop_id = ? AND id = ?", shopID, supplierID).
		Delete(&models.Supplier{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete supplier")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Supplier not found")
		return
	}

	services.PublishChange(shopID, "suppliers", models.EventActionDelete, supplierID, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Supplier deleted successfully"})
}
