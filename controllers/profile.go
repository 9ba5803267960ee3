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

type UpdateShopProfileInput struct {
	Name         *string       `json:"name"`
	Address      *string       `json:"address"`
	Phone        *string       `json:"phone"`
	CurrencyCode *string       `json:"currencyCode"`
	Settings     *models.JSONB `json:"settings"`
}

type UpdateNotificationSettingsInput struct {
	LowStockAlerts   *bool `json:"lowStockAlerts"`
	SMSNotifications *bool `json:"smsNotifications"`
	BalanceReminders *bool `json:"balanceReminders"`
}

type CreateStaffInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

// GetShopProfile returns the shop record for the caller's shop
func GetShopProfile(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	var shop models.Shop
	if err := config.DB.First(&shop, "id = ?", shopID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Shop not found")
		return
	}

	c.JSON(http.StatusOK, shop)
}

// UpdateShopProfile updates the shop profile. Owner only.
func UpdateShopProfile(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	var input UpdateShopProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var shop models.Shop
	if err := config.DB.First(&shop, "id = ?", shopID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Shop not found")
		return
	}

	if input.Name != nil {
		if *input.Name == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Shop name cannot be empty")
			return
		}
		shop.Name = *input.Name
	}
	if input.Address != nil {
		shop.Address = *input.Address
	}
	if input.Phone != nil {
		shop.Phone = *input.Phone
	}
	if input.CurrencyCode != nil {
		if len(*input.CurrencyCode) != 3 {
			utils.RespondWithError(c, http.StatusBadRequest, "Currency code must be a 3-letter ISO code")
			return
		}
		shop.CurrencyCode = *input.CurrencyCode
	}
	if input.Settings != nil {
		shop.Settings = *input.Settings
	}

	if err := config.DB.Save(&shop).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update shop profile")
		return
	}

	services.PublishChange(shopID, "shops", models.EventActionUpdate, shop.ID, shop)
	c.JSON(http.StatusOK, shop)
}

// UpdateNotificationSettings toggles the shop's notification flags. Owner only.
func UpdateNotificationSettings(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	var input UpdateNotificationSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var shop models.Shop
	if err := config.DB.First(&shop, "id = ?", shopID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Shop not found")
		return
	}

	if input.LowStockAlerts != nil {
		shop.LowStockAlerts = *input.LowStockAlerts
	}
	if input.SMSNotifications != nil {
		shop.SMSNotifications = *input.SMSNotifications
	}
	if input.BalanceReminders != nil {
		shop.BalanceReminders = *input.BalanceReminders
	}

	if err := config.DB.Save(&shop).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update notification settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification settings updated"})
}

// GetStaff lists the shop's user accounts. Owner only.
func GetStaff(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	var users []models.User
	if err := config.DB.Where("shop_id = ?", shopID).
		Order("created_at asc").Find(&users).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve staff")
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"id":        u.ID,
			"name":      u.Name,
			"email":     u.Email,
			"phone":     u.Phone,
			"role":      u.Role,
			"isActive":  u.IsActive,
			"lastLogin": u.LastLogin,
		})
	}

	c.JSON(http.StatusOK, out)
}

// CreateStaff adds a staff account to the shop. Owner only.
func CreateStaff(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	var input CreateStaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if plan, err := planForShop(shopID); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	} else if plan != nil {
		var count int64
		config.DB.Model(&models.User{}).
			Where("shop_id = ? AND is_active = ?", shopID, true).Count(&count)
		if count >= int64(plan.MaxUsers) {
			utils.RespondWithError(c, http.StatusConflict,
				"User limit reached for the current plan")
			return
		}
	}

	var existing models.User
	err := config.DB.Where("email = ?", input.Email).First(&existing).Error
	if err == nil {
		utils.RespondWithError(c, http.StatusConflict, "A user with this email already exists")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	user := models.User{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
		Phone:    input.Phone,
		Role:     "staff",
		ShopID:   shopID,
		IsActive: true,
	}

	if err := config.DB.Create(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create staff account")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
}

// DeactivateStaff disables a staff login. Owner only. Owners cannot
// deactivate themselves.
func DeactivateStaff(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	callerID, ok := userIDFromContext(c)
	if !ok {
		return
	}
	staffID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if staffID == callerID {
		utils.RespondWithError(c, http.StatusConflict, "You cannot deactivate your own account")
		return
	}

	result := config.DB.Model(&models.User{}).
		Where("shop_id = ? AND id = ?", shopID, staffID).
		Update("is_active", false)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to deactivate staff account")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Staff account not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Staff account deactivated"})
}
