// controllers/auth.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"gempro-backend/config"
	"gempro-backend/models"
	"gempro-backend/services"
	"gempro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Email       string       `json:"email" binding:"required,email"`
	Phone       string       `json:"phone" binding:"required"`
	Name        string       `json:"name" binding:"required"`
	Password    string       `json:"password" binding:"required,min=8"`
	ShopName    string       `json:"shopName" binding:"required"`
	ShopAddress string       `json:"shopAddress"`
	Currency    string       `json:"currency"`
	Settings    models.JSONB `json:"settings"`
}

type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"` // email or phone
	Password   string `json:"password" binding:"required"`
}

// Register creates a shop with its owner user and a trial
// subscription on the default plan.
func Register(c *gin.Context) {
	var input RegisterInput

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	// Check if email or phone already exists
	var existingUser models.User
	result := config.DB.Where("email = ? OR phone = ?", input.Email, input.Phone).First(&existingUser)
	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email or phone already registered")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}
	settings := input.Settings
	if settings == nil {
		settings = models.JSONB{}
	}

	shop := models.Shop{
		ID:           uuid.New(),
		Name:         input.ShopName,
		Address:      input.ShopAddress,
		Phone:        input.Phone,
		CurrencyCode: currency,
		Settings:     settings,
	}
	newUser := models.User{
		Email:    input.Email,
		Phone:    input.Phone,
		Name:     input.Name,
		Password: input.Password, // hashed in BeforeCreate hook
		Role:     "owner",
		ShopID:   shop.ID,
		IsActive: true,
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&shop).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create shop")
		return
	}
	if err := tx.Create(&newUser).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	// Every new shop starts on the free plan with a trial period
	var freePlan models.Plan
	if err := tx.Where("code = ?", "starter").First(&freePlan).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Default plan missing")
		return
	}
	subscription := models.Subscription{
		ShopID:           shop.ID,
		PlanID:           freePlan.ID,
		Status:           models.SubscriptionStatusTrialing,
		CurrentPeriodEnd: time.Now().AddDate(0, 0, services.TrialDays),
	}
	if err := tx.Create(&subscription).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create subscription")
		return
	}

	tx.Commit()

	token, err := utils.GenerateToken(newUser.ID.String(), shop.ID.String(), newUser.Role)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user": gin.H{
			"id":       newUser.ID,
			"email":    newUser.Email,
			"phone":    newUser.Phone,
			"role":     newUser.Role,
			"shopId":   shop.ID,
			"shopName": shop.Name,
		},
	})
}

func Login(c *gin.Context) {
	var input LoginInput

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	var user models.User
	if err := config.DB.Where("email = ? OR phone = ?", input.Identifier, input.Identifier).
		First(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !user.IsActive {
		utils.RespondWithError(c, http.StatusUnauthorized, "Account is disabled")
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	now := time.Now()
	config.DB.Model(&user).Update("last_login", now)

	token, err := utils.GenerateToken(user.ID.String(), user.ShopID.String(), user.Role)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":     user.ID,
			"email":  user.Email,
			"name":   user.Name,
			"role":   user.Role,
			"shopId": user.ShopID,
		},
	})
}

// Me returns the authenticated user with their shop
func Me(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	var user models.User
	if err := config.DB.Preload("Shop").First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"name":      user.Name,
		"phone":     user.Phone,
		"role":      user.Role,
		"lastLogin": user.LastLogin,
		"shop": gin.H{
			"id":       user.Shop.ID,
			"name":     user.Shop.Name,
			"address":  user.Shop.Address,
			"currency": user.Shop.CurrencyCode,
		},
	})
}
