// controllers/subscription.go
package controllers

import (
	"errors"
	"net/http"
	"os"

	"gempro-backend/config"
	"gempro-backend/models"
	"gempro-backend/services"
	"gempro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StartCheckoutInput struct {
	PlanCode   string `json:"planCode" binding:"required"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

type ConfirmCheckoutInput struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// planForShop resolves the shop's current plan for limit checks.
// Shops without a subscription row have no enforced limits.
func planForShop(shopID uuid.UUID) (*models.Plan, error) {
	var sub models.Subscription
	err := config.DB.Preload("Plan").Where("shop_id = ?", shopID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub.Plan, nil
}

// GetPlans lists the active subscription plans
func GetPlans(c *gin.Context) {
	var plans []models.Plan
	if err := config.DB.Where("is_active = ?", true).
		Order("monthly_price asc").Find(&plans).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve plans")
		return
	}
	c.JSON(http.StatusOK, plans)
}

// GetSubscription returns the shop's subscription with its plan
func GetSubscription(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	var sub models.Subscription
	if err := config.DB.Preload("Plan").Where("shop_id = ?", shopID).
		First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Subscription not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, sub)
}

// StartCheckout creates a payment-provider checkout session for a plan change
func StartCheckout(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	var input StartCheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var plan models.Plan
	if err := config.DB.Where("code = ? AND is_active = ?", input.PlanCode, true).
		First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Plan not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	successURL := input.SuccessURL
	if successURL == "" {
		successURL = os.Getenv("BILLING_SUCCESS_URL")
	}
	cancelURL := input.CancelURL
	if cancelURL == "" {
		cancelURL = os.Getenv("BILLING_CANCEL_URL")
	}
	if successURL == "" || cancelURL == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Missing success or cancel URL")
		return
	}

	billing := services.NewBillingService(config.DB)
	sessionID, url, err := billing.StartCheckout(shopID, plan, successURL, cancelURL)
	if err != nil {
		if errors.Is(err, services.ErrSubscriptionNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Subscription not found")
		} else {
			utils.RespondWithError(c, http.StatusBadGateway, "Failed to start checkout")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId":   sessionID,
		"checkoutUrl": url,
	})
}

// ConfirmCheckout verifies the checkout session and activates the plan
func ConfirmCheckout(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	var input ConfirmCheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	billing := services.NewBillingService(config.DB)
	sub, err := billing.ConfirmCheckout(shopID, input.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSubscriptionNotFound):
			utils.RespondWithError(c, http.StatusNotFound, "Subscription not found")
		case errors.Is(err, services.ErrCheckoutMismatch):
			utils.RespondWithError(c, http.StatusConflict, "Checkout session does not match subscription")
		case errors.Is(err, services.ErrCheckoutNotPaid):
			utils.RespondWithError(c, http.StatusPaymentRequired, "Checkout session not paid")
		default:
			utils.RespondWithError(c, http.StatusBadGateway, "Failed to confirm checkout")
		}
		return
	}

	services.PublishChange(shopID, "subscriptions", models.EventActionUpdate, sub.ID, sub)
	c.JSON(http.StatusOK, sub)
}
