package controllers

import (
	"errors"
	"net/http"
	"strings"

	"gempro-backend/config"
	"gempro-backend/models"
	"gempro-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SubscriptionGuard puts lapsed shops in a read-only grace state.
// Reads stay open so the owner can see their data, and the billing
// endpoints stay open so they can renew.
func SubscriptionGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/subscription") {
			c.Next()
			return
		}

		shopID, ok := shopIDFromContext(c)
		if !ok {
			return
		}

		var sub models.Subscription
		err := config.DB.Select("status").Where("shop_id = ?", shopID).First(&sub).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.Next()
			return
		}
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}

		if sub.Status == models.SubscriptionStatusPastDue ||
			sub.Status == models.SubscriptionStatusCanceled {
			utils.RespondWithError(c, http.StatusPaymentRequired,
				"Subscription inactive, account is read-only until renewal")
			return
		}

		c.Next()
	}
}
