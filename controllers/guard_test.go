package controllers

import (
	"net/http"
	"testing"
	"time"

	"gempro-backend/models"
	"gempro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func guardedRouter() *gin.Engine {
	r := gin.New()
	r.Use(utils.AuthMiddleware(), SubscriptionGuard())
	r.POST("/api/customers", CreateCustomer)
	r.GET("/api/customers", GetCustomers)
	r.POST("/api/subscription/confirm", ConfirmCheckout)
	return r
}

func TestSubscriptionGuard(t *testing.T) {
	env := setupTestEnv(t)
	r := guardedRouter()

	customerBody := map[string]interface{}{"name": "Amira", "phone": "+31612345678"}

	t.Run("no subscription row passes", func(t *testing.T) {
		w := env.request(t, r, http.MethodPost, "/api/customers", customerBody, env.Token)
		requireStatus(t, w, http.StatusCreated)
	})

	plan := models.Plan{Code: "guard-test", Name: "Guard Test"}
	require.NoError(t, env.DB.Create(&plan).Error)
	sub := models.Subscription{
		ShopID:           env.Shop.ID,
		PlanID:           plan.ID,
		Status:           models.SubscriptionStatusPastDue,
		CurrentPeriodEnd: time.Now().AddDate(0, 0, -3),
	}
	require.NoError(t, env.DB.Create(&sub).Error)

	t.Run("past_due blocks writes", func(t *testing.T) {
		w := env.request(t, r, http.MethodPost, "/api/customers", map[string]interface{}{
			"name": "Blocked", "phone": "+31687654321",
		}, env.Token)
		requireStatus(t, w, http.StatusPaymentRequired)
	})

	t.Run("past_due keeps reads open", func(t *testing.T) {
		w := env.request(t, r, http.MethodGet, "/api/customers", nil, env.Token)
		requireStatus(t, w, http.StatusOK)
	})

	t.Run("billing endpoints stay open for renewal", func(t *testing.T) {
		w := env.request(t, r, http.MethodPost, "/api/subscription/confirm",
			map[string]interface{}{"sessionId": "cs_test_unknown"}, env.Token)
		require.NotEqual(t, http.StatusPaymentRequired, w.Code)
	})

	t.Run("active subscription writes normally", func(t *testing.T) {
		require.NoError(t, env.DB.Model(&models.Subscription{}).
			Where("id = ?", sub.ID).
			Update("status", models.SubscriptionStatusActive).Error)

		w := env.request(t, r, http.MethodPost, "/api/customers", map[string]interface{}{
			"name": "Allowed", "phone": "+31611122233",
		}, env.Token)
		requireStatus(t, w, http.StatusCreated)
	})
}
