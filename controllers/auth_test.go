package controllers

import (
	"net/http"
	"testing"

	"gempro-backend/models"
	"gempro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/register", Register)
	r.POST("/auth/login", Login)
	authed := r.Group("/auth")
	authed.Use(utils.AuthMiddleware())
	authed.GET("/me", Me)
	return r
}

func TestRegisterAndLogin(t *testing.T) {
	env := setupTestEnv(t)
	r := authRouter()

	starter := models.Plan{
		Code:         "starter",
		Name:         "Starter",
		MonthlyPrice: decimal.Zero,
		IsActive:     true,
	}
	require.NoError(t, env.DB.Create(&starter).Error)

	w := env.request(t, r, http.MethodPost, "/auth/register", map[string]interface{}{
		"email":    "owner@gempro.test",
		"phone":    "+15550300001",
		"name":     "Shop Owner",
		"password": "long-enough-password",
		"shopName": "Crown Jewelers",
		"currency": "EUR",
	}, "")
	requireStatus(t, w, http.StatusCreated)

	var registered struct {
		Token string `json:"token"`
		User  struct {
			ShopID string `json:"shopId"`
			Role   string `json:"role"`
		} `json:"user"`
	}
	decodeBody(t, w, &registered)
	require.NotEmpty(t, registered.Token)
	assert.Equal(t, "owner", registered.User.Role)

	t.Run("trial subscription is created", func(t *testing.T) {
		var sub models.Subscription
		require.NoError(t, env.DB.Where("shop_id = ?", registered.User.ShopID).
			First(&sub).Error)
		assert.Equal(t, models.SubscriptionStatusTrialing, sub.Status)
		assert.Equal(t, starter.ID, sub.PlanID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		w := env.request(t, r, http.MethodPost, "/auth/register", map[string]interface{}{
			"email":    "owner@gempro.test",
			"phone":    "+15550300002",
			"name":     "Copycat",
			"password": "long-enough-password",
			"shopName": "Copy Jewelers",
		}, "")
		requireStatus(t, w, http.StatusConflict)
	})

	t.Run("login with email", func(t *testing.T) {
		w := env.request(t, r, http.MethodPost, "/auth/login", map[string]interface{}{
			"identifier": "owner@gempro.test",
			"password":   "long-enough-password",
		}, "")
		requireStatus(t, w, http.StatusOK)
	})

	t.Run("login with phone", func(t *testing.T) {
		w := env.request(t, r, http.MethodPost, "/auth/login", map[string]interface{}{
			"identifier": "+15550300001",
			"password":   "long-enough-password",
		}, "")
		requireStatus(t, w, http.StatusOK)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := env.request(t, r, http.MethodPost, "/auth/login", map[string]interface{}{
			"identifier": "owner@gempro.test",
			"password":   "wrong-password",
		}, "")
		requireStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("me returns user and shop", func(t *testing.T) {
		w := env.request(t, r, http.MethodGet, "/auth/me", nil, registered.Token)
		requireStatus(t, w, http.StatusOK)

		var me struct {
			Email string `json:"email"`
			Shop  struct {
				Name     string `json:"name"`
				Currency string `json:"currency"`
			} `json:"shop"`
		}
		decodeBody(t, w, &me)
		assert.Equal(t, "owner@gempro.test", me.Email)
		assert.Equal(t, "Crown Jewelers", me.Shop.Name)
		assert.Equal(t, "EUR", me.Shop.Currency)
	})
}
