package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"gempro-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customerRouter() *gin.Engine {
	r := authedRouter()
	r.POST("/api/customers", CreateCustomer)
	r.GET("/api/customers", GetCustomers)
	r.GET("/api/customers/:id", GetCustomer)
	r.PUT("/api/customers/:id", UpdateCustomer)
	r.DELETE("/api/customers/:id", DeleteCustomer)
	r.GET("/api/customers/:id/transactions", GetCustomerTransactions)
	r.POST("/api/customers/:id/transactions", CreateCustomerTransaction)
	return r
}

func TestCreateCustomer(t *testing.T) {
	env := setupTestEnv(t)
	r := customerRouter()

	w := env.request(t, r, http.MethodPost, "/api/customers", map[string]interface{}{
		"name":  "Amira Khan",
		"phone": "+15550100001",
	}, env.Token)
	requireStatus(t, w, http.StatusCreated)

	var customer models.Customer
	decodeBody(t, w, &customer)
	assert.Equal(t, env.Shop.ID, customer.ShopID)
	assert.True(t, customer.CurrentBalance.IsZero())

	t.Run("duplicate phone in the same shop is rejected", func(t *testing.T) {
		w := env.request(t, r, http.MethodPost, "/api/customers", map[string]interface{}{
			"name":  "Someone Else",
			"phone": "+15550100001",
		}, env.Token)
		requireStatus(t, w, http.StatusConflict)
	})

	t.Run("same phone in another shop is fine", func(t *testing.T) {
		otherShop := models.Shop{ID: uuid.New(), Name: "Other Jewelers"}
		require.NoError(t, env.DB.Create(&otherShop).Error)
		otherToken := env.tokenFor(t, otherShop.ID, "owner")

		w := env.request(t, r, http.MethodPost, "/api/customers", map[string]interface{}{
			"name":  "Same Phone",
			"phone": "+15550100001",
		}, otherToken)
		requireStatus(t, w, http.StatusCreated)
	})

	t.Run("bad phone format", func(t *testing.T) {
		w := env.request(t, r, http.MethodPost, "/api/customers", map[string]interface{}{
			"name":  "Bad Phone",
			"phone": "not-a-phone",
		}, env.Token)
		requireStatus(t, w, http.StatusBadRequest)
	})

	t.Run("requires auth", func(t *testing.T) {
		w := env.request(t, r, http.MethodPost, "/api/customers", map[string]interface{}{
			"name":  "No Auth",
			"phone": "+15550100009",
		}, "")
		requireStatus(t, w, http.StatusUnauthorized)
	})
}

func TestCustomerTenantIsolation(t *testing.T) {
	env := setupTestEnv(t)
	r := customerRouter()

	customer := models.Customer{
		ShopID:          env.Shop.ID,
		CreatedByUserID: env.User.ID,
		Name:            "Hidden",
		Phone:           "+15550100010",
		IsActive:        true,
	}
	require.NoError(t, env.DB.Create(&customer).Error)

	otherShop := models.Shop{ID: uuid.New(), Name: "Other Jewelers"}
	require.NoError(t, env.DB.Create(&otherShop).Error)
	otherToken := env.tokenFor(t, otherShop.ID, "owner")

	w := env.request(t, r, http.MethodGet, fmt.Sprintf("/api/customers/%s", customer.ID), nil, otherToken)
	requireStatus(t, w, http.StatusNotFound)

	w = env.request(t, r, http.MethodPut, fmt.Sprintf("/api/customers/%s", customer.ID),
		map[string]interface{}{"name": "Hijacked"}, otherToken)
	requireStatus(t, w, http.StatusNotFound)

	w = env.request(t, r, http.MethodDelete, fmt.Sprintf("/api/customers/%s", customer.ID), nil, otherToken)
	requireStatus(t, w, http.StatusNotFound)

	var stored models.Customer
	require.NoError(t, env.DB.First(&stored, "id = ?", customer.ID).Error)
	assert.Equal(t, "Hidden", stored.Name)
}

func TestDeleteCustomer_BalanceGuard(t *testing.T) {
	env := setupTestEnv(t)
	r := customerRouter()

	customer := models.Customer{
		ShopID:          env.Shop.ID,
		CreatedByUserID: env.User.ID,
		Name:            "Debtor",
		Phone:           "+15550100020",
		CurrentBalance:  decimal.NewFromInt(75),
		IsActive:        true,
	}
	require.NoError(t, env.DB.Create(&customer).Error)

	w := env.request(t, r, http.MethodDelete, fmt.Sprintf("/api/customers/%s", customer.ID), nil, env.Token)
	requireStatus(t, w, http.StatusConflict)

	// Settle the debt, then deletion goes through.
	w = env.request(t, r, http.MethodPost, fmt.Sprintf("/api/customers/%s/transactions", customer.ID),
		map[string]interface{}{"type": "credit", "amount": 75}, env.Token)
	requireStatus(t, w, http.StatusCreated)

	w = env.request(t, r, http.MethodDelete, fmt.Sprintf("/api/customers/%s", customer.ID), nil, env.Token)
	requireStatus(t, w, http.StatusOK)

	// Soft delete: the row survives with deleted_at set.
	var count int64
	env.DB.Unscoped().Model(&models.Customer{}).
		Where("id = ? AND deleted_at IS NOT NULL", customer.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCustomerTransactionsEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	r := customerRouter()

	customer := models.Customer{
		ShopID:          env.Shop.ID,
		CreatedByUserID: env.User.ID,
		Name:            "Ledger",
		Phone:           "+15550100030",
		IsActive:        true,
	}
	require.NoError(t, env.DB.Create(&customer).Error)

	w := env.request(t, r, http.MethodPost, fmt.Sprintf("/api/customers/%s/transactions", customer.ID),
		map[string]interface{}{"type": "debit", "amount": 120, "notes": "Old repair bill"}, env.Token)
	requireStatus(t, w, http.StatusCreated)

	var entry models.CustomerTransaction
	decodeBody(t, w, &entry)
	assert.Equal(t, models.EntrySourceManual, entry.Source)
	assert.Equal(t, int64(1), entry.SequenceNumber)

	// Credit without an explicit source is recorded as a payment.
	w = env.request(t, r, http.MethodPost, fmt.Sprintf("/api/customers/%s/transactions", customer.ID),
		map[string]interface{}{"type": "credit", "amount": 50}, env.Token)
	requireStatus(t, w, http.StatusCreated)
	decodeBody(t, w, &entry)
	assert.Equal(t, models.EntrySourcePayment, entry.Source)
	assert.True(t, entry.BalanceAfter.Equal(decimal.NewFromInt(70)))

	t.Run("rejects invalid type", func(t *testing.T) {
		w := env.request(t, r, http.MethodPost, fmt.Sprintf("/api/customers/%s/transactions", customer.ID),
			map[string]interface{}{"type": "transfer", "amount": 10}, env.Token)
		requireStatus(t, w, http.StatusBadRequest)
	})

	t.Run("listing is newest first with running balance", func(t *testing.T) {
		var body struct {
			Data           []models.CustomerTransaction `json:"data"`
			Total          int64                        `json:"total"`
			CurrentBalance decimal.Decimal              `json:"currentBalance"`
		}
		w := env.request(t, r, http.MethodGet, fmt.Sprintf("/api/customers/%s/transactions", customer.ID), nil, env.Token)
		requireStatus(t, w, http.StatusOK)
		decodeBody(t, w, &body)
		require.Equal(t, int64(2), body.Total)
		assert.Equal(t, int64(2), body.Data[0].SequenceNumber)
		assert.True(t, body.CurrentBalance.Equal(decimal.NewFromInt(70)))
	})
}
