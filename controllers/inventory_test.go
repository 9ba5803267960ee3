package controllers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"gempro-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inventoryRouter() *gin.Engine {
	r := authedRouter()
	r.POST("/api/items", CreateItem)
	r.GET("/api/items", GetItems)
	r.GET("/api/items/:id", GetItem)
	r.PUT("/api/items/:id", UpdateItem)
	r.DELETE("/api/items/:id", DeleteItem)
	r.POST("/api/items/:id/adjust-stock", AdjustStock)
	r.GET("/api/items/:id/movements", GetItemMovements)
	return r
}

func TestCreateItem(t *testing.T) {
	env := setupTestEnv(t)
	r := inventoryRouter()

	w := env.request(t, r, http.MethodPost, "/api/items", map[string]interface{}{
		"sku":           "NK-22K-001",
		"name":          "Gold Necklace",
		"category":      "Necklaces",
		"metal":         "gold",
		"purity":        "22K",
		"weightGrams":   12.45,
		"costPrice":     800,
		"sellingPrice":  1100,
		"stockQuantity": 3,
	}, env.Token)
	requireStatus(t, w, http.StatusCreated)

	var item models.InventoryItem
	decodeBody(t, w, &item)
	assert.Equal(t, 3, item.StockQuantity)
	assert.Equal(t, 5, item.LowStockThreshold)

	t.Run("opening stock leaves a movement", func(t *testing.T) {
		var movements []models.StockMovement
		require.NoError(t, env.DB.Where("item_id = ?", item.ID).Find(&movements).Error)
		require.Len(t, movements, 1)
		assert.Equal(t, 3, movements[0].Quantity)
		assert.Equal(t, models.MovementReasonAdjustment, movements[0].Reason)
	})

	t.Run("duplicate SKU in the same shop", func(t *testing.T) {
		w := env.request(t, r, http.MethodPost, "/api/items", map[string]interface{}{
			"sku":          "NK-22K-001",
			"name":         "Another Necklace",
			"costPrice":    100,
			"sellingPrice": 150,
		}, env.Token)
		requireStatus(t, w, http.StatusConflict)
	})

	t.Run("bad SKU format", func(t *testing.T) {
		w := env.request(t, r, http.MethodPost, "/api/items", map[string]interface{}{
			"sku":          "bad sku!",
			"name":         "Broken",
			"costPrice":    100,
			"sellingPrice": 150,
		}, env.Token)
		requireStatus(t, w, http.StatusBadRequest)
	})
}

func TestCreateItem_PlanLimit(t *testing.T) {
	env := setupTestEnv(t)
	r := inventoryRouter()

	plan := models.Plan{Code: "tiny", Name: "Tiny", MaxUsers: 1, MaxItems: 1}
	require.NoError(t, env.DB.Create(&plan).Error)
	require.NoError(t, env.DB.Create(&models.Subscription{
		ShopID:           env.Shop.ID,
		PlanID:           plan.ID,
		Status:           models.SubscriptionStatusActive,
		CurrentPeriodEnd: time.Now().AddDate(0, 1, 0),
	}).Error)

	createTestItem(t, env.DB, env.Shop.ID, "RG-18K-001", 1, 300)

	w := env.request(t, r, http.MethodPost, "/api/items", map[string]interface{}{
		"sku":          "RG-18K-002",
		"name":         "Gold Ring",
		"costPrice":    200,
		"sellingPrice": 280,
	}, env.Token)
	requireStatus(t, w, http.StatusConflict)
}

func TestAdjustStock(t *testing.T) {
	env := setupTestEnv(t)
	r := inventoryRouter()
	item := createTestItem(t, env.DB, env.Shop.ID, "BR-925-001", 4, 90)

	w := env.request(t, r, http.MethodPost, fmt.Sprintf("/api/items/%s/adjust-stock", item.ID),
		map[string]interface{}{"quantity": -3, "notes": "Damaged pieces written off"}, env.Token)
	requireStatus(t, w, http.StatusOK)

	var updated models.InventoryItem
	decodeBody(t, w, &updated)
	assert.Equal(t, 1, updated.StockQuantity)

	t.Run("cannot go negative", func(t *testing.T) {
		w := env.request(t, r, http.MethodPost, fmt.Sprintf("/api/items/%s/adjust-stock", item.ID),
			map[string]interface{}{"quantity": -2}, env.Token)
		requireStatus(t, w, http.StatusConflict)

		var stored models.InventoryItem
		require.NoError(t, env.DB.First(&stored, "id = ?", item.ID).Error)
		assert.Equal(t, 1, stored.StockQuantity)
	})

	t.Run("movement history adds up", func(t *testing.T) {
		w := env.request(t, r, http.MethodGet, fmt.Sprintf("/api/items/%s/movements", item.ID), nil, env.Token)
		requireStatus(t, w, http.StatusOK)

		var body struct {
			Data []models.StockMovement `json:"data"`
		}
		decodeBody(t, w, &body)
		require.Len(t, body.Data, 1)
		assert.Equal(t, -3, body.Data[0].Quantity)
	})
}

func TestGetItems_Filters(t *testing.T) {
	env := setupTestEnv(t)
	r := inventoryRouter()

	createTestItem(t, env.DB, env.Shop.ID, "GR-22K-001", 10, 500)
	low := createTestItem(t, env.DB, env.Shop.ID, "GR-22K-002", 2, 450)
	require.NoError(t, env.DB.Model(&low).Update("low_stock_threshold", 5).Error)

	var body struct {
		Data  []models.InventoryItem `json:"data"`
		Total int64                  `json:"total"`
	}

	w := env.request(t, r, http.MethodGet, "/api/items?lowStock=true", nil, env.Token)
	requireStatus(t, w, http.StatusOK)
	decodeBody(t, w, &body)
	require.Equal(t, int64(1), body.Total)
	assert.Equal(t, "GR-22K-002", body.Data[0].SKU)

	w = env.request(t, r, http.MethodGet, "/api/items?search=GR-22K", nil, env.Token)
	requireStatus(t, w, http.StatusOK)
	decodeBody(t, w, &body)
	assert.Equal(t, int64(2), body.Total)
}
