package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"gempro-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/google/uuid"
)

func deliveryRouter() *gin.Engine {
	r := authedRouter()
	r.POST("/api/sales", CreateSale)
	r.POST("/api/deliveries", CreateDelivery)
	r.GET("/api/deliveries", GetDeliveries)
	r.GET("/api/deliveries/:id", GetDelivery)
	r.PUT("/api/deliveries/:id/status", UpdateDeliveryStatus)
	r.POST("/api/couriers/:id/settle", SettleCourier)
	return r
}

func createTestCourier(t *testing.T, db *gorm.DB, shopID uuid.UUID) models.CourierCompany {
	t.Helper()

	courier := models.CourierCompany{
		ShopID:   shopID,
		Name:     "City Express",
		Phone:    "+15550200001",
		IsActive: true,
	}
	require.NoError(t, db.Create(&courier).Error)
	return courier
}

func createCompletedSale(t *testing.T, env *testEnv, r *gin.Engine, sku string) models.Sale {
	t.Helper()

	item := createTestItem(t, env.DB, env.Shop.ID, sku, 5, 250)
	w := env.request(t, r, http.MethodPost, "/api/sales", map[string]interface{}{
		"items":         []map[string]interface{}{{"itemId": item.ID, "quantity": 1}},
		"paymentMethod": "cash",
	}, env.Token)
	requireStatus(t, w, http.StatusCreated)

	var sale models.Sale
	decodeBody(t, w, &sale)
	return sale
}

func TestCreateDelivery(t *testing.T) {
	env := setupTestEnv(t)
	r := deliveryRouter()
	courier := createTestCourier(t, env.DB, env.Shop.ID)
	sale := createCompletedSale(t, env, r, "RING-101")

	w := env.request(t, r, http.MethodPost, "/api/deliveries", map[string]interface{}{
		"saleId":           sale.ID,
		"courierCompanyId": courier.ID,
		"recipientName":    "Amira Khan",
		"recipientPhone":   "+15550200100",
		"address":          "12 Market Street",
		"codAmount":        250,
	}, env.Token)
	requireStatus(t, w, http.StatusCreated)

	var delivery models.Delivery
	decodeBody(t, w, &delivery)
	assert.Equal(t, models.DeliveryStatusPending, delivery.Status)

	t.Run("one delivery per sale", func(t *testing.T) {
		w := env.request(t, r, http.MethodPost, "/api/deliveries", map[string]interface{}{
			"saleId":           sale.ID,
			"courierCompanyId": courier.ID,
			"recipientName":    "Amira Khan",
			"recipientPhone":   "+15550200100",
			"address":          "12 Market Street",
		}, env.Token)
		requireStatus(t, w, http.StatusConflict)
	})

	t.Run("unknown sale", func(t *testing.T) {
		w := env.request(t, r, http.MethodPost, "/api/deliveries", map[string]interface{}{
			"saleId":           uuid.New(),
			"courierCompanyId": courier.ID,
			"recipientName":    "Nobody",
			"recipientPhone":   "+15550200100",
			"address":          "Nowhere",
		}, env.Token)
		requireStatus(t, w, http.StatusBadRequest)
	})
}

func TestUpdateDeliveryStatus_ReturnRestocks(t *testing.T) {
	env := setupTestEnv(t)
	r := deliveryRouter()
	courier := createTestCourier(t, env.DB, env.Shop.ID)
	sale := createCompletedSale(t, env, r, "RING-105")
	require.Len(t, sale.Items, 1)
	itemID := sale.Items[0].ItemID

	w := env.request(t, r, http.MethodPost, "/api/deliveries", map[string]interface{}{
		"saleId":           sale.ID,
		"courierCompanyId": courier.ID,
		"recipientName":    "Farah",
		"recipientPhone":   "+15550200300",
		"address":          "9 Garden Lane",
	}, env.Token)
	requireStatus(t, w, http.StatusCreated)
	var delivery models.Delivery
	decodeBody(t, w, &delivery)

	statusURL := fmt.Sprintf("/api/deliveries/%s/status", delivery.ID)
	w = env.request(t, r, http.MethodPut, statusURL,
		map[string]interface{}{"status": models.DeliveryStatusDispatched}, env.Token)
	requireStatus(t, w, http.StatusOK)
	w = env.request(t, r, http.MethodPut, statusURL,
		map[string]interface{}{"status": models.DeliveryStatusReturned}, env.Token)
	requireStatus(t, w, http.StatusOK)

	// The sold unit is back on the shelf with a return movement.
	var stored models.InventoryItem
	require.NoError(t, env.DB.First(&stored, "id = ?", itemID).Error)
	assert.Equal(t, 5, stored.StockQuantity)

	var movements []models.StockMovement
	require.NoError(t, env.DB.
		Where("item_id = ? AND reason = ?", itemID, models.MovementReasonReturn).
		Find(&movements).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, 1, movements[0].Quantity)
	require.NotNil(t, movements[0].SourceID)
	assert.Equal(t, delivery.ID, *movements[0].SourceID)
}

func TestUpdateDeliveryStatus_Transitions(t *testing.T) {
	env := setupTestEnv(t)
	r := deliveryRouter()
	courier := createTestCourier(t, env.DB, env.Shop.ID)
	sale := createCompletedSale(t, env, r, "RING-102")

	w := env.request(t, r, http.MethodPost, "/api/deliveries", map[string]interface{}{
		"saleId":           sale.ID,
		"courierCompanyId": courier.ID,
		"recipientName":    "Bashir",
		"recipientPhone":   "+15550200200",
		"address":          "5 Harbor Road",
		"codAmount":        250,
	}, env.Token)
	requireStatus(t, w, http.StatusCreated)
	var delivery models.Delivery
	decodeBody(t, w, &delivery)

	statusURL := fmt.Sprintf("/api/deliveries/%s/status", delivery.ID)

	// pending -> delivered skips dispatch and is refused
	w = env.request(t, r, http.MethodPut, statusURL,
		map[string]interface{}{"status": "delivered"}, env.Token)
	requireStatus(t, w, http.StatusConflict)

	w = env.request(t, r, http.MethodPut, statusURL,
		map[string]interface{}{"status": "dispatched"}, env.Token)
	requireStatus(t, w, http.StatusOK)
	require.NoError(t, env.DB.First(&delivery, "id = ?", delivery.ID).Error)
	assert.Equal(t, models.DeliveryStatusDispatched, delivery.Status)
	require.NotNil(t, delivery.DispatchedAt)

	w = env.request(t, r, http.MethodPut, statusURL,
		map[string]interface{}{"status": "delivered"}, env.Token)
	requireStatus(t, w, http.StatusOK)
	require.NoError(t, env.DB.First(&delivery, "id = ?", delivery.ID).Error)
	assert.Equal(t, models.DeliveryStatusDelivered, delivery.Status)
	require.NotNil(t, delivery.DeliveredAt)

	// COD lands on the courier ledger when delivered.
	var storedCourier models.CourierCompany
	require.NoError(t, env.DB.First(&storedCourier, "id = ?", courier.ID).Error)
	assert.True(t, storedCourier.CurrentBalance.Equal(decimal.NewFromInt(250)))

	var entries []models.CourierTransaction
	require.NoError(t, env.DB.Where("courier_company_id = ?", courier.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, models.EntryTypeDebit, entries[0].Type)
	assert.Equal(t, models.EntrySourceDelivery, entries[0].Source)

	// delivered is terminal
	w = env.request(t, r, http.MethodPut, statusURL,
		map[string]interface{}{"status": "returned"}, env.Token)
	requireStatus(t, w, http.StatusConflict)
}

func TestSettleCourier(t *testing.T) {
	env := setupTestEnv(t)
	r := deliveryRouter()
	courier := createTestCourier(t, env.DB, env.Shop.ID)
	require.NoError(t, env.DB.Model(&courier).
		Update("current_balance", decimal.NewFromInt(600)).Error)

	w := env.request(t, r, http.MethodPost, fmt.Sprintf("/api/couriers/%s/settle", courier.ID),
		map[string]interface{}{"amount": 400, "notes": "Weekly COD handover"}, env.Token)
	requireStatus(t, w, http.StatusCreated)

	var entry models.CourierTransaction
	decodeBody(t, w, &entry)
	assert.Equal(t, models.EntryTypeCredit, entry.Type)
	assert.Equal(t, models.EntrySourceSettlement, entry.Source)
	assert.True(t, entry.BalanceAfter.Equal(decimal.NewFromInt(200)))

	var stored models.CourierCompany
	require.NoError(t, env.DB.First(&stored, "id = ?", courier.ID).Error)
	assert.True(t, stored.CurrentBalance.Equal(decimal.NewFromInt(200)))
}
