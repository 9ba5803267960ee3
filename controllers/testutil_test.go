package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"

	"gempro-backend/config"
	"gempro-backend/models"
	"gempro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	DB    *gorm.DB
	Shop  models.Shop
	User  models.User
	Token string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Shop{},
		&models.User{},
		&models.Customer{},
		&models.CustomerTransaction{},
		&models.InventoryItem{},
		&models.StockMovement{},
		&models.Sale{},
		&models.SaleItem{},
		&models.Supplier{},
		&models.Purchase{},
		&models.PurchaseItem{},
		&models.CourierCompany{},
		&models.CourierTransaction{},
		&models.Delivery{},
		&models.Expense{},
		&models.RecurringExpense{},
		&models.Plan{},
		&models.Subscription{},
		&models.ChangeEvent{},
		&models.NotificationLog{},
	))

	config.DB = db
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	shop := models.Shop{ID: uuid.New(), Name: "Test Jewelers"}
	require.NoError(t, db.Create(&shop).Error)

	user := models.User{
		Email:    fmt.Sprintf("owner-%s@example.com", uuid.NewString()[:8]),
		Password: "owner-password",
		Name:     "Owner",
		Role:     "owner",
		ShopID:   shop.ID,
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateToken(user.ID.String(), shop.ID.String(), user.Role)
	require.NoError(t, err)

	return &testEnv{DB: db, Shop: shop, User: user, Token: token}
}

// tokenFor issues a token for a second shop, for isolation tests.
func (e *testEnv) tokenFor(t *testing.T, shopID uuid.UUID, role string) string {
	t.Helper()

	user := models.User{
		Email:    fmt.Sprintf("user-%s@example.com", uuid.NewString()[:8]),
		Password: "another-password",
		Name:     "Other",
		Role:     role,
		ShopID:   shopID,
		IsActive: true,
	}
	require.NoError(t, e.DB.Create(&user).Error)

	token, err := utils.GenerateToken(user.ID.String(), shopID.String(), role)
	require.NoError(t, err)
	return token
}

func (e *testEnv) request(t *testing.T, r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out),
		"response body: %s", w.Body.String())
}

func authedRouter() *gin.Engine {
	r := gin.New()
	r.Use(utils.AuthMiddleware())
	return r
}

func createTestItem(t *testing.T, db *gorm.DB, shopID uuid.UUID, sku string, stock int, price int64) models.InventoryItem {
	t.Helper()

	item := models.InventoryItem{
		ShopID:        shopID,
		SKU:           sku,
		Name:          "Gold Ring " + sku,
		Category:      "Rings",
		Metal:         "gold",
		Purity:        "22K",
		CostPrice:     decimal.NewFromInt(price - 40),
		SellingPrice:  decimal.NewFromInt(price),
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "unexpected status, body: %s", w.Body.String())
}
