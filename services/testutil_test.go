package services

import (
	"fmt"
	"testing"

	"gempro-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One named in-memory database per test. cache=shared keeps the
	// connection pool pointed at the same database.
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
		&models.CourierCompany{},
		&models.CourierTransaction{},
		&models.Expense{},
		&models.RecurringExpense{},
		&models.ChangeEvent{},
		&models.NotificationLog{},
	))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func createTestShop(t *testing.T, db *gorm.DB) models.Shop {
	t.Helper()

	shop := models.Shop{
		ID:   uuid.New(),
		Name: "Test Jewelers",
	}
	require.NoError(t, db.Create(&shop).Error)
	return shop
}

func createTestCustomer(t *testing.T, db *gorm.DB, shopID uuid.UUID, name, phone string) models.Customer {
	t.Helper()

	customer := models.Customer{
		ShopID:          shopID,
		CreatedByUserID: uuid.New(),
		Name:            name,
		Phone:           phone,
		IsActive:        true,
	}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}
