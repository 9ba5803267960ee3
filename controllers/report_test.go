package controllers

import (
	"testing"
	"time"

	"gempro-backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportRevenue_PeriodBounds(t *testing.T) {
	env := setupTestEnv(t)
	rc := &ReportController{}

	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	firstOfNextMonth := firstOfMonth.AddDate(0, 1, 0)

	// A sale half an hour before the month rolls over.
	sale := models.Sale{
		ShopID:          env.Shop.ID,
		CreatedByUserID: env.User.ID,
		SaleNumber:      "SALE-REPORT-001",
		SaleDate:        firstOfNextMonth.Add(-30 * time.Minute),
		Subtotal:        decimal.NewFromInt(400),
		Total:           decimal.NewFromInt(400),
		PaymentMethod:   models.PaymentMethodCash,
		PaidAmount:      decimal.NewFromInt(400),
		Status:          models.SaleStatusCompleted,
	}
	require.NoError(t, env.DB.Create(&sale).Error)

	revenue, err := rc.getRevenue(env.Shop.ID, firstOfMonth, firstOfNextMonth)
	require.NoError(t, err)
	assert.Equal(t, 400.0, revenue, "late sale on the last day counts")

	t.Run("previous month excludes it", func(t *testing.T) {
		revenue, err := rc.getRevenue(env.Shop.ID, firstOfMonth.AddDate(0, -1, 0), firstOfMonth)
		require.NoError(t, err)
		assert.Equal(t, 0.0, revenue)
	})

	t.Run("exact period start is included", func(t *testing.T) {
		onBoundary := models.Sale{
			ShopID:          env.Shop.ID,
			CreatedByUserID: env.User.ID,
			SaleNumber:      "SALE-REPORT-002",
			SaleDate:        firstOfMonth,
			Subtotal:        decimal.NewFromInt(100),
			Total:           decimal.NewFromInt(100),
			PaymentMethod:   models.PaymentMethodCash,
			PaidAmount:      decimal.NewFromInt(100),
			Status:          models.SaleStatusCompleted,
		}
		require.NoError(t, env.DB.Create(&onBoundary).Error)

		revenue, err := rc.getRevenue(env.Shop.ID, firstOfMonth, firstOfNextMonth)
		require.NoError(t, err)
		assert.Equal(t, 500.0, revenue)
	})
}

func TestQuarterBoundsAreHalfOpen(t *testing.T) {
	rc := &ReportController{}
	date := time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)

	start := rc.getQuarterStart(date)
	end := rc.getQuarterEnd(date)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), end)
}
