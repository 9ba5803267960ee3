package services

import (
	"testing"
	"time"

	"gempro-backend/models"
	"gempro-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTemplate(t *testing.T, db *gorm.DB, shopID uuid.UUID, frequency string, due time.Time) models.RecurringExpense {
	t.Helper()

	template := models.RecurringExpense{
		ShopID:      shopID,
		Category:    "Rent",
		Description: "Showroom rent",
		Amount:      decimal.NewFromInt(1200),
		Frequency:   frequency,
		NextDueDate: due,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&template).Error)
	return template
}

func TestRecurringExpenseService_Run(t *testing.T) {
	db := newTestDB(t)
	shop := createTestShop(t, db)
	svc := NewRecurringExpenseService(db)

	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	today := utils.BeginningOfDay(now)

	t.Run("materializes due templates and advances the due date", func(t *testing.T) {
		template := createTemplate(t, db, shop.ID, models.FrequencyMonthly, today)

		svc.Run(now)

		var expenses []models.Expense
		require.NoError(t, db.Where("recurring_expense_id = ?", template.ID).Find(&expenses).Error)
		require.Len(t, expenses, 1)
		assert.True(t, expenses[0].Amount.Equal(template.Amount))
		assert.Equal(t, "Rent", expenses[0].Category)
		assert.Nil(t, expenses[0].CreatedByUserID)
		assert.True(t, expenses[0].ExpenseDate.Equal(today))

		var stored models.RecurringExpense
		require.NoError(t, db.First(&stored, "id = ?", template.ID).Error)
		assert.True(t, utils.BeginningOfDay(stored.NextDueDate).Equal(today.AddDate(0, 1, 0)))
		require.NotNil(t, stored.LastRunDate)
	})

	t.Run("running twice does not duplicate", func(t *testing.T) {
		template := createTemplate(t, db, shop.ID, models.FrequencyWeekly, today)

		svc.Run(now)
		svc.Run(now)

		var count int64
		require.NoError(t, db.Model(&models.Expense{}).
			Where("recurring_expense_id = ?", template.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("catches up missed periods one expense per period", func(t *testing.T) {
		// Due three days ago, daily: expect four rows including today.
		template := createTemplate(t, db, shop.ID, models.FrequencyDaily, today.AddDate(0, 0, -3))

		svc.Run(now)

		var expenses []models.Expense
		require.NoError(t, db.Where("recurring_expense_id = ?", template.ID).
			Order("expense_date asc").Find(&expenses).Error)
		require.Len(t, expenses, 4)
		assert.True(t, expenses[0].ExpenseDate.Equal(today.AddDate(0, 0, -3)))
		assert.True(t, expenses[3].ExpenseDate.Equal(today))

		var stored models.RecurringExpense
		require.NoError(t, db.First(&stored, "id = ?", template.ID).Error)
		assert.True(t, utils.BeginningOfDay(stored.NextDueDate).After(today))
	})

	t.Run("skips inactive and future templates", func(t *testing.T) {
		inactive := createTemplate(t, db, shop.ID, models.FrequencyMonthly, today)
		require.NoError(t, db.Model(&inactive).Update("is_active", false).Error)
		future := createTemplate(t, db, shop.ID, models.FrequencyMonthly, today.AddDate(0, 0, 5))

		svc.Run(now)

		var count int64
		require.NoError(t, db.Model(&models.Expense{}).
			Where("recurring_expense_id IN ?", []uuid.UUID{inactive.ID, future.ID}).
			Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})
}

func TestNextDueDate(t *testing.T) {
	from := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	next, err := NextDueDate(from, models.FrequencyDaily)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), next)

	next, err = NextDueDate(from, models.FrequencyWeekly)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC), next)

	next, err = NextDueDate(from, models.FrequencyMonthly)
	require.NoError(t, err)
	// Jan 31 + 1 month normalizes past February.
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), next)

	_, err = NextDueDate(from, "yearly")
	assert.Error(t, err)
}
