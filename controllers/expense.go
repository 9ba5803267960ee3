// controllers/expense.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"gempro-backend/config"
	"gempro-backend/models"
	"gempro-backend/services"
	"gempro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateExpenseInput struct {
	Category    string          `json:"category"`
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	ExpenseDate *time.Time      `json:"expenseDate"`
}

type UpdateExpenseInput struct {
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	ExpenseDate *time.Time       `json:"expenseDate"`
}

type CreateRecurringExpenseInput struct {
	Category    string          `json:"category"`
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Frequency   string          `json:"frequency" binding:"required,oneof=daily weekly monthly"`
	NextDueDate *time.Time      `json:"nextDueDate"`
}

type UpdateRecurringExpenseInput struct {
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Frequency   *string          `json:"frequency" binding:"omitempty,oneof=daily weekly monthly"`
	NextDueDate *time.Time       `json:"nextDueDate"`
	IsActive    *bool            `json:"isActive"`
}

// CreateExpense records a one-off expense
func CreateExpense(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	var input CreateExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !input.Amount.IsPositive() {
		utils.RespondWithError(c, http.StatusBadRequest, "Amount must be positive")
		return
	}

	expenseDate := utils.BeginningOfDay(time.Now())
	if input.ExpenseDate != nil {
		expenseDate = utils.BeginningOfDay(*input.ExpenseDate)
	}
	category := input.Category
	if category == "" {
		category = "General"
	}

	expense := models.Expense{
		ShopID:          shopID,
		CreatedByUserID: &userID,
		Category:        category,
		Description:     input.Description,
		Amount:          input.Amount,
		ExpenseDate:     expenseDate,
	}

	if err := config.DB.Create(&expense).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create expense")
		return
	}

	services.PublishChange(shopID, "expenses", models.EventActionInsert, expense.ID, expense)
	c.JSON(http.StatusCreated, expense)
}

// GetExpenses lists expenses with date range and category filters
func GetExpenses(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	page := utils.ParsePagination(c)

	query := config.DB.Model(&models.Expense{}).Where("shop_id = ?", shopID)
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("expense_date >= ?", t)
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("expense_date < ?", t.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count expenses")
		return
	}

	var expenses []models.Expense
	if err := query.Order("expense_date desc").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&expenses).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve expenses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  expenses,
		"total": total,
		"page":  page.Page,
		"limit": page.Limit,
	})
}

// UpdateExpense edits a one-off expense. Scheduler-materialized rows
// are locked to their template.
func UpdateExpense(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	expenseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input UpdateExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var expense models.Expense
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, expenseID).
		First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Expense not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if expense.RecurringExpenseID != nil {
		utils.RespondWithError(c, http.StatusConflict, "Recurring expenses are edited through their template")
		return
	}

	if input.Category != nil {
		expense.Category = *input.Category
	}
	if input.Description != nil {
		expense.Description = *input.Description
	}
	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			utils.RespondWithError(c, http.StatusBadRequest, "Amount must be positive")
			return
		}
		expense.Amount = *input.Amount
	}
	if input.ExpenseDate != nil {
		expense.ExpenseDate = utils.BeginningOfDay(*input.ExpenseDate)
	}

	if err := config.DB.Save(&expense).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update expense")
		return
	}

	services.PublishChange(shopID, "expenses", models.EventActionUpdate, expense.ID, expense)
	c.JSON(http.StatusOK, expense)
}

// DeleteExpense soft deletes an expense
func DeleteExpense(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	expenseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("shop_id = ? AND id = ?", shopID, expenseID).
		Delete(&models.Expense{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete expense")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Expense not found")
		return
	}

	services.PublishChange(shopID, "expenses", models.EventActionDelete, expenseID, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

// CreateRecurringExpense creates a recurring expense template
func CreateRecurringExpense(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	var input CreateRecurringExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !input.Amount.IsPositive() {
		utils.RespondWithError(c, http.StatusBadRequest, "Amount must be positive")
		return
	}

	nextDue := utils.BeginningOfDay(time.Now())
	if input.NextDueDate != nil {
		nextDue = utils.BeginningOfDay(*input.NextDueDate)
	}
	category := input.Category
	if category == "" {
		category = "General"
	}

	recurring := models.RecurringExpense{
		ShopID:      shopID,
		Category:    category,
		Description: input.Description,
		Amount:      input.Amount,
		Frequency:   input.Frequency,
		NextDueDate: nextDue,
		IsActive:    true,
	}

	if err := config.DB.Create(&recurring).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create recurring expense")
		return
	}

	services.PublishChange(shopID, "recurring_expenses", models.EventActionInsert, recurring.ID, recurring)
	c.JSON(http.StatusCreated, recurring)
}

// GetRecurringExpenses lists the shop's recurring expense templates
func GetRecurringExpenses(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	var templates []models.RecurringExpense
	if err := config.DB.Where("shop_id = ?", shopID).
		Order("next_due_date asc").Find(&templates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve recurring expenses")
		return
	}

	c.JSON(http.StatusOK, templates)
}

// UpdateRecurringExpense edits a recurring expense template
func UpdateRecurringExpense(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input UpdateRecurringExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var recurring models.RecurringExpense
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, templateID).
		First(&recurring).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Recurring expense not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Category != nil {
		recurring.Category = *input.Category
	}
	if input.Description != nil {
		recurring.Description = *input.Description
	}
	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			utils.RespondWithError(c, http.StatusBadRequest, "Amount must be positive")
			return
		}
		recurring.Amount = *input.Amount
	}
	if input.Frequency != nil {
		recurring.Frequency = *input.Frequency
	}
	if input.NextDueDate != nil {
		recurring.NextDueDate = utils.BeginningOfDay(*input.NextDueDate)
	}
	if input.IsActive != nil {
		recurring.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&recurring).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update recurring expense")
		return
	}

	services.PublishChange(shopID, "recurring_expenses", models.EventActionUpdate, recurring.ID, recurring)
	c.JSON(http.StatusOK, recurring)
}

// DeleteRecurringExpense soft deletes a template; already
// materialized expenses stay.
func DeleteRecurringExpense(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("shop_id = ? AND id = ?", shopID, templateID).
		Delete(&models.RecurringExpense{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete recurring expense")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Recurring expense not found")
		return
	}

	services.PublishChange(shopID, "recurring_expenses", models.EventActionDelete, templateID, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Recurring expense deleted successfully"})
}
