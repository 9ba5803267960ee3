// services/recurring.go
package services

import (
	"errors"
	"log"
	"time"

	"gempro-backend/models"
	"gempro-backend/utils"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// RecurringExpenseService materializes due recurring-expense
// templates into real Expense rows once per period.
type RecurringExpenseService struct {
	db *gorm.DB
}

func NewRecurringExpenseService(db *gorm.DB) *RecurringExpenseService {
	return &RecurringExpenseService{db: db}
}

func (s *RecurringExpenseService) StartScheduler() {
	c := cron.New()

	// Run every day shortly after midnight
	c.AddFunc("15 0 * * *", func() {
		s.Run(time.Now())
	})

	c.Start()
	log.Println("Recurring expense scheduler started")
}

// Run materializes every active template whose NextDueDate has
// arrived. Safe to call twice for the same day: the unique
// (recurring_expense_id, expense_date) index rejects the duplicate
// and the template is left untouched.
func (s *RecurringExpenseService) Run(now time.Time) {
	today := utils.BeginningOfDay(now)

	var templates []models.RecurringExpense
	if err := s.db.Where("is_active = ? AND next_due_date <= ?", true, today).
		Find(&templates).Error; err != nil {
		log.Printf("Failed to fetch due recurring expenses: %v", err)
		return
	}

	for i := range templates {
		// Catch up one period at a time in case the scheduler
		// missed days.
		template := &templates[i]
		for !utils.BeginningOfDay(template.NextDueDate).After(today) {
			next, err := s.materialize(template, today)
			if err != nil {
				log.Printf("Failed to materialize recurring expense %s: %v", template.ID, err)
				break
			}
			template.NextDueDate = next
		}
	}
}

func (s *RecurringExpenseService) materialize(template *models.RecurringExpense, today time.Time) (time.Time, error) {
	dueDate := utils.BeginningOfDay(template.NextDueDate)
	next, err := NextDueDate(dueDate, template.Frequency)
	if err != nil {
		return time.Time{}, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		expense := models.Expense{
			ShopID:             template.ShopID,
			Category:           template.Category,
			Description:        template.Description,
			Amount:             template.Amount,
			ExpenseDate:        dueDate,
			RecurringExpenseID: &template.ID,
		}
		if err := tx.Create(&expense).Error; err != nil {
			return err
		}

		return tx.Model(template).Updates(map[string]interface{}{
			"next_due_date": next,
			"last_run_date": today,
		}).Error
	})
	if err != nil {
		return time.Time{}, err
	}
	return next, nil
}

// NextDueDate advances a due date by one period.
func NextDueDate(from time.Time, frequency string) (time.Time, error) {
	switch frequency {
	case models.FrequencyDaily:
		return from.AddDate(0, 0, 1), nil
	case models.FrequencyWeekly:
		return from.AddDate(0, 0, 7), nil
	case models.FrequencyMonthly:
		return from.AddDate(0, 1, 0), nil
	}
	return time.Time{}, errors.New("invalid frequency: " + frequency)
}
