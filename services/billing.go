// services/billing.go
package services

import (
	"errors"
	"log"
	"os"
	"time"

	"gempro-backend/models"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"gorm.io/gorm"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrCheckoutNotPaid      = errors.New("checkout session not paid")
	ErrCheckoutMismatch     = errors.New("checkout session does not match subscription")
)

// TrialDays is the free period granted to a new shop.
const TrialDays = 14

// BillingService manages shop subscriptions. Payment collection is
// delegated to Stripe checkout sessions; this service only creates
// sessions and reads back their payment status.
type BillingService struct {
	db *gorm.DB
}

func NewBillingService(db *gorm.DB) *BillingService {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	return &BillingService{db: db}
}

func (s *BillingService) StartScheduler() {
	c := cron.New()

	// Expire lapsed subscriptions every day at 1 AM
	c.AddFunc("0 1 * * *", func() {
		s.ExpireLapsed(time.Now())
	})

	c.Start()
	log.Println("Billing scheduler started")
}

// StartCheckout creates a Stripe checkout session for one month of
// the given plan and parks it on the shop's subscription until
// confirmation.
func (s *BillingService) StartCheckout(shopID uuid.UUID, plan models.Plan, successURL, cancelURL string) (string, string, error) {
	var sub models.Subscription
	if err := s.db.Where("shop_id = ?", shopID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrSubscriptionNotFound
		}
		return "", "", err
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("usd"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(plan.Name + " (1 month)"),
					},
					UnitAmount: stripe.Int64(plan.MonthlyPrice.Mul(centsPerUnit).IntPart()),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		ClientReferenceID: stripe.String(shopID.String()),
		Metadata: map[string]string{
			"shop_id":   shopID.String(),
			"plan_code": plan.Code,
		},
	}

	sess, err := session.New(params)
	if err != nil {
		return "", "", err
	}

	if err := s.db.Model(&sub).Updates(map[string]interface{}{
		"checkout_session_id": sess.ID,
		"pending_plan_id":     plan.ID,
	}).Error; err != nil {
		return "", "", err
	}

	return sess.ID, sess.URL, nil
}

// ConfirmCheckout reads back a checkout session and, when paid,
// activates the pending plan and extends the period by one month.
func (s *BillingService) ConfirmCheckout(shopID uuid.UUID, sessionID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.Preload("Plan").Where("shop_id = ?", shopID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	if sub.CheckoutSessionID == "" || sub.CheckoutSessionID != sessionID {
		return nil, ErrCheckoutMismatch
	}

	sess, err := session.Get(sessionID, nil)
	if err != nil {
		return nil, err
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, ErrCheckoutNotPaid
	}

	return s.activate(&sub, time.Now())
}

// activate applies a confirmed payment: the pending plan becomes
// current and the period is extended from whichever is later, now or
// the existing period end.
func (s *BillingService) activate(sub *models.Subscription, now time.Time) (*models.Subscription, error) {
	planID := sub.PlanID
	if sub.PendingPlanID != nil {
		planID = *sub.PendingPlanID
	}

	base := now
	if sub.CurrentPeriodEnd.After(now) {
		base = sub.CurrentPeriodEnd
	}

	updates := map[string]interface{}{
		"plan_id":             planID,
		"status":              models.SubscriptionStatusActive,
		"current_period_end":  base.AddDate(0, 1, 0),
		"checkout_session_id": "",
		"pending_plan_id":     nil,
	}
	if err := s.db.Model(sub).Updates(updates).Error; err != nil {
		return nil, err
	}

	var fresh models.Subscription
	if err := s.db.Preload("Plan").First(&fresh, "id = ?", sub.ID).Error; err != nil {
		return nil, err
	}
	return &fresh, nil
}

// ExpireLapsed flips active and trialing subscriptions whose period
// has ended to past_due. The shop keeps read access in that state.
func (s *BillingService) ExpireLapsed(now time.Time) {
	result := s.db.Model(&models.Subscription{}).
		Where("status IN ? AND current_period_end < ?",
			[]string{models.SubscriptionStatusActive, models.SubscriptionStatusTrialing}, now).
		Update("status", models.SubscriptionStatusPastDue)
	if result.Error != nil {
		log.Printf("Failed to expire lapsed subscriptions: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("Marked %d subscriptions past_due", result.RowsAffected)
	}
}

var centsPerUnit = decimal.NewFromInt(100)
