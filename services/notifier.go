// services/notifier.go
package services

import (
	"log"
	"os"
	"time"

	"gempro-backend/models"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// Notification kinds
const (
	NotificationDeliveryDispatched = "delivery_dispatched"
	NotificationDeliveryDelivered  = "delivery_delivered"
	NotificationBalanceReminder    = "balance_reminder"
	NotificationSubscriptionExpiry = "subscription_expiry"
)

// NotificationService sends SMS through Twilio and logs every
// attempt. Sending is best-effort: a Twilio failure is recorded, not
// propagated to the caller's request.
type NotificationService struct {
	db     *gorm.DB
	client *twilio.RestClient
	from   string
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &NotificationService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		from: os.Getenv("TWILIO_PHONE_NUMBER"),
	}
}

// Enabled reports whether Twilio credentials are configured. Shops
// with SMSNotifications off are skipped by callers.
func (s *NotificationService) Enabled() bool {
	return s.from != "" && os.Getenv("TWILIO_ACCOUNT_SID") != ""
}

func (s *NotificationService) Send(shopID uuid.UUID, kind, to, body string) {
	if !s.Enabled() {
		return
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	status := "sent"
	errorMsg := ""

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("Failed to send SMS to %s: %v", to, err)
		status = "failed"
		errorMsg = err.Error()
	} else if resp.Sid != nil {
		log.Printf("SMS sent to %s, SID: %s", to, *resp.Sid)
	}

	entry := models.NotificationLog{
		ShopID:       shopID,
		Kind:         kind,
		Recipient:    to,
		Message:      body,
		Status:       status,
		ErrorMessage: errorMsg,
		SentAt:       time.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("Failed to log notification for shop %s: %v", shopID, err)
	}
}

var notifier *NotificationService

// InitNotifier wires the package-level notification service.
func InitNotifier(db *gorm.DB) *NotificationService {
	if notifier == nil {
		notifier = NewNotificationService(db)
	}
	return notifier
}

// Notify sends through the package-level service. Safe no-op before
// InitNotifier.
func Notify(shopID uuid.UUID, kind, to, body string) {
	if notifier == nil {
		return
	}
	notifier.Send(shopID, kind, to, body)
}
