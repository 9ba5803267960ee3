// controllers/delivery.go
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
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateDeliveryInput struct {
	SaleID           uuid.UUID       `json:"saleId" binding:"required"`
	CourierCompanyID uuid.UUID       `json:"courierCompanyId" binding:"required"`
	RecipientName    string          `json:"recipientName" binding:"required"`
	RecipientPhone   string          `json:"recipientPhone" binding:"required"`
	Address          string          `json:"address" binding:"required"`
	CODAmount        decimal.Decimal `json:"codAmount"`
	Fee              decimal.Decimal `json:"fee"`
	TrackingCode     string          `json:"trackingCode"`
	Notes            string          `json:"notes"`
}

type UpdateDeliveryStatusInput struct {
	Status string `json:"status" binding:"required,oneof=dispatched delivered returned cancelled"`
}

// Allowed status moves. Delivered, returned and cancelled are
// terminal.
var deliveryTransitions = map[string][]string{
	models.DeliveryStatusPending:    {models.DeliveryStatusDispatched, models.DeliveryStatusCancelled},
	models.DeliveryStatusDispatched: {models.DeliveryStatusDelivered, models.DeliveryStatusReturned},
}

func deliveryCanTransition(from, to string) bool {
	for _, allowed := range deliveryTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CreateDelivery attaches a pending delivery to a completed sale
func CreateDelivery(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	var input CreateDeliveryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.RecipientPhone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid recipient phone format")
		return
	}
	if input.CODAmount.IsNegative() || input.Fee.IsNegative() {
		utils.RespondWithError(c, http.StatusBadRequest, "Amounts cannot be negative")
		return
	}

	var sale models.Sale
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, input.SaleID).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Sale not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if sale.Status == models.SaleStatusVoided {
		utils.RespondWithError(c, http.StatusConflict, "Cannot deliver a voided sale")
		return
	}

	var existing models.Delivery
	if err := config.DB.Where("sale_id = ?", sale.ID).First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Sale already has a delivery")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	var courier models.CourierCompany
	if err := config.DB.Where("shop_id = ? AND id = ? AND is_active = ?", shopID, input.CourierCompanyID, true).
		First(&courier).Error; err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Courier not found")
		return
	}

	delivery := models.Delivery{
		ShopID:           shopID,
		SaleID:           sale.ID,
		CourierCompanyID: courier.ID,
		TrackingCode:     input.TrackingCode,
		RecipientName:    input.RecipientName,
		RecipientPhone:   input.RecipientPhone,
		Address:          input.Address,
		CODAmount:        input.CODAmount,
		Fee:              input.Fee,
		Status:           models.DeliveryStatusPending,
		Notes:            input.Notes,
	}

	if err := config.DB.Create(&delivery).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create delivery")
		return
	}

	services.PublishChange(shopID, "deliveries", models.EventActionInsert, delivery.ID, delivery)
	c.JSON(http.StatusCreated, delivery)
}

// GetDeliveries lists deliveries with status and courier filters
func GetDeliveries(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	page := utils.ParsePagination(c)

	query := config.DB.Model(&models.Delivery{}).Where("shop_id = ?", shopID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if courierID := c.Query("courierId"); courierID != "" {
		query = query.Where("courier_company_id = ?", courierID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count deliveries")
		return
	}

	var deliveries []models.Delivery
	if err := query.Order("created_at desc").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&deliveries).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve deliveries")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  deliveries,
		"total": total,
		"page":  page.Page,
		"limit": page.Limit,
	})
}

// GetDelivery retrieves a specific delivery by ID
func GetDelivery(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	deliveryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var delivery models.Delivery
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, deliveryID).
		First(&delivery).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Delivery not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, delivery)
}

// UpdateDeliveryStatus advances the delivery through its lifecycle.
// Delivering a COD parcel debits the courier's ledger for the amount
// they collected on the shop's behalf.
func UpdateDeliveryStatus(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}
	deliveryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input UpdateDeliveryStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var delivery models.Delivery
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shop_id = ? AND id = ?", shopID, deliveryID).
			First(&delivery).Error; err != nil {
			return err
		}

		if !deliveryCanTransition(delivery.Status, input.Status) {
			return errDeliveryBadTransition
		}

		now := time.Now()
		updates := map[string]interface{}{"status": input.Status}
		switch input.Status {
		case models.DeliveryStatusDispatched:
			updates["dispatched_at"] = now
		case models.DeliveryStatusDelivered:
			updates["delivered_at"] = now
		}
		if err := tx.Model(&delivery).Updates(updates).Error; err != nil {
			return err
		}

		// A returned parcel puts the sold goods back on the shelf.
		if input.Status == models.DeliveryStatusReturned {
			var saleItems []models.SaleItem
			if err := tx.Where("sale_id = ?", delivery.SaleID).Find(&saleItems).Error; err != nil {
				return err
			}
			for _, item := range saleItems {
				if err := tx.Model(&models.InventoryItem{}).Where("id = ?", item.ItemID).
					Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
					return err
				}
				movement := models.StockMovement{
					ShopID:           shopID,
					ItemID:           item.ItemID,
					Quantity:         item.Quantity,
					Reason:           models.MovementReasonReturn,
					SourceID:         &delivery.ID,
					RecordedByUserID: &userID,
				}
				if err := tx.Create(&movement).Error; err != nil {
					return err
				}
			}
		}

		// COD collected by the courier becomes a receivable on
		// their ledger.
		if input.Status == models.DeliveryStatusDelivered && delivery.CODAmount.IsPositive() {
			ledger := services.NewLedgerService(tx)
			if _, err := ledger.PostCourierEntry(shopID, delivery.CourierCompanyID, services.LedgerEntryInput{
				Type:             models.EntryTypeDebit,
				Source:           models.EntrySourceDelivery,
				SourceID:         &delivery.ID,
				Amount:           delivery.CODAmount,
				Notes:            "COD collected, delivery " + delivery.ID.String(),
				RecordedByUserID: &userID,
			}); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Delivery not found")
		} else if errors.Is(err, errDeliveryBadTransition) {
			utils.RespondWithError(c, http.StatusConflict, "Invalid status transition")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update delivery")
		}
		return
	}

	delivery.Status = input.Status

	// Let the recipient know, best effort
	var shop models.Shop
	if err := config.DB.First(&shop, "id = ?", shopID).Error; err == nil && shop.SMSNotifications {
		switch input.Status {
		case models.DeliveryStatusDispatched:
			services.Notify(shopID, services.NotificationDeliveryDispatched, delivery.RecipientPhone,
				"Your order from "+shop.Name+" is on its way.")
		case models.DeliveryStatusDelivered:
			services.Notify(shopID, services.NotificationDeliveryDelivered, delivery.RecipientPhone,
				"Your order from "+shop.Name+" was delivered. Thank you!")
		}
	}

	services.PublishChange(shopID, "deliveries", models.EventActionUpdate, delivery.ID, delivery)
	c.JSON(http.StatusOK, delivery)
}

var errDeliveryBadTransition = errors.New("invalid delivery status transition")
