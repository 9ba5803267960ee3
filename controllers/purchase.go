// controllers/purchase.go
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

type PurchaseItemInput struct {
	ItemID   uuid.UUID       `json:"itemId" binding:"required"`
	Quantity int             `json:"quantity" binding:"min=1"`
	UnitCost decimal.Decimal `json:"unitCost" binding:"required"`
}

type CreatePurchaseInput struct {
	SupplierID uuid.UUID           `json:"supplierId" binding:"required"`
	OrderDate  *time.Time          `json:"orderDate"`
	Items      []PurchaseItemInput `json:"items" binding:"required,min=1"`
	Notes      string              `json:"notes"`
}

var (
	errPurchaseNotOrdered = errors.New("purchase is not in ordered state")
)

// CreatePurchase records a purchase order against a supplier. Stock
// moves only when the order is received.
func CreatePurchase(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	var input CreatePurchaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var supplier models.Supplier
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, input.SupplierID).
		First(&supplier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Supplier not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	orderDate := time.Now()
	if input.OrderDate != nil {
		orderDate = *input.OrderDate
	}

	total := decimal.Zero
	var purchaseItems []models.PurchaseItem
	for _, line := range input.Items {
		if line.UnitCost.IsNegative() {
			utils.RespondWithError(c, http.StatusBadRequest, "Unit cost cannot be negative")
			return
		}

		var item models.InventoryItem
		if err := config.DB.Where("shop_id = ? AND id = ?", shopID, line.ItemID).
			First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusBadRequest, "Item not found: "+line.ItemID.String())
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}

		lineTotal := line.UnitCost.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotal)

		purchaseItems = append(purchaseItems, models.PurchaseItem{
			ItemID:    item.ID,
			ItemName:  item.Name,
			SKU:       item.SKU,
			Quantity:  line.Quantity,
			UnitCost:  line.UnitCost,
			TotalCost: lineTotal,
		})
	}

	purchase := models.Purchase{
		ShopID:          shopID,
		SupplierID:      input.SupplierID,
		CreatedByUserID: userID,
		PurchaseNumber:  "PO-" + orderDate.Format("20060102") + "-" + utils.GenerateRandomString(6),
		OrderDate:       orderDate,
		Status:          models.PurchaseStatusOrdered,
		Total:           total,
		Notes:           input.Notes,
		Items:           purchaseItems,
	}

	if err := config.DB.Create(&purchase).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create purchase")
		return
	}

	services.PublishChange(shopID, "purchases", models.EventActionInsert, purchase.ID, purchase)
	c.JSON(http.StatusCreated, purchase)
}

// GetPurchases lists the shop's purchase orders
func GetPurchases(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	page := utils.ParsePagination(c)

	query := config.DB.Model(&models.Purchase{}).Where("shop_id = ?", shopID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if supplierID := c.Query("supplierId"); supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count purchases")
		return
	}

	var purchases []models.Purchase
	if err := query.Preload("Items").Order("order_date desc").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&purchases).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve purchases")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  purchases,
		"total": total,
		"page":  page.Page,
		"limit": page.Limit,
	})
}

// GetPurchase retrieves a specific purchase order by ID
func GetPurchase(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	purchaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var purchase models.Purchase
	if err := config.DB.Preload("Items").
		Where("shop_id = ? AND id = ?", shopID, purchaseID).
		First(&purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Purchase not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, purchase)
}

// ReceivePurchase marks an ordered purchase received and books the
// stock in, one movement per line, all in one transaction.
func ReceivePurchase(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}
	purchaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var purchase models.Purchase
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").Where("shop_id = ? AND id = ?", shopID, purchaseID).
			First(&purchase).Error; err != nil {
			return err
		}
		if purchase.Status != models.PurchaseStatusOrdered {
			return errPurchaseNotOrdered
		}

		now := time.Now()
		if err := tx.Model(&purchase).Updates(map[string]interface{}{
			"status":      models.PurchaseStatusReceived,
			"received_at": now,
		}).Error; err != nil {
			return err
		}

		for _, item := range purchase.Items {
			if err := tx.Model(&models.InventoryItem{}).Where("id = ?", item.ItemID).
				Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
				return err
			}
			movement := models.StockMovement{
				ShopID:           shopID,
				ItemID:           item.ItemID,
				Quantity:         item.Quantity,
				Reason:           models.MovementReasonPurchase,
				SourceID:         &purchase.ID,
				RecordedByUserID: &userID,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Purchase not found")
		} else if errors.Is(err, errPurchaseNotOrdered) {
			utils.RespondWithError(c, http.StatusConflict, err.Error())
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to receive purchase")
		}
		return
	}

	services.PublishChange(shopID, "purchases", models.EventActionUpdate, purchase.ID, purchase)
	c.JSON(http.StatusOK, purchase)
}

// CancelPurchase cancels an ordered purchase before it is received
func CancelPurchase(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	purchaseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var purchase models.Purchase
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, purchaseID).
		First(&purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Purchase not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if purchase.Status != models.PurchaseStatusOrdered {
		utils.RespondWithError(c, http.StatusConflict, "Only ordered purchases can be cancelled")
		return
	}

	if err := config.DB.Model(&purchase).Update("status", models.PurchaseStatusCancelled).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel purchase")
		return
	}

	services.PublishChange(shopID, "purchases", models.EventActionUpdate, purchase.ID, purchase)
	c.JSON(http.StatusOK, purchase)
}
