// controllers/sale.go
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
	"gorm.io/gorm/clause"
)

// SaleItemInput defines one checkout line
type SaleItemInput struct {
	ItemID   uuid.UUID `json:"itemId" binding:"required"`
	Quantity int       `json:"quantity" binding:"min=1"`
}

// CreateSaleInput defines the expected JSON structure for checkout
type CreateSaleInput struct {
	CustomerID    *uuid.UUID      `json:"customerId"` // nil for walk-in
	SaleDate      *time.Time      `json:"saleDate"`
	Items         []SaleItemInput `json:"items" binding:"required,min=1"`
	Discount      decimal.Decimal `json:"discount"`
	TaxRate       decimal.Decimal `json:"taxRate"`
	PaymentMethod string          `json:"paymentMethod" binding:"required,oneof=cash card balance credit"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	Notes         string          `json:"notes"`
}

// lockForUpdate adds FOR UPDATE on dialects that support it, so two
// concurrent checkouts cannot oversell the same item. SQLite (tests)
// serializes writers itself.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// CreateSale runs a point-of-sale checkout: snapshot priced line
// items, decrement stock, and settle payment. Credit sales put the
// unpaid remainder on the customer's ledger; balance sales consume
// prepaid store credit.
func CreateSale(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	var input CreateSaleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Discount.IsNegative() || input.TaxRate.IsNegative() || input.PaidAmount.IsNegative() {
		utils.RespondWithError(c, http.StatusBadRequest, "Amounts cannot be negative")
		return
	}

	needsCustomer := input.PaymentMethod == models.PaymentMethodBalance ||
		input.PaymentMethod == models.PaymentMethodCredit
	if needsCustomer && input.CustomerID == nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Customer is required for balance and credit sales")
		return
	}

	saleDate := time.Now()
	if input.SaleDate != nil {
		saleDate = *input.SaleDate
	}

	var sale models.Sale
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		// Locked so the balance sufficiency check below cannot race
		// a concurrent checkout on the same customer.
		var customer *models.Customer
		if input.CustomerID != nil {
			var found models.Customer
			if err := lockForUpdate(tx).Where("shop_id = ? AND id = ?", shopID, *input.CustomerID).
				First(&found).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errSaleCustomerNotFound
				}
				return err
			}
			customer = &found
		}

		// The same item may appear on several lines; stock must
		// cover the combined quantity.
		needed := make(map[uuid.UUID]int, len(input.Items))
		for _, line := range input.Items {
			needed[line.ItemID] += line.Quantity
		}

		// Price and reserve every line
		subtotal := decimal.Zero
		var saleItems []models.SaleItem
		for _, line := range input.Items {
			var item models.InventoryItem
			if err := lockForUpdate(tx).Where("shop_id = ? AND id = ?", shopID, line.ItemID).
				First(&item).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errSaleItemNotFound
				}
				return err
			}
			if !item.IsActive {
				return errSaleItemInactive
			}
			if item.StockQuantity < needed[item.ID] {
				return errSaleInsufficientStock
			}

			lineTotal := item.SellingPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			subtotal = subtotal.Add(lineTotal)

			saleItems = append(saleItems, models.SaleItem{
				ItemID:     item.ID,
				ItemName:   item.Name,
				SKU:        item.SKU,
				Quantity:   line.Quantity,
				UnitPrice:  item.SellingPrice,
				TotalPrice: lineTotal,
			})
		}

		total := subtotal.Sub(input.Discount).
			Add(subtotal.Mul(input.TaxRate).Div(decimal.NewFromInt(100))).
			Round(2)
		if total.IsNegative() {
			return errSaleNegativeTotal
		}

		paid := input.PaidAmount
		switch input.PaymentMethod {
		case models.PaymentMethodCash, models.PaymentMethodCard:
			if paid.IsZero() {
				paid = total
			}
		case models.PaymentMethodBalance:
			// Prepaid credit is a negative balance; the customer
			// must have at least the total on deposit.
			if customer.CurrentBalance.Neg().LessThan(total) {
				return errSaleInsufficientCredit
			}
			paid = total
		}

		sale = models.Sale{
			ShopID:          shopID,
			CreatedByUserID: userID,
			SaleNumber:      "SALE-" + saleDate.Format("20060102") + "-" + utils.GenerateRandomString(6),
			CustomerID:      input.CustomerID,
			SaleDate:        saleDate,
			Subtotal:        subtotal,
			Discount:        input.Discount,
			TaxRate:         input.TaxRate,
			Total:           total,
			PaymentMethod:   input.PaymentMethod,
			PaidAmount:      paid,
			Status:          models.SaleStatusCompleted,
			Notes:           input.Notes,
			Items:           saleItems,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		// Take stock and leave a movement per line
		for _, item := range sale.Items {
			if err := tx.Model(&models.InventoryItem{}).Where("id = ?", item.ItemID).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity)).Error; err != nil {
				return err
			}
			movement := models.StockMovement{
				ShopID:           shopID,
				ItemID:           item.ItemID,
				Quantity:         -item.Quantity,
				Reason:           models.MovementReasonSale,
				SourceID:         &sale.ID,
				RecordedByUserID: &userID,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
		}

		// Ledger entries for balance and credit settlements
		ledger := services.NewLedgerService(tx)
		switch input.PaymentMethod {
		case models.PaymentMethodBalance:
			if _, err := ledger.PostCustomerEntry(shopID, *input.CustomerID, services.LedgerEntryInput{
				Type:             models.EntryTypeDebit,
				Source:           models.EntrySourceSale,
				SourceID:         &sale.ID,
				Amount:           total,
				Notes:            "Paid from balance, sale " + sale.SaleNumber,
				RecordedByUserID: &userID,
			}); err != nil {
				return err
			}
		case models.PaymentMethodCredit:
			unpaid := total.Sub(paid)
			if unpaid.IsPositive() {
				if _, err := ledger.PostCustomerEntry(shopID, *input.CustomerID, services.LedgerEntryInput{
					Type:             models.EntryTypeDebit,
					Source:           models.EntrySourceSale,
					SourceID:         &sale.ID,
					Amount:           unpaid,
					Notes:            "Credit sale " + sale.SaleNumber,
					RecordedByUserID: &userID,
				}); err != nil {
					return err
				}
			}
		}

		// Customer purchase stats
		if customer != nil {
			if err := tx.Model(&models.Customer{}).Where("id = ?", customer.ID).
				Updates(map[string]interface{}{
					"total_purchases": gorm.Expr("total_purchases + ?", 1),
					"total_spent":     gorm.Expr("total_spent + ?", total),
					"last_purchase":   saleDate,
				}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		respondSaleError(c, err)
		return
	}

	services.PublishChange(shopID, "sales", models.EventActionInsert, sale.ID, sale)
	c.JSON(http.StatusCreated, sale)
}

var (
	errSaleCustomerNotFound   = errors.New("customer not found")
	errSaleItemNotFound       = errors.New("item not found")
	errSaleItemInactive       = errors.New("item is not active")
	errSaleInsufficientStock  = errors.New("insufficient stock")
	errSaleInsufficientCredit = errors.New("insufficient store credit")
	errSaleNegativeTotal      = errors.New("total cannot be negative")
	errSaleAlreadyVoided      = errors.New("sale already voided")
)

func respondSaleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errSaleCustomerNotFound), errors.Is(err, errSaleItemNotFound):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, errSaleItemInactive), errors.Is(err, errSaleNegativeTotal):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, errSaleInsufficientStock), errors.Is(err, errSaleInsufficientCredit),
		errors.Is(err, errSaleAlreadyVoided):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to process sale")
	}
}

var saleSortColumns = map[string]bool{
	"sale_date":  true,
	"total":      true,
	"created_at": true,
}

// GetSales lists the shop's sales with date range and status filters
func GetSales(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	page := utils.ParsePagination(c)
	order := utils.ParseSort(c, saleSortColumns, "sale_date desc")

	query := config.DB.Model(&models.Sale{}).Where("shop_id = ?", shopID)

	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("sale_date >= ?", t)
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("sale_date < ?", t.AddDate(0, 0, 1))
		}
	}
	if customerID := c.Query("customerId"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count sales")
		return
	}

	var sales []models.Sale
	if err := query.Preload("Items").Order(order).
		Offset(page.Offset()).Limit(page.Limit).
		Find(&sales).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve sales")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  sales,
		"total": total,
		"page":  page.Page,
		"limit": page.Limit,
	})
}

// GetSale retrieves a specific sale by ID
func GetSale(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	saleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var sale models.Sale
	if err := config.DB.Preload("Items").Preload("Delivery").
		Where("shop_id = ? AND id = ?", shopID, saleID).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Sale not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, sale)
}

// VoidSale reverses a completed sale: stock is restored and ledger
// entries get compensating credits. The sale row itself stays for
// history, marked voided.
func VoidSale(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}
	saleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var sale models.Sale
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").Where("shop_id = ? AND id = ?", shopID, saleID).
			First(&sale).Error; err != nil {
			return err
		}
		if sale.Status == models.SaleStatusVoided {
			return errSaleAlreadyVoided
		}

		if err := tx.Model(&sale).Update("status", models.SaleStatusVoided).Error; err != nil {
			return err
		}

		// Put stock back
		for _, item := range sale.Items {
			if err := tx.Model(&models.InventoryItem{}).Where("id = ?", item.ItemID).
				Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
				return err
			}
			movement := models.StockMovement{
				ShopID:           shopID,
				ItemID:           item.ItemID,
				Quantity:         item.Quantity,
				Reason:           models.MovementReasonVoid,
				SourceID:         &sale.ID,
				RecordedByUserID: &userID,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
		}

		// Reverse whatever hit the ledger at checkout
		if sale.CustomerID != nil {
			var reversal decimal.Decimal
			switch sale.PaymentMethod {
			case models.PaymentMethodBalance:
				reversal = sale.Total
			case models.PaymentMethodCredit:
				reversal = sale.Total.Sub(sale.PaidAmount)
			}
			if reversal.IsPositive() {
				ledger := services.NewLedgerService(tx)
				if _, err := ledger.PostCustomerEntry(shopID, *sale.CustomerID, services.LedgerEntryInput{
					Type:             models.EntryTypeCredit,
					Source:           models.EntrySourceVoid,
					SourceID:         &sale.ID,
					Amount:           reversal,
					Notes:            "Void of sale " + sale.SaleNumber,
					RecordedByUserID: &userID,
				}); err != nil {
					return err
				}
			}

			if err := tx.Model(&models.Customer{}).Where("id = ?", *sale.CustomerID).
				Updates(map[string]interface{}{
					"total_purchases": gorm.Expr("total_purchases - ?", 1),
					"total_spent":     gorm.Expr("total_spent - ?", sale.Total),
				}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Sale not found")
			return
		}
		respondSaleError(c, err)
		return
	}

	sale.Status = models.SaleStatusVoided
	services.PublishChange(shopID, "sales", models.EventActionUpdate, sale.ID, sale)
	c.JSON(http.StatusOK, sale)
}
