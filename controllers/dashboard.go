package controllers

import (
	"fmt"
	"net/http"
	"time"

	"gempro-backend/config"
	"gempro-backend/models"

	"github.com/gin-gonic/gin"
)

type DashboardOverview struct {
	TotalCustomers         int            `json:"totalCustomers"`
	TotalItems             int            `json:"totalItems"`
	MonthlyRevenue         float64        `json:"monthlyRevenue"`
	MonthlyExpenses        float64        `json:"monthlyExpenses"`
	OutstandingReceivables float64        `json:"outstandingReceivables"`
	PendingDeliveries      int            `json:"pendingDeliveries"`
	LowStockItems          []LowStockItem `json:"lowStockItems"`
	RecentSales            []RecentSale   `json:"recentSales"`
}

type LowStockItem struct {
	Name     string `json:"name"`
	Sku      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type RecentSale struct {
	SaleNumber   string  `json:"saleNumber"`
	CustomerName string  `json:"customerName"`
	Total        float64 `json:"total"`
	SoldAt       string  `json:"soldAt"` // e.g. "Today", "Yesterday"
}

func GetDashboardOverview(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	var totalCustomers int64
	config.DB.Model(&models.Customer{}).Where("shop_id = ?", shopID).Count(&totalCustomers)

	var totalItems int64
	config.DB.Model(&models.InventoryItem{}).Where("shop_id = ?", shopID).Count(&totalItems)

	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var monthlyRevenue float64
	config.DB.Model(&models.Sale{}).
		Where("shop_id = ? AND status = ? AND sale_date >= ?", shopID, models.SaleStatusCompleted, firstOfMonth).
		Select("COALESCE(SUM(total), 0)").Scan(&monthlyRevenue)

	var monthlyExpenses float64
	config.DB.Model(&models.Expense{}).
		Where("shop_id = ? AND expense_date >= ?", shopID, firstOfMonth).
		Select("COALESCE(SUM(amount), 0)").Scan(&monthlyExpenses)

	// Sum of positive customer balances only. Prepaid credit is a
	// liability, not a receivable.
	var receivables float64
	config.DB.Model(&models.Customer{}).
		Where("shop_id = ? AND current_balance > 0", shopID).
		Select("COALESCE(SUM(current_balance), 0)").Scan(&receivables)

	var pendingDeliveries int64
	config.DB.Model(&models.Delivery{}).
		Where("shop_id = ? AND status IN ?", shopID,
			[]string{models.DeliveryStatusPending, models.DeliveryStatusDispatched}).
		Count(&pendingDeliveries)

	var lowStock []LowStockItem
	config.DB.Model(&models.InventoryItem{}).
		Select("name, sku, stock_quantity as quantity").
		Where("shop_id = ? AND is_active = ? AND stock_quantity <= low_stock_threshold", shopID, true).
		Order("stock_quantity asc").
		Limit(7).
		Scan(&lowStock)

	var recentSales []RecentSale
	rows, err := config.DB.Raw(`
        SELECT s.sale_number, COALESCE(c.name, 'Walk-in'), s.total, s.sale_date
        FROM sales s
        LEFT JOIN customers c ON c.id = s.customer_id
        WHERE s.shop_id = ? AND s.status = ? AND s.deleted_at IS NULL
        ORDER BY s.sale_date DESC
        LIMIT 5
    `, shopID, models.SaleStatusCompleted).Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var saleNumber, customerName string
			var total float64
			var saleDate time.Time
			if err := rows.Scan(&saleNumber, &customerName, &total, &saleDate); err != nil {
				continue
			}
			daysAgo := int(time.Since(saleDate).Hours() / 24)
			var soldAt string
			switch daysAgo {
			case 0:
				soldAt = "Today"
			case 1:
				soldAt = "Yesterday"
			default:
				soldAt = fmt.Sprintf("%d days ago", daysAgo)
			}
			recentSales = append(recentSales, RecentSale{
				SaleNumber:   saleNumber,
				CustomerName: customerName,
				Total:        total,
				SoldAt:       soldAt,
			})
		}
	}

	overview := DashboardOverview{
		TotalCustomers:         int(totalCustomers),
		TotalItems:             int(totalItems),
		MonthlyRevenue:         monthlyRevenue,
		MonthlyExpenses:        monthlyExpenses,
		OutstandingReceivables: receivables,
		PendingDeliveries:      int(pendingDeliveries),
		LowStockItems:          lowStock,
		RecentSales:            recentSales,
	}

	c.JSON(http.StatusOK, overview)
}
