// controllers/report.go
package controllers

import (
	"net/http"
	"time"

	"gempro-backend/config"
	"gempro-backend/models"
	"gempro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportController handles all reporting functions
type ReportController struct{}

// AnalyticsSummary represents the analytics data
type AnalyticsSummary struct {
	CurrentMonthRevenue   float64           `json:"currentMonthRevenue"`
	MonthGrowth           float64           `json:"monthGrowth"`
	CurrentQuarterRevenue float64           `json:"currentQuarterRevenue"`
	QuarterGrowth         float64           `json:"quarterGrowth"`
	CurrentYearRevenue    float64           `json:"currentYearRevenue"`
	YearGrowth            float64           `json:"yearGrowth"`
	TopItems              []ItemSummary     `json:"topItems"`
	TopCustomers          []CustomerSummary `json:"topCustomers"`
	QuickStats            QuickStatistics   `json:"quickStats"`
}

type ItemSummary struct {
	Name    string  `json:"name"`
	Sku     string  `json:"sku"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type CustomerSummary struct {
	Name      string  `json:"name"`
	Purchases int     `json:"purchases"`
	Spent     float64 `json:"spent"`
}

type QuickStatistics struct {
	TotalCustomers  int     `json:"totalCustomers"`
	TotalSales      int     `json:"totalSales"`
	AvgMonthlySales float64 `json:"avgMonthlySales"`
	AvgSaleValue    float64 `json:"avgSaleValue"`
	TotalExpenses   float64 `json:"totalExpenses"`
}

// GetReportAnalytics returns the complete analytics summary
func (rc *ReportController) GetReportAnalytics(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	now := time.Now()
	currentYear, currentMonth, _ := now.Date()
	currentLocation := now.Location()

	// Periods are half-open [start, next start) so a sale late on the
	// last day still counts.
	firstOfMonth := time.Date(currentYear, currentMonth, 1, 0, 0, 0, 0, currentLocation)
	firstOfNextMonth := firstOfMonth.AddDate(0, 1, 0)

	currentMonthRevenue, err := rc.getRevenue(shopID, firstOfMonth, firstOfNextMonth)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get monthly revenue")
		return
	}

	lastMonthRevenue, err := rc.getRevenue(shopID,
		firstOfMonth.AddDate(0, -1, 0),
		firstOfMonth)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get last month revenue")
		return
	}

	currentQuarterRevenue, err := rc.getRevenue(shopID,
		rc.getQuarterStart(now),
		rc.getQuarterEnd(now))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get quarterly revenue")
		return
	}

	lastQuarterRevenue, err := rc.getRevenue(shopID,
		rc.getQuarterStart(now).AddDate(0, -3, 0),
		rc.getQuarterEnd(now).AddDate(0, -3, 0))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get last quarter revenue")
		return
	}

	currentYearRevenue, err := rc.getRevenue(shopID,
		time.Date(currentYear, 1, 1, 0, 0, 0, 0, currentLocation),
		time.Date(currentYear+1, 1, 1, 0, 0, 0, 0, currentLocation))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get yearly revenue")
		return
	}

	lastYearRevenue, err := rc.getRevenue(shopID,
		time.Date(currentYear-1, 1, 1, 0, 0, 0, 0, currentLocation),
		time.Date(currentYear, 1, 1, 0, 0, 0, 0, currentLocation))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get last year revenue")
		return
	}

	monthGrowth := rc.calculateGrowthPercentage(currentMonthRevenue, lastMonthRevenue)
	quarterGrowth := rc.calculateGrowthPercentage(currentQuarterRevenue, lastQuarterRevenue)
	yearGrowth := rc.calculateGrowthPercentage(currentYearRevenue, lastYearRevenue)

	topItems, err := rc.getTopItems(shopID, firstOfMonth, firstOfNextMonth, 5)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get top items")
		return
	}

	topCustomers, err := rc.getTopCustomers(shopID, firstOfMonth, firstOfNextMonth, 5)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get top customers")
		return
	}

	quickStats, err := rc.getQuickStatistics(shopID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get quick statistics")
		return
	}

	summary := AnalyticsSummary{
		CurrentMonthRevenue:   currentMonthRevenue,
		MonthGrowth:           monthGrowth,
		CurrentQuarterRevenue: currentQuarterRevenue,
		QuarterGrowth:         quarterGrowth,
		CurrentYearRevenue:    currentYearRevenue,
		YearGrowth:            yearGrowth,
		TopItems:              topItems,
		TopCustomers:          topCustomers,
		QuickStats:            quickStats,
	}

	c.JSON(http.StatusOK, summary)
}

// Helper functions for reports

func (rc *ReportController) getRevenue(shopID uuid.UUID, start, end time.Time) (float64, error) {
	var total float64
	err := config.DB.Model(&models.Sale{}).
		Where("shop_id = ? AND status = ? AND sale_date >= ? AND sale_date < ?",
			shopID, models.SaleStatusCompleted, start, end).
		Select("COALESCE(SUM(total), 0)").
		Scan(&total).Error
	return total, err
}

func (rc *ReportController) getQuarterStart(date time.Time) time.Time {
	quarter := (int(date.Month())-1)/3 + 1
	startMonth := time.Month((quarter-1)*3 + 1)
	return time.Date(date.Year(), startMonth, 1, 0, 0, 0, 0, date.Location())
}

// getQuarterEnd returns the first instant of the next quarter, for
// use as an exclusive bound.
func (rc *ReportController) getQuarterEnd(date time.Time) time.Time {
	return rc.getQuarterStart(date).AddDate(0, 3, 0)
}

func (rc *ReportController) calculateGrowthPercentage(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / previous) * 100
}

func (rc *ReportController) getTopItems(shopID uuid.UUID, start, end time.Time, limit int) ([]ItemSummary, error) {
	var items []ItemSummary

	err := config.DB.Table("sale_items").
		Select("sale_items.item_name as name, sale_items.sku, SUM(sale_items.quantity) as count, SUM(sale_items.total_price) as revenue").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.shop_id = ? AND sales.status = ? AND sales.sale_date >= ? AND sales.sale_date < ? AND sales.deleted_at IS NULL",
			shopID, models.SaleStatusCompleted, start, end).
		Group("sale_items.item_name, sale_items.sku").
		Order("revenue DESC").
		Limit(limit).
		Scan(&items).Error

	return items, err
}

func (rc *ReportController) getTopCustomers(shopID uuid.UUID, start, end time.Time, limit int) ([]CustomerSummary, error) {
	var customers []CustomerSummary

	err := config.DB.Table("sales").
		Select("customers.name, COUNT(sales.id) as purchases, SUM(sales.total) as spent").
		Joins("JOIN customers ON customers.id = sales.customer_id").
		Where("sales.shop_id = ? AND sales.status = ? AND sales.sale_date >= ? AND sales.sale_date < ? AND sales.deleted_at IS NULL AND customers.deleted_at IS NULL",
			shopID, models.SaleStatusCompleted, start, end).
		Group("customers.name").
		Order("spent DESC").
		Limit(limit).
		Scan(&customers).Error

	return customers, err
}

func (rc *ReportController) getQuickStatistics(shopID uuid.UUID) (QuickStatistics, error) {
	var stats QuickStatistics

	var totalCustomers int64
	if err := config.DB.Model(&models.Customer{}).
		Where("shop_id = ?", shopID).
		Count(&totalCustomers).Error; err != nil {
		return stats, err
	}
	stats.TotalCustomers = int(totalCustomers)

	var totalSales int64
	if err := config.DB.Model(&models.Sale{}).
		Where("shop_id = ? AND status = ?", shopID, models.SaleStatusCompleted).
		Count(&totalSales).Error; err != nil {
		return stats, err
	}
	stats.TotalSales = int(totalSales)

	var avgSales float64
	err := config.DB.Raw(`
		SELECT COALESCE(AVG(sales_count), 0) FROM (
			SELECT COUNT(*) as sales_count
			FROM sales
			WHERE shop_id = ? AND status = ? AND deleted_at IS NULL
			GROUP BY DATE_TRUNC('month', sale_date)
		) monthly_sales
	`, shopID, models.SaleStatusCompleted).Scan(&avgSales).Error
	if err != nil {
		return stats, err
	}
	stats.AvgMonthlySales = avgSales

	var totalRevenue float64
	if err := config.DB.Model(&models.Sale{}).
		Where("shop_id = ? AND status = ?", shopID, models.SaleStatusCompleted).
		Select("COALESCE(SUM(total), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return stats, err
	}
	if stats.TotalSales > 0 {
		stats.AvgSaleValue = totalRevenue / float64(stats.TotalSales)
	}

	var totalExpenses float64
	if err := config.DB.Model(&models.Expense{}).
		Where("shop_id = ?", shopID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totalExpenses).Error; err != nil {
		return stats, err
	}
	stats.TotalExpenses = totalExpenses

	return stats, nil
}
