// controllers/inventory.go
package controllers

import (
	"errors"
	"fmt"
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

type CreateItemInput struct {
	SKU               string          `json:"sku" binding:"required"`
	Name              string          `json:"name" binding:"required"`
	Category          string          `json:"category"`
	Metal             string          `json:"metal"`
	Purity            string          `json:"purity"`
	WeightGrams       decimal.Decimal `json:"weightGrams"`
	CostPrice         decimal.Decimal `json:"costPrice" binding:"required"`
	SellingPrice      decimal.Decimal `json:"sellingPrice" binding:"required"`
	StockQuantity     int             `json:"stockQuantity" binding:"min=0"`
	LowStockThreshold *int            `json:"lowStockThreshold"`
}

type UpdateItemInput struct {
	Name              *string          `json:"name"`
	Category          *string          `json:"category"`
	Metal             *string          `json:"metal"`
	Purity            *string          `json:"purity"`
	WeightGrams       *decimal.Decimal `json:"weightGrams"`
	CostPrice         *decimal.Decimal `json:"costPrice"`
	SellingPrice      *decimal.Decimal `json:"sellingPrice"`
	LowStockThreshold *int             `json:"lowStockThreshold"`
	IsActive          *bool            `json:"isActive"`
}

type AdjustStockInput struct {
	Quantity int    `json:"quantity" binding:"required"` // signed delta
	Notes    string `json:"notes"`
}

var itemSortColumns = map[string]bool{
	"name":           true,
	"sku":            true,
	"created_at":     true,
	"selling_price":  true,
	"stock_quantity": true,
}

// CreateItem adds an inventory item to the shop's catalog
func CreateItem(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	var input CreateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidateSKU(input.SKU) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid SKU format")
		return
	}

	if plan, err := planForShop(shopID); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	} else if plan != nil {
		var count int64
		config.DB.Model(&models.InventoryItem{}).
			Where("shop_id = ?", shopID).Count(&count)
		if count >= int64(plan.MaxItems) {
			utils.RespondWithError(c, http.StatusConflict,
				"Item limit reached for the current plan")
			return
		}
	}

	var existing models.InventoryItem
	if err := config.DB.Where("shop_id = ? AND sku = ?", shopID, input.SKU).
		First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "An item with this SKU already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	item := models.InventoryItem{
		ShopID:        shopID,
		SKU:           input.SKU,
		Name:          input.Name,
		Category:      input.Category,
		Metal:         input.Metal,
		Purity:        input.Purity,
		WeightGrams:   input.WeightGrams,
		CostPrice:     input.CostPrice,
		SellingPrice:  input.SellingPrice,
		StockQuantity: input.StockQuantity,
		IsActive:      true,
	}
	if item.Category == "" {
		item.Category = "General"
	}
	if input.LowStockThreshold != nil {
		item.LowStockThreshold = *input.LowStockThreshold
	} else {
		item.LowStockThreshold = 5
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&item).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create item")
		return
	}

	// Opening stock is a movement too, so the history adds up
	if input.StockQuantity > 0 {
		movement := models.StockMovement{
			ShopID:           shopID,
			ItemID:           item.ID,
			Quantity:         input.StockQuantity,
			Reason:           models.MovementReasonAdjustment,
			Notes:            "Opening stock",
			RecordedByUserID: &userID,
		}
		if err := tx.Create(&movement).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record stock movement")
			return
		}
	}

	tx.Commit()

	services.PublishChange(shopID, "inventory_items", models.EventActionInsert, item.ID, item)
	c.JSON(http.StatusCreated, item)
}

// GetItems lists inventory with category/metal/search/low-stock filters
func GetItems(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	page := utils.ParsePagination(c)
	order := utils.ParseSort(c, itemSortColumns, "created_at desc")

	query := config.DB.Model(&models.InventoryItem{}).Where("shop_id = ?", shopID)

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR sku LIKE ?", like, like)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if metal := c.Query("metal"); metal != "" {
		query = query.Where("metal = ?", metal)
	}
	if c.Query("lowStock") == "true" {
		query = query.Where("stock_quantity <= low_stock_threshold")
	}
	if c.Query("isActive") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count items")
		return
	}

	var items []models.InventoryItem
	if err := query.Order(order).Offset(page.Offset()).Limit(page.Limit).
		Find(&items).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve items")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  items,
		"total": total,
		"page":  page.Page,
		"limit": page.Limit,
	})
}

// GetItem retrieves one item; when the item has a photo, a presigned
// download URL is included
func GetItem(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var item models.InventoryItem
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, itemID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Item not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	photoURL := ""
	if item.PhotoKey != "" && services.Storage() != nil {
		if url, err := services.Storage().PresignGet(c.Request.Context(), item.PhotoKey); err == nil {
			photoURL = url
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"item":     item,
		"photoUrl": photoURL,
	})
}

// UpdateItem updates catalog fields. Stock is never edited here; use
// the adjust-stock endpoint so every change leaves a movement.
func UpdateItem(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input UpdateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var item models.InventoryItem
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, itemID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Item not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.Category != nil {
		item.Category = *input.Category
	}
	if input.Metal != nil {
		item.Metal = *input.Metal
	}
	if input.Purity != nil {
		item.Purity = *input.Purity
	}
	if input.WeightGrams != nil {
		item.WeightGrams = *input.WeightGrams
	}
	if input.CostPrice != nil {
		item.CostPrice = *input.CostPrice
	}
	if input.SellingPrice != nil {
		item.SellingPrice = *input.SellingPrice
	}
	if input.LowStockThreshold != nil {
		item.LowStockThreshold = *input.LowStockThreshold
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&item).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update item")
		return
	}

	services.PublishChange(shopID, "inventory_items", models.EventActionUpdate, item.ID, item)
	c.JSON(http.StatusOK, item)
}

// DeleteItem soft deletes an inventory item
func DeleteItem(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("shop_id = ? AND id = ?", shopID, itemID).
		Delete(&models.InventoryItem{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete item")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Item not found")
		return
	}

	services.PublishChange(shopID, "inventory_items", models.EventActionDelete, itemID, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

// AdjustStock applies a signed quantity delta and records the movement
func AdjustStock(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input AdjustStockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var item models.InventoryItem
	if err := tx.Where("shop_id = ? AND id = ?", shopID, itemID).
		First(&item).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Item not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	newQuantity := item.StockQuantity + input.Quantity
	if newQuantity < 0 {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusConflict, "Stock cannot go negative")
		return
	}

	if err := tx.Model(&item).Update("stock_quantity", newQuantity).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update stock")
		return
	}

	movement := models.StockMovement{
		ShopID:           shopID,
		ItemID:           item.ID,
		Quantity:         input.Quantity,
		Reason:           models.MovementReasonAdjustment,
		Notes:            input.Notes,
		RecordedByUserID: &userID,
	}
	if err := tx.Create(&movement).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record stock movement")
		return
	}

	tx.Commit()

	item.StockQuantity = newQuantity
	services.PublishChange(shopID, "inventory_items", models.EventActionUpdate, item.ID, item)
	c.JSON(http.StatusOK, item)
}

// GetItemMovements lists an item's stock movement history newest first
func GetItemMovements(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var item models.InventoryItem
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, itemID).
		First(&item).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Item not found")
		return
	}

	page := utils.ParsePagination(c)

	var movements []models.StockMovement
	if err := config.DB.Where("item_id = ?", itemID).
		Order("created_at desc").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&movements).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve movements")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  movements,
		"page":  page.Page,
		"limit": page.Limit,
	})
}

// UploadItemPhoto stores an item photo in object storage
func UploadItemPhoto(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	storage := services.Storage()
	if storage == nil {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Object storage is not configured")
		return
	}

	var item models.InventoryItem
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, itemID).
		First(&item).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Item not found")
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "photo file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to read upload")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("shops/%s/items/%s/%d", shopID, item.ID, time.Now().Unix())
	if err := storage.Upload(c.Request.Context(), key, contentType, file); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to upload photo")
		return
	}

	oldKey := item.PhotoKey
	if err := config.DB.Model(&item).Update("photo_key", key).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save photo reference")
		return
	}
	if oldKey != "" {
		// Best effort cleanup of the replaced photo
		_ = storage.Delete(c.Request.Context(), oldKey)
	}

	item.PhotoKey = key
	services.PublishChange(shopID, "inventory_items", models.EventActionUpdate, item.ID, item)
	c.JSON(http.StatusOK, gin.H{"photoKey": key})
}
