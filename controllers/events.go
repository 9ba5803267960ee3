// controllers/events.go
package controllers

import (
	"io"
	"net/http"
	"time"

	"gempro-backend/config"
	"gempro-backend/models"
	"gempro-backend/services"
	"gempro-backend/utils"

	"github.com/gin-gonic/gin"
)

const streamHeartbeat = 25 * time.Second

// StreamEvents streams change events for the caller's shop over SSE.
// A periodic comment keeps the connection alive through proxies.
func StreamEvents(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	hub := services.Events()
	if hub == nil {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Event stream not available")
		return
	}

	events, cancel := hub.Subscribe(shopID)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, open := <-events:
			if !open {
				return false
			}
			c.SSEvent("change", event)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// GetChangeLog pages through the persisted change event audit trail
func GetChangeLog(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	page := utils.ParsePagination(c)

	query := config.DB.Model(&models.ChangeEvent{}).Where("shop_id = ?", shopID)
	if entity := c.Query("entity"); entity != "" {
		query = query.Where("entity = ?", entity)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count events")
		return
	}

	var events []models.ChangeEvent
	if err := query.Order("created_at desc").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&events).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  events,
		"total": total,
		"page":  page.Page,
		"limit": page.Limit,
	})
}
