package controllers

import (
	"net/http"

	"gempro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// shopIDFromContext pulls the tenant id the auth middleware stored
// from the JWT claims. Writes the error response itself on failure.
func shopIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	shopID, exists := c.Get("shopId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Shop ID not found in context")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(shopID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid shop ID format")
		return uuid.Nil, false
	}
	return id, true
}

func userIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return uuid.Nil, false
	}
	return id, true
}

// parseIDParam parses a :id style path parameter.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
