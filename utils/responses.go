// utils/responses.go
package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// RespondWithError sends a JSON error envelope
func RespondWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// Pagination holds parsed list query parameters
type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePagination reads page/limit query params with sane bounds
func ParsePagination(c *gin.Context) Pagination {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "25"))
	if err != nil || limit < 1 {
		limit = 25
	}
	if limit > 100 {
		limit = 100
	}
	return Pagination{Page: page, Limit: limit}
}

// ParseSort returns an ORDER BY clause built from the sort/order query
// params, restricted to a whitelist of column names. Falls back to the
// given default when the requested column is not allowed.
func ParseSort(c *gin.Context, allowed map[string]bool, fallback string) string {
	column := c.Query("sort")
	if !allowed[column] {
		return fallback
	}
	direction := "asc"
	if c.DefaultQuery("order", "asc") == "desc" {
		direction = "desc"
	}
	return column + " " + direction
}
