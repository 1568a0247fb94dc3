package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// recordIDParam reads the :id route param, treating "new" as a blank form.
// Writes the error response itself when the param is unusable.
func recordIDParam(c *gin.Context) (id uint, isNew bool, ok bool) {
	raw := c.Param("id")
	if raw == "new" {
		return 0, true, true
	}

	id, ok = parseUintParam(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false, false
	}
	return id, false, true
}

func parseUintParam(raw string) (uint, bool) {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
