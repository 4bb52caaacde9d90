package middleware

import (
	appErrors "Parking/internal/errors"

	"github.com/gin-gonic/gin"
)

func respondAbort(c *gin.Context, err *appErrors.AppError) {
	payload := gin.H{
		"error":   err.Code,
		"message": err.Message,
	}
	if len(err.Details) > 0 {
		payload["details"] = err.Details
	}
	c.AbortWithStatusJSON(err.StatusCode, payload)
}
