package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/refrain2333/link-ai/internal/domain"
)

// Envelope wraps every JSON response body.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Code: http.StatusOK, Message: "success", Data: data})
}

// AbortWithError writes the error envelope for e and stops the chain.
func AbortWithError(c *gin.Context, e *domain.Error, message string) {
	if message == "" {
		message = e.Message
	}
	c.AbortWithStatusJSON(e.Status, Envelope{Code: e.Status, Message: message})
}
