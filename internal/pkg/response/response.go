package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success writes the payload as-is. Pipeline endpoints have fixed top-level
// field names, so there is no envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error writes a flat error body with a stable machine-readable code.
func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": message, "code": code})
}

// ErrorWith writes an error body carrying extra fields, e.g. the upload id
// of a failed extraction.
func ErrorWith(c *gin.Context, status int, code, message string, extra gin.H) {
	body := gin.H{"error": message, "code": code}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}
