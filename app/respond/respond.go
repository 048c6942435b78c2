// Package respond turns service errors into HTTP responses
package respond

import (
	"bitwise74/drive-api/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusOf = map[service.Kind]int{
	service.KindNotFound:     http.StatusNotFound,
	service.KindConflict:     http.StatusBadRequest,
	service.KindUnauthorized: http.StatusUnauthorized,
	service.KindBadRequest:   http.StatusBadRequest,
	service.KindTooLarge:     http.StatusRequestEntityTooLarge,
}

// Status returns the HTTP status code err is reported with
func Status(err error) int {
	if code, ok := statusOf[service.KindOf(err)]; ok {
		return code
	}

	return http.StatusInternalServerError
}

// Fail aborts the request with the status and message that belong to err.
// Unrecognized errors are logged and hidden behind a generic message.
func Fail(c *gin.Context, err error) {
	requestID := c.GetString("requestID")
	code := Status(err)

	var e *service.Error
	if code == http.StatusInternalServerError || !errors.As(err, &e) {
		zap.L().Error("Request failed", zap.Error(err), zap.String("requestID", requestID))

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})
		return
	}

	if code == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}

	c.AbortWithStatusJSON(code, gin.H{
		"error":     e.Msg,
		"requestID": requestID,
	})
}

// BadRequest aborts with a 400 and msg
func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":     msg,
		"requestID": c.GetString("requestID"),
	})
}
